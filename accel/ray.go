package accel

import (
	"math/bits"

	"github.com/tangent-animation/embree/types"
)

const (
	// Number of lanes in a RayBatch.
	BatchSize = 16

	// Geometry id reported for rays that did not hit anything.
	InvalidGeomID int32 = -1

	// Geometry id written by Occluded for lanes that are blocked.
	OccludedGeomID int32 = 0
)

// LaneMask selects the active lanes of a RayBatch; bit i enables lane i.
type LaneMask uint16

const AllLanes LaneMask = 1<<BatchSize - 1

// Create a mask with the first n lanes enabled.
func FirstLanes(n int) LaneMask {
	if n >= BatchSize {
		return AllLanes
	}
	if n <= 0 {
		return 0
	}
	return LaneMask(1<<uint(n) - 1)
}

// Returns true if lane is enabled.
func (m LaneMask) Has(lane int) bool {
	return m&(1<<uint(lane)) != 0
}

// Number of enabled lanes.
func (m LaneMask) Count() int {
	return bits.OnesCount16(uint16(m))
}

// Per lane values of a batch.
type Lanes [BatchSize]float32

// Per lane 3D vectors stored as one Lanes array per axis.
type Vec3Lanes [3]Lanes

// Get the vector stored in lane.
func (v *Vec3Lanes) Lane(lane int) types.Vec3 {
	return types.Vec3{v[0][lane], v[1][lane], v[2][lane]}
}

// Set the vector stored in lane.
func (v *Vec3Lanes) SetLane(lane int, vec types.Vec3) {
	v[0][lane] = vec[0]
	v[1][lane] = vec[1]
	v[2][lane] = vec[2]
}

// A RayBatch stores BatchSize rays in structure-of-arrays form. The caller
// owns the batch; queries only write TFar and the hit fields of active lanes.
type RayBatch struct {
	Org   Vec3Lanes
	Dir   Vec3Lanes
	TNear Lanes
	TFar  Lanes

	// Time sample in [0, 1] selecting the motion state.
	Time Lanes

	// Hit record.
	GeomID [BatchSize]int32
	PrimID [BatchSize]int32
	U      Lanes
	V      Lanes
	Ng     Vec3Lanes
}

// Set up a lane for a new query and clear its hit record.
func (b *RayBatch) SetRay(lane int, org, dir types.Vec3, tnear, tfar, time float32) {
	b.Org.SetLane(lane, org)
	b.Dir.SetLane(lane, dir)
	b.TNear[lane] = tnear
	b.TFar[lane] = tfar
	b.Time[lane] = time
	b.GeomID[lane] = InvalidGeomID
	b.PrimID[lane] = InvalidGeomID
	b.U[lane] = 0
	b.V[lane] = 0
	b.Ng.SetLane(lane, types.Vec3{})
}

// Clear every lane: rays become empty segments at the origin and all hit
// records report a miss.
func (b *RayBatch) Reset() {
	*b = RayBatch{}
	for lane := range b.GeomID {
		b.GeomID[lane] = InvalidGeomID
		b.PrimID[lane] = InvalidGeomID
	}
}

// Get a copy of the ray stored in lane.
func (b *RayBatch) Ray(lane int) Ray {
	return Ray{
		Org:   b.Org.Lane(lane),
		Dir:   b.Dir.Lane(lane),
		TNear: b.TNear[lane],
		TFar:  b.TFar[lane],
		Time:  b.Time[lane],
		Hit: Hit{
			GeomID: b.GeomID[lane],
			PrimID: b.PrimID[lane],
			U:      b.U[lane],
			V:      b.V[lane],
			Ng:     b.Ng.Lane(lane),
		},
	}
}

// Get the hit record of lane after Intersect. The second result is false
// when the ray missed.
func (b *RayBatch) Hit(lane int) (Hit, bool) {
	if b.GeomID[lane] == InvalidGeomID {
		return Hit{GeomID: InvalidGeomID, PrimID: InvalidGeomID}, false
	}
	return Hit{
		GeomID: b.GeomID[lane],
		PrimID: b.PrimID[lane],
		U:      b.U[lane],
		V:      b.V[lane],
		Ng:     b.Ng.Lane(lane),
	}, true
}

// Returns true if Occluded found lane to be blocked.
func (b *RayBatch) IsOccluded(lane int) bool {
	return b.GeomID[lane] == OccludedGeomID
}

// Write back the result of a closest hit query.
func (b *RayBatch) storeHit(lane int, ray *Ray) {
	if ray.Hit.GeomID == InvalidGeomID {
		b.GeomID[lane] = InvalidGeomID
		return
	}
	b.TFar[lane] = ray.TFar
	b.GeomID[lane] = ray.Hit.GeomID
	b.PrimID[lane] = ray.Hit.PrimID
	b.U[lane] = ray.Hit.U
	b.V[lane] = ray.Hit.V
	b.Ng.SetLane(lane, ray.Hit.Ng)
}

// A single ray.
type Ray struct {
	Org   types.Vec3
	Dir   types.Vec3
	TNear float32
	TFar  float32
	Time  float32

	Hit Hit
}

// The closest hit found for a ray.
type Hit struct {
	GeomID int32
	PrimID int32

	// Barycentric coordinates of the hit point relative to vertices 1 and 2.
	U, V float32

	// Unnormalized geometric normal (v1-v0) x (v2-v0).
	Ng types.Vec3
}

// Per ray values that stay constant during traversal.
type rayState struct {
	org    types.Vec3
	rdir   types.Vec3
	negDir [3]bool
	tnear  float32
	tfar   float32
	time   float32
}

func newRayState(ray *Ray) rayState {
	rdir := ray.Dir.Rcp()
	return rayState{
		org:    ray.Org,
		rdir:   rdir,
		negDir: [3]bool{rdir[0] < 0, rdir[1] < 0, rdir[2] < 0},
		tnear:  ray.TNear,
		tfar:   ray.TFar,
		time:   ray.Time,
	}
}
