package cpu

import (
	"github.com/chewxy/math32"
	"github.com/tangent-animation/embree/accel"
	"github.com/tangent-animation/embree/types"
)

const (
	// Occlusion rays start this far above the surface, scaled by the hit
	// distance, so they do not hit the triangle they leave from.
	aoOffsetScale float32 = 1e-4

	goldenAngle float32 = 2.39996323
)

// Casts a fixed set of cosine weighted hemisphere directions around each
// hit normal and reports the blocked fraction.
type occlusionSampler struct {
	radius float32

	// Directions in a frame where +z is the surface normal.
	dirs []types.Vec3
}

func newOcclusionSampler(samples uint32, radius float32) *occlusionSampler {
	if samples == 0 {
		return nil
	}
	if radius <= 0 {
		radius = math32.Inf(1)
	}

	// Spiral points over the unit disk projected up onto the hemisphere.
	dirs := make([]types.Vec3, samples)
	for i := range dirs {
		r2 := (float32(i) + 0.5) / float32(samples)
		r := math32.Sqrt(r2)
		phi := float32(i) * goldenAngle
		dirs[i] = types.XYZ(r*math32.Cos(phi), r*math32.Sin(phi), math32.Sqrt(1-r2))
	}

	return &occlusionSampler{radius: radius, dirs: dirs}
}

// Get the fraction of occlusion rays leaving the hit point of ray that are
// blocked within the sampler radius.
func (s *occlusionSampler) occlusion(intersector *accel.Intersector, h *accel.Hierarchy, ray *accel.Ray, stats *accel.Stats) float32 {
	n := ray.Hit.Ng.Normalize()
	if n.Dot(ray.Dir) > 0 {
		n = n.Mul(-1)
	}
	tangent, bitangent := orthonormalBasis(n)

	org := ray.Org.Add(ray.Dir.Mul(ray.TFar))
	org = org.Add(n.Mul(aoOffsetScale * math32.Max(1, ray.TFar)))

	var batch accel.RayBatch
	var blocked int
	for first := 0; first < len(s.dirs); first += accel.BatchSize {
		lanes := len(s.dirs) - first
		if lanes > accel.BatchSize {
			lanes = accel.BatchSize
		}

		for lane := 0; lane < lanes; lane++ {
			d := s.dirs[first+lane]
			dir := tangent.Mul(d[0]).Add(bitangent.Mul(d[1])).Add(n.Mul(d[2]))
			batch.SetRay(lane, org, dir, 0, s.radius, ray.Time)
		}

		stats.Add(intersector.Occluded(accel.FirstLanes(lanes), h, &batch))
		for lane := 0; lane < lanes; lane++ {
			if batch.IsOccluded(lane) {
				blocked++
			}
		}
	}

	return float32(blocked) / float32(len(s.dirs))
}

// Build two unit vectors that together with n form an orthonormal basis.
func orthonormalBasis(n types.Vec3) (types.Vec3, types.Vec3) {
	axis := types.XYZ(1, 0, 0)
	if math32.Abs(n[0]) > 0.9 {
		axis = types.XYZ(0, 1, 0)
	}
	tangent := n.Cross(axis).Normalize()
	return tangent, n.Cross(tangent)
}
