package accel

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tangent-animation/embree/types"
)

// Build a hierarchy by recursively sorting triangles along a rotating axis
// and cutting the list into four chunks. Leaves hold up to two triangles.
func buildTestHierarchy(t testing.TB, tris []Triangle) *Hierarchy {
	h := &Hierarchy{
		Triangles: make([]Triangle, 0, len(tris)),
	}

	maxGeomID := uint32(0)
	for _, tri := range tris {
		if tri.GeomID > maxGeomID {
			maxGeomID = tri.GeomID
		}
	}
	for id := uint32(0); id <= maxGeomID; id++ {
		h.Geometries = append(h.Geometries, Geometry{ID: id})
	}

	work := append([]Triangle(nil), tris...)
	h.Root, h.Depth = buildTestNode(h, work, 0)
	require.NoError(t, h.Validate())
	return h
}

func buildTestNode(h *Hierarchy, tris []Triangle, level int) (NodeRef, int) {
	if len(tris) == 0 {
		return NodeRef{}, 0
	}
	if len(tris) <= 2 {
		first := uint32(len(h.Triangles))
		h.Triangles = append(h.Triangles, tris...)
		return LeafNodeRef(first, uint32(len(tris))), 0
	}

	axis := level % 3
	sort.SliceStable(tris, func(i, j int) bool {
		return tris[i].BBox(0).Center()[axis] < tris[j].BBox(0).Center()[axis]
	})

	nodeIndex := len(h.Nodes)
	h.Nodes = append(h.Nodes, Node{})

	chunk := (len(tris) + NodeWidth - 1) / NodeWidth
	depth := 0
	for slot := 0; slot < NodeWidth; slot++ {
		start := slot * chunk
		if start >= len(tris) {
			break
		}
		end := start + chunk
		if end > len(tris) {
			end = len(tris)
		}

		box0, box1 := types.EmptyBBox(), types.EmptyBBox()
		for index := start; index < end; index++ {
			box0 = box0.Union(tris[index].BBox(0))
			box1 = box1.Union(tris[index].BBox(1))
		}

		ref, childDepth := buildTestNode(h, tris[start:end], level+1)
		h.Nodes[nodeIndex].SetChild(slot, ref, box0, box1)
		if childDepth > depth {
			depth = childDepth
		}
	}

	return InnerNodeRef(uint32(nodeIndex)), depth + 1
}

func randVec3(rng *rand.Rand, scale float32) types.Vec3 {
	return types.XYZ(
		(rng.Float32()*2-1)*scale,
		(rng.Float32()*2-1)*scale,
		(rng.Float32()*2-1)*scale,
	)
}

// Generate small triangles scattered inside a cube; the key 1 vertices are
// displaced by a per triangle offset.
func randomTriangles(rng *rand.Rand, count int, motion float32) []Triangle {
	tris := make([]Triangle, count)
	for index := range tris {
		center := randVec3(rng, 10)
		offset := randVec3(rng, motion)
		for v := 0; v < 3; v++ {
			p := center.Add(randVec3(rng, 1))
			tris[index].V[0][v] = p
			tris[index].V[1][v] = p.Add(offset)
		}
		tris[index].GeomID = uint32(index % 3)
		tris[index].PrimID = uint32(index)
	}
	return tris
}

// Find the closest hit by testing every triangle.
func bruteForceHit(tris []Triangle, ray Ray) (Hit, float32, bool) {
	best := Hit{GeomID: InvalidGeomID, PrimID: InvalidGeomID}
	tfar := ray.TFar
	found := false
	for _, tri := range tris {
		v0, v1, v2 := tri.Vertices(ray.Time)
		t, u, v, ok := intersectTriangle(ray.Org, ray.Dir, v0, v1, v2)
		if !ok || !(t > ray.TNear && t < tfar) {
			continue
		}
		tfar = t
		found = true
		best = Hit{GeomID: int32(tri.GeomID), PrimID: int32(tri.PrimID), U: u, V: v}
	}
	return best, tfar, found
}

// Expect fn to panic with an *InvariantError.
func requireInvariantPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		_, ok := r.(*InvariantError)
		require.True(t, ok, "expected *InvariantError; got %T (%v)", r, r)
	}()
	fn()
}
