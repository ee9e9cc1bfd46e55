package accel

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tangent-animation/embree/types"
)

func TestIntersectTriangle(t *testing.T) {
	v0 := types.XYZ(-1, -1, 5)
	v1 := types.XYZ(1, -1, 5)
	v2 := types.XYZ(0, 1, 5)

	dist, u, v, ok := intersectTriangle(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), v0, v1, v2)
	require.True(t, ok)
	assert.InDelta(t, 5, dist, 1e-6)
	assert.InDelta(t, 0.25, u, 1e-6)
	assert.InDelta(t, 0.5, v, 1e-6)

	// Behind the origin: reported with a negative distance.
	dist, _, _, ok = intersectTriangle(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1), v0, v1, v2)
	require.True(t, ok)
	assert.InDelta(t, -5, dist, 1e-6)

	// Outside the triangle.
	_, _, _, ok = intersectTriangle(types.XYZ(3, 0, 0), types.XYZ(0, 0, 1), v0, v1, v2)
	assert.False(t, ok)

	// Parallel to the triangle plane.
	_, _, _, ok = intersectTriangle(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), v0, v1, v2)
	assert.False(t, ok)

	// Degenerate triangle.
	_, _, _, ok = intersectTriangle(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), v0, v0, v2)
	assert.False(t, ok)

	// NaN input never produces a hit.
	nan := math32.NaN()
	_, _, _, ok = intersectTriangle(types.XYZ(nan, 0, 0), types.XYZ(0, 0, 1), v0, v1, v2)
	assert.False(t, ok)
}

func TestMoellerIntersectClosest(t *testing.T) {
	prims := []Triangle{
		StaticTriangle(types.XYZ(-1, -1, 9), types.XYZ(1, -1, 9), types.XYZ(0, 1, 9), 0, 0),
		StaticTriangle(types.XYZ(-1, -1, 5), types.XYZ(1, -1, 5), types.XYZ(0, 1, 5), 1, 7),
		StaticTriangle(types.XYZ(-1, -1, 7), types.XYZ(1, -1, 7), types.XYZ(0, 1, 7), 2, 3),
	}

	ray := Ray{Org: types.XYZ(0, 0, 0), Dir: types.XYZ(0, 0, 1), TFar: math32.Inf(1)}
	require.True(t, Moeller.Intersect(prims, &ray))
	assert.Equal(t, float32(5), ray.TFar)
	assert.Equal(t, int32(1), ray.Hit.GeomID)
	assert.Equal(t, int32(7), ray.Hit.PrimID)
	assert.InDelta(t, 0.25, ray.Hit.U, 1e-6)
	assert.InDelta(t, 0.5, ray.Hit.V, 1e-6)
	assert.Equal(t, types.XYZ(0, 0, 4), ray.Hit.Ng)

	// Nothing left in (tnear, 5).
	require.False(t, Moeller.Intersect(prims, &ray))
	assert.Equal(t, float32(5), ray.TFar)
}

func TestMoellerIntervalIsOpen(t *testing.T) {
	prims := []Triangle{
		StaticTriangle(types.XYZ(-1, -1, 5), types.XYZ(1, -1, 5), types.XYZ(0, 1, 5), 0, 0),
	}

	specs := []struct {
		tnear, tfar float32
		expHit      bool
	}{
		{0, 10, true},
		{5, 10, false},
		{0, 5, false},
		{4.999, 5.001, true},
		{6, 10, false},
	}

	for index, s := range specs {
		ray := Ray{Org: types.XYZ(0, 0, 0), Dir: types.XYZ(0, 0, 1), TNear: s.tnear, TFar: s.tfar}
		assert.Equal(t, s.expHit, Moeller.Occluded(prims, &ray), "spec %d", index)
		assert.Equal(t, s.tfar, ray.TFar, "spec %d: Occluded must not modify the ray", index)
		assert.Equal(t, s.expHit, Moeller.Intersect(prims, &ray), "spec %d", index)
	}
}

func TestMoellerMotion(t *testing.T) {
	tri := Triangle{
		V: [2][3]types.Vec3{
			{types.XYZ(-1, -1, 5), types.XYZ(1, -1, 5), types.XYZ(0, 1, 5)},
			{types.XYZ(-1, -1, 9), types.XYZ(1, -1, 9), types.XYZ(0, 1, 9)},
		},
	}
	prims := []Triangle{tri}

	for _, spec := range []struct{ time, expT float32 }{{0, 5}, {0.5, 7}, {1, 9}} {
		ray := Ray{Org: types.XYZ(0, 0, 0), Dir: types.XYZ(0, 0, 1), TFar: 100, Time: spec.time}
		require.True(t, Moeller.Intersect(prims, &ray), "time %f", spec.time)
		assert.InDelta(t, spec.expT, ray.TFar, 1e-5, "time %f", spec.time)
	}
}
