package accel

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tangent-animation/embree/types"
)

func testNode() *Node {
	n := &Node{}
	n.SetChild(0, LeafNodeRef(0, 1),
		types.BBox{types.XYZ(0.1, 0.2, 0.3), types.XYZ(1.1, 1.3, 1.7)},
		types.BBox{types.XYZ(2.1, -0.7, 0.3), types.XYZ(3.3, 0.9, 5.1)},
	)
	n.SetChild(2, LeafNodeRef(1, 1),
		types.BBox{types.XYZ(-1, -1, -1), types.XYZ(1, 1, 1)},
		types.BBox{types.XYZ(-1, -1, -1), types.XYZ(1, 1, 1)},
	)
	return n
}

func TestNodeBoundsKeyframesAreExact(t *testing.T) {
	n := testNode()

	for key, time := range []float32{0, 1} {
		box := n.Bounds(time)
		for slot := 0; slot < NodeWidth; slot++ {
			for axis := 0; axis < 3; axis++ {
				assert.Equal(t, n.Lower[key][axis][slot], box.Lower[axis][slot], "key %d slot %d axis %d", key, slot, axis)
				assert.Equal(t, n.Upper[key][axis][slot], box.Upper[axis][slot], "key %d slot %d axis %d", key, slot, axis)
			}
		}
	}
}

func TestNodeBoundsInterpolation(t *testing.T) {
	n := testNode()
	box := n.Bounds(0.5)

	assert.InDelta(t, 1.1, box.Lower[0][0], 1e-6)
	assert.InDelta(t, -0.25, box.Lower[1][0], 1e-6)
	assert.InDelta(t, 3.4, box.Upper[2][0], 1e-6)

	// A convex combination of valid boxes stays valid.
	for _, time := range []float32{0, 0.125, 0.5, 0.9, 1} {
		box = n.Bounds(time)
		for axis := 0; axis < 3; axis++ {
			assert.LessOrEqual(t, box.Lower[axis][0], box.Upper[axis][0])
		}
	}
}

func TestChildBBoxRoundTrip(t *testing.T) {
	n := testNode()
	exp := types.BBox{types.XYZ(2.1, -0.7, 0.3), types.XYZ(3.3, 0.9, 5.1)}
	assert.Equal(t, exp, n.ChildBBox(0, 1))
}

func slabRay(org, dir types.Vec3, tnear, tfar float32) rayState {
	return newRayState(&Ray{Org: org, Dir: dir, TNear: tnear, TFar: tfar})
}

func TestIntersectBox4(t *testing.T) {
	unitBox := types.BBox{types.XYZ(-1, -1, -1), types.XYZ(1, 1, 1)}
	farBox := types.BBox{types.XYZ(-1, -1, 9), types.XYZ(1, 1, 11)}
	offBox := types.BBox{types.XYZ(5, 5, 5), types.XYZ(6, 6, 6)}

	n := &Node{}
	n.SetChild(0, LeafNodeRef(0, 1), unitBox, unitBox)
	n.SetChild(1, LeafNodeRef(1, 1), farBox, farBox)
	n.SetChild(2, LeafNodeRef(2, 1), offBox, offBox)
	// Slot 3 is empty but its zeroed bounds contain the ray origin.
	box := n.Bounds(0)

	type spec struct {
		ray     rayState
		expMask uint8
		expNear [NodeWidth]float32
	}
	specs := []spec{
		// Along +z from behind the unit box.
		{slabRay(types.XYZ(0, 0, -5), types.XYZ(0, 0, 1), 0, 100), 0x3, [NodeWidth]float32{4, 14, 0, 0}},
		// Along -z from in front of the far box; the lower/upper roles swap.
		{slabRay(types.XYZ(0, 0, 20), types.XYZ(0, 0, -1), 0, 100), 0x3, [NodeWidth]float32{19, 9, 0, 0}},
		// tfar stops the ray before the far box.
		{slabRay(types.XYZ(0, 0, -5), types.XYZ(0, 0, 1), 0, 10), 0x1, [NodeWidth]float32{4, 0, 0, 0}},
		// tnear starts the ray past the unit box.
		{slabRay(types.XYZ(0, 0, -5), types.XYZ(0, 0, 1), 7, 100), 0x2, [NodeWidth]float32{0, 14, 0, 0}},
		// Origin inside the unit box: entry clamps to tnear.
		{slabRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), 0, 100), 0x3, [NodeWidth]float32{0, 9, 0, 0}},
		// Pointing away from everything.
		{slabRay(types.XYZ(0, 0, -5), types.XYZ(0, 0, -1), 0, 100), 0x0, [NodeWidth]float32{}},
		// Diagonal ray into the off-axis box.
		{slabRay(types.XYZ(0, 0, 0), types.XYZ(1, 1, 1), 0, 100), 0x5, [NodeWidth]float32{0, 0, 5, 0}},
	}

	for index, s := range specs {
		mask, near := intersectBox4(&box, &n.Children, &s.ray)
		assert.Equal(t, s.expMask, mask, "spec %d", index)
		for c := 0; c < NodeWidth; c++ {
			if s.expMask&(1<<uint(c)) != 0 {
				assert.InDelta(t, s.expNear[c], near[c], 1e-5, "spec %d child %d", index, c)
			}
		}
	}
}

func TestIntersectBox4ZeroDirectionComponents(t *testing.T) {
	slab := types.BBox{types.XYZ(-1, -1, 4), types.XYZ(1, 1, 6)}
	n := &Node{}
	n.SetChild(0, LeafNodeRef(0, 1), slab, slab)
	box := n.Bounds(0)

	negZero := math32.Copysign(0, -1)
	type spec struct {
		org    types.Vec3
		dir    types.Vec3
		expHit bool
	}
	specs := []spec{
		{types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), true},
		{types.XYZ(0, 0, 0), types.XYZ(negZero, negZero, 1), true},
		// Outside the x slab while moving parallel to it.
		{types.XYZ(2, 0, 0), types.XYZ(0, 0, 1), false},
		{types.XYZ(-2, 0, 0), types.XYZ(negZero, 0, 1), false},
		// Exactly on the x slab plane.
		{types.XYZ(1, 0, 0), types.XYZ(0, 0, 1), true},
		{types.XYZ(-1, 0, 0), types.XYZ(negZero, 0, 1), true},
	}

	for index, s := range specs {
		ray := slabRay(s.org, s.dir, 0, math32.Inf(1))
		for axis := 0; axis < 3; axis++ {
			require.False(t, math32.IsNaN(ray.rdir[axis]), "spec %d", index)
		}

		mask, near := intersectBox4(&box, &n.Children, &ray)
		assert.Equal(t, s.expHit, mask == 1, "spec %d", index)
		if s.expHit {
			assert.False(t, math32.IsNaN(near[0]), "spec %d", index)
			assert.InDelta(t, 4, near[0], 1e-6, "spec %d", index)
		}
	}
}

func TestIntersectBox4LaneOrderIndependent(t *testing.T) {
	boxes := []types.BBox{
		{types.XYZ(-1, -1, 1), types.XYZ(1, 1, 2)},
		{types.XYZ(-1, -1, 3), types.XYZ(1, 1, 4)},
		{types.XYZ(3, 3, 3), types.XYZ(4, 4, 4)},
		{types.XYZ(-1, -1, 5), types.XYZ(1, 1, 6)},
	}
	ray := slabRay(types.XYZ(0.5, 0.25, 0), types.XYZ(0, 0, 1), 0, 100)

	n := &Node{}
	for slot, b := range boxes {
		n.SetChild(slot, LeafNodeRef(uint32(slot), 1), b, b)
	}
	box := n.Bounds(0)
	mask, near := intersectBox4(&box, &n.Children, &ray)

	// Evaluating each child on its own must give the same answer.
	for slot, b := range boxes {
		single := &Node{}
		single.SetChild(0, LeafNodeRef(0, 1), b, b)
		singleBox := single.Bounds(0)
		singleMask, singleNear := intersectBox4(&singleBox, &single.Children, &ray)

		assert.Equal(t, mask&(1<<uint(slot)) != 0, singleMask == 1, "slot %d", slot)
		if singleMask == 1 {
			assert.Equal(t, near[slot], singleNear[0], "slot %d", slot)
		}
	}
}
