package accel

// Bounds of the four children of a node at one instant, laid out [axis][child].
type Box4 struct {
	Lower [3][NodeWidth]float32
	Upper [3][NodeWidth]float32
}

// Interpolate the child bounds of the node at the given time in [0, 1].
// Time 0 and time 1 reproduce the stored keyframes exactly.
func (n *Node) Bounds(time float32) Box4 {
	var box Box4
	oneMinusTime := 1 - time
	for axis := 0; axis < 3; axis++ {
		for c := 0; c < NodeWidth; c++ {
			box.Lower[axis][c] = oneMinusTime*n.Lower[0][axis][c] + time*n.Lower[1][axis][c]
			box.Upper[axis][c] = oneMinusTime*n.Upper[0][axis][c] + time*n.Upper[1][axis][c]
		}
	}
	return box
}

// Intersect the ray with the four child boxes. Bit c of the returned mask is
// set when child c is hit; near[c] then holds the entry distance, clamped to
// the ray's tnear. Empty child slots are never hit.
//
// The entry/exit bound of each axis is picked by the sign of the reciprocal
// direction. A NaN slab distance (a ray parallel to an axis whose origin lies
// exactly on the slab plane) leaves the interval unchanged.
func intersectBox4(box *Box4, children *[NodeWidth]NodeRef, ray *rayState) (mask uint8, near [NodeWidth]float32) {
	for c := 0; c < NodeWidth; c++ {
		if children[c].IsEmpty() {
			continue
		}

		tNear, tFar := ray.tnear, ray.tfar
		for axis := 0; axis < 3; axis++ {
			entry, exit := box.Lower[axis][c], box.Upper[axis][c]
			if ray.negDir[axis] {
				entry, exit = exit, entry
			}

			t0 := (entry - ray.org[axis]) * ray.rdir[axis]
			t1 := (exit - ray.org[axis]) * ray.rdir[axis]
			if t0 > tNear {
				tNear = t0
			}
			if t1 < tFar {
				tFar = t1
			}
		}

		if tNear <= tFar {
			mask |= 1 << uint(c)
			near[c] = tNear
		}
	}

	return mask, near
}
