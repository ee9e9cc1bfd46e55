package accel

import "math/bits"

// An Intersector runs closest hit and occlusion queries using a particular
// leaf intersector. It holds no per query state and can be shared by any
// number of goroutines.
type Intersector struct {
	leaf LeafIntersector
}

// Create an intersector that tests leaf blocks with leaf.
func New(leaf LeafIntersector) *Intersector {
	return &Intersector{leaf: leaf}
}

var defaultIntersector = New(Moeller)

// Find the closest hit for every active lane using the Moeller leaf
// intersector. See Intersector.Intersect.
func Intersect(mask LaneMask, h *Hierarchy, rays *RayBatch) Stats {
	return defaultIntersector.Intersect(mask, h, rays)
}

// Test every active lane for occlusion using the Moeller leaf intersector.
// See Intersector.Occluded.
func Occluded(mask LaneMask, h *Hierarchy, rays *RayBatch) Stats {
	return defaultIntersector.Occluded(mask, h, rays)
}

// Find the closest hit in (TNear, TFar) for every lane enabled in mask. Lanes
// that hit something get their TFar lowered to the hit distance and their hit
// record filled in; lanes that miss get InvalidGeomID. Disabled lanes are not
// touched, and a zero mask does not access h at all.
func (in *Intersector) Intersect(mask LaneMask, h *Hierarchy, rays *RayBatch) Stats {
	var stats Stats
	for pending := uint16(mask); pending != 0; pending &= pending - 1 {
		lane := bits.TrailingZeros16(pending)

		ray := rays.Ray(lane)
		ray.Hit = Hit{GeomID: InvalidGeomID, PrimID: InvalidGeomID}
		in.intersect1(h, &ray, &stats)
		rays.storeHit(lane, &ray)
	}
	return stats
}

// Test every lane enabled in mask for any hit in (TNear, TFar). Occluded
// lanes get OccludedGeomID, the others InvalidGeomID. TFar is never modified
// and disabled lanes are not touched.
func (in *Intersector) Occluded(mask LaneMask, h *Hierarchy, rays *RayBatch) Stats {
	var stats Stats
	var resolved LaneMask
	for pending := uint16(mask); pending != 0; pending &= pending - 1 {
		lane := bits.TrailingZeros16(pending)

		ray := rays.Ray(lane)
		if in.occluded1(h, &ray, &stats) {
			rays.GeomID[lane] = OccludedGeomID
		} else {
			rays.GeomID[lane] = InvalidGeomID
		}

		resolved |= 1 << uint(lane)
		if resolved == mask {
			break
		}
	}
	return stats
}

// Run a closest hit traversal for a single ray.
func (in *Intersector) intersect1(h *Hierarchy, ray *Ray, stats *Stats) {
	var stack Stack
	state := newRayState(ray)
	stats.Rays++

	cur := h.Root
	for {
		switch cur.Kind {
		case InnerRef:
			next, ok := visitInner(h, cur, &state, &stack, stats)
			if ok {
				cur = next
				continue
			}
		case LeafRef:
			stats.LeavesVisited++
			stats.PrimitiveTests += int(cur.Count)
			if in.leaf.Intersect(h.leaf(cur), ray) {
				// A closer hit may have made some pushed nodes unreachable.
				state.tfar = ray.TFar
				stats.Pruned += stack.Prune(state.tfar)
			}
		case EmptyRef:
		default:
			invariantf("malformed node ref kind %d", cur.Kind)
		}

		entry, discarded, ok := stack.PopReachable(state.tfar)
		stats.Pruned += discarded
		if !ok {
			break
		}
		cur = entry.Ref
	}

	stats.observeStack(stack.HighWater())
}

// Run an any hit traversal for a single ray.
func (in *Intersector) occluded1(h *Hierarchy, ray *Ray, stats *Stats) bool {
	var stack Stack
	state := newRayState(ray)
	stats.Rays++
	defer func() { stats.observeStack(stack.HighWater()) }()

	cur := h.Root
	for {
		switch cur.Kind {
		case InnerRef:
			next, ok := visitInner(h, cur, &state, &stack, stats)
			if ok {
				cur = next
				continue
			}
		case LeafRef:
			stats.LeavesVisited++
			stats.PrimitiveTests += int(cur.Count)
			if in.leaf.Occluded(h.leaf(cur), ray) {
				return true
			}
		case EmptyRef:
		default:
			invariantf("malformed node ref kind %d", cur.Kind)
		}

		entry, discarded, ok := stack.PopReachable(state.tfar)
		stats.Pruned += discarded
		if !ok {
			return false
		}
		cur = entry.Ref
	}
}

// Slab test the children of an inner node and pick the next node to visit.
// Hit children that are not descended into are pushed to the stack. Returns
// false if no child was hit.
func visitInner(h *Hierarchy, ref NodeRef, ray *rayState, stack *Stack, stats *Stats) (NodeRef, bool) {
	stats.NodesVisited++
	node := h.node(ref)
	box := node.Bounds(ray.time)
	mask, near := intersectBox4(&box, &node.Children, ray)

	switch bits.OnesCount8(mask) {
	case 0:
		return NodeRef{}, false
	case 1:
		return node.Children[bits.TrailingZeros8(mask)], true
	case 2:
		first := bits.TrailingZeros8(mask)
		second := bits.TrailingZeros8(mask & (mask - 1))
		stats.Pushes++
		if near[first] <= near[second] {
			stack.Push(node.Children[second], near[second])
			return node.Children[first], true
		}
		stack.Push(node.Children[first], near[first])
		return node.Children[second], true
	}

	// Three or four children hit: descend into the closest one (lowest
	// index on ties) and push the others.
	closest := -1
	for c := 0; c < NodeWidth; c++ {
		if mask&(1<<uint(c)) == 0 {
			continue
		}
		if closest < 0 || near[c] < near[closest] {
			closest = c
		}
	}
	for c := 0; c < NodeWidth; c++ {
		if c == closest || mask&(1<<uint(c)) == 0 {
			continue
		}
		stack.Push(node.Children[c], near[c])
		stats.Pushes++
	}
	return node.Children[closest], true
}
