package accel

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Validate checks the invariants that traversal relies on: every reachable
// ref points inside the node/triangle arrays, each inner node is referenced
// once, non-empty child bounds are ordered at both time keys, the recorded
// depth matches the tree and does not exceed MaxDepth and every triangle
// references a known geometry.
//
// Builders and readers call Validate before handing a hierarchy to the
// query functions; traversal itself only panics on violations.
func (h *Hierarchy) Validate() error {
	visited := make([]bool, len(h.Nodes))
	depth, err := h.validateRef(h.Root, visited, 0)
	if err != nil {
		return err
	}

	if depth > MaxDepth {
		return fmt.Errorf("%w: %d > %d", ErrDepthExceeded, depth, MaxDepth)
	}
	if depth != h.Depth {
		return fmt.Errorf("accel: recorded depth %d does not match tree depth %d", h.Depth, depth)
	}

	if len(h.Geometries) != 0 {
		for index, tri := range h.Triangles {
			if int(tri.GeomID) >= len(h.Geometries) {
				return fmt.Errorf("%w: triangle %d has geometry id %d", ErrUnknownGeom, index, tri.GeomID)
			}
		}
	}

	return nil
}

// Validate the subtree rooted at ref and return its inner node depth.
func (h *Hierarchy) validateRef(ref NodeRef, visited []bool, level int) (int, error) {
	switch ref.Kind {
	case EmptyRef:
		return 0, nil
	case LeafRef:
		if ref.Count == 0 || uint64(ref.Index)+uint64(ref.Count) > uint64(len(h.Triangles)) {
			return 0, fmt.Errorf("%w: %s (%d triangles)", ErrInvalidRef, ref, len(h.Triangles))
		}
		return 0, nil
	case InnerRef:
	default:
		return 0, fmt.Errorf("%w: unknown kind %d", ErrInvalidRef, ref.Kind)
	}

	if int(ref.Index) >= len(h.Nodes) {
		return 0, fmt.Errorf("%w: %s (%d nodes)", ErrInvalidRef, ref, len(h.Nodes))
	}
	if visited[ref.Index] {
		return 0, fmt.Errorf("%w: node %d is referenced more than once", ErrInvalidRef, ref.Index)
	}
	visited[ref.Index] = true

	// Bail out before runaway recursion on very deep (or broken) trees.
	if level >= MaxDepth {
		return 0, fmt.Errorf("%w: node %d at level %d", ErrDepthExceeded, ref.Index, level+1)
	}

	node := &h.Nodes[ref.Index]
	maxChildDepth := 0
	for slot, child := range node.Children {
		if child.IsEmpty() {
			continue
		}

		for key := 0; key < 2; key++ {
			for axis := 0; axis < 3; axis++ {
				lo, hi := node.Lower[key][axis][slot], node.Upper[key][axis][slot]
				if math32.IsNaN(lo) || math32.IsNaN(hi) || lo > hi {
					return 0, fmt.Errorf("%w: node %d slot %d key %d axis %d [%f, %f]", ErrInvalidBounds, ref.Index, slot, key, axis, lo, hi)
				}
			}
		}

		childDepth, err := h.validateRef(child, visited, level+1)
		if err != nil {
			return 0, err
		}
		if childDepth > maxChildDepth {
			maxChildDepth = childDepth
		}
	}

	return maxChildDepth + 1, nil
}
