package accel

import (
	"fmt"

	"github.com/tangent-animation/embree/types"
)

const (
	// The max number of inner node levels a hierarchy may contain. The
	// traversal stack is sized from this value.
	MaxDepth = 32

	// Capacity of the per-ray traversal stack. Every visited inner node
	// pushes at most 3 of its 4 children.
	StackSize = 3*MaxDepth + 1

	// Number of children per inner node.
	NodeWidth = 4
)

// The kind of node a NodeRef points to.
type RefKind uint8

const (
	// Unused child slot. Empty refs are never hit.
	EmptyRef RefKind = iota

	// Index into Hierarchy.Nodes.
	InnerRef

	// Run of Count triangles starting at Hierarchy.Triangles[Index].
	LeafRef
)

func (k RefKind) String() string {
	switch k {
	case EmptyRef:
		return "empty"
	case InnerRef:
		return "inner"
	case LeafRef:
		return "leaf"
	}
	return fmt.Sprintf("RefKind(%d)", uint8(k))
}

// A NodeRef identifies either an inner node or a leaf block. The Count field
// is only meaningful for leaf refs.
type NodeRef struct {
	Kind  RefKind
	Index uint32
	Count uint32
}

// Create a ref to the inner node at index.
func InnerNodeRef(index uint32) NodeRef {
	return NodeRef{Kind: InnerRef, Index: index}
}

// Create a ref to a leaf block of count triangles starting at first.
func LeafNodeRef(first, count uint32) NodeRef {
	return NodeRef{Kind: LeafRef, Index: first, Count: count}
}

func (r NodeRef) IsEmpty() bool { return r.Kind == EmptyRef }
func (r NodeRef) IsInner() bool { return r.Kind == InnerRef }
func (r NodeRef) IsLeaf() bool  { return r.Kind == LeafRef }

func (r NodeRef) String() string {
	switch r.Kind {
	case InnerRef:
		return fmt.Sprintf("inner(%d)", r.Index)
	case LeafRef:
		return fmt.Sprintf("leaf(%d+%d)", r.Index, r.Count)
	}
	return r.Kind.String()
}

// A 4-wide inner node whose child bounds vary linearly between two time keys.
//
// Bounds are stored as [time key][axis][child] so that the slab test can
// walk all four children of one axis in a row.
type Node struct {
	Children [NodeWidth]NodeRef

	Lower [2][3][NodeWidth]float32
	Upper [2][3][NodeWidth]float32
}

// Set child slot to ref with bounds box0 at time key 0 and box1 at time key 1.
func (n *Node) SetChild(slot int, ref NodeRef, box0, box1 types.BBox) {
	n.Children[slot] = ref
	for axis := 0; axis < 3; axis++ {
		n.Lower[0][axis][slot] = box0[0][axis]
		n.Upper[0][axis][slot] = box0[1][axis]
		n.Lower[1][axis][slot] = box1[0][axis]
		n.Upper[1][axis][slot] = box1[1][axis]
	}
}

// Get the stored bounds of a child slot at time key 0 or 1.
func (n *Node) ChildBBox(slot, key int) types.BBox {
	var box types.BBox
	for axis := 0; axis < 3; axis++ {
		box[0][axis] = n.Lower[key][axis][slot]
		box[1][axis] = n.Upper[key][axis][slot]
	}
	return box
}

// A motion blurred triangle. V holds the three vertices at time key 0 and at
// time key 1.
type Triangle struct {
	V [2][3]types.Vec3

	// Owning geometry and the triangle index inside it.
	GeomID uint32
	PrimID uint32
}

// Create a triangle that does not move.
func StaticTriangle(v0, v1, v2 types.Vec3, geomID, primID uint32) Triangle {
	return Triangle{
		V:      [2][3]types.Vec3{{v0, v1, v2}, {v0, v1, v2}},
		GeomID: geomID,
		PrimID: primID,
	}
}

// Get the triangle vertices at the given time.
func (tri *Triangle) Vertices(time float32) (v0, v1, v2 types.Vec3) {
	return types.LerpVec3(tri.V[0][0], tri.V[1][0], time),
		types.LerpVec3(tri.V[0][1], tri.V[1][1], time),
		types.LerpVec3(tri.V[0][2], tri.V[1][2], time)
}

// Get the triangle bbox at time key 0 or 1.
func (tri *Triangle) BBox(key int) types.BBox {
	return types.EmptyBBox().
		Extend(tri.V[key][0]).
		Extend(tri.V[key][1]).
		Extend(tri.V[key][2])
}

// Geometry metadata referenced by Triangle.GeomID.
type Geometry struct {
	ID            uint32
	Name          string
	NumPrimitives uint32
}

// A Hierarchy is the immutable store that queries run against. It is built
// and owned by the caller and must not be modified while queries are in
// flight.
type Hierarchy struct {
	Root      NodeRef
	Nodes     []Node
	Triangles []Triangle

	// Geometries indexed by Triangle.GeomID.
	Geometries []Geometry

	// Number of inner node levels on the longest root to leaf path.
	Depth int
}

func (h *Hierarchy) node(ref NodeRef) *Node {
	if int(ref.Index) >= len(h.Nodes) {
		invariantf("inner ref %s out of range (%d nodes)", ref, len(h.Nodes))
	}
	return &h.Nodes[ref.Index]
}

func (h *Hierarchy) leaf(ref NodeRef) []Triangle {
	end := uint64(ref.Index) + uint64(ref.Count)
	if end > uint64(len(h.Triangles)) {
		invariantf("leaf ref %s out of range (%d triangles)", ref, len(h.Triangles))
	}
	return h.Triangles[ref.Index:end]
}
