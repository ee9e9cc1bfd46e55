package input

import (
	"github.com/tangent-animation/embree/types"
)

// A motion blurred triangle primitive. Vertices holds the triangle corners at
// time key 0 and time key 1.
type Primitive struct {
	Vertices [2][3]types.Vec3

	keyBBox [2]types.BBox
	bbox    types.BBox
	center  types.Vec3
}

// Create a primitive whose vertices move from key0 to key1.
func NewPrimitive(key0, key1 [3]types.Vec3) *Primitive {
	prim := &Primitive{
		Vertices: [2][3]types.Vec3{key0, key1},
	}
	prim.Update()
	return prim
}

// Create a primitive that does not move.
func NewStaticPrimitive(v0, v1, v2 types.Vec3) *Primitive {
	verts := [3]types.Vec3{v0, v1, v2}
	return NewPrimitive(verts, verts)
}

// Recalculate the cached bounds. It must be called after modifying Vertices.
func (prim *Primitive) Update() {
	for key := 0; key < 2; key++ {
		prim.keyBBox[key] = types.EmptyBBox().
			Extend(prim.Vertices[key][0]).
			Extend(prim.Vertices[key][1]).
			Extend(prim.Vertices[key][2])
	}
	prim.bbox = prim.keyBBox[0].Union(prim.keyBBox[1])
	prim.center = prim.bbox.Center()
}

// Get the AABB enclosing the primitive over the whole time range.
func (prim *Primitive) BBox() types.BBox {
	return prim.bbox
}

// Get the AABB of the primitive at time key 0 or 1.
func (prim *Primitive) KeyBBox(key int) types.BBox {
	return prim.keyBBox[key]
}

// Get primitive AABB center.
func (prim *Primitive) Center() types.Vec3 {
	return prim.center
}

// Returns true if the primitive vertices differ between the two time keys.
func (prim *Primitive) IsMoving() bool {
	return prim.Vertices[0] != prim.Vertices[1]
}

// A mesh is constructed by a list of primitive.
type Mesh struct {
	Name       string
	Primitives []*Primitive

	bbox            types.BBox
	bboxNeedsUpdate bool
}

// Mark the bbox of this mesh as dirty.
func (m *Mesh) MarkBBoxDirty() {
	m.bboxNeedsUpdate = true
}

// Get the mesh bounding box over the whole time range.
func (m *Mesh) BBox() types.BBox {
	if m.bboxNeedsUpdate {
		m.bbox = types.EmptyBBox()
		for _, prim := range m.Primitives {
			m.bbox = m.bbox.Union(prim.BBox())
		}

		m.bboxNeedsUpdate = false
	}

	return m.bbox
}

// Append a primitive to the mesh.
func (m *Mesh) Add(prim *Primitive) {
	m.Primitives = append(m.Primitives, prim)
	m.bboxNeedsUpdate = true
}

// Create a new mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:            name,
		Primitives:      make([]*Primitive, 0),
		bboxNeedsUpdate: true,
	}
}

// Camera settings.
type Camera struct {
	FOV  float32
	Eye  types.Vec3
	Look types.Vec3
	Up   types.Vec3
}

// The scene contains all elements that are processed and optimized by the
// scene compiler.
type Scene struct {
	Meshes []*Mesh
	Camera *Camera
}

// Create a new scene.
func NewScene() *Scene {
	return &Scene{
		Meshes: make([]*Mesh, 0),
		Camera: &Camera{
			FOV:  45.0,
			Eye:  types.Vec3{0, 0, 0},
			Look: types.Vec3{0, 0, -1},
			Up:   types.Vec3{0, 1, 0},
		},
	}
}

// Total number of primitives in all scene meshes.
func (sc *Scene) NumPrimitives() int {
	total := 0
	for _, mesh := range sc.Meshes {
		total += len(mesh.Primitives)
	}
	return total
}

// Get the scene bounding box over the whole time range.
func (sc *Scene) BBox() types.BBox {
	bbox := types.EmptyBBox()
	for _, mesh := range sc.Meshes {
		bbox = bbox.Union(mesh.BBox())
	}
	return bbox
}
