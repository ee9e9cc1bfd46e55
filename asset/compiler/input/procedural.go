package input

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/tangent-animation/embree/types"
)

// Create a square quad lying on the y = center[1] plane and tessellated into
// a grid of tessellation x tessellation cells (two triangles per cell).
func NewQuadMesh(name string, center types.Vec3, size float32, tessellation int) *Mesh {
	if tessellation < 1 {
		tessellation = 1
	}

	mesh := NewMesh(name)
	step := size / float32(tessellation)
	origin := center.Sub(types.XYZ(size*0.5, 0, size*0.5))
	corner := func(x, z int) types.Vec3 {
		return origin.Add(types.XYZ(float32(x)*step, 0, float32(z)*step))
	}

	for z := 0; z < tessellation; z++ {
		for x := 0; x < tessellation; x++ {
			p00, p10 := corner(x, z), corner(x+1, z)
			p01, p11 := corner(x, z+1), corner(x+1, z+1)
			// Counter-clockwise when viewed from +y.
			mesh.Add(NewStaticPrimitive(p00, p01, p11))
			mesh.Add(NewStaticPrimitive(p00, p11, p10))
		}
	}
	return mesh
}

// Create an axis aligned box made of 12 triangles.
func NewBoxMesh(name string, min, max types.Vec3) *Mesh {
	p := func(x, y, z int) types.Vec3 {
		pick := func(axis, bit int) float32 {
			if bit == 0 {
				return min[axis]
			}
			return max[axis]
		}
		return types.XYZ(pick(0, x), pick(1, y), pick(2, z))
	}

	// Each face is listed counter-clockwise when viewed from outside.
	faces := [6][4]types.Vec3{
		{p(0, 0, 0), p(0, 0, 1), p(0, 1, 1), p(0, 1, 0)}, // -x
		{p(1, 0, 0), p(1, 1, 0), p(1, 1, 1), p(1, 0, 1)}, // +x
		{p(0, 0, 0), p(1, 0, 0), p(1, 0, 1), p(0, 0, 1)}, // -y
		{p(0, 1, 0), p(0, 1, 1), p(1, 1, 1), p(1, 1, 0)}, // +y
		{p(0, 0, 0), p(0, 1, 0), p(1, 1, 0), p(1, 0, 0)}, // -z
		{p(0, 0, 1), p(1, 0, 1), p(1, 1, 1), p(0, 1, 1)}, // +z
	}

	mesh := NewMesh(name)
	for _, face := range faces {
		mesh.Add(NewStaticPrimitive(face[0], face[1], face[2]))
		mesh.Add(NewStaticPrimitive(face[0], face[2], face[3]))
	}
	return mesh
}

// Create a UV sphere with the given number of latitude/longitude segments.
func NewSphereMesh(name string, center types.Vec3, radius float32, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}

	point := func(lat, lon int) types.Vec3 {
		theta := math32.Pi * float32(lat) / float32(segments)
		phi := 2 * math32.Pi * float32(lon) / float32(segments)
		sinTheta := math32.Sin(theta)
		return center.Add(types.XYZ(
			sinTheta*math32.Cos(phi),
			math32.Cos(theta),
			sinTheta*math32.Sin(phi),
		).Mul(radius))
	}

	mesh := NewMesh(name)
	for lat := 0; lat < segments; lat++ {
		for lon := 0; lon < segments; lon++ {
			p00, p01 := point(lat, lon), point(lat, lon+1)
			p10, p11 := point(lat+1, lon), point(lat+1, lon+1)

			// The pole rows collapse into single triangles.
			if lat != 0 {
				mesh.Add(NewStaticPrimitive(p00, p01, p11))
			}
			if lat != segments-1 {
				mesh.Add(NewStaticPrimitive(p00, p11, p10))
			}
		}
	}
	return mesh
}

// Animate the mesh by setting the time key 1 vertices to the time key 0
// vertices rotated around the mesh center and then translated.
func (m *Mesh) Animate(translate types.Vec3, rotation types.Quat) {
	pivot := types.EmptyBBox()
	for _, prim := range m.Primitives {
		pivot = pivot.Union(prim.KeyBBox(0))
	}
	center := pivot.Center()

	for _, prim := range m.Primitives {
		for v := 0; v < 3; v++ {
			prim.Vertices[1][v] = rotation.RotateAround(prim.Vertices[0][v], center).Add(translate)
		}
		prim.Update()
	}
	m.MarkBBoxDirty()
}

// Generate a test scene: a tessellated ground quad and a grid of boxes
// alternating with spheres. Every other object moves by motion units along
// +x between the two time keys and spins around the y axis.
func NewGridScene(grid int, motion float32) *Scene {
	sc := NewScene()

	const spacing = 3
	extent := float32(grid) * spacing
	sc.Meshes = append(sc.Meshes, NewQuadMesh("ground", types.XYZ(0, 0, 0), extent+spacing, 4*grid))

	for row := 0; row < grid; row++ {
		for col := 0; col < grid; col++ {
			x := (float32(col) - float32(grid-1)*0.5) * spacing
			z := (float32(row) - float32(grid-1)*0.5) * spacing
			index := row*grid + col

			var mesh *Mesh
			if index%2 == 0 {
				mesh = NewBoxMesh(fmt.Sprintf("box_%d_%d", row, col), types.XYZ(x-0.75, 0, z-0.75), types.XYZ(x+0.75, 1.5, z+0.75))
			} else {
				mesh = NewSphereMesh(fmt.Sprintf("sphere_%d_%d", row, col), types.XYZ(x, 1, z), 0.9, 12)
			}

			if index%2 == row%2 && motion != 0 {
				mesh.Animate(types.XYZ(motion, 0, 0), types.QuatFromAxisAngle(types.XYZ(0, 1, 0), math32.Pi/4))
			}
			sc.Meshes = append(sc.Meshes, mesh)
		}
	}

	sc.Camera = &Camera{
		FOV:  45,
		Eye:  types.XYZ(0, extent*0.6+2, extent*0.9+4),
		Look: types.XYZ(0, 0, 0),
		Up:   types.XYZ(0, 1, 0),
	}
	return sc
}
