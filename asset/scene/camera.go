package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/tangent-animation/embree/types"
)

// Stores the ray directions at the four corners of the camera frustum
// (top-left, top-right, bottom-left, bottom-right). Per pixel rays are
// generated by interpolating the corner rays.
type Frustum [4]types.Vec3

func (fr Frustum) String() string {
	return fmt.Sprintf(
		"Frustum Rays:\nTL : (%3.3f, %3.3f, %3.3f)\nTR : (%3.3f, %3.3f, %3.3f)\nBL : (%3.3f, %3.3f, %3.3f)\nBR : (%3.3f, %3.3f, %3.3f)",
		fr[0][0], fr[0][1], fr[0][2],
		fr[1][0], fr[1][1], fr[1][2],
		fr[2][0], fr[2][1], fr[2][2],
		fr[3][0], fr[3][1], fr[3][2],
	)
}

// A pinhole camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Vertical field of view in degrees.
	FOV float32

	// Frame width / height.
	Aspect float32

	Frustum Frustum
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		Aspect:   1,
	}
}

// Setup camera projection for a frame with the given aspect ratio.
func (c *Camera) SetupProjection(aspect float32) {
	c.Aspect = aspect
	c.Update()
}

// Recalculate the frustum corner rays.
func (c *Camera) Update() {
	forward := c.LookAt.Sub(c.Position).Normalize()
	right := forward.Cross(c.Up).Normalize()
	if right == (types.Vec3{}) {
		// Looking along the up vector; pick any perpendicular axis.
		right = forward.Cross(types.XYZ(1, 0, 0)).Normalize()
		if right == (types.Vec3{}) {
			right = forward.Cross(types.XYZ(0, 0, 1)).Normalize()
		}
	}
	up := right.Cross(forward)

	halfH := math32.Tan(c.FOV * math32.Pi / 360)
	halfW := halfH * c.Aspect

	corner := func(x, y float32) types.Vec3 {
		return forward.Add(right.Mul(x * halfW)).Add(up.Mul(y * halfH))
	}
	c.Frustum = Frustum{
		corner(-1, 1),
		corner(1, 1),
		corner(-1, -1),
		corner(1, -1),
	}
}

// Generate the normalized primary ray direction through the center of pixel
// (x, y) of a frameW x frameH frame. Row 0 is the top of the frame.
func (c *Camera) RayDir(x, y, frameW, frameH int) types.Vec3 {
	u := (float32(x) + 0.5) / float32(frameW)
	v := (float32(y) + 0.5) / float32(frameH)

	top := types.LerpVec3(c.Frustum[0], c.Frustum[1], u)
	bottom := types.LerpVec3(c.Frustum[2], c.Frustum[3], u)
	return types.LerpVec3(top, bottom, v).Normalize()
}
