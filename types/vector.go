package types

import (
	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

// Vectors with a squared length below this value are treated as zero-length.
const floatCmpEpsilon float32 = 1e-12

type Vec2 f32.Vec2
type Vec3 f32.Vec3
type Vec4 f32.Vec4

// Define a 2 component vector.
func XY(x, y float32) Vec2 {
	return Vec2{x, y}
}

// Define a 3 component vector.
func XYZ(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// Define a 4 component vector.
func XYZW(x, y, z, w float32) Vec4 {
	return Vec4{x, y, z, w}
}

// Expand a 3 component vector to a Vec4.
func (v Vec3) Vec4(w float32) Vec4 {
	return Vec4{v[0], v[1], v[2], w}
}

// Reduce a 4 component vector to a Vec3.
func (v Vec4) Vec3() Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// Add a vector.
func (v Vec3) Add(v2 Vec3) Vec3 {
	return Vec3{v[0] + v2[0], v[1] + v2[1], v[2] + v2[2]}
}

// Subtract a vector.
func (v Vec3) Sub(v2 Vec3) Vec3 {
	return Vec3{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2]}
}

// Multiply a 3 component vector with a scalar.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Multiply two vectors component-wise.
func (v Vec3) MulVec(v2 Vec3) Vec3 {
	return Vec3{v[0] * v2[0], v[1] * v2[1], v[2] * v2[2]}
}

// Get 3 component vector length.
func (v Vec3) Len() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalize 3 component vector. Zero-length vectors are returned unchanged.
func (v Vec3) Normalize() Vec3 {
	sqLen := v.Dot(v)
	if sqLen < floatCmpEpsilon {
		return Vec3{}
	}
	return v.Mul(1.0 / math32.Sqrt(sqLen))
}

// Calculate dot product of 2 vectors
func (v Vec3) Dot(v2 Vec3) float32 {
	return v[0]*v2[0] + v[1]*v2[1] + v[2]*v2[2]
}

// Calculate cross product of 2 vectors.
func (v Vec3) Cross(v2 Vec3) Vec3 {
	return Vec3{v[1]*v2[2] - v[2]*v2[1], v[2]*v2[0] - v[0]*v2[2], v[0]*v2[1] - v[1]*v2[0]}
}

// Get the reciprocal of each vector component. See RcpSafe.
func (v Vec3) Rcp() Vec3 {
	return Vec3{RcpSafe(v[0]), RcpSafe(v[1]), RcpSafe(v[2])}
}

// Calc min component from two vectors
func MinVec3(v1, v2 Vec3) Vec3 {
	out := v1
	if v2[0] < out[0] {
		out[0] = v2[0]
	}
	if v2[1] < out[1] {
		out[1] = v2[1]
	}
	if v2[2] < out[2] {
		out[2] = v2[2]
	}
	return out
}

// Calc maxcomponent from two vectors
func MaxVec3(v1, v2 Vec3) Vec3 {
	out := v1
	if v2[0] > out[0] {
		out[0] = v2[0]
	}
	if v2[1] > out[1] {
		out[1] = v2[1]
	}
	if v2[2] > out[2] {
		out[2] = v2[2]
	}
	return out
}

// Linearly interpolate between v1 (t=0) and v2 (t=1).
func LerpVec3(v1, v2 Vec3, t float32) Vec3 {
	return Vec3{
		Lerp(v1[0], v2[0], t),
		Lerp(v1[1], v2[1], t),
		Lerp(v1[2], v2[2], t),
	}
}

// Check if two vectors are equal within the given tolerance.
func ApproxEqual(v1, v2 Vec3, eps float32) bool {
	return math32.Abs(v1[0]-v2[0]) <= eps &&
		math32.Abs(v1[1]-v2[1]) <= eps &&
		math32.Abs(v1[2]-v2[2]) <= eps
}
