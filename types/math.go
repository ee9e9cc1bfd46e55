package types

import (
	"math"

	"github.com/chewxy/math32"
)

// Reciprocal that maps +0 and -0 to +Inf and -Inf respectively instead of
// relying on division semantics. The result is never NaN for a non-NaN input.
func RcpSafe(v float32) float32 {
	if v == 0 {
		if math32.Signbit(v) {
			return math32.Inf(-1)
		}
		return math32.Inf(1)
	}
	return 1.0 / v
}

// Linearly interpolate between a (t=0) and b (t=1). The endpoints are
// reproduced exactly.
func Lerp(a, b, t float32) float32 {
	return (1-t)*a + t*b
}

// Clamp v to the [min, max] range.
func Clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// An axis-aligned bounding box; [0] holds the min and [1] the max corner.
type BBox [2]Vec3

// Create an empty bbox that can be grown using Extend/Union.
func EmptyBBox() BBox {
	return BBox{
		Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Grow the bbox so that it includes point p.
func (b BBox) Extend(p Vec3) BBox {
	return BBox{MinVec3(b[0], p), MaxVec3(b[1], p)}
}

// Get the union of two bboxes.
func (b BBox) Union(b2 BBox) BBox {
	return BBox{MinVec3(b[0], b2[0]), MaxVec3(b[1], b2[1])}
}

// Returns true if min <= max along every axis.
func (b BBox) Valid() bool {
	return b[0][0] <= b[1][0] && b[0][1] <= b[1][1] && b[0][2] <= b[1][2]
}

// Get the bbox center.
func (b BBox) Center() Vec3 {
	return b[0].Add(b[1]).Mul(0.5)
}

// Get half the surface area of the bbox. Invalid boxes have zero area.
func (b BBox) HalfArea() float32 {
	if !b.Valid() {
		return 0
	}
	side := b[1].Sub(b[0])
	return side[0]*side[1] + side[1]*side[2] + side[0]*side[2]
}
