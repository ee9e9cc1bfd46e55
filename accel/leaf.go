package accel

import "github.com/tangent-animation/embree/types"

var (
	// A leaf intersector using the Möller-Trumbore ray/triangle test on
	// vertices interpolated to the ray time.
	Moeller = moellerIntersector{}
)

// The LeafIntersector interface is implemented by primitive intersectors
// that can be plugged into an Intersector.
type LeafIntersector interface {
	// Find the closest hit among prims that lies in (ray.TNear, ray.TFar).
	// On a hit the ray's TFar and Hit fields are updated and true is
	// returned.
	Intersect(prims []Triangle, ray *Ray) bool

	// Returns true as soon as any primitive is hit in (ray.TNear,
	// ray.TFar). The ray is not modified.
	Occluded(prims []Triangle, ray *Ray) bool
}

type moellerIntersector struct{}

func (moellerIntersector) Intersect(prims []Triangle, ray *Ray) bool {
	updated := false
	for index := range prims {
		tri := &prims[index]
		v0, v1, v2 := tri.Vertices(ray.Time)
		t, u, v, ok := intersectTriangle(ray.Org, ray.Dir, v0, v1, v2)
		if !ok || !(t > ray.TNear && t < ray.TFar) {
			continue
		}

		ray.TFar = t
		ray.Hit = Hit{
			GeomID: int32(tri.GeomID),
			PrimID: int32(tri.PrimID),
			U:      u,
			V:      v,
			Ng:     v1.Sub(v0).Cross(v2.Sub(v0)),
		}
		updated = true
	}
	return updated
}

func (moellerIntersector) Occluded(prims []Triangle, ray *Ray) bool {
	for index := range prims {
		v0, v1, v2 := prims[index].Vertices(ray.Time)
		t, _, _, ok := intersectTriangle(ray.Org, ray.Dir, v0, v1, v2)
		if ok && t > ray.TNear && t < ray.TFar {
			return true
		}
	}
	return false
}

// Möller-Trumbore ray/triangle test. Returns the hit distance along dir and
// the barycentric coordinates of the hit. Rays parallel to the triangle
// plane and degenerate triangles never hit. All range checks are written so
// that NaN values fail them.
func intersectTriangle(org, dir, v0, v1, v2 types.Vec3) (t, u, v float32, ok bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	p := dir.Cross(edge2)
	det := edge1.Dot(p)
	if det == 0 {
		return 0, 0, 0, false
	}

	invDet := 1.0 / det
	s := org.Sub(v0)
	u = s.Dot(p) * invDet
	if !(u >= 0 && u <= 1) {
		return 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v = dir.Dot(q) * invDet
	if !(v >= 0 && u+v <= 1) {
		return 0, 0, 0, false
	}

	t = edge2.Dot(q) * invDet
	return t, u, v, true
}
