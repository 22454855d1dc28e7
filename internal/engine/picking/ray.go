// Package picking turns screen positions into world-space rays and finds
// the nearest triangle they hit in an imported scene.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/scenekit/internal/engine/mesh"
	"github.com/Faultbox/scenekit/pkg/math"
)

// Epsilon rejects near-parallel rays and hits at or behind the origin.
const Epsilon float32 = 1e-8

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// screenToNDC converts pixel coordinates to normalized device coordinates
// (-1 to 1) with Y pointing up.
func screenToNDC(screenX, screenY, viewportW, viewportH float32) (x, y float32) {
	return 2.0*screenX/viewportW - 1.0, 1.0 - 2.0*screenY/viewportH
}

// ViewRay builds a ray from the camera position through a screen pixel.
// The clip-space point is taken back to view space with invProj, then
// pinned to z=-1 as a direction (w=0) before invView rotates it into
// world space. The unprojected depth is ignored.
func ViewRay(screenX, screenY, viewportW, viewportH float32, invProj, invView math.Mat4, origin math.Vec3) Ray {
	ndcX, ndcY := screenToNDC(screenX, screenY, viewportW, viewportH)

	eye := invProj.MulVec4(math.Vec4{ndcX, ndcY, -1.0, 1.0})
	eye[2], eye[3] = -1.0, 0.0

	dir := invView.MulVec4(eye).XYZ().Normalize()
	return Ray{Origin: origin, Direction: dir}
}

// ScreenToRay converts screen coordinates to a world-space ray by
// unprojecting the near and far plane points.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX, ndcY := screenToNDC(screenX, screenY, viewportW, viewportH)

	nearWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, -1.0, 1.0})
	farWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1.0, 1.0})

	return Ray{Origin: nearWorld, Direction: farWorld.Sub(nearWorld).Normalize()}
}

func unproject(inv math.Mat4, p math.Vec4) math.Vec3 {
	w := inv.MulVec4(p)
	// Perspective divide
	if w[3] != 0 {
		return w.XYZ().Scale(1 / w[3])
	}
	return w.XYZ()
}

// IntersectTriangle tests the ray against triangle (v0, v1, v2) using the
// Möller–Trumbore algorithm. It returns the distance along the ray of a hit
// strictly in front of the origin.
func (r Ray) IntersectTriangle(v0, v1, v2 math.Vec3) (t float32, ok bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	h := r.Direction.Cross(e2)
	a := e1.Dot(h)
	if math32.Abs(a) < Epsilon {
		return 0, false // Ray parallel to triangle
	}

	f := 1 / a
	s := r.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = f * e2.Dot(q)
	if t <= Epsilon {
		return 0, false // Behind or at the origin
	}
	return t, true
}

// IntersectBounds tests ray intersection with an axis-aligned box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectBounds(box mesh.Bounds) (t float32, hit bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	origin, dir := r.Origin.Array(), r.Direction.Array()
	lo, hi := box.Min.Array(), box.Max.Array()
	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	// Return entry point, or exit point if starting inside
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
