package picking

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/scenekit/internal/engine/mesh"
	"github.com/Faultbox/scenekit/internal/engine/scene"
	"github.com/Faultbox/scenekit/pkg/math"
)

// Hit describes the nearest intersection of a ray with a model.
type Hit struct {
	Position math.Vec3 // World-space hit point
	Distance float32   // Distance along the ray
	Entry    int       // Index into the model's entries
	Triangle int       // Triangle index within the entry's geometry
}

// NoHit is returned when a ray misses every triangle.
var NoHit = Hit{
	Position: math.Vec3{X: math32.NaN(), Y: math32.NaN(), Z: math32.NaN()},
	Distance: math32.Inf(1),
	Entry:    -1,
	Triangle: -1,
}

// Valid reports whether h is a real intersection.
func (h Hit) Valid() bool {
	return h.Entry >= 0
}

// boundsPad is the relative amount entry boxes are widened by before the
// slab test, so rounding never culls a triangle IntersectTriangle accepts.
// It scales with the largest coordinate involved, since float32 error
// grows with magnitude.
const boundsPad float32 = 1e-4

// padBounds widens box by boundsPad relative to the magnitude of the box,
// its size and the ray origin.
func (r Ray) padBounds(box mesh.Bounds) mesh.Bounds {
	scale := float32(1)
	for _, v := range [][3]float32{box.Min.Array(), box.Max.Array(), box.Size().Array(), r.Origin.Array()} {
		for _, c := range v {
			scale = math32.Max(scale, math32.Abs(c))
		}
	}
	d := scale * boundsPad
	pad := math.Vec3{X: d, Y: d, Z: d}
	return mesh.Bounds{Min: box.Min.Sub(pad), Max: box.Max.Add(pad)}
}

// Cast returns the closest triangle hit in m. Triangles are tested with the
// world-space vertices of each entry. On equal distances the earliest entry
// in traversal order wins.
func (r Ray) Cast(m *scene.Model) (Hit, bool) {
	best := NoHit
	for ei := 0; ei < m.Len(); ei++ {
		e := m.Entry(ei)

		if _, ok := r.IntersectBounds(r.padBounds(e.Bounds())); !ok {
			continue
		}

		for ti := 0; ti < e.Geometry().TriangleCount(); ti++ {
			v0, v1, v2 := e.WorldTriangle(ti)
			t, ok := r.IntersectTriangle(v0, v1, v2)
			if ok && t < best.Distance {
				best = Hit{Distance: t, Entry: ei, Triangle: ti}
			}
		}
	}
	if !best.Valid() {
		return NoHit, false
	}
	best.Position = r.At(best.Distance)
	return best, true
}

// Pick casts a ray from origin through the given screen pixel, built with
// ViewRay, and returns the closest hit in m.
func Pick(screenX, screenY, viewportW, viewportH float32, invProj, invView math.Mat4, origin math.Vec3, m *scene.Model) (Hit, bool) {
	return ViewRay(screenX, screenY, viewportW, viewportH, invProj, invView, origin).Cast(m)
}

// Mode selects how screen positions are turned into rays.
type Mode int

const (
	// ModeView casts from the camera position along the view direction of
	// the pixel (ViewRay).
	ModeView Mode = iota
	// ModeUnproject casts between the unprojected near and far points of
	// the pixel (ScreenToRay).
	ModeUnproject
)

func (m Mode) String() string {
	switch m {
	case ModeView:
		return "view"
	case ModeUnproject:
		return "unproject"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "view" or "unproject".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "view", "":
		return ModeView, nil
	case "unproject":
		return ModeUnproject, nil
	default:
		return 0, fmt.Errorf("unknown picking mode %q", s)
	}
}

// Camera supplies the matrices a pick needs.
type Camera interface {
	Position() math.Vec3
	ViewMatrix() math.Mat4
	Projection(aspect float32) math.Mat4
}

// PickFrom builds the ray for a pixel from cam using mode and casts it
// against m.
func PickFrom(cam Camera, mode Mode, screenX, screenY, viewportW, viewportH float32, m *scene.Model) (Hit, bool) {
	proj := cam.Projection(viewportW / viewportH)
	view := cam.ViewMatrix()

	var ray Ray
	switch mode {
	case ModeUnproject:
		ray = ScreenToRay(screenX, screenY, viewportW, viewportH, proj.Mul(view).Inverse())
	default:
		ray = ViewRay(screenX, screenY, viewportW, viewportH, proj.Inverse(), view.Inverse(), cam.Position())
	}
	return ray.Cast(m)
}
