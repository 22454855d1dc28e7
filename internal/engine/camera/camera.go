// Package camera provides the orbit camera used to frame and pick scenes.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/scenekit/internal/engine/mesh"
	"github.com/Faultbox/scenekit/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	// Projection
	FovY float32 // Vertical field of view, radians
	Near float32
	Far  float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:    10.0,
		Pitch:       0.5,
		FovY:        math32.Pi / 4,
		Near:        0.1,
		Far:         1000.0,
		MinDistance: 0.01,
		MaxDistance: 1e6,
		MinPitch:    -1.5,
		MaxPitch:    1.5,
	}
}

// Orientation returns the rotation taking the +Z axis to the direction from
// the center towards the camera: pitch about X, then yaw about Y.
func (c *OrbitCamera) Orientation() math.Quat {
	yaw := math.QuatFromAxisAngle(math.Vec3{Y: 1}, c.Yaw)
	pitch := math.QuatFromAxisAngle(math.Vec3{X: 1}, -c.Pitch)
	return yaw.Mul(pitch)
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	return c.Center.Add(c.Orientation().Rotate(math.Vec3{Z: c.Distance}))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// Projection returns the perspective projection for a viewport aspect
// ratio (width/height).
func (c *OrbitCamera) Projection(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// Orbit rotates the camera around its center, clamping pitch.
func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch = clamp(c.Pitch+deltaPitch, c.MinPitch, c.MaxPitch)
}

// Zoom scales the orbit distance by factor, clamped to the distance limits.
func (c *OrbitCamera) Zoom(factor float32) {
	c.Distance = clamp(c.Distance*factor, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers the camera on a box and backs off until its bounding
// sphere fills the vertical field of view. Near and far planes follow the
// new distance. An empty box leaves the camera unchanged.
func (c *OrbitCamera) FitToBounds(b mesh.Bounds) {
	if b.IsEmpty() {
		return
	}
	c.Center = b.Center()

	radius := b.Size().Length() / 2
	if radius < 1e-3 {
		radius = 1e-3
	}
	c.Distance = clamp(radius/math32.Sin(c.FovY/2), c.MinDistance, c.MaxDistance)
	c.Near = math32.Max(c.Distance-radius*2, c.Distance*0.001)
	c.Far = c.Distance + radius*2
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
