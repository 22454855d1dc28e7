package picking

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/scenekit/pkg/math"
)

type fixedCamera struct {
	eye math.Vec3
}

func (c fixedCamera) Position() math.Vec3 { return c.eye }

func (c fixedCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.eye, math.Vec3{}, math.Vec3{Y: 1})
}

func (c fixedCamera) Projection(aspect float32) math.Mat4 {
	return math.Perspective(math32.Pi/4, aspect, 0.1, 100)
}

func TestPickCenterPixel(t *testing.T) {
	m := modelAt(t, math.Identity())
	cam := fixedCamera{eye: math.Vec3{Z: 5}}
	view := cam.ViewMatrix()
	proj := cam.Projection(1)

	hit, ok := Pick(50, 50, 100, 100, proj.Inverse(), view.Inverse(), cam.Position(), m)
	require.True(t, ok)
	assert.InDelta(t, 5, hit.Distance, eps)
	assertVec(t, math.Vec3{}, hit.Position)

	// Top-left corner looks past the triangle.
	hit, ok = Pick(0, 0, 100, 100, proj.Inverse(), view.Inverse(), cam.Position(), m)
	assert.False(t, ok)
	assert.Equal(t, NoHit.Entry, hit.Entry)
}

func TestPickFromModes(t *testing.T) {
	m := modelAt(t, math.Identity())
	cam := fixedCamera{eye: math.Vec3{Z: 5}}

	for _, mode := range []Mode{ModeView, ModeUnproject} {
		t.Run(mode.String(), func(t *testing.T) {
			hit, ok := PickFrom(cam, mode, 400, 300, 800, 600, m)
			require.True(t, ok)
			assertVec(t, math.Vec3{}, hit.Position)
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Mode
	}{
		{"view", ModeView},
		{"", ModeView},
		{"unproject", ModeUnproject},
	} {
		got, err := ParseMode(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseMode("ortho")
	assert.Error(t, err)
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
