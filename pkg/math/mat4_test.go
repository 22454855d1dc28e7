package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
	assertMatApprox(t, "Identity", m, mgl32.Ident4(), 0)
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
	if got := m.Translation(); got != (Vec3{5, 10, 15}) {
		t.Errorf("Translation() = %v, want (5, 10, 15)", got)
	}
}

func TestScale(t *testing.T) {
	m := Scale(2, 3, 4)

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformPointScale(t *testing.T) {
	m := Scale(2, 2, 2)
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{2, 4, 6}
	if result != expected {
		t.Errorf("TransformPoint with scale: got %v, want %v", result, expected)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformDirection(Vec3{0, 0, 1})
	if got != (Vec3{0, 0, 1}) {
		t.Errorf("TransformDirection: got %v, want (0, 0, 1)", got)
	}
}

func TestQuatToMat4Y90(t *testing.T) {
	m := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/2)).ToMat4() // 90 degrees
	result := m.TransformPoint(Vec3{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if !result.ApproxEqual(Vec3{0, 0, -1}, 0.001) {
		t.Errorf("Y rotation 90: got %v, want (0, 0, -1)", result)
	}
	assertMatApprox(t, "Y rotation", m, mgl32.HomogRotate3DY(float32(math.Pi/2)), 1e-6)
}

func TestPerspective(t *testing.T) {
	fov := float32(math.Pi / 4) // 45 degrees
	aspect := float32(1.0)
	near := float32(0.1)
	far := float32(100.0)

	m := Perspective(fov, aspect, near, far)

	// Element [15] should be 0 for perspective projection
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	// Element [11] should be -1 for perspective projection
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}

	want := mgl32.Perspective(fov, aspect, near, far)
	assertMatApprox(t, "Perspective", m, want, 1e-5)
}

func TestLookAtMatchesMathgl(t *testing.T) {
	eye := Vec3{3, 4, 5}
	center := Vec3{0, 1, 0}
	up := Vec3{0, 1, 0}

	got := LookAt(eye, center, up)
	want := mgl32.LookAtV(mgl32.Vec3{3, 4, 5}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0})
	assertMatApprox(t, "LookAt", got, want, 1e-5)

	// The eye maps to the view-space origin.
	if p := got.TransformPoint(eye); !p.ApproxEqual(Vec3{}, 1e-4) {
		t.Errorf("LookAt should map eye to origin, got %v", p)
	}
}

func TestMulMatchesMathgl(t *testing.T) {
	a := Translate(1, 2, 3).Mul(QuatFromAxisAngle(Vec3{0, 1, 0}, 0.7).ToMat4())
	b := Scale(2, 3, 4).Mul(QuatFromAxisAngle(Vec3{0, 0, 1}, -1.1).ToMat4())

	ma := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(0.7))
	mb := mgl32.Scale3D(2, 3, 4).Mul4(mgl32.HomogRotate3DZ(-1.1))

	assertMatApprox(t, "Mul", a.Mul(b), ma.Mul4(mb), 1e-5)
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"translate", Translate(4, -2, 9)},
		{"scale", Scale(2, 0.5, 8)},
		{"rotate", QuatFromAxisAngle(Vec3{0, 1, 0}, 1.2).Mul(QuatFromAxisAngle(Vec3{0, 0, 1}, 0.3)).ToMat4()},
		{"trs", TRS(Vec3{1, 2, 3}, QuatFromAxisAngle(Vec3{0, 1, 0}, 0.5), Vec3{2, 2, 2})},
		{"perspective", Perspective(1.0, 1.5, 0.1, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.InverseOK()
			if !ok {
				t.Fatal("expected invertible matrix")
			}
			assertMatApprox(t, "M * M^-1", tt.m.Mul(inv), mgl32.Ident4(), 1e-4)
			assertMatApprox(t, "Inverse", inv, mgl32.Mat4(tt.m).Inv(), 1e-3)
		})
	}
}

func TestInverseSingular(t *testing.T) {
	inv, ok := Scale(1, 0, 1).InverseOK()
	if ok {
		t.Error("expected singular matrix to report !ok")
	}
	// Singular matrices fall back to identity.
	assertMatApprox(t, "singular inverse", inv, mgl32.Ident4(), 0)
}

func TestMat4FromFloat64(t *testing.T) {
	src := [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 7, 8, 9, 1}
	m := Mat4FromFloat64(src)
	if m.Translation() != (Vec3{7, 8, 9}) {
		t.Errorf("Mat4FromFloat64 translation: got %v, want (7, 8, 9)", m.Translation())
	}
}

func TestTRSOrder(t *testing.T) {
	// Scale first, then rotate 90 degrees about Y, then translate.
	m := TRS(Vec3{10, 0, 0}, QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/2)), Vec3{2, 2, 2})
	got := m.TransformPoint(Vec3{1, 0, 0})
	want := Vec3{10, 0, -2}
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("TRS: got %v, want %v", got, want)
	}
}

func TestMulVec4(t *testing.T) {
	m := Translate(1, 2, 3)
	got := m.MulVec4(Vec4{0, 0, 0, 1})
	if got != (Vec4{1, 2, 3, 1}) {
		t.Errorf("MulVec4 point: got %v", got)
	}
	got = m.MulVec4(Vec4{0, 0, -1, 0})
	if got != (Vec4{0, 0, -1, 0}) {
		t.Errorf("MulVec4 direction: got %v", got)
	}
}

func assertMatApprox(t *testing.T, label string, got Mat4, want mgl32.Mat4, eps float32) {
	t.Helper()
	for i := 0; i < 16; i++ {
		if abs(got[i]-want[i]) > eps {
			t.Errorf("%s: element %d got %f, want %f", label, i, got[i], want[i])
		}
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
