package model

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestMatrix(t *testing.T) {
	tests := []struct {
		deg  float32
		in   mgl32.Vec3
		want mgl32.Vec3
	}{
		{0, mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 2, 3}},
		{90, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{180, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, -1, 0}},
		{-90, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	}

	for _, tt := range tests {
		got := New(tt.deg).Matrix().Mul4x1(tt.in.Vec4(1)).Vec3()
		if !near(got[:], tt.want[:], 1e-5) {
			t.Errorf("rotate %v by %v deg: got %v, want %v", tt.in, tt.deg, got, tt.want)
		}
	}
}

func TestMatrixKeepsXAxis(t *testing.T) {
	m := New(37).Matrix()
	x := m.Mul4x1(mgl32.Vec4{1, 0, 0, 0})
	if want := (mgl32.Vec4{1, 0, 0, 0}); !near(x[:], want[:], 1e-6) {
		t.Errorf("x axis moved to %v", x)
	}
}

// near compares component-wise with an absolute tolerance.
func near(got, want []float32, tol float64) bool {
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > tol {
			return false
		}
	}
	return true
}
