package vmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector3_Project(t *testing.T) {
	v := V3(3, 4, 5)

	assert.Equal(t, V3(3, 0, 0), v.Project(V3(2, 0, 0)))
	assert.Equal(t, Vector3{}, v.Project(Vector3{}), "projection onto zero is zero")

	onPlane := v.ProjectToPlane(Up)
	assert.InDelta(t, 0, onPlane.Z, 1e-12)
	assert.InDelta(t, 3, onPlane.X, 1e-12)
}

func TestVector3_CrossIsRightHanded(t *testing.T) {
	assert.Equal(t, V3(0, 0, 1), V3(1, 0, 0).Cross(V3(0, 1, 0)))
	assert.Equal(t, V3(0, 0, -1), V3(0, 1, 0).Cross(V3(1, 0, 0)))
}

func TestNormalized_ZeroStaysZero(t *testing.T) {
	assert.Equal(t, Vector3{}, Vector3{}.Normalized())
	assert.Equal(t, Vector2{}, Vector2{}.Normalized())
	assert.InDelta(t, 1, V3(1, 2, 3).Normalized().Magnitude(), 1e-12)
}

func TestCorrectionAngle(t *testing.T) {
	tests := []struct {
		name    string
		current Vector2
		ideal   Vector2
		want    float64
	}{
		{"left turn", V2(1, 0), V2(0, 1), math.Pi / 2},
		{"right turn", V2(1, 0), V2(0, -1), -math.Pi / 2},
		{"aligned", V2(0, 5), V2(0, 1), 0},
		{"across the seam", V2(-1, 0.1), V2(-1, -0.1), 2 * math.Atan2(0.1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.current.CorrectionAngle(tt.ideal), 1e-9)
		})
	}
}

func TestAngle_IsUnsigned(t *testing.T) {
	assert.InDelta(t, math.Pi/2, Angle(V2(1, 0), V2(0, -1)), 1e-9)
}

func TestSignum(t *testing.T) {
	assert.Equal(t, 1.0, Signum(3))
	assert.Equal(t, -1.0, Signum(-0.5))
	assert.Equal(t, 0.0, Signum(0))
	assert.Equal(t, 1.0, NonZeroSignum(0))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, V3(1, 2, 3).IsFinite())
	assert.False(t, V3(math.NaN(), 0, 0).IsFinite())
	assert.False(t, V3(0, math.Inf(1), 0).IsFinite())
}
