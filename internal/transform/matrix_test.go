package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMultComposesBThenA pins down the composition convention the rest of
// the module relies on: A.Mult(B) means "B applied first, A applied
// after", i.e. it is equivalent to the PDF spec's Trm = Tsm x Tm x CTM
// when Trm := CTM.Mult(Tm).Mult(Tsm) is read right to left.
func TestMultComposesBThenA(t *testing.T) {
	translate := TranslationMatrix(10, 0)
	scale := NewMatrix(2, 0, 0, 2, 0, 0)

	// scale-then-translate: a point at (1,0) scaled to (2,0) then
	// translated should land at (12, 0).
	composed := translate.Mult(scale)
	x, y := composed.Transform(1, 0)
	assert.InDelta(t, 12.0, x, 1e-9) // (1*2)+10
	assert.InDelta(t, 0.0, y, 1e-9)

	// translate-then-scale: a point at (1,0) translated to (11,0) then
	// scaled should land at (22, 0).
	composed2 := scale.Mult(translate)
	x2, y2 := composed2.Transform(1, 0)
	assert.InDelta(t, 22.0, x2, 1e-9)
	assert.InDelta(t, 0.0, y2, 1e-9)
}

func TestIdentityTransform(t *testing.T) {
	m := IdentityMatrix()
	x, y := m.Transform(3.5, -2.0)
	assert.Equal(t, 3.5, x)
	assert.Equal(t, -2.0, y)
}

func TestInverse(t *testing.T) {
	m := NewMatrix(2, 0, 0, 4, 5, 6)
	inv, ok := m.Inverse()
	assert.True(t, ok)
	x, y := m.Transform(1, 1)
	xp, yp := inv.Transform(x, y)
	assert.InDelta(t, 1.0, xp, 1e-9)
	assert.InDelta(t, 1.0, yp, 1e-9)
}

func TestScalingFactors(t *testing.T) {
	m := NewMatrix(3, 0, 0, 5, 0, 0)
	assert.InDelta(t, 3.0, m.ScalingFactorX(), 1e-9)
	assert.InDelta(t, 5.0, m.ScalingFactorY(), 1e-9)
}

func TestTransformVectorIgnoresTranslation(t *testing.T) {
	m := NewMatrix(1, 0, 0, 1, 100, 200)
	vx, vy := m.TransformVector(12, 12)
	assert.InDelta(t, 12.0, vx, 1e-9)
	assert.InDelta(t, 12.0, vy, 1e-9)
}

func TestUnrealistic(t *testing.T) {
	assert.True(t, Matrix{}.Unrealistic())
	assert.False(t, IdentityMatrix().Unrealistic())
}

func TestAngle(t *testing.T) {
	m := IdentityMatrix().Rotate(90)
	assert.InDelta(t, 90.0, m.Angle(), 1e-6)
	_ = math.Pi
}
