package physics

import (
	"math"
	"testing"

	"github.com/hupe1980/mixgo/internal/random"
	"github.com/stretchr/testify/assert"
)

func TestInvariantMass(t *testing.T) {
	t.Run("AtRest", func(t *testing.T) {
		m := InvariantMass(Vec3{}, MassHelium3, Vec3{}, MassProton)
		assert.InDelta(t, MassHelium3+MassProton, m, 1e-12)
	})

	t.Run("BackToBack", func(t *testing.T) {
		p1 := Vec3{P: 1, Eta: 0, Phi: 0}
		p2 := Vec3{P: 1, Eta: 0, Phi: math.Pi}
		e := 2 * math.Sqrt(1+MassPion*MassPion)
		assert.InDelta(t, e, InvariantMass(p1, MassPion, p2, MassPion), 1e-9)
	})

	t.Run("Symmetric", func(t *testing.T) {
		rng := random.New(7)
		for range 1000 {
			p1 := Vec3{P: 10 * rng.Float64(), Eta: 2*rng.Float64() - 1, Phi: WrapAngle(7 * rng.Float64())}
			p2 := Vec3{P: 10 * rng.Float64(), Eta: 2*rng.Float64() - 1, Phi: WrapAngle(7 * rng.Float64())}

			m12 := InvariantMass(p1, MassHelium3, p2, MassProton)
			m21 := InvariantMass(p2, MassProton, p1, MassHelium3)
			assert.InDelta(t, m12, m21, 1e-9)
			assert.GreaterOrEqual(t, m12, MassHelium3+MassProton-1e-9)
		}
	})
}

func TestMomentumMother(t *testing.T) {
	p1 := Vec3{P: 3, Eta: 0, Phi: 0}
	p2 := Vec3{P: 4, Eta: 0, Phi: math.Pi / 2}
	assert.InDelta(t, 5.0, MomentumMother(p1, p2), 1e-12)
	assert.InDelta(t, 0.0, MomentumMother(p1, Vec3{P: 3, Phi: math.Pi}), 1e-12)

	p3 := Vec3{P: 1, Eta: 0.5, Phi: 0.3}
	assert.InDelta(t, 2*math.Cosh(0.5), MomentumMother(p3, p3), 1e-12)
}

func TestRandomAngleRotation(t *testing.T) {
	rng := random.New(1995)
	for _, phi := range []float64{-math.Pi, -3, -1, 0, 1, 3, math.Pi, 2 * math.Pi, 6.2, -7, 100} {
		for range 200 {
			r := RandomAngleRotation(phi, rng)
			assert.Greater(t, r, -math.Pi)
			assert.LessOrEqual(t, r, math.Pi)
		}
	}
}

type fixedUniform float64

func (f fixedUniform) Float64() float64 { return float64(f) }

func TestRandomAngleRotationOffset(t *testing.T) {
	assert.InDelta(t, 1.0, RandomAngleRotation(1.0, fixedUniform(0)), 1e-12)
	assert.InDelta(t, 1.0-math.Pi, RandomAngleRotation(1.0, fixedUniform(0.5)), 1e-12)
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, math.Pi, WrapAngle(math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, WrapAngle(-math.Pi), 1e-12)
	assert.InDelta(t, 0.0, WrapAngle(2*math.Pi), 1e-12)
	assert.InDelta(t, -math.Pi/2, WrapAngle(3*math.Pi/2), 1e-12)
}
