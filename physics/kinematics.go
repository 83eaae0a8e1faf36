package physics

import (
	"math"

	"go-hep.org/x/hep/fmom"
)

// Vec3 is a momentum in collider coordinates.
type Vec3 struct {
	// P is the transverse momentum magnitude (always non-negative).
	P   float64
	Eta float64
	Phi float64
}

// Cartesian returns the momentum components.
func (v Vec3) Cartesian() (px, py, pz float64) {
	return v.P * math.Cos(v.Phi), v.P * math.Sin(v.Phi), v.P * math.Sinh(v.Eta)
}

// FourMomentum returns the on-shell four-vector of a particle of mass m.
func (v Vec3) FourMomentum(m float64) fmom.PxPyPzE {
	px, py, pz := v.Cartesian()
	return fmom.NewPxPyPzE(px, py, pz, math.Sqrt(px*px+py*py+pz*pz+m*m))
}

// InvariantMass returns the invariant mass of a two-particle system.
//
// The result is symmetric in its arguments. Negative values caused by
// rounding of nearly massless, collinear inputs are clamped to zero.
func InvariantMass(p1 Vec3, m1 float64, p2 Vec3, m2 float64) float64 {
	a := p1.FourMomentum(m1)
	b := p2.FourMomentum(m2)
	m := fmom.Add(&a, &b).M()
	if m < 0 || math.IsNaN(m) {
		return 0
	}
	return m
}

// MomentumMother returns the magnitude of the summed momentum p1 + p2.
func MomentumMother(p1, p2 Vec3) float64 {
	px1, py1, pz1 := p1.Cartesian()
	px2, py2, pz2 := p2.Cartesian()
	px, py, pz := px1+px2, py1+py2, pz1+pz2
	return math.Sqrt(px*px + py*py + pz*pz)
}

// Uniform is the random source used by RandomAngleRotation.
// *math/rand/v2.Rand satisfies it.
type Uniform interface {
	Float64() float64
}

// RandomAngleRotation shifts phi by an offset drawn uniformly from [0, 2π)
// and wraps the result into (−π, π].
func RandomAngleRotation(phi float64, rng Uniform) float64 {
	return WrapAngle(phi + 2*math.Pi*rng.Float64())
}

// WrapAngle maps phi into (−π, π].
func WrapAngle(phi float64) float64 {
	phi = math.Mod(phi+math.Pi, 2*math.Pi)
	if phi <= 0 {
		phi += 2 * math.Pi
	}
	if phi -= math.Pi; phi <= -math.Pi {
		return math.Pi
	}
	return phi
}
