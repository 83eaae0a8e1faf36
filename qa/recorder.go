package qa

import "github.com/hupe1980/mixgo/model"

// Recorder receives QA observations. Implementations used by a parallel
// mixer must be safe for concurrent use.
type Recorder interface {
	// InvMassBefore is called for every accepted input row.
	InvMassBefore(m float64, sign model.Sign)
	// InvMassAfter is called for every emitted mixed pair.
	InvMassAfter(m float64, sign model.Sign)

	// PrimaryAll is called for every accepted input row.
	PrimaryAll(pt float64)
	// PrimaryPerCollision is called once per new collision.
	PrimaryPerCollision(pt float64)
	// PrimaryUnique is called once per primary visited by the mixer.
	PrimaryUnique(pt float64)
	// PrimaryMixed is called once per emitted mixed pair.
	PrimaryMixed(pt float64)

	// PairKinematics is called once per emitted mixed pair with the pair
	// momentum signed by the He3 charge and the invariant mass.
	PairKinematics(signedP, m float64)
}

// Nop is a Recorder that records nothing.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) InvMassBefore(float64, model.Sign) {}
func (Nop) InvMassAfter(float64, model.Sign)  {}
func (Nop) PrimaryAll(float64)                {}
func (Nop) PrimaryPerCollision(float64)       {}
func (Nop) PrimaryUnique(float64)             {}
func (Nop) PrimaryMixed(float64)              {}
func (Nop) PairKinematics(float64, float64)   {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
