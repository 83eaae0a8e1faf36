package model

import (
	"fmt"
	"math"

	"github.com/hupe1980/mixgo/physics"
)

// Sign is the relative charge sign of a He3-hadron combination.
type Sign uint8

const (
	// LikeSign means both tracks carry the same charge sign.
	LikeSign Sign = iota
	// UnlikeSign means the tracks carry opposite charge signs.
	UnlikeSign
)

// String returns "like" or "unlike".
func (s Sign) String() string {
	if s == UnlikeSign {
		return "unlike"
	}
	return "like"
}

// RelativeSign returns UnlikeSign when exactly one of the signed momenta is
// negative. A zero momentum counts as positive.
func RelativeSign(ptA, ptB float32) Sign {
	if (ptA < 0) != (ptB < 0) {
		return UnlikeSign
	}
	return LikeSign
}

// Bracket is the closed range [Start, End] of hadron indices produced by
// one collision.
type Bracket struct {
	CollisionID int
	Start       int
	End         int
}

// Len returns the number of hadrons in the bracket.
func (b Bracket) Len() int {
	if b.End < b.Start {
		return 0
	}
	return b.End - b.Start + 1
}

// String returns a string representation of the Bracket.
func (b Bracket) String() string {
	return fmt.Sprintf("Bracket(coll=%d:[%d,%d])", b.CollisionID, b.Start, b.End)
}

// Pair is a synthesized He3-hadron combination.
type Pair struct {
	He3    He3Candidate
	Hadron HadronCandidate

	// Z and Centrality are taken from the He3's collision.
	Z          float32
	Centrality float32
	Is23       bool

	InvMass float64
	P       float64
	Sign    Sign
}

// NewPair assembles a pair and computes its kinematics. A non-nil hadronPhi
// overrides the hadron azimuth used for the kinematics (rotation mixing);
// the stored hadron record keeps its original azimuth.
func NewPair(he3 *He3Candidate, had *HadronCandidate, coll *Collision, is23 bool, hadronPhi *float64) Pair {
	p1 := he3.Momentum()
	p2 := had.Momentum()
	if hadronPhi != nil {
		p2.Phi = *hadronPhi
	}
	return Pair{
		He3:        *he3,
		Hadron:     *had,
		Z:          coll.Z,
		Centrality: coll.Centrality,
		Is23:       is23,
		InvMass:    physics.InvariantMass(p1, physics.MassHelium3, p2, physics.MassProton),
		P:          physics.MomentumMother(p1, p2),
		Sign:       RelativeSign(he3.Pt, had.Pt),
	}
}

// SignedP returns the pair momentum signed with the He3 charge.
func (p *Pair) SignedP() float64 {
	return math.Copysign(p.P, float64(p.He3.Pt))
}

// InvMass computes the He3-proton invariant mass of one input row.
func InvMass(he3 *He3Candidate, had *HadronCandidate) float64 {
	return physics.InvariantMass(he3.Momentum(), physics.MassHelium3, had.Momentum(), physics.MassProton)
}
