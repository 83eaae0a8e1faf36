package model

import (
	"math"

	"github.com/hupe1980/mixgo/physics"
)

// He3Candidate is a helium-3 track.
type He3Candidate struct {
	Pt             float32
	Eta            float32
	Phi            float32
	DCAxy          float32
	DCAz           float32
	SignalTPC      float32
	InnerParamTPC  float32
	MassTOF        float32
	ITSClusterSize uint32
	PIDTrk         uint32
	NClsTPC        uint8
	SharedClusters uint8
	NSigmaTPC      float32
	Chi2TPC        float32

	// CollisionID is the ordinal of the owning collision; -1 until ingested.
	CollisionID int
}

// Momentum returns the track momentum with an unsigned magnitude.
func (c *He3Candidate) Momentum() physics.Vec3 {
	return physics.Vec3{P: math.Abs(float64(c.Pt)), Eta: float64(c.Eta), Phi: float64(c.Phi)}
}

// HadronCandidate is a light-particle (proton) track.
type HadronCandidate struct {
	Pt             float32
	Eta            float32
	Phi            float32
	DCAxy          float32
	DCAz           float32
	SignalTPC      float32
	InnerParamTPC  float32
	MassTOF        float32
	ITSClusterSize uint32
	PIDTrk         uint32
	SharedClusters uint8
	NSigmaTPC      float32
	NSigmaTOF      float32
	Chi2TPC        float32

	// Z and Centrality are copied from the owning collision at ingestion.
	Z          float32
	Centrality float32
}

// Momentum returns the track momentum with an unsigned magnitude.
func (c *HadronCandidate) Momentum() physics.Vec3 {
	return physics.Vec3{P: math.Abs(float64(c.Pt)), Eta: float64(c.Eta), Phi: float64(c.Phi)}
}

// Collision summarizes one collision.
type Collision struct {
	Z          float32
	Centrality float32
	// ID is the ordinal of the collision in the ingested collection.
	ID int
	// Is23 marks 2023 data taking, which uses a different track-quality cut.
	Is23 bool
}

// CandidateRow is one row of the candidate stream. Every row carries a hadron
// and, redundantly, the He3 of the same collision.
type CandidateRow struct {
	He3    He3Candidate
	Hadron HadronCandidate
}
