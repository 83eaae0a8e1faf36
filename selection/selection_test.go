package selection

import (
	"math"
	"testing"

	"github.com/hupe1980/mixgo/model"
	"github.com/stretchr/testify/assert"
)

func goodTriple() (model.He3Candidate, model.HadronCandidate, model.Collision) {
	he3 := model.He3Candidate{
		Pt: -3.2, Eta: 0.2, Phi: 1.1,
		DCAxy: 0.001, DCAz: -0.002,
		PIDTrk: 7, NClsTPC: 120,
		NSigmaTPC: 0.4, Chi2TPC: 1.2,
	}
	had := model.HadronCandidate{
		Pt: 1.1, Eta: -0.4, Phi: -2,
		DCAxy: 0.002, DCAz: 0.001,
		NSigmaTPC: -0.5, NSigmaTOF: 0.7, Chi2TPC: 1.5,
	}
	coll := model.Collision{Z: 1, Centrality: 20}
	return he3, had, coll
}

func TestAccept(t *testing.T) {
	cuts := DefaultCuts()

	t.Run("Good", func(t *testing.T) {
		he3, had, coll := goodTriple()
		assert.True(t, cuts.Accept(&he3, &had, &coll, false))
		assert.True(t, cuts.Accept(&he3, &had, &coll, true))
	})

	t.Run("He3EtaOutsideAcceptance", func(t *testing.T) {
		for _, eta := range []float32{1.0, -1.0} {
			he3, had, coll := goodTriple()
			he3.Eta = eta
			assert.False(t, cuts.Accept(&he3, &had, &coll, false))
			assert.False(t, cuts.Accept(&he3, &had, &coll, true))
		}
	})

	tests := []struct {
		name   string
		mutate func(*model.He3Candidate, *model.HadronCandidate)
	}{
		{"HadronEta", func(_ *model.He3Candidate, h *model.HadronCandidate) { h.Eta = 0.95 }},
		{"UncorrectedHighPt", func(he *model.He3Candidate, _ *model.HadronCandidate) { he.PIDTrk = 4; he.Pt = 2.6 }},
		{"He3NSigmaTPC", func(he *model.He3Candidate, _ *model.HadronCandidate) { he.NSigmaTPC = -1.6 }},
		{"HadNSigmaTPC", func(_ *model.He3Candidate, h *model.HadronCandidate) { h.NSigmaTPC = 2.1 }},
		{"HadNSigmaTOF", func(_ *model.He3Candidate, h *model.HadronCandidate) { h.NSigmaTOF = -2.5 }},
		{"He3DCAxy", func(he *model.He3Candidate, _ *model.HadronCandidate) { he.DCAxy = 0.5 }},
		{"HadDCAz", func(_ *model.He3Candidate, h *model.HadronCandidate) { h.DCAz = -0.5 }},
		{"He3Chi2", func(he *model.He3Candidate, _ *model.HadronCandidate) { he.Chi2TPC = 4 }},
		{"HadChi2", func(_ *model.He3Candidate, h *model.HadronCandidate) { h.Chi2TPC = 5 }},
		{"NClsTPC", func(he *model.He3Candidate, _ *model.HadronCandidate) { he.NClsTPC = 80 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he3, had, coll := goodTriple()
			tt.mutate(&he3, &had)
			assert.False(t, cuts.Accept(&he3, &had, &coll, false))
		})
	}

	t.Run("EraDependentClusterCut", func(t *testing.T) {
		he3, had, coll := goodTriple()
		he3.NClsTPC = 100
		assert.True(t, cuts.Accept(&he3, &had, &coll, false))
		assert.False(t, cuts.Accept(&he3, &had, &coll, true))
	})

	t.Run("LowTOFMomentumSkipsTOF", func(t *testing.T) {
		he3, had, coll := goodTriple()
		had.Pt = -0.6
		had.NSigmaTOF = -10
		assert.True(t, cuts.Accept(&he3, &had, &coll, false))
	})

	t.Run("DoesNotMutate", func(t *testing.T) {
		he3, had, coll := goodTriple()
		he3.PIDTrk = 4
		he3.Pt = -1.2
		before := he3
		cuts.Accept(&he3, &had, &coll, false)
		assert.Equal(t, before, he3)
	})
}

func TestCorrectedPtHe3(t *testing.T) {
	cuts := DefaultCuts()

	he3 := model.He3Candidate{Pt: -1.5, PIDTrk: 7}
	assert.InDelta(t, -1.5, cuts.CorrectedPtHe3(&he3), 1e-6)

	he3.PIDTrk = 4
	want := 1.5 + 2.98019e-02 + 7.66100e-01*math.Exp(-1.31641*1.5)
	assert.InDelta(t, -want, cuts.CorrectedPtHe3(&he3), 1e-6)

	he3.Pt = 3
	assert.InDelta(t, 3.0, cuts.CorrectedPtHe3(&he3), 1e-6)
}

func TestResolution(t *testing.T) {
	r := Resolution{Mean: 0.001, P0: 0.01, P1: 0, P2: 0}
	assert.InDelta(t, 1.0, r.Significance(0.011, 2), 1e-12)
	assert.True(t, math.IsInf(Resolution{}.Significance(0, 1), 1))
}
