// Package selection implements the track-quality predicate applied to raw
// (He3, hadron, collision) triples before they enter the mixing pool.
//
// Accept is pure: it reads its arguments and the numeric constants held by
// Cuts and mutates nothing.
package selection

import (
	"math"

	"github.com/hupe1980/mixgo/model"
)

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v lies in [Min, Max].
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Resolution parametrizes an expected DCA distribution as a function of the
// transverse momentum magnitude: mean is constant and
// sigma(pt) = P0 + P1*exp(-P2*pt).
type Resolution struct {
	Mean float64 `yaml:"mean"`
	P0   float64 `yaml:"p0"`
	P1   float64 `yaml:"p1"`
	P2   float64 `yaml:"p2"`
}

// Sigma returns the expected resolution at pt.
func (r Resolution) Sigma(pt float64) float64 {
	return r.P0 + r.P1*math.Exp(-r.P2*math.Abs(pt))
}

// Significance returns (dca - mean) / sigma(pt). A non-positive sigma yields
// +Inf so that the track is rejected.
func (r Resolution) Significance(dca, pt float64) float64 {
	s := r.Sigma(pt)
	if s <= 0 {
		return math.Inf(1)
	}
	return (dca - r.Mean) / s
}

// PtCalibration is the He3 momentum correction for tracks that were
// propagated with a wrong mass hypothesis.
type PtCalibration struct {
	// CorrectedPID lists the tracking PID codes whose momentum needs no
	// correction (helium-3 and alpha hypotheses).
	CorrectedPID []uint32 `yaml:"correctedPid"`
	// MaxPt is the magnitude below which uncorrected tracks are recalibrated.
	MaxPt float64 `yaml:"maxPt"`
	// |pt| += A + B*exp(C*|pt|)
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
}

// Cuts holds every numeric constant of the selection.
type Cuts struct {
	Calibration PtCalibration `yaml:"calibration"`

	He3NSigmaTPC    Range   `yaml:"he3NSigmaTPC"`
	HadNSigmaTPCMax float64 `yaml:"hadNSigmaTPCMax"`
	HadNSigmaTOFMax float64 `yaml:"hadNSigmaTOFMax"`
	// HadTOFMinPt is the hadron |pt| above which the TOF cut applies.
	HadTOFMinPt float64 `yaml:"hadTofMinPt"`

	He3DCAxy Resolution `yaml:"he3DcaXY"`
	He3DCAz  Resolution `yaml:"he3DcaZ"`
	HadDCAxy Resolution `yaml:"hadDcaXY"`
	HadDCAz  Resolution `yaml:"hadDcaZ"`
	// DCASigmaMax bounds |significance| for all four DCA projections.
	DCASigmaMax float64 `yaml:"dcaSigmaMax"`

	EtaMax float64 `yaml:"etaMax"`

	// He3 TPC cluster minimum for 2023 data and for the other periods.
	MinNClsTPC23    uint8 `yaml:"minNClsTpc23"`
	MinNClsTPCOther uint8 `yaml:"minNClsTpcOther"`

	Chi2TPCMax float64 `yaml:"chi2TpcMax"`
}

// DefaultCuts returns the selection used for the ⁴Li analysis.
func DefaultCuts() Cuts {
	return Cuts{
		Calibration: PtCalibration{
			CorrectedPID: []uint32{7, 8},
			MaxPt:        2.5,
			A:            2.98019e-02,
			B:            7.66100e-01,
			C:            -1.31641e+00,
		},
		He3NSigmaTPC:    Range{Min: -1.5, Max: 2.5},
		HadNSigmaTPCMax: 2,
		HadNSigmaTOFMax: 2,
		HadTOFMinPt:     0.8,
		He3DCAxy:        Resolution{Mean: 0, P0: 1.0e-3, P1: 1.6e-2, P2: 1.4},
		He3DCAz:         Resolution{Mean: 0, P0: 1.5e-3, P1: 2.2e-2, P2: 1.2},
		HadDCAxy:        Resolution{Mean: 0, P0: 1.2e-3, P1: 3.1e-2, P2: 2.6},
		HadDCAz:         Resolution{Mean: 0, P0: 1.8e-3, P1: 4.0e-2, P2: 2.3},
		DCASigmaMax:     3,
		EtaMax:          0.9,
		MinNClsTPC23:    110,
		MinNClsTPCOther: 90,
		Chi2TPCMax:      4,
	}
}

// IsCorrected reports whether the He3 was tracked with a helium hypothesis.
func (c *Cuts) IsCorrected(he3 *model.He3Candidate) bool {
	for _, pid := range c.Calibration.CorrectedPID {
		if he3.PIDTrk == pid {
			return true
		}
	}
	return false
}

// CorrectedPtHe3 returns the calibrated signed He3 transverse momentum.
func (c *Cuts) CorrectedPtHe3(he3 *model.He3Candidate) float64 {
	pt := float64(he3.Pt)
	abs := math.Abs(pt)
	if c.IsCorrected(he3) || abs >= c.Calibration.MaxPt {
		return pt
	}
	abs += c.Calibration.A + c.Calibration.B*math.Exp(c.Calibration.C*abs)
	return math.Copysign(abs, pt)
}

// Accept reports whether the triple passes every cut.
func (c *Cuts) Accept(he3 *model.He3Candidate, had *model.HadronCandidate, _ *model.Collision, is23 bool) bool {
	if math.Abs(float64(he3.Eta)) >= c.EtaMax || math.Abs(float64(had.Eta)) >= c.EtaMax {
		return false
	}

	rawPt := math.Abs(float64(he3.Pt))
	if !c.IsCorrected(he3) && rawPt >= c.Calibration.MaxPt {
		return false
	}
	he3Pt := math.Abs(c.CorrectedPtHe3(he3))
	hadPt := math.Abs(float64(had.Pt))

	if !c.He3NSigmaTPC.Contains(float64(he3.NSigmaTPC)) {
		return false
	}
	if math.Abs(float64(had.NSigmaTPC)) >= c.HadNSigmaTPCMax {
		return false
	}
	if hadPt > c.HadTOFMinPt && math.Abs(float64(had.NSigmaTOF)) >= c.HadNSigmaTOFMax {
		return false
	}

	sigmas := [4]float64{
		c.He3DCAxy.Significance(float64(he3.DCAxy), he3Pt),
		c.He3DCAz.Significance(float64(he3.DCAz), he3Pt),
		c.HadDCAxy.Significance(float64(had.DCAxy), hadPt),
		c.HadDCAz.Significance(float64(had.DCAz), hadPt),
	}
	for _, s := range sigmas {
		if math.Abs(s) >= c.DCASigmaMax {
			return false
		}
	}

	minCls := c.MinNClsTPCOther
	if is23 {
		minCls = c.MinNClsTPC23
	}
	if he3.NClsTPC < minCls {
		return false
	}

	return float64(he3.Chi2TPC) < c.Chi2TPCMax && float64(had.Chi2TPC) < c.Chi2TPCMax
}
