package qa

import (
	"sync"

	"go-hep.org/x/hep/hbook"

	"github.com/hupe1980/mixgo/model"
)

// Histogram names. They match the keys written by Save.
const (
	NameHe3BeforeAll          = "hHe3BeforeEMAll"
	NameHe3Before             = "hHe3BeforeEM"
	NameHe3Unique             = "hHe3Unique"
	NameHe3After              = "hHe3AfterEM"
	NameInvMassBeforeLike     = "hInvMassBeforeEMLikeSign"
	NameInvMassBeforeUnlike   = "hInvMassBeforeEMUnlikeSign"
	NameInvMassAfterLike      = "hInvMassAfterEMLikeSign"
	NameInvMassAfterUnlike    = "hInvMassAfterEMUnlikeSign"
	NamePairMomentumVsInvMass = "h2PInvariantMass"
)

// Binning of the QA histograms.
const (
	PtBins   = 200
	PtMin    = -10.0
	PtMax    = 0.0
	MassBins = 600
	MassMin  = 3.743
	MassMax  = 4.343
	PBins    = 100
	PMin     = -10.0
	PMax     = 10.0
)

// Histograms records QA observations into hbook histograms. It is safe for
// concurrent use.
type Histograms struct {
	mu sync.Mutex

	He3BeforeAll *hbook.H1D
	He3Before    *hbook.H1D
	He3Unique    *hbook.H1D
	He3After     *hbook.H1D

	InvMassBeforeLike   *hbook.H1D
	InvMassBeforeUnlike *hbook.H1D
	InvMassAfterLike    *hbook.H1D
	InvMassAfterUnlike  *hbook.H1D

	PairMomentumVsInvMass *hbook.H2D
}

var _ Recorder = (*Histograms)(nil)

// NewHistograms creates an empty set of QA histograms.
func NewHistograms() *Histograms {
	pt := func(name string) *hbook.H1D {
		h := hbook.NewH1D(PtBins, PtMin, PtMax)
		h.Annotation()["name"] = name
		return h
	}
	mass := func(name string) *hbook.H1D {
		h := hbook.NewH1D(MassBins, MassMin, MassMax)
		h.Annotation()["name"] = name
		return h
	}
	h2 := hbook.NewH2D(PBins, PMin, PMax, MassBins, MassMin, MassMax)
	h2.Annotation()["name"] = NamePairMomentumVsInvMass

	return &Histograms{
		He3BeforeAll:          pt(NameHe3BeforeAll),
		He3Before:             pt(NameHe3Before),
		He3Unique:             pt(NameHe3Unique),
		He3After:              pt(NameHe3After),
		InvMassBeforeLike:     mass(NameInvMassBeforeLike),
		InvMassBeforeUnlike:   mass(NameInvMassBeforeUnlike),
		InvMassAfterLike:      mass(NameInvMassAfterLike),
		InvMassAfterUnlike:    mass(NameInvMassAfterUnlike),
		PairMomentumVsInvMass: h2,
	}
}

func (h *Histograms) fill(dst *hbook.H1D, x float64) {
	h.mu.Lock()
	dst.Fill(x, 1)
	h.mu.Unlock()
}

func (h *Histograms) InvMassBefore(m float64, sign model.Sign) {
	if sign == model.UnlikeSign {
		h.fill(h.InvMassBeforeUnlike, m)
		return
	}
	h.fill(h.InvMassBeforeLike, m)
}

func (h *Histograms) InvMassAfter(m float64, sign model.Sign) {
	if sign == model.UnlikeSign {
		h.fill(h.InvMassAfterUnlike, m)
		return
	}
	h.fill(h.InvMassAfterLike, m)
}

func (h *Histograms) PrimaryAll(pt float64)          { h.fill(h.He3BeforeAll, pt) }
func (h *Histograms) PrimaryPerCollision(pt float64) { h.fill(h.He3Before, pt) }
func (h *Histograms) PrimaryUnique(pt float64)       { h.fill(h.He3Unique, pt) }
func (h *Histograms) PrimaryMixed(pt float64)        { h.fill(h.He3After, pt) }

func (h *Histograms) PairKinematics(signedP, m float64) {
	h.mu.Lock()
	h.PairMomentumVsInvMass.Fill(signedP, m, 1)
	h.mu.Unlock()
}

// H1Ds returns the one-dimensional histograms keyed by name.
func (h *Histograms) H1Ds() map[string]*hbook.H1D {
	return map[string]*hbook.H1D{
		NameHe3BeforeAll:        h.He3BeforeAll,
		NameHe3Before:           h.He3Before,
		NameHe3Unique:           h.He3Unique,
		NameHe3After:            h.He3After,
		NameInvMassBeforeLike:   h.InvMassBeforeLike,
		NameInvMassBeforeUnlike: h.InvMassBeforeUnlike,
		NameInvMassAfterLike:    h.InvMassAfterLike,
		NameInvMassAfterUnlike:  h.InvMassAfterUnlike,
	}
}
