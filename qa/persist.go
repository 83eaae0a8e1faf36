package qa

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/vg"
)

// DirName is the ROOT directory Save writes into.
const DirName = "HistogramsQA"

// Save writes every histogram into a DirName sub-directory of parent.
func (h *Histograms) Save(parent riofs.Directory) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	dir, err := parent.Mkdir(DirName)
	if err != nil {
		return fmt.Errorf("qa: mkdir %s: %w", DirName, err)
	}
	for name, h1 := range h.H1Ds() {
		if err := dir.Put(name, rhist.NewH1DFrom(h1)); err != nil {
			return fmt.Errorf("qa: put %s: %w", name, err)
		}
	}
	if err := dir.Put(NamePairMomentumVsInvMass, rhist.NewH2DFrom(h.PairMomentumVsInvMass)); err != nil {
		return fmt.Errorf("qa: put %s: %w", NamePairMomentumVsInvMass, err)
	}
	return nil
}

type overlay struct {
	file   string
	title  string
	xlabel string
	before *hbook.H1D
	after  *hbook.H1D
}

// Plot renders before/after comparisons as PNG files under dir. Both
// histograms of a comparison are normalized to unit area.
func (h *Histograms) Plot(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	h.mu.Lock()
	overlays := []overlay{
		{"invmass_unlike.png", "Unlike-sign", "m(3He+p) [GeV/c^2]", h.InvMassBeforeUnlike.Clone(), h.InvMassAfterUnlike.Clone()},
		{"invmass_like.png", "Like-sign", "m(3He+p) [GeV/c^2]", h.InvMassBeforeLike.Clone(), h.InvMassAfterLike.Clone()},
		{"he3_pt.png", "3He", "p_T [GeV/c]", h.He3Before.Clone(), h.He3After.Clone()},
	}
	h.mu.Unlock()

	for _, o := range overlays {
		if err := o.save(filepath.Join(dir, o.file)); err != nil {
			return fmt.Errorf("qa: plot %s: %w", o.file, err)
		}
	}
	return nil
}

func (o overlay) save(path string) error {
	p := hplot.New()
	p.Title.Text = o.title
	p.Title.Padding = 2 * vg.Millimeter
	p.X.Label.Text = o.xlabel
	p.Y.Label.Text = "normalized counts"
	p.Legend.Top = true
	p.Legend.Padding = 2 * vg.Millimeter

	for i, h := range []*hbook.H1D{o.before, o.after} {
		if integral := h.Integral(); integral > 0 {
			h.Scale(1 / integral)
		}
		ph := hplot.NewH1D(h)
		ph.Infos.Style = hplot.HInfoNone
		label := "same event"
		if i == 1 {
			label = "mixed"
			ph.LineStyle.Color = color.RGBA{R: 255, A: 255}
			ph.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		}
		p.Add(ph)
		p.Legend.Add(label, ph)
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
