package tree

import (
	"fmt"

	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/hupe1980/mixgo/model"
)

// PairWriter writes mixed pairs to a MixedTree tree. It implements
// mixer.Sink.
type PairWriter struct {
	w       rtree.Writer
	rec     pairRecord
	entries int64
}

// NewPairWriter creates the MixedTree tree in dir.
func NewPairWriter(dir riofs.Directory, opts ...rtree.WriteOption) (*PairWriter, error) {
	pw := &PairWriter{}
	w, err := rtree.NewWriter(dir, MixedTree, pw.rec.writeVars(), opts...)
	if err != nil {
		return nil, fmt.Errorf("tree: create %s: %w", MixedTree, err)
	}
	pw.w = w
	return pw, nil
}

// WritePair appends one entry.
func (pw *PairWriter) WritePair(p *model.Pair) error {
	pw.rec.set(p)
	if _, err := pw.w.Write(); err != nil {
		return fmt.Errorf("tree: write %s: %w", MixedTree, err)
	}
	pw.entries++
	return nil
}

// Entries returns the number of entries written.
func (pw *PairWriter) Entries() int64 { return pw.entries }

// Close flushes the tree. The enclosing file stays open.
func (pw *PairWriter) Close() error {
	return pw.w.Close()
}

// WriteInputs writes aligned collision and candidate rows as flat input
// trees into dir.
func WriteInputs(dir riofs.Directory, colls []model.Collision, rows []model.CandidateRow) error {
	if len(colls) != len(rows) {
		return fmt.Errorf("tree: %d collisions for %d candidate rows", len(colls), len(rows))
	}

	var crec collisionRecord
	if err := writeAll(dir, CollisionTree, rtree.WriteVarsFromStruct(&crec), len(colls), func(i int) {
		crec = collisionRecord{ZVertex: colls[i].Z, CentralityFT0C: colls[i].Centrality}
	}); err != nil {
		return err
	}

	var rec candidateRecord
	return writeAll(dir, CandidateTree, rtree.WriteVarsFromStruct(&rec), len(rows), func(i int) {
		rec.setHe3(&rows[i].He3)
		rec.setHadron(&rows[i].Hadron)
	})
}

func writeAll(dir riofs.Directory, name string, wvars []rtree.WriteVar, n int, fill func(i int)) error {
	w, err := rtree.NewWriter(dir, name, wvars)
	if err != nil {
		return fmt.Errorf("tree: create %s: %w", name, err)
	}
	for i := 0; i < n; i++ {
		fill(i)
		if _, err := w.Write(); err != nil {
			_ = w.Close()
			return fmt.Errorf("tree: write %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("tree: close %s: %w", name, err)
	}
	return nil
}
