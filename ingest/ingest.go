package ingest

import (
	"context"
	"fmt"
	"iter"
	"math"

	"github.com/hupe1980/mixgo/binning"
	"github.com/hupe1980/mixgo/model"
)

// VertexEpsilon is the vertex separation, in cm, at or above which two
// consecutive rows are attributed to different collisions.
const VertexEpsilon = 1e-5

// ctxCheckEvery is the row interval between context checks.
const ctxCheckEvery = 4096

// Stats summarizes an ingestion pass.
type Stats struct {
	// Rows is the number of aligned rows read.
	Rows int
	// Accepted and Rejected partition Rows when cuts are enabled.
	Accepted int
	Rejected int
	// Misaligned is set when one stream ended before the other.
	Misaligned bool
}

// Dataset is the immutable input of a mixing run.
type Dataset struct {
	// Primaries holds one He3 per collision; Primaries[i] belongs to
	// Collisions[i].
	Primaries []model.He3Candidate
	// Hadrons holds one hadron per accepted row in arrival order.
	Hadrons    []model.HadronCandidate
	Collisions []model.Collision
	Table      BracketTable
	Binner     *binning.Binner
	Stats      Stats
}

// Bin returns the bin of collision id.
func (d *Dataset) Bin(id int) int {
	c := d.Collisions[id]
	return d.Binner.Index(float64(c.Z), float64(c.Centrality))
}

// Ingest consumes collisions and candidates in lock-step, row by row. The
// streams must be aligned: the i-th collision row describes the collision of
// the i-th candidate row. Ingestion stops at the end of the shorter stream.
//
// The only errors are context cancellation and errors yielded by the
// streams.
func Ingest(
	ctx context.Context,
	collisions iter.Seq2[model.Collision, error],
	candidates iter.Seq2[model.CandidateRow, error],
	opts ...Option,
) (*Dataset, error) {
	o := applyOptions(opts)

	nextColl, stopColl := iter.Pull2(collisions)
	defer stopColl()
	nextCand, stopCand := iter.Pull2(candidates)
	defer stopCand()

	ds := &Dataset{
		Table:  NewBracketTable(o.binner.NumBins()),
		Binner: o.binner,
	}

	var (
		open    bool
		bracket model.Bracket
		prev    model.Collision
	)
	seal := func() {
		if !open {
			return
		}
		bin := o.binner.Index(float64(prev.Z), float64(prev.Centrality))
		ds.Table[bin] = append(ds.Table[bin], bracket)
		open = false
	}

	for row := 0; ; row++ {
		if row%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		coll, collErr, collOK := nextColl()
		cand, candErr, candOK := nextCand()
		if collOK && collErr != nil {
			return nil, fmt.Errorf("ingest: collision row %d: %w", row, collErr)
		}
		if candOK && candErr != nil {
			return nil, fmt.Errorf("ingest: candidate row %d: %w", row, candErr)
		}
		if !collOK || !candOK {
			if collOK != candOK {
				ds.Stats.Misaligned = true
				o.logger.WarnContext(ctx, "input streams have different lengths",
					"rows", row,
					"collisions_exhausted", !collOK,
				)
			}
			break
		}
		ds.Stats.Rows++

		coll.Is23 = coll.Is23 || o.is23
		he3, had := cand.He3, cand.Hadron

		if o.cuts != nil && !o.cuts.Accept(&he3, &had, &coll, coll.Is23) {
			ds.Stats.Rejected++
			continue
		}
		ds.Stats.Accepted++

		newCollision := !open || math.Abs(float64(coll.Z)-float64(prev.Z)) >= VertexEpsilon
		if newCollision {
			seal()
			coll.ID = len(ds.Collisions)
			prev = coll
		}

		had.Z = prev.Z
		had.Centrality = prev.Centrality
		ds.Hadrons = append(ds.Hadrons, had)
		idx := len(ds.Hadrons) - 1

		o.recorder.InvMassBefore(model.InvMass(&he3, &had), model.RelativeSign(he3.Pt, had.Pt))
		o.recorder.PrimaryAll(float64(he3.Pt))

		if !newCollision {
			bracket.End = idx
			continue
		}

		he3.CollisionID = prev.ID
		ds.Primaries = append(ds.Primaries, he3)
		ds.Collisions = append(ds.Collisions, prev)
		o.recorder.PrimaryPerCollision(float64(he3.Pt))

		bracket = model.Bracket{CollisionID: prev.ID, Start: idx, End: idx}
		open = true
	}
	seal()

	o.logger.InfoContext(ctx, "ingestion completed",
		"rows", ds.Stats.Rows,
		"rejected", ds.Stats.Rejected,
		"primaries", len(ds.Primaries),
		"hadrons", len(ds.Hadrons),
		"collisions", len(ds.Collisions),
		"brackets", ds.Table.Len(),
	)
	return ds, nil
}

// Slice adapts a slice to a stream without errors.
func Slice[T any](s []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, v := range s {
			if !yield(v, nil) {
				return
			}
		}
	}
}
