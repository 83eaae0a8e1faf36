package ingest

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mixgo/binning"
	"github.com/hupe1980/mixgo/model"
	"github.com/hupe1980/mixgo/qa"
	"github.com/hupe1980/mixgo/selection"
)

func rows(zs []float32, cent float32, perCollision int) ([]model.Collision, []model.CandidateRow) {
	var colls []model.Collision
	var cands []model.CandidateRow
	for c, z := range zs {
		for i := 0; i < perCollision; i++ {
			colls = append(colls, model.Collision{Z: z, Centrality: cent})
			cands = append(cands, model.CandidateRow{
				He3:    model.He3Candidate{Pt: -2 - float32(c), Eta: 0.1, Phi: 0.5, CollisionID: -1},
				Hadron: model.HadronCandidate{Pt: 1 + 0.1*float32(i), Eta: -0.2, Phi: -1},
			})
		}
	}
	return colls, cands
}

func TestIngestMergesEqualVertices(t *testing.T) {
	colls, cands := rows([]float32{0, 0, 5}, 30, 2)

	ds, err := Ingest(context.Background(), Slice(colls), Slice(cands))
	require.NoError(t, err)

	assert.Len(t, ds.Primaries, 2)
	assert.Len(t, ds.Collisions, 2)
	assert.Len(t, ds.Hadrons, 6)
	require.Equal(t, 2, ds.Table.Len())

	b0, ok := ds.Table.Find(ds.Bin(0), 0)
	require.True(t, ok)
	assert.Equal(t, model.Bracket{CollisionID: 0, Start: 0, End: 3}, b0)
	assert.Equal(t, 4, b0.Len())

	b1, ok := ds.Table.Find(ds.Bin(1), 1)
	require.True(t, ok)
	assert.Equal(t, model.Bracket{CollisionID: 1, Start: 4, End: 5}, b1)

	assert.Equal(t, 0, ds.Primaries[0].CollisionID)
	assert.Equal(t, 1, ds.Primaries[1].CollisionID)
	assert.Equal(t, float32(5), ds.Collisions[1].Z)
	assert.Equal(t, float32(5), ds.Hadrons[5].Z)
	assert.Equal(t, float32(30), ds.Hadrons[5].Centrality)

	assert.Equal(t, len(ds.Hadrons), ds.Table.Hadrons())
	assert.NoError(t, ds.Table.Validate(len(ds.Hadrons), len(ds.Collisions)))
	assert.False(t, ds.Stats.Misaligned)
}

func TestIngestEpsilon(t *testing.T) {
	colls := []model.Collision{{Z: 1}, {Z: 1 + 5e-6}, {Z: 1 + 5e-5}}
	_, cands := rows([]float32{0, 0, 0}, 0, 1)

	ds, err := Ingest(context.Background(), Slice(colls), Slice(cands))
	require.NoError(t, err)
	assert.Len(t, ds.Collisions, 2)
}

func TestIngestBracketsIndexedByOwnBin(t *testing.T) {
	binner := binning.Default()
	colls, cands := rows([]float32{-9.5, 0.5, 9.5, 50}, 15, 3)

	ds, err := Ingest(context.Background(), Slice(colls), Slice(cands), WithBinner(binner))
	require.NoError(t, err)
	require.Len(t, ds.Collisions, 4)

	for id, c := range ds.Collisions {
		bin := binner.Index(float64(c.Z), float64(c.Centrality))
		_, ok := ds.Table.Find(bin, id)
		assert.True(t, ok, "collision %d not in bin %d", id, bin)
	}
	assert.Len(t, ds.Table.Bin(binner.Overflow()), 1)
	assert.NoError(t, ds.Table.Validate(len(ds.Hadrons), len(ds.Collisions)))
}

func TestIngestCuts(t *testing.T) {
	colls, cands := rows([]float32{0, 3}, 10, 2)
	for i := range cands {
		cands[i].He3.PIDTrk = 7
		cands[i].He3.NClsTPC = 120
		cands[i].He3.Chi2TPC = 1
		cands[i].Hadron.Chi2TPC = 1
	}
	cands[1].He3.Eta = 1.0

	rec := qa.NewHistograms()
	ds, err := Ingest(context.Background(), Slice(colls), Slice(cands),
		WithCuts(selection.DefaultCuts()),
		WithRecorder(rec),
	)
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Stats.Rows)
	assert.Equal(t, 3, ds.Stats.Accepted)
	assert.Equal(t, 1, ds.Stats.Rejected)
	assert.Len(t, ds.Hadrons, 3)
	assert.Len(t, ds.Collisions, 2)
	assert.Equal(t, ds.Stats.Accepted, ds.Table.Hadrons())
	assert.EqualValues(t, 3, rec.He3BeforeAll.Entries())
	assert.EqualValues(t, 2, rec.He3Before.Entries())
}

func TestIngestIs23(t *testing.T) {
	colls, cands := rows([]float32{0}, 10, 1)

	ds, err := Ingest(context.Background(), Slice(colls), Slice(cands), WithIs23(true))
	require.NoError(t, err)
	assert.True(t, ds.Collisions[0].Is23)
}

func TestIngestMisaligned(t *testing.T) {
	colls, cands := rows([]float32{0, 1, 2}, 10, 1)

	ds, err := Ingest(context.Background(), Slice(colls[:2]), Slice(cands))
	require.NoError(t, err)
	assert.True(t, ds.Stats.Misaligned)
	assert.Equal(t, 2, ds.Stats.Rows)
	assert.Len(t, ds.Collisions, 2)
}

func TestIngestEmpty(t *testing.T) {
	ds, err := Ingest(context.Background(), Slice[model.Collision](nil), Slice[model.CandidateRow](nil))
	require.NoError(t, err)
	assert.Empty(t, ds.Primaries)
	assert.Zero(t, ds.Table.Len())
	assert.NoError(t, ds.Table.Validate(0, 0))
}

func TestIngestStreamError(t *testing.T) {
	boom := errors.New("boom")
	colls, _ := rows([]float32{0}, 10, 1)
	var bad iter.Seq2[model.CandidateRow, error] = func(yield func(model.CandidateRow, error) bool) {
		yield(model.CandidateRow{}, boom)
	}

	_, err := Ingest(context.Background(), Slice(colls), bad)
	assert.ErrorIs(t, err, boom)
}

func TestIngestStreamErrorAtEnd(t *testing.T) {
	boom := errors.New("boom")
	colls, cands := rows([]float32{0, 1}, 10, 1)
	var bad iter.Seq2[model.CandidateRow, error] = func(yield func(model.CandidateRow, error) bool) {
		for _, c := range cands {
			if !yield(c, nil) {
				return
			}
		}
		yield(model.CandidateRow{}, boom)
	}

	ds, err := Ingest(context.Background(), Slice(colls), bad)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, ds)

	var badColls iter.Seq2[model.Collision, error] = func(yield func(model.Collision, error) bool) {
		for _, c := range colls {
			if !yield(c, nil) {
				return
			}
		}
		yield(model.Collision{}, boom)
	}
	_, err = Ingest(context.Background(), badColls, Slice(cands))
	assert.ErrorIs(t, err, boom)
}

func TestIngestCanceled(t *testing.T) {
	colls, cands := rows([]float32{0}, 10, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Ingest(ctx, Slice(colls), Slice(cands))
	assert.ErrorIs(t, err, context.Canceled)
}

func br(coll, start, end int) model.Bracket {
	return model.Bracket{CollisionID: coll, Start: start, End: end}
}

func TestBracketTableValidate(t *testing.T) {
	tests := []struct {
		name  string
		table BracketTable
		ok    bool
	}{
		{"Valid", BracketTable{{br(0, 0, 1)}, {br(1, 2, 2)}}, true},
		{"OutOfBounds", BracketTable{{br(0, 0, 1)}, {br(1, 2, 3)}}, false},
		{"Reversed", BracketTable{{br(0, 1, 0)}, {br(1, 2, 2)}}, false},
		{"Overlap", BracketTable{{br(0, 0, 1), br(1, 1, 2)}}, false},
		{"DuplicateOwner", BracketTable{{br(0, 0, 0), br(0, 1, 2)}}, false},
		{"MissingCollision", BracketTable{{br(0, 0, 2)}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate(3, 2)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}
