package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hupe1980/mixgo/mixer"
	"github.com/hupe1980/mixgo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ mixer.Sink = (*Sink)(nil)

func pairs(n int) []model.Pair {
	out := make([]model.Pair, n)
	for i := range out {
		coll := model.Collision{Z: float32(i%20) - 10, Centrality: float32(i % 100)}
		he3 := model.He3Candidate{Pt: -2.5, Eta: 0.1, Phi: 0.5, CollisionID: i}
		had := model.HadronCandidate{Pt: 1.25, Eta: -0.1, Phi: float32(i) * 0.01}
		out[i] = model.NewPair(&he3, &had, &coll, i%2 == 0, nil)
	}
	return out
}

func TestSink_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.db")
	s, err := Open(path, WithBatchSize(7), WithRun("run-a", "event"))
	require.NoError(t, err)

	in := pairs(25)
	for i := range in {
		require.NoError(t, s.WritePair(&in[i]))
	}
	assert.Equal(t, int64(25), s.Pairs())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.WritePair(&in[0]), ErrClosed)

	s2, err := Open(path, WithRun("run-b", "rotation"))
	require.NoError(t, err)

	var got []Row
	for r, err := range Rows(context.Background(), s2.DB(), "run-a") {
		require.NoError(t, err)
		got = append(got, r)
	}
	require.Len(t, got, 25)
	for i, r := range got {
		assert.Equal(t, "event", r.Strategy)
		assert.Equal(t, i, r.CollisionID)
		assert.Equal(t, in[i].Is23, r.Is23)
		assert.True(t, r.UnlikeSign)
		assert.InDelta(t, in[i].InvMass, r.InvMass, 1e-12)
		assert.InDelta(t, in[i].P, r.P, 1e-12)
		assert.Equal(t, in[i].Z, r.Z)
	}

	// The open batch holds the only connection until Close.
	require.NoError(t, s2.WritePair(&in[0]))
	require.NoError(t, s2.Close())

	s3, err := Open(path)
	require.NoError(t, err)
	defer s3.Close()
	var n int
	require.NoError(t, s3.DB().QueryRow("SELECT COUNT(*) FROM pairs WHERE run = 'run-b'").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSink_CloseWithoutPairs(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
