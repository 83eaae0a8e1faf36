package tree

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/groot"

	"github.com/hupe1980/mixgo/model"
	"github.com/hupe1980/mixgo/testutil"
)

func collect[T any](t *testing.T, seq iter.Seq2[T, error]) []T {
	t.Helper()
	var out []T
	for v, err := range seq {
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func writeFlat(t *testing.T, path string, colls []model.Collision, rows []model.CandidateRow) {
	t.Helper()
	f, err := groot.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteInputs(f, colls, rows))
	require.NoError(t, f.Close())
}

func writePartitioned(t *testing.T, path string, parts int, colls []model.Collision, rows []model.CandidateRow) {
	t.Helper()
	f, err := groot.Create(path)
	require.NoError(t, err)

	size := (len(rows) + parts - 1) / parts
	for p := 0; p < parts; p++ {
		lo, hi := p*size, min((p+1)*size, len(rows))
		dir, err := f.Mkdir(fmt.Sprintf("%s%d", PartitionPrefix, p))
		require.NoError(t, err)
		require.NoError(t, WriteInputs(dir, colls[lo:hi], rows[lo:hi]))
	}
	require.NoError(t, f.Close())
}

func TestSourceFlat(t *testing.T) {
	colls, rows := testutil.NewRNG(1).Events(testutil.DefaultEventSpec())
	path := filepath.Join(t.TempDir(), "flat.root")
	writeFlat(t, path, colls, rows)

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Empty(t, src.Partitions())
	n, err := src.Entries(CandidateTree)
	require.NoError(t, err)
	assert.EqualValues(t, len(rows), n)

	assert.Equal(t, rows, collect(t, src.Candidates()))
	assert.Equal(t, colls, collect(t, src.Collisions()))
}

func TestSourcePartitionedAndMerge(t *testing.T) {
	colls, rows := testutil.NewRNG(2).Events(testutil.DefaultEventSpec())
	dir := t.TempDir()
	in := filepath.Join(dir, "partitioned.root")
	writePartitioned(t, in, 12, colls, rows)

	src, err := Open(in)
	require.NoError(t, err)
	parts := src.Partitions()
	require.Len(t, parts, 12)
	assert.Equal(t, "DF_2", parts[2])
	assert.Equal(t, "DF_10", parts[10])
	assert.Equal(t, rows, collect(t, src.Candidates()))
	assert.Equal(t, colls, collect(t, src.Collisions()))
	require.NoError(t, src.Close())

	out := filepath.Join(dir, "merged.root")
	require.NoError(t, Merge(context.Background(), in, out, nil))

	merged, err := Open(out)
	require.NoError(t, err)
	defer merged.Close()
	assert.Empty(t, merged.Partitions())
	assert.Equal(t, rows, collect(t, merged.Candidates()))
	assert.Equal(t, colls, collect(t, merged.Collisions()))
}

func TestMergeInPlace(t *testing.T) {
	spec := testutil.DefaultEventSpec()
	spec.Collisions = 150
	colls, rows := testutil.NewRNG(11).Events(spec)
	dir := t.TempDir()
	path := filepath.Join(dir, "data.root")
	writePartitioned(t, path, 3, colls, rows)

	require.NoError(t, Merge(context.Background(), path, path, nil))

	merged, err := Open(path)
	require.NoError(t, err)
	defer merged.Close()
	assert.Empty(t, merged.Partitions())
	assert.Equal(t, rows, collect(t, merged.Candidates()))
	assert.Equal(t, colls, collect(t, merged.Collisions()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary merge file left behind")
}

func TestMergeFailureKeepsOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "merged.root")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o644))

	err := Merge(context.Background(), filepath.Join(dir, "missing.root"), out, nil)
	require.Error(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSourceEarlyStop(t *testing.T) {
	colls, rows := testutil.NewRNG(3).Events(testutil.DefaultEventSpec())
	path := filepath.Join(t.TempDir(), "flat.root")
	writeFlat(t, path, colls, rows)

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	n := 0
	for _, err := range src.Candidates() {
		require.NoError(t, err)
		n++
		if n == 5 {
			break
		}
	}
	assert.Equal(t, 5, n)
}

func TestSourceMissingTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.root")
	f, err := groot.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	for _, err := range src.Pairs() {
		assert.ErrorIs(t, err, ErrTreeNotFound)
	}
}

func TestPairWriterRoundTrip(t *testing.T) {
	_, rows := testutil.NewRNG(4).Events(testutil.DefaultEventSpec())
	coll := model.Collision{Z: 1.5, Centrality: 42}

	var pairs []model.Pair
	for i := range rows[:50] {
		pairs = append(pairs, model.NewPair(&rows[i].He3, &rows[i].Hadron, &coll, i%2 == 0, nil))
	}

	path := filepath.Join(t.TempDir(), "mixed.root")
	f, err := groot.Create(path)
	require.NoError(t, err)
	pw, err := NewPairWriter(f)
	require.NoError(t, err)
	for i := range pairs {
		require.NoError(t, pw.WritePair(&pairs[i]))
	}
	assert.EqualValues(t, len(pairs), pw.Entries())
	require.NoError(t, pw.Close())
	require.NoError(t, f.Close())

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	got := collect(t, src.Pairs())
	require.Len(t, got, len(pairs))
	for i, p := range got {
		want := pairs[i]
		assert.Equal(t, want.He3, p.He3)
		assert.Equal(t, want.Hadron, p.Hadron)
		assert.Equal(t, want.Z, p.Z)
		assert.Equal(t, want.Centrality, p.Centrality)
		assert.Equal(t, want.Is23, p.Is23)
		assert.Equal(t, want.Sign, p.Sign)
		assert.InDelta(t, want.InvMass, p.InvMass, 1e-5)
		assert.InDelta(t, want.P, p.P, 1e-5)
	}
}
