package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mixgo/ingest"
	"github.com/hupe1980/mixgo/selection"
)

func TestEvents(t *testing.T) {
	rng := NewRNG(4711)
	spec := DefaultEventSpec()

	colls, rows := rng.Events(spec)
	require.Equal(t, len(colls), len(rows))
	assert.GreaterOrEqual(t, len(rows), spec.Collisions*spec.MinHadrons)
	assert.LessOrEqual(t, len(rows), spec.Collisions*spec.MaxHadrons)

	cuts := selection.DefaultCuts()
	for i := range rows {
		assert.True(t, cuts.Accept(&rows[i].He3, &rows[i].Hadron, &colls[i], false), "row %d", i)
	}
}

func TestDataset(t *testing.T) {
	rng := NewRNG(4711)
	spec := DefaultEventSpec()

	ds := rng.Dataset(spec, ingest.WithCuts(selection.DefaultCuts()))
	assert.Len(t, ds.Collisions, spec.Collisions)
	assert.Len(t, ds.Primaries, spec.Collisions)
	assert.Zero(t, ds.Stats.Rejected)
	assert.NoError(t, ds.Table.Validate(len(ds.Hadrons), len(ds.Collisions)))
	assert.Empty(t, ds.Table.Bin(ds.Binner.Overflow()))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	c1, r1 := rng.Events(DefaultEventSpec())

	rng.Reset()
	c2, r2 := rng.Events(DefaultEventSpec())

	assert.Equal(t, c1, c2)
	assert.Equal(t, r1, r2)
	assert.Equal(t, int64(4711), rng.Seed())
}
