package binning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinner_Index(t *testing.T) {
	b := Default()
	require.Equal(t, 101, b.NumBins())
	require.Equal(t, 100, b.Overflow())

	t.Run("Regular", func(t *testing.T) {
		assert.Equal(t, 0, b.Index(-10, 0))
		assert.Equal(t, 5*10+3, b.Index(0.5, 35))
		assert.Equal(t, 99, b.Index(9.999, 99.9))
	})

	t.Run("LowerEdgeInclusive", func(t *testing.T) {
		// z = 0 is the lower edge of z bin 5, centrality 10 the lower edge of bin 1.
		assert.Equal(t, 5*10+1, b.Index(0, 10))
		assert.Equal(t, 4*10+0, b.Index(-0.0001, 9.9999))
	})

	t.Run("Overflow", func(t *testing.T) {
		assert.Equal(t, b.Overflow(), b.Index(10, 50))
		assert.Equal(t, b.Overflow(), b.Index(-10.5, 50))
		assert.Equal(t, b.Overflow(), b.Index(0, 100))
		assert.Equal(t, b.Overflow(), b.Index(0, -1))
		assert.Equal(t, b.Overflow(), b.Index(math.NaN(), 50))
		assert.True(t, b.IsOverflow(b.Index(-99, 50)))
	})

	t.Run("Split", func(t *testing.T) {
		z, m, ok := b.Split(b.Index(0.5, 35))
		require.True(t, ok)
		assert.Equal(t, 5, z)
		assert.Equal(t, 3, m)

		_, _, ok = b.Split(b.Overflow())
		assert.False(t, ok)
	})
}

func TestBinner_CustomConfig(t *testing.T) {
	b, err := New(Config{ZBins: 3, ZMin: 0, ZMax: 0.3, MultBins: 2, MultMin: 0, MultMax: 1})
	require.NoError(t, err)

	// 0.1/0.1 and 0.2/0.1 are not exact in binary floating point; the edge must
	// still resolve to the upper bin.
	assert.Equal(t, 1*2, b.Index(0.1, 0))
	assert.Equal(t, 2*2+1, b.Index(0.29999999999, 0.5))
	assert.Equal(t, 6, b.Overflow())
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := []Config{
		{ZBins: 0, ZMin: 0, ZMax: 1, MultBins: 1, MultMin: 0, MultMax: 1},
		{ZBins: 1, ZMin: 0, ZMax: 1, MultBins: -1, MultMin: 0, MultMax: 1},
		{ZBins: 1, ZMin: 1, ZMax: 1, MultBins: 1, MultMin: 0, MultMax: 1},
		{ZBins: 1, ZMin: 0, ZMax: 1, MultBins: 1, MultMin: 2, MultMax: 1},
	}
	for _, cfg := range bad {
		_, err := New(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}
