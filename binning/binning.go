// Package binning maps collisions onto (vertex position, centrality) classes.
//
// Two collisions are compatible for event mixing only if they share a bin.
// Bins are equal-width and half-open: the lower edge of every bin is inclusive,
// the upper edge exclusive. Values outside the configured ranges, and NaNs,
// land in the reserved overflow bin ZBins*MultBins.
package binning

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("binning: invalid config")

// Config describes the vertex-position and centrality binning.
type Config struct {
	ZBins    int     `yaml:"zBins"`
	ZMin     float64 `yaml:"zMin"`
	ZMax     float64 `yaml:"zMax"`
	MultBins int     `yaml:"multBins"`
	MultMin  float64 `yaml:"multMin"`
	MultMax  float64 `yaml:"multMax"`
}

// DefaultConfig returns 10 z bins over [-10, 10) cm and 10 centrality bins
// over [0, 100) %.
func DefaultConfig() Config {
	return Config{
		ZBins:    10,
		ZMin:     -10,
		ZMax:     10,
		MultBins: 10,
		MultMin:  0,
		MultMax:  100,
	}
}

// Validate reports whether the configuration describes a usable binning.
func (c Config) Validate() error {
	switch {
	case c.ZBins <= 0:
		return fmt.Errorf("%w: zBins must be positive, got %d", ErrInvalidConfig, c.ZBins)
	case c.MultBins <= 0:
		return fmt.Errorf("%w: multBins must be positive, got %d", ErrInvalidConfig, c.MultBins)
	case !(c.ZMax > c.ZMin):
		return fmt.Errorf("%w: empty z range [%g, %g)", ErrInvalidConfig, c.ZMin, c.ZMax)
	case !(c.MultMax > c.MultMin):
		return fmt.Errorf("%w: empty centrality range [%g, %g)", ErrInvalidConfig, c.MultMin, c.MultMax)
	}
	return nil
}

// Binner computes bin indices. It is immutable and safe for concurrent use.
type Binner struct {
	cfg       Config
	zWidth    float64
	multWidth float64
}

// New creates a Binner from cfg.
func New(cfg Config) (*Binner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Binner{
		cfg:       cfg,
		zWidth:    (cfg.ZMax - cfg.ZMin) / float64(cfg.ZBins),
		multWidth: (cfg.MultMax - cfg.MultMin) / float64(cfg.MultBins),
	}, nil
}

// Default returns a Binner using DefaultConfig.
func Default() *Binner {
	b, _ := New(DefaultConfig())
	return b
}

// Config returns the configuration the Binner was built from.
func (b *Binner) Config() Config { return b.cfg }

// NumBins returns the number of bins including the overflow bin.
func (b *Binner) NumBins() int { return b.cfg.ZBins*b.cfg.MultBins + 1 }

// Overflow returns the index of the overflow bin.
func (b *Binner) Overflow() int { return b.cfg.ZBins * b.cfg.MultBins }

// IsOverflow reports whether bin is the overflow bin.
func (b *Binner) IsOverflow(bin int) bool { return bin == b.Overflow() }

// Index returns zBin*MultBins + multBin, or Overflow() when either value is
// out of range.
func (b *Binner) Index(z, centrality float64) int {
	zBin, ok := bucket(z, b.cfg.ZMin, b.cfg.ZMax, b.zWidth, b.cfg.ZBins)
	if !ok {
		return b.Overflow()
	}
	multBin, ok := bucket(centrality, b.cfg.MultMin, b.cfg.MultMax, b.multWidth, b.cfg.MultBins)
	if !ok {
		return b.Overflow()
	}
	return zBin*b.cfg.MultBins + multBin
}

// Split is the inverse of Index for regular bins.
func (b *Binner) Split(bin int) (zBin, multBin int, ok bool) {
	if bin < 0 || bin >= b.Overflow() {
		return 0, 0, false
	}
	return bin / b.cfg.MultBins, bin % b.cfg.MultBins, true
}

func bucket(v, lo, hi, width float64, n int) (int, bool) {
	if math.IsNaN(v) || v < lo || v >= hi {
		return 0, false
	}
	i := int(math.Floor((v - lo) / width))
	// (v-lo)/width may round up to n for v just below hi.
	if i >= n {
		i = n - 1
	}
	return i, true
}
