package mixer

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/hupe1980/mixgo/binning"
	"github.com/hupe1980/mixgo/qa"
)

// DefaultDepth is the default number of mixing rounds per primary.
const DefaultDepth = 5

type options struct {
	depth       int
	is23        bool
	seed        int64
	rng         *rand.Rand
	recorder    qa.Recorder
	binner      *binning.Binner
	reuseCap    int
	workers     int
	mixOverflow bool
	logger      *slog.Logger
	progress    time.Duration
}

// Option configures a Mixer.
type Option func(*options)

// WithDepth sets the number of mixing rounds per primary (event mixing) or
// the number of pool draws per primary (pool strategies).
func WithDepth(depth int) Option {
	return func(o *options) {
		o.depth = depth
	}
}

// WithIs23 sets the data-era flag written to every pair.
func WithIs23(is23 bool) Option {
	return func(o *options) {
		o.is23 = is23
	}
}

// WithSeed seeds the generator. Parallel runs derive their per-chunk
// generators from this seed.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithRand sets the generator used by single-worker runs.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithRecorder sets the recorder for the after-mixing QA.
func WithRecorder(r qa.Recorder) Option {
	return func(o *options) {
		o.recorder = qa.OrNop(r)
	}
}

// WithBinner overrides the binner of the dataset.
func WithBinner(b *binning.Binner) Option {
	return func(o *options) {
		o.binner = b
	}
}

// WithReuseCap sets the event-mixing reuse cap.
func WithReuseCap(n int) Option {
	return func(o *options) {
		o.reuseCap = n
	}
}

// WithWorkers sets the number of mixing goroutines.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMixOverflow allows collisions of the overflow bin to be event-mixed
// with each other.
func WithMixOverflow(allow bool) Option {
	return func(o *options) {
		o.mixOverflow = allow
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProgress logs progress at most once per interval. Zero disables it.
func WithProgress(interval time.Duration) Option {
	return func(o *options) {
		o.progress = interval
	}
}

func applyOptions(opts []Option) options {
	o := options{
		depth:    DefaultDepth,
		recorder: qa.Nop{},
		reuseCap: DefaultReuseCap,
		workers:  1,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
