package ingest

import (
	"log/slog"

	"github.com/hupe1980/mixgo/binning"
	"github.com/hupe1980/mixgo/qa"
	"github.com/hupe1980/mixgo/selection"
)

type options struct {
	cuts     *selection.Cuts
	binner   *binning.Binner
	recorder qa.Recorder
	is23     bool
	logger   *slog.Logger
}

// Option configures Ingest.
type Option func(*options)

// WithCuts enables the selection. Rows rejected by cuts are dropped.
func WithCuts(cuts selection.Cuts) Option {
	return func(o *options) {
		o.cuts = &cuts
	}
}

// WithBinner sets the binner used to index brackets. Defaults to
// binning.Default().
func WithBinner(b *binning.Binner) Option {
	return func(o *options) {
		if b != nil {
			o.binner = b
		}
	}
}

// WithRecorder sets the recorder for the before-mixing QA.
func WithRecorder(r qa.Recorder) Option {
	return func(o *options) {
		o.recorder = qa.OrNop(r)
	}
}

// WithIs23 marks every collision as 2023 data, regardless of the per-row
// flag.
func WithIs23(is23 bool) Option {
	return func(o *options) {
		o.is23 = is23
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

func applyOptions(opts []Option) options {
	o := options{
		binner:   binning.Default(),
		recorder: qa.Nop{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
