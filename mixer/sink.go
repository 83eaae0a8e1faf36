package mixer

import (
	"errors"

	"github.com/hupe1980/mixgo/model"
)

// Sink receives mixed pairs in delivery order. The pair is only valid for
// the duration of the call.
type Sink interface {
	WritePair(p *model.Pair) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(p *model.Pair) error

func (f SinkFunc) WritePair(p *model.Pair) error { return f(p) }

type discard struct{}

func (discard) WritePair(*model.Pair) error { return nil }

// Discard drops every pair.
var Discard Sink = discard{}

type multiSink []Sink

func (m multiSink) WritePair(p *model.Pair) error {
	var errs []error
	for _, s := range m {
		if err := s.WritePair(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MultiSink duplicates every pair to each of sinks.
func MultiSink(sinks ...Sink) Sink {
	switch len(sinks) {
	case 0:
		return Discard
	case 1:
		return sinks[0]
	}
	return multiSink(sinks)
}
