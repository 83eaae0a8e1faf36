package mixgo

import (
	"time"

	"github.com/hupe1980/mixgo/blobstore"
	"github.com/hupe1980/mixgo/mixer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	tracerProvider   trace.TracerProvider
	store            blobstore.Store
	sinks            []mixer.Sink
	runID            string
	progress         time.Duration
}

// Option configures Run.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithStore supplies the object store that config.Store.URL points to.
// file:// URLs need no store; Run opens a blobstore.LocalStore for them.
func WithStore(s blobstore.Store) Option {
	return func(o *options) { o.store = s }
}

// WithSink adds a sink that receives every mixed pair next to the
// configured outputs.
func WithSink(s mixer.Sink) Option {
	return func(o *options) {
		if s != nil {
			o.sinks = append(o.sinks, s)
		}
	}
}

// WithRunID fixes the run identifier. A random UUID is used by default.
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

// WithProgress logs mixing progress at most once per interval.
func WithProgress(interval time.Duration) Option {
	return func(o *options) { o.progress = interval }
}

func applyOptions(opts []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		tracerProvider:   otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
