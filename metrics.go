package mixgo

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/mixgo/ingest"
	"github.com/hupe1980/mixgo/mixer"
)

// MetricsCollector receives the outcome of each run phase.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordStage is called after a fetch or publish step.
	RecordStage(op string, files int, bytes int64, duration time.Duration, err error)

	// RecordIngest is called after ingestion.
	RecordIngest(stats ingest.Stats, primaries, hadrons int, duration time.Duration, err error)

	// RecordMix is called after mixing.
	RecordMix(stats mixer.Stats, err error)

	// RecordRun is called once at the end of Run.
	RecordRun(duration time.Duration, err error)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStage(string, int, int64, time.Duration, error)       {}
func (NoopMetricsCollector) RecordIngest(ingest.Stats, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordMix(mixer.Stats, error)                              {}
func (NoopMetricsCollector) RecordRun(time.Duration, error)                            {}

// BasicMetricsCollector accumulates metrics in memory.
type BasicMetricsCollector struct {
	StageFiles  atomic.Int64
	StageBytes  atomic.Int64
	StageErrors atomic.Int64

	Rows      atomic.Int64
	Rejected  atomic.Int64
	Primaries atomic.Int64
	Hadrons   atomic.Int64

	Pairs          atomic.Int64
	CappedPairings atomic.Int64
	SelfMixSkips   atomic.Int64
	MixNanos       atomic.Int64

	Runs      atomic.Int64
	RunErrors atomic.Int64
	RunNanos  atomic.Int64
}

// RecordStage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStage(_ string, files int, bytes int64, _ time.Duration, err error) {
	b.StageFiles.Add(int64(files))
	b.StageBytes.Add(bytes)
	if err != nil {
		b.StageErrors.Add(1)
	}
}

// RecordIngest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIngest(stats ingest.Stats, primaries, hadrons int, _ time.Duration, _ error) {
	b.Rows.Add(int64(stats.Rows))
	b.Rejected.Add(int64(stats.Rejected))
	b.Primaries.Add(int64(primaries))
	b.Hadrons.Add(int64(hadrons))
}

// RecordMix implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMix(stats mixer.Stats, _ error) {
	b.Pairs.Add(int64(stats.Pairs))
	b.CappedPairings.Add(int64(stats.CappedPairings))
	b.SelfMixSkips.Add(int64(stats.SelfMixSkips))
	b.MixNanos.Add(stats.Elapsed.Nanoseconds())
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(duration time.Duration, err error) {
	b.Runs.Add(1)
	b.RunNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		StageFiles:     b.StageFiles.Load(),
		StageBytes:     b.StageBytes.Load(),
		StageErrors:    b.StageErrors.Load(),
		Rows:           b.Rows.Load(),
		Rejected:       b.Rejected.Load(),
		Primaries:      b.Primaries.Load(),
		Hadrons:        b.Hadrons.Load(),
		Pairs:          b.Pairs.Load(),
		CappedPairings: b.CappedPairings.Load(),
		SelfMixSkips:   b.SelfMixSkips.Load(),
		Runs:           b.Runs.Load(),
		RunErrors:      b.RunErrors.Load(),
		RunAvgNanos:    b.avgRunNanos(),
	}
}

func (b *BasicMetricsCollector) avgRunNanos() int64 {
	n := b.Runs.Load()
	if n == 0 {
		return 0
	}
	return b.RunNanos.Load() / n
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	StageFiles     int64
	StageBytes     int64
	StageErrors    int64
	Rows           int64
	Rejected       int64
	Primaries      int64
	Hadrons        int64
	Pairs          int64
	CappedPairings int64
	SelfMixSkips   int64
	Runs           int64
	RunErrors      int64
	RunAvgNanos    int64
}
