package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/hupe1980/mixgo/ingest"
	"github.com/hupe1980/mixgo/mixer"
)

// promCollector implements mixgo.MetricsCollector on a private registry
// that is pushed to a Pushgateway when the run ends.
type promCollector struct {
	registry *prometheus.Registry

	stageLatency *prometheus.HistogramVec
	stageBytes   *prometheus.CounterVec
	stageFiles   *prometheus.CounterVec

	rows      prometheus.Counter
	rejected  prometheus.Counter
	primaries prometheus.Gauge
	hadrons   prometheus.Gauge

	pairs     *prometheus.CounterVec
	capped    prometheus.Counter
	selfMix   prometheus.Counter
	saturated prometheus.Gauge
	mixTime   prometheus.Gauge

	runs    *prometheus.CounterVec
	runTime prometheus.Gauge
}

func newPromCollector() *promCollector {
	c := &promCollector{
		registry: prometheus.NewRegistry(),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mixgo_stage_duration_seconds",
			Help:    "Duration of store transfers",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		stageBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mixgo_stage_bytes_total",
			Help: "Bytes moved between the store and the work directory",
		}, []string{"op"}),
		stageFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mixgo_stage_files_total",
			Help: "Files moved between the store and the work directory",
		}, []string{"op"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mixgo_ingest_rows_total",
			Help: "Candidate rows read",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mixgo_ingest_rejected_total",
			Help: "Candidate rows rejected by the selection",
		}),
		primaries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mixgo_primaries",
			Help: "Unique He3 primaries of the dataset",
		}),
		hadrons: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mixgo_hadrons",
			Help: "Hadrons of the dataset",
		}),
		pairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mixgo_pairs_total",
			Help: "Mixed pairs written",
		}, []string{"strategy"}),
		capped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mixgo_capped_pairings_total",
			Help: "Pairings dropped by the reuse cap",
		}),
		selfMix: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mixgo_self_mix_skips_total",
			Help: "Event-mixing rounds that drew the primary's own collision",
		}),
		saturated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mixgo_saturated_hadrons",
			Help: "Hadrons that reached the reuse cap",
		}),
		mixTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mixgo_mix_duration_seconds",
			Help: "Wall time of the mixing phase",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mixgo_runs_total",
			Help: "Finished runs",
		}, []string{"status"}),
		runTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mixgo_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
	}

	c.registry.MustRegister(
		c.stageLatency, c.stageBytes, c.stageFiles,
		c.rows, c.rejected, c.primaries, c.hadrons,
		c.pairs, c.capped, c.selfMix, c.saturated, c.mixTime,
		c.runs, c.runTime,
	)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *promCollector) RecordStage(op string, files int, bytes int64, d time.Duration, err error) {
	c.stageLatency.WithLabelValues(op, status(err)).Observe(d.Seconds())
	c.stageBytes.WithLabelValues(op).Add(float64(bytes))
	c.stageFiles.WithLabelValues(op).Add(float64(files))
}

func (c *promCollector) RecordIngest(stats ingest.Stats, primaries, hadrons int, _ time.Duration, err error) {
	if err != nil {
		return
	}
	c.rows.Add(float64(stats.Rows))
	c.rejected.Add(float64(stats.Rejected))
	c.primaries.Set(float64(primaries))
	c.hadrons.Set(float64(hadrons))
}

func (c *promCollector) RecordMix(stats mixer.Stats, err error) {
	if err != nil {
		return
	}
	c.pairs.WithLabelValues(stats.Strategy.String()).Add(float64(stats.Pairs))
	c.capped.Add(float64(stats.CappedPairings))
	c.selfMix.Add(float64(stats.SelfMixSkips))
	if stats.Saturated != nil {
		c.saturated.Set(float64(stats.Saturated.GetCardinality()))
	}
	c.mixTime.Set(stats.Elapsed.Seconds())
}

func (c *promCollector) RecordRun(d time.Duration, err error) {
	c.runs.WithLabelValues(status(err)).Inc()
	c.runTime.Set(d.Seconds())
}

// Push sends the registry to the Pushgateway at url, grouped by run id.
func (c *promCollector) Push(ctx context.Context, url, job, runID string) error {
	return push.New(url, job).
		Gatherer(c.registry).
		Grouping("run", runID).
		PushContext(ctx)
}
