package mixgo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/mixgo/binning"
	"github.com/hupe1980/mixgo/blobstore"
	"github.com/hupe1980/mixgo/config"
	"github.com/hupe1980/mixgo/ingest"
	"github.com/hupe1980/mixgo/internal/resource"
	"github.com/hupe1980/mixgo/mixer"
	"github.com/hupe1980/mixgo/qa"
	"github.com/hupe1980/mixgo/sink/pairlog"
	"github.com/hupe1980/mixgo/sink/sqlite"
	"github.com/hupe1980/mixgo/stage"
	"github.com/hupe1980/mixgo/tree"
	"go-hep.org/x/hep/groot"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/hupe1980/mixgo"

// Run executes one mixing job: it stages the inputs, optionally merges the
// DF_* partitions, ingests and selects the candidates, mixes them with the
// configured strategy and writes the MixedTree, the QA histograms and every
// enabled sink. Outputs are published back to the store when one is
// configured.
//
// An invalid configuration is reported as *ConfigError before any output is
// created.
func Run(ctx context.Context, cfg config.Config, opts ...Option) (*Summary, error) {
	o := applyOptions(opts)
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{cause: err}
	}

	runID := o.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	start := time.Now()
	r := &runner{
		cfg:     cfg,
		o:       o,
		logger:  o.logger.WithRun(runID).WithStrategy(cfg.MixingStrategy),
		tracer:  o.tracerProvider.Tracer(tracerName),
		hist:    qa.NewHistograms(),
		cleanup: func() {},
		summary: &Summary{
			RunID:     runID,
			Strategy:  cfg.MixingStrategy.String(),
			Depth:     cfg.MixingDepth,
			Seed:      cfg.RandomSeed,
			Workers:   cfg.Workers,
			Is23:      cfg.Is23,
			ApplyCuts: cfg.ApplyCuts,
			Started:   start,
		},
	}

	ctx, span := r.tracer.Start(ctx, "mixgo.Run", trace.WithAttributes(
		attribute.String("mixgo.run_id", runID),
		attribute.String("mixgo.strategy", cfg.MixingStrategy.String()),
		attribute.Int("mixgo.depth", cfg.MixingDepth),
		attribute.Int64("mixgo.seed", cfg.RandomSeed),
	))
	defer span.End()

	err := translateError(r.run(ctx))
	r.summary.ElapsedSeconds = time.Since(start).Seconds()
	o.metricsCollector.RecordRun(time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.ErrorContext(ctx, "run failed", "error", err)
		return nil, err
	}

	r.logger.InfoContext(ctx, "run completed",
		"pairs", r.summary.Mixing.Pairs,
		"elapsed", time.Since(start),
	)
	return r.summary, nil
}

type runner struct {
	cfg     config.Config
	o       options
	logger  *Logger
	tracer  trace.Tracer
	hist    *qa.Histograms
	stager  *stage.Stager
	cleanup func()
	summary *Summary
}

func (r *runner) run(ctx context.Context) error {
	if err := r.openStore(); err != nil {
		return err
	}
	defer r.cleanup()

	cands, colls, err := r.stageIn(ctx)
	if err != nil {
		return err
	}

	ds, err := r.ingest(ctx, cands, colls)
	if err != nil {
		return err
	}

	outputs, err := r.mix(ctx, ds)
	if err != nil {
		return err
	}

	if r.cfg.QAPlotsDir != "" {
		plots, err := r.plot(ctx)
		if err != nil {
			return err
		}
		outputs = append(outputs, plots...)
	}

	for _, up := range outputs {
		r.summary.Outputs = append(r.summary.Outputs, up.Name)
	}
	if err := r.stageOut(ctx, outputs...); err != nil {
		return err
	}
	if r.stager != nil {
		r.summary.setStage(r.stager.Stats())
	}

	if r.cfg.SummaryFileName != "" {
		p, err := r.localFile(r.cfg.SummaryFileName)
		if err != nil {
			return err
		}
		if err := r.summary.writeFile(p); err != nil {
			return err
		}
		return r.stageOut(ctx, stage.Upload{Path: p, Name: r.cfg.SummaryFileName})
	}
	return nil
}

// openStore resolves the store of config.Store.URL and prepares the work
// directory. Without a URL file names are local paths and no stager exists.
func (r *runner) openStore() error {
	sc := r.cfg.Store
	if sc.URL == "" {
		return nil
	}

	loc, err := config.ParseLocation(sc.URL)
	if err != nil {
		return &ConfigError{cause: err}
	}

	store := r.o.store
	if store == nil {
		if loc.Scheme != config.SchemeFile {
			return &ConfigError{cause: fmt.Errorf("%w: %s", ErrNoStore, sc.URL)}
		}
		store = blobstore.NewLocalStore(loc.Dir)
	}

	workDir := sc.WorkDir
	if workDir == "" {
		workDir, err = os.MkdirTemp("", "mixgo-")
		if err != nil {
			return err
		}
		r.cleanup = func() { _ = os.RemoveAll(workDir) }
	}

	rc := resource.NewController(resource.Config{
		MaxTransfers:       sc.MaxTransfers,
		IOLimitBytesPerSec: sc.IOLimitBytesPerSec,
	})
	r.stager, err = stage.New(store, workDir,
		stage.WithController(rc),
		stage.WithLogger(r.logger.Logger),
	)
	if err != nil {
		r.cleanup()
		r.cleanup = func() {}
		return err
	}
	return nil
}

// local maps a configured file name to the path it has on disk.
func (r *runner) local(name string) string {
	if r.stager != nil {
		return r.stager.LocalPath(name)
	}
	return name
}

// localFile is local for files about to be created.
func (r *runner) localFile(name string) (string, error) {
	p := r.local(name)
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	return p, nil
}

func (r *runner) inputs() []string {
	if r.cfg.DoMerge {
		return []string{r.cfg.InputFileName}
	}
	if r.cfg.CandidatesFileName == r.cfg.CollisionsFileName {
		return []string{r.cfg.CandidatesFileName}
	}
	return []string{r.cfg.CandidatesFileName, r.cfg.CollisionsFileName}
}

// stageIn makes the inputs available locally and returns the paths of the
// candidate and collision files.
func (r *runner) stageIn(ctx context.Context) (string, string, error) {
	names := r.inputs()
	r.summary.Inputs = names

	if r.stager != nil {
		fctx, span := r.tracer.Start(ctx, "mixgo.fetch", trace.WithAttributes(
			attribute.StringSlice("mixgo.inputs", names),
		))
		start := time.Now()
		_, err := r.stager.Fetch(fctx, names...)
		elapsed := time.Since(start)
		st := r.stager.Stats()
		r.logger.LogStage(fctx, "fetch", len(names), st.Bytes, elapsed, err)
		r.o.metricsCollector.RecordStage("fetch", len(names), st.Bytes, elapsed, err)
		endSpan(span, err)
		if err != nil {
			return "", "", &StageError{Op: "fetch", cause: err}
		}
	} else {
		for _, name := range names {
			if _, err := os.Stat(name); err != nil {
				return "", "", fmt.Errorf("%w: %w", ErrInputNotFound, err)
			}
		}
	}

	cands := r.local(r.cfg.CandidatesFileName)
	colls := r.local(r.cfg.CollisionsFileName)
	if !r.cfg.DoMerge {
		return cands, colls, nil
	}

	mctx, span := r.tracer.Start(ctx, "mixgo.merge")
	in := r.local(r.cfg.InputFileName)
	merged, err := r.localFile(r.cfg.CandidatesFileName)
	if err == nil {
		err = tree.Merge(mctx, in, merged, r.logger.Logger)
	}
	r.logger.LogMerge(mctx, in, merged, err)
	endSpan(span, err)
	if err != nil {
		return "", "", err
	}
	return merged, merged, nil
}

func (r *runner) ingest(ctx context.Context, candPath, collPath string) (*ingest.Dataset, error) {
	ctx, span := r.tracer.Start(ctx, "mixgo.ingest")
	start := time.Now()

	ds, err := r.load(ctx, candPath, collPath)

	elapsed := time.Since(start)
	r.logger.LogIngest(ctx, ds, elapsed, err)
	if err == nil {
		r.summary.setIngest(ds)
		r.o.metricsCollector.RecordIngest(ds.Stats, len(ds.Primaries), len(ds.Hadrons), elapsed, nil)
		span.SetAttributes(
			attribute.Int("mixgo.primaries", len(ds.Primaries)),
			attribute.Int("mixgo.hadrons", len(ds.Hadrons)),
			attribute.Int("mixgo.rejected", ds.Stats.Rejected),
		)
	} else {
		r.o.metricsCollector.RecordIngest(ingest.Stats{}, 0, 0, elapsed, err)
	}
	endSpan(span, err)
	return ds, err
}

func (r *runner) load(ctx context.Context, candPath, collPath string) (*ingest.Dataset, error) {
	binner, err := binning.New(r.cfg.Binning)
	if err != nil {
		return nil, &ConfigError{cause: err}
	}

	cands, err := tree.Open(candPath)
	if err != nil {
		return nil, err
	}
	defer cands.Close()

	colls := cands
	if collPath != candPath {
		colls, err = tree.Open(collPath)
		if err != nil {
			return nil, err
		}
		defer colls.Close()
	}

	opts := []ingest.Option{
		ingest.WithBinner(binner),
		ingest.WithRecorder(r.hist),
		ingest.WithIs23(r.cfg.Is23),
		ingest.WithLogger(r.logger.Logger),
	}
	if r.cfg.ApplyCuts {
		opts = append(opts, ingest.WithCuts(r.cfg.Cuts))
	}
	return ingest.Ingest(ctx, colls.Collisions(), cands.Candidates(), opts...)
}

// mix writes the MixedTree and the enabled sinks and returns the files to
// publish.
func (r *runner) mix(ctx context.Context, ds *ingest.Dataset) (_ []stage.Upload, err error) {
	ctx, span := r.tracer.Start(ctx, "mixgo.mix")
	defer func() { endSpan(span, err) }()

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		closers = nil
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = closeAll()
		}
	}()

	outPath, err := r.localFile(r.cfg.OutputFileName)
	if err != nil {
		return nil, err
	}
	out, err := groot.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", outPath, err)
	}
	pw, err := tree.NewPairWriter(out)
	if err != nil {
		_ = out.Close()
		return nil, err
	}
	closers = append(closers,
		pw.Close,
		func() error { return r.hist.Save(out) },
		out.Close,
	)
	outputs := []stage.Upload{{Path: outPath, Name: r.cfg.OutputFileName}}
	sinks := []mixer.Sink{pw}

	if name := r.cfg.Sinks.PairLog; name != "" {
		p, err := r.localFile(name)
		if err != nil {
			return nil, err
		}
		f, err := os.Create(p)
		if err != nil {
			return nil, err
		}
		bw := bufio.NewWriterSize(f, 1<<20)
		lw, err := pairlog.NewWriter(bw, pairlog.WithCodec(r.cfg.Sinks.PairLogCodec))
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		closers = append(closers, func() error {
			return errors.Join(lw.Close(), bw.Flush(), f.Close())
		})
		outputs = append(outputs, stage.Upload{Path: p, Name: name})
		sinks = append(sinks, lw)
	}

	if name := r.cfg.Sinks.SQLite; name != "" {
		p, err := r.localFile(name)
		if err != nil {
			return nil, err
		}
		db, err := sqlite.Open(p, sqlite.WithRun(r.summary.RunID, r.cfg.MixingStrategy.String()))
		if err != nil {
			return nil, err
		}
		closers = append(closers, db.Close)
		outputs = append(outputs, stage.Upload{Path: p, Name: name})
		sinks = append(sinks, db)
	}
	sinks = append(sinks, r.o.sinks...)

	m, err := mixer.New(ds,
		mixer.WithDepth(r.cfg.MixingDepth),
		mixer.WithIs23(r.cfg.Is23),
		mixer.WithSeed(r.cfg.RandomSeed),
		mixer.WithRecorder(r.hist),
		mixer.WithReuseCap(r.cfg.ReuseCap),
		mixer.WithWorkers(r.cfg.Workers),
		mixer.WithMixOverflow(r.cfg.MixOverflow),
		mixer.WithLogger(r.logger.Logger),
		mixer.WithProgress(r.o.progress),
	)
	if err != nil {
		return nil, err
	}

	stats, err := m.Run(ctx, r.cfg.MixingStrategy, mixer.MultiSink(sinks...))
	r.logger.LogMix(ctx, stats, r.cfg.MixingDepth, r.cfg.RandomSeed, err)
	r.o.metricsCollector.RecordMix(stats, err)
	if err != nil {
		return nil, err
	}
	r.summary.setMixing(stats)
	span.SetAttributes(
		attribute.Int("mixgo.pairs", stats.Pairs),
		attribute.Int("mixgo.capped", stats.CappedPairings),
	)

	if err := closeAll(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (r *runner) plot(ctx context.Context) ([]stage.Upload, error) {
	dir := r.local(r.cfg.QAPlotsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := r.hist.Plot(dir); err != nil {
		return nil, fmt.Errorf("qa plots: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ups []stage.Upload
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ups = append(ups, stage.Upload{
			Path: filepath.Join(dir, e.Name()),
			Name: path.Join(r.cfg.QAPlotsDir, e.Name()),
		})
	}
	r.logger.DebugContext(ctx, "qa plots written", "dir", dir, "files", len(ups))
	return ups, nil
}

func (r *runner) stageOut(ctx context.Context, uploads ...stage.Upload) error {
	if r.stager == nil || len(uploads) == 0 {
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "mixgo.publish", trace.WithAttributes(
		attribute.Int("mixgo.files", len(uploads)),
	))
	before := r.stager.Stats().Bytes
	start := time.Now()
	err := r.stager.Publish(ctx, uploads...)
	elapsed := time.Since(start)
	bytes := r.stager.Stats().Bytes - before
	r.logger.LogStage(ctx, "publish", len(uploads), bytes, elapsed, err)
	r.o.metricsCollector.RecordStage("publish", len(uploads), bytes, elapsed, err)
	endSpan(span, err)
	if err != nil {
		return &StageError{Op: "publish", cause: err}
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
