package mixer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/mixgo/binning"
	"github.com/hupe1980/mixgo/ingest"
	"github.com/hupe1980/mixgo/internal/random"
	"github.com/hupe1980/mixgo/model"
	"github.com/hupe1980/mixgo/physics"
)

var (
	// ErrBracketNotFound is returned by rotation mixing when the bin of a
	// primary holds no bracket of the primary's own collision.
	ErrBracketNotFound = errors.New("mixer: no bracket for collision")
	// ErrInvalidDepth is returned by New for a non-positive depth.
	ErrInvalidDepth = errors.New("mixer: mixing depth must be positive")
	// ErrInvalidReuseCap is returned by New for a non-positive reuse cap.
	ErrInvalidReuseCap = errors.New("mixer: reuse cap must be positive")
	// ErrInconsistentDataset is returned by New when the dataset collections
	// do not line up.
	ErrInconsistentDataset = errors.New("mixer: inconsistent dataset")
)

const (
	// chunkSize is the number of primaries mixed by one parallel task.
	chunkSize     = 256
	ctxCheckEvery = 256
)

// Stats summarizes a mixing run.
type Stats struct {
	Strategy Strategy
	// Primaries is the number of primaries visited.
	Primaries int
	// Pairs is the number of pairs delivered to the sink.
	Pairs int
	// SelfMixSkips counts event-mixing rounds that drew the primary's own
	// collision.
	SelfMixSkips int
	// CappedPairings counts event-mixing pairings dropped by the reuse cap.
	CappedPairings int
	// OverflowSkips counts primaries of the overflow bin left unmixed.
	OverflowSkips int
	// SignSkips counts primaries skipped by a pool strategy because no
	// hadron of the wanted relative sign exists.
	SignSkips int
	// Saturated holds the hadrons that reached the reuse cap.
	Saturated *roaring.Bitmap
	Elapsed   time.Duration
}

func (s *Stats) add(o Stats) {
	s.Primaries += o.Primaries
	s.Pairs += o.Pairs
	s.SelfMixSkips += o.SelfMixSkips
	s.CappedPairings += o.CappedPairings
	s.OverflowSkips += o.OverflowSkips
	s.SignSkips += o.SignSkips
}

// Mixer pairs the primaries of a dataset with hadrons. The dataset is only
// read.
type Mixer struct {
	ds     *ingest.Dataset
	o      options
	binner *binning.Binner

	// Number of hadrons with negative and non-negative pt.
	negative, positive int
}

// New returns a Mixer over ds.
func New(ds *ingest.Dataset, opts ...Option) (*Mixer, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: nil dataset", ErrInconsistentDataset)
	}
	o := applyOptions(opts)
	if o.depth < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, o.depth)
	}
	if o.reuseCap < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidReuseCap, o.reuseCap)
	}
	if o.workers < 1 {
		o.workers = 1
	}

	binner := o.binner
	if binner == nil {
		binner = ds.Binner
	}
	if binner == nil {
		binner = binning.Default()
	}
	if len(ds.Primaries) != len(ds.Collisions) {
		return nil, fmt.Errorf("%w: %d primaries, %d collisions", ErrInconsistentDataset, len(ds.Primaries), len(ds.Collisions))
	}
	if len(ds.Table) != 0 && len(ds.Table) != binner.NumBins() {
		return nil, fmt.Errorf("%w: table has %d bins, binner %d", ErrInconsistentDataset, len(ds.Table), binner.NumBins())
	}

	m := &Mixer{ds: ds, o: o, binner: binner}
	for i := range ds.Hadrons {
		if ds.Hadrons[i].Pt < 0 {
			m.negative++
		} else {
			m.positive++
		}
	}
	return m, nil
}

// Run mixes every primary with strategy and delivers the pairs to sink in
// primary order. The reuse counter starts from zero on every call.
func (m *Mixer) Run(ctx context.Context, strategy Strategy, sink Sink) (Stats, error) {
	if !strategy.Valid() {
		return Stats{}, fmt.Errorf("%w: %d", ErrUnknownStrategy, strategy)
	}
	if sink == nil {
		sink = Discard
	}

	start := time.Now()
	reuse := NewReuseCounter(len(m.ds.Hadrons), m.o.reuseCap)

	var progress *rate.Sometimes
	if m.o.progress > 0 {
		progress = &rate.Sometimes{Interval: m.o.progress}
	}

	m.o.logger.InfoContext(ctx, "mixing started",
		"strategy", strategy.String(),
		"depth", m.o.depth,
		"seed", m.o.seed,
		"workers", m.o.workers,
		"primaries", len(m.ds.Primaries),
		"hadrons", len(m.ds.Hadrons),
	)

	var (
		st  Stats
		err error
	)
	if m.o.workers == 1 {
		st, err = m.runSequential(ctx, strategy, sink, reuse, progress)
	} else {
		st, err = m.runParallel(ctx, strategy, sink, reuse, progress)
	}
	st.Strategy = strategy
	st.Saturated = reuse.Saturated()
	st.Elapsed = time.Since(start)
	if err != nil {
		return st, err
	}

	m.o.logger.InfoContext(ctx, "mixing completed",
		"strategy", strategy.String(),
		"primaries", st.Primaries,
		"pairs", st.Pairs,
		"self_mix_skips", st.SelfMixSkips,
		"capped", st.CappedPairings,
		"saturated", st.Saturated.GetCardinality(),
		"elapsed", st.Elapsed,
	)
	return st, nil
}

func (m *Mixer) runSequential(ctx context.Context, strategy Strategy, sink Sink, reuse *ReuseCounter, progress *rate.Sometimes) (Stats, error) {
	rng := m.o.rng
	if rng == nil {
		rng = random.New(m.o.seed)
	}
	w := &worker{m: m, rng: rng, reuse: reuse, progress: progress}
	w.emit = func(p *model.Pair) error {
		w.stats.Pairs++
		return m.deliver(sink, p)
	}
	err := w.mix(ctx, strategy, 0, len(m.ds.Primaries))
	return w.stats, err
}

// runParallel mixes windows of o.workers chunks concurrently and delivers
// each window in chunk order before starting the next one.
func (m *Mixer) runParallel(ctx context.Context, strategy Strategy, sink Sink, reuse *ReuseCounter, progress *rate.Sometimes) (Stats, error) {
	n := len(m.ds.Primaries)
	nChunks := (n + chunkSize - 1) / chunkSize

	var total Stats
	for base := 0; base < nChunks; base += m.o.workers {
		end := min(base+m.o.workers, nChunks)
		bufs := make([][]model.Pair, end-base)
		stats := make([]Stats, end-base)

		g, gctx := errgroup.WithContext(ctx)
		for c := base; c < end; c++ {
			k := c - base
			g.Go(func() error {
				w := &worker{
					m:        m,
					rng:      random.Derive(m.o.seed, uint64(c)),
					reuse:    reuse,
					progress: progress,
				}
				w.emit = func(p *model.Pair) error {
					bufs[k] = append(bufs[k], *p)
					return nil
				}
				err := w.mix(gctx, strategy, c*chunkSize, min((c+1)*chunkSize, n))
				stats[k] = w.stats
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return total, err
		}

		for k := range bufs {
			total.add(stats[k])
			for i := range bufs[k] {
				total.Pairs++
				if err := m.deliver(sink, &bufs[k][i]); err != nil {
					return total, err
				}
			}
		}
	}
	return total, nil
}

func (m *Mixer) deliver(sink Sink, p *model.Pair) error {
	rec := m.o.recorder
	rec.InvMassAfter(p.InvMass, p.Sign)
	rec.PrimaryMixed(float64(p.He3.Pt))
	rec.PairKinematics(p.SignedP(), p.InvMass)
	if err := sink.WritePair(p); err != nil {
		return fmt.Errorf("mixer: sink: %w", err)
	}
	return nil
}

// available returns the number of hadrons that form a pair of sign want
// with a He3 of signed momentum pt.
func (m *Mixer) available(pt float32, want model.Sign) int {
	negative := pt < 0
	if (want == model.LikeSign) == negative {
		return m.negative
	}
	return m.positive
}

type worker struct {
	m        *Mixer
	rng      *rand.Rand
	reuse    *ReuseCounter
	progress *rate.Sometimes
	emit     func(p *model.Pair) error
	stats    Stats
}

func (w *worker) mix(ctx context.Context, strategy Strategy, lo, hi int) error {
	for i := lo; i < hi; i++ {
		if (i-lo)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		w.stats.Primaries++
		w.m.o.recorder.PrimaryUnique(float64(w.m.ds.Primaries[i].Pt))

		var err error
		switch strategy {
		case EventMixing:
			err = w.event(i)
		case RotationMixing:
			err = w.rotation(i)
		case RotationPool:
			err = w.pool(i, model.UnlikeSign, true)
		case LikeSignPool:
			err = w.pool(i, model.LikeSign, false)
		}
		if err != nil {
			return err
		}

		if w.progress != nil {
			w.progress.Do(func() {
				w.m.o.logger.InfoContext(ctx, "mixing progress",
					"primary", i,
					"primaries", len(w.m.ds.Primaries),
				)
			})
		}
	}
	return nil
}

func (w *worker) event(i int) error {
	ds := w.m.ds
	he3, coll := &ds.Primaries[i], &ds.Collisions[i]

	bin := w.m.binner.Index(float64(coll.Z), float64(coll.Centrality))
	if w.m.binner.IsOverflow(bin) && !w.m.o.mixOverflow {
		w.stats.OverflowSkips++
		return nil
	}
	brackets := ds.Table.Bin(bin)

	for round := 0; round < w.m.o.depth && round < len(brackets); round++ {
		b := brackets[w.rng.IntN(len(brackets))]
		if b.CollisionID == coll.ID {
			w.stats.SelfMixSkips++
			continue
		}
		for j := b.Start; j <= b.End; j++ {
			if !w.reuse.Acquire(j) {
				w.stats.CappedPairings++
				continue
			}
			p := model.NewPair(he3, &ds.Hadrons[j], coll, w.m.o.is23 || coll.Is23, nil)
			if err := w.emit(&p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *worker) rotation(i int) error {
	ds := w.m.ds
	he3, coll := &ds.Primaries[i], &ds.Collisions[i]

	bin := w.m.binner.Index(float64(coll.Z), float64(coll.Centrality))
	b, ok := ds.Table.Find(bin, coll.ID)
	if !ok {
		return fmt.Errorf("%w: primary %d, collision %d, bin %d", ErrBracketNotFound, i, coll.ID, bin)
	}
	for j := b.Start; j <= b.End; j++ {
		p := model.NewPair(he3, &ds.Hadrons[j], coll, w.m.o.is23 || coll.Is23, nil)
		if err := w.emit(&p); err != nil {
			return err
		}
	}
	return nil
}

// pool draws depth hadrons of sign want from the whole pool by rejection
// sampling.
func (w *worker) pool(i int, want model.Sign, rotate bool) error {
	ds := w.m.ds
	he3, coll := &ds.Primaries[i], &ds.Collisions[i]

	if w.m.available(he3.Pt, want) == 0 {
		w.stats.SignSkips++
		return nil
	}

	n := len(ds.Hadrons)
	for d := 0; d < w.m.o.depth; d++ {
		j := w.rng.IntN(n)
		for model.RelativeSign(he3.Pt, ds.Hadrons[j].Pt) != want {
			j = w.rng.IntN(n)
		}
		had := &ds.Hadrons[j]

		var phi *float64
		if rotate {
			rotated := physics.RandomAngleRotation(float64(had.Phi), w.rng)
			phi = &rotated
		}
		p := model.NewPair(he3, had, coll, w.m.o.is23 || coll.Is23, phi)
		if err := w.emit(&p); err != nil {
			return err
		}
	}
	return nil
}
