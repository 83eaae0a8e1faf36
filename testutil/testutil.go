package testutil

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/hupe1980/mixgo/ingest"
	"github.com/hupe1980/mixgo/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: newRand(seed),
		seed: seed,
	}
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = newRand(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// EventSpec describes a synthetic sample.
type EventSpec struct {
	Collisions int
	// Hadrons per collision are drawn uniformly from [MinHadrons, MaxHadrons].
	MinHadrons int
	MaxHadrons int
	ZMin, ZMax float64
	CentMin    float64
	CentMax    float64
	// NegativeFraction is the probability of a negative track charge.
	NegativeFraction float64
	Is23             bool
}

// DefaultEventSpec returns a small sample that stays inside the default
// binning.
func DefaultEventSpec() EventSpec {
	return EventSpec{
		Collisions:       200,
		MinHadrons:       1,
		MaxHadrons:       4,
		ZMin:             -9.9,
		ZMax:             9.9,
		CentMin:          0,
		CentMax:          99,
		NegativeFraction: 0.5,
	}
}

// Events generates aligned collision and candidate rows. Consecutive
// collisions are at least 1e-3 cm apart so that ingestion separates them.
func (r *RNG) Events(spec EventSpec) ([]model.Collision, []model.CandidateRow) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		colls []model.Collision
		rows  []model.CandidateRow
		prevZ = math.Inf(1)
	)
	for c := 0; c < spec.Collisions; c++ {
		z := r.uniform(spec.ZMin, spec.ZMax)
		if math.Abs(z-prevZ) < 1e-3 {
			z = prevZ + 1e-2
			if z >= spec.ZMax {
				z = prevZ - 1e-2
			}
		}
		prevZ = z

		coll := model.Collision{
			Z:          float32(z),
			Centrality: float32(r.uniform(spec.CentMin, spec.CentMax)),
			Is23:       spec.Is23,
		}
		he3 := r.he3(spec.NegativeFraction)

		n := spec.MinHadrons
		if spec.MaxHadrons > spec.MinHadrons {
			n += r.rand.IntN(spec.MaxHadrons - spec.MinHadrons + 1)
		}
		for i := 0; i < n; i++ {
			colls = append(colls, coll)
			rows = append(rows, model.CandidateRow{He3: he3, Hadron: r.hadron(spec.NegativeFraction)})
		}
	}
	return colls, rows
}

// Dataset ingests Events(spec). It panics on error, which cannot happen for
// in-memory streams and a background context.
func (r *RNG) Dataset(spec EventSpec, opts ...ingest.Option) *ingest.Dataset {
	colls, rows := r.Events(spec)
	ds, err := ingest.Ingest(context.Background(), ingest.Slice(colls), ingest.Slice(rows), opts...)
	if err != nil {
		panic(err)
	}
	return ds
}

func (r *RNG) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*r.rand.Float64()
}

func (r *RNG) charge(negativeFraction float64) float32 {
	if r.rand.Float64() < negativeFraction {
		return -1
	}
	return 1
}

func (r *RNG) he3(negativeFraction float64) model.He3Candidate {
	return model.He3Candidate{
		Pt:             r.charge(negativeFraction) * float32(r.uniform(1, 6)),
		Eta:            float32(r.uniform(-0.8, 0.8)),
		Phi:            float32(r.uniform(-math.Pi, math.Pi)),
		DCAxy:          float32(r.uniform(-1e-3, 1e-3)),
		DCAz:           float32(r.uniform(-1e-3, 1e-3)),
		SignalTPC:      float32(r.uniform(400, 1200)),
		InnerParamTPC:  float32(r.uniform(0.5, 3)),
		ITSClusterSize: uint32(r.rand.IntN(1 << 28)),
		PIDTrk:         7,
		NClsTPC:        uint8(120 + r.rand.IntN(30)),
		NSigmaTPC:      float32(r.uniform(-1, 2)),
		Chi2TPC:        float32(r.uniform(0.5, 3)),
		CollisionID:    -1,
	}
}

func (r *RNG) hadron(negativeFraction float64) model.HadronCandidate {
	return model.HadronCandidate{
		Pt:             r.charge(negativeFraction) * float32(r.uniform(0.3, 3)),
		Eta:            float32(r.uniform(-0.8, 0.8)),
		Phi:            float32(r.uniform(-math.Pi, math.Pi)),
		DCAxy:          float32(r.uniform(-1e-3, 1e-3)),
		DCAz:           float32(r.uniform(-1e-3, 1e-3)),
		SignalTPC:      float32(r.uniform(40, 200)),
		InnerParamTPC:  float32(r.uniform(0.3, 3)),
		MassTOF:        float32(r.uniform(0.85, 1)),
		ITSClusterSize: uint32(r.rand.IntN(1 << 28)),
		PIDTrk:         2,
		NSigmaTPC:      float32(r.uniform(-1.5, 1.5)),
		NSigmaTOF:      float32(r.uniform(-1.5, 1.5)),
		Chi2TPC:        float32(r.uniform(0.5, 3)),
	}
}
