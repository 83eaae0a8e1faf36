package mixgo

import (
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/hupe1980/mixgo/ingest"
	"github.com/hupe1980/mixgo/mixer"
	"github.com/hupe1980/mixgo/stage"
)

// Summary describes a finished run.
type Summary struct {
	RunID     string    `json:"runId"`
	Strategy  string    `json:"strategy"`
	Depth     int       `json:"depth"`
	Seed      int64     `json:"seed"`
	Workers   int       `json:"workers"`
	Is23      bool      `json:"is23"`
	ApplyCuts bool      `json:"applyCuts"`
	Started   time.Time `json:"started"`
	// ElapsedSeconds is the wall time of the whole run.
	ElapsedSeconds float64 `json:"elapsedSeconds"`

	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`

	Ingest IngestSummary `json:"ingest"`
	Mixing MixingSummary `json:"mixing"`
	Stage  *StageSummary `json:"stage,omitempty"`
}

// IngestSummary mirrors ingest.Stats and the dataset sizes.
type IngestSummary struct {
	Rows       int  `json:"rows"`
	Accepted   int  `json:"accepted"`
	Rejected   int  `json:"rejected"`
	Misaligned bool `json:"misaligned"`
	Primaries  int  `json:"primaries"`
	Hadrons    int  `json:"hadrons"`
	Collisions int  `json:"collisions"`
}

// MixingSummary mirrors mixer.Stats.
type MixingSummary struct {
	Primaries        int     `json:"primaries"`
	Pairs            int     `json:"pairs"`
	SelfMixSkips     int     `json:"selfMixSkips"`
	CappedPairings   int     `json:"cappedPairings"`
	OverflowSkips    int     `json:"overflowSkips"`
	SignSkips        int     `json:"signSkips"`
	SaturatedHadrons uint64  `json:"saturatedHadrons"`
	ElapsedSeconds   float64 `json:"elapsedSeconds"`
}

// StageSummary mirrors stage.Stats.
type StageSummary struct {
	Fetched   int64 `json:"fetched"`
	Published int64 `json:"published"`
	Bytes     int64 `json:"bytes"`
}

func (s *Summary) setIngest(ds *ingest.Dataset) {
	s.Ingest = IngestSummary{
		Rows:       ds.Stats.Rows,
		Accepted:   ds.Stats.Accepted,
		Rejected:   ds.Stats.Rejected,
		Misaligned: ds.Stats.Misaligned,
		Primaries:  len(ds.Primaries),
		Hadrons:    len(ds.Hadrons),
		Collisions: len(ds.Collisions),
	}
}

func (s *Summary) setMixing(st mixer.Stats) {
	s.Mixing = MixingSummary{
		Primaries:      st.Primaries,
		Pairs:          st.Pairs,
		SelfMixSkips:   st.SelfMixSkips,
		CappedPairings: st.CappedPairings,
		OverflowSkips:  st.OverflowSkips,
		SignSkips:      st.SignSkips,
		ElapsedSeconds: st.Elapsed.Seconds(),
	}
	if st.Saturated != nil {
		s.Mixing.SaturatedHadrons = st.Saturated.GetCardinality()
	}
}

func (s *Summary) setStage(st stage.Stats) {
	s.Stage = &StageSummary{
		Fetched:   st.Fetched,
		Published: st.Published,
		Bytes:     st.Bytes,
	}
}

// WriteJSON encodes the summary as indented JSON.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func (s *Summary) writeFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.WriteJSON(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadSummary decodes a summary written by WriteJSON.
func ReadSummary(r io.Reader) (*Summary, error) {
	var s Summary
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
