// Package config loads and validates the YAML run configuration.
//
// Keys follow the analysis macro configuration (doMerge, mixingStrategy,
// mixingDepth, is23, applyCuts, randomSeed, inputFileName, outputFileName)
// and extend it with the options of the Go runner.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/mixgo/binning"
	"github.com/hupe1980/mixgo/mixer"
	"github.com/hupe1980/mixgo/selection"
	"github.com/hupe1980/mixgo/sink/pairlog"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks every validation failure.
var ErrInvalid = errors.New("config: invalid")

// FieldError reports one invalid key.
type FieldError struct {
	Field string
	Value any
	cause error
}

func (e *FieldError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("config: %s=%v: %v", e.Field, e.Value, e.cause)
	}
	return fmt.Sprintf("config: invalid %s: %v", e.Field, e.Value)
}

func (e *FieldError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrInvalid, e.cause}
	}
	return []error{ErrInvalid}
}

// Config is the complete run configuration.
type Config struct {
	// DoMerge merges DF_* partitions of InputFileName into the candidates
	// and collisions files before mixing.
	DoMerge       bool   `yaml:"doMerge"`
	InputFileName string `yaml:"inputFileName"`

	CandidatesFileName string `yaml:"candidatesFileName"`
	CollisionsFileName string `yaml:"collisionsFileName"`
	OutputFileName     string `yaml:"outputFileName"`

	MixingStrategy mixer.Strategy `yaml:"mixingStrategy"`
	MixingDepth    int            `yaml:"mixingDepth"`
	ReuseCap       int            `yaml:"reuseCap"`
	MixOverflow    bool           `yaml:"mixOverflow"`
	Workers        int            `yaml:"workers"`
	RandomSeed     int64          `yaml:"randomSeed"`

	Is23      bool           `yaml:"is23"`
	ApplyCuts bool           `yaml:"applyCuts"`
	Cuts      selection.Cuts `yaml:"cuts"`
	Binning   binning.Config `yaml:"binning"`

	Sinks      SinksConfig   `yaml:"sinks"`
	QAPlotsDir string        `yaml:"qaPlotsDir"`
	Store      StoreConfig   `yaml:"store"`
	Metrics    MetricsConfig `yaml:"metrics"`

	// SummaryFileName receives the JSON run summary, empty to disable.
	SummaryFileName string `yaml:"summaryFileName"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

// SinksConfig selects the outputs written next to the MixedTree.
type SinksConfig struct {
	// PairLog is the path of a block-compressed pair log, empty to disable.
	PairLog      string        `yaml:"pairLog"`
	PairLogCodec pairlog.Codec `yaml:"pairLogCodec"`
	// SQLite is the path of a SQLite database, empty to disable.
	SQLite string `yaml:"sqlite"`
}

// StoreConfig locates inputs and outputs in object storage. With an empty
// URL all file names are local paths.
type StoreConfig struct {
	// URL is s3://bucket/prefix, minio://endpoint/bucket/prefix or
	// file:///dir.
	URL     string `yaml:"url"`
	WorkDir string `yaml:"workDir"`
	// Insecure disables TLS for MinIO endpoints.
	Insecure           bool  `yaml:"insecure"`
	MaxTransfers       int64 `yaml:"maxTransfers"`
	IOLimitBytesPerSec int64 `yaml:"ioLimitBytesPerSec"`
}

// MetricsConfig enables pushing run metrics to a Prometheus Pushgateway.
type MetricsConfig struct {
	PushURL string `yaml:"pushUrl"`
	Job     string `yaml:"job"`
}

// Default returns the configuration used when a key is absent.
func Default() Config {
	return Config{
		CandidatesFileName: "inputCands.root",
		CollisionsFileName: "inputColls.root",
		OutputFileName:     "mixed.root",
		MixingStrategy:     mixer.EventMixing,
		MixingDepth:        mixer.DefaultDepth,
		ReuseCap:           mixer.DefaultReuseCap,
		Workers:            1,
		RandomSeed:         42,
		ApplyCuts:          true,
		Cuts:               selection.DefaultCuts(),
		Binning:            binning.DefaultConfig(),
		Sinks:              SinksConfig{PairLogCodec: pairlog.CodecZstd},
		Store:              StoreConfig{MaxTransfers: 4},
		Metrics:            MetricsConfig{Job: "mixgo"},
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return Read(f)
}

// Parse decodes and validates YAML data.
func Parse(data []byte) (Config, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes YAML over Default and validates the result. Unknown keys
// are rejected.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, mixer.ErrUnknownStrategy) {
			return Config{}, &FieldError{Field: "mixingStrategy", Value: "?", cause: err}
		}
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every key and returns the joined *FieldError values.
func (c *Config) Validate() error {
	var errs []error
	add := func(field string, value any, cause error) {
		errs = append(errs, &FieldError{Field: field, Value: value, cause: cause})
	}

	if !c.MixingStrategy.Valid() {
		add("mixingStrategy", int(c.MixingStrategy), mixer.ErrUnknownStrategy)
	}
	if c.MixingDepth <= 0 {
		add("mixingDepth", c.MixingDepth, mixer.ErrInvalidDepth)
	}
	if c.ReuseCap <= 0 {
		add("reuseCap", c.ReuseCap, mixer.ErrInvalidReuseCap)
	}
	if c.Workers < 1 {
		add("workers", c.Workers, nil)
	}
	if err := c.Binning.Validate(); err != nil {
		add("binning", c.Binning, err)
	}
	if c.DoMerge && c.InputFileName == "" {
		add("inputFileName", c.InputFileName, errors.New("required when doMerge is set"))
	}
	if c.CandidatesFileName == "" {
		add("candidatesFileName", c.CandidatesFileName, nil)
	} else if c.DoMerge && c.CandidatesFileName == c.InputFileName {
		add("candidatesFileName", c.CandidatesFileName, errors.New("must differ from inputFileName when doMerge is set"))
	}
	if c.CollisionsFileName == "" {
		add("collisionsFileName", c.CollisionsFileName, nil)
	}
	if c.OutputFileName == "" {
		add("outputFileName", c.OutputFileName, nil)
	}
	if c.Store.URL != "" {
		if _, err := ParseLocation(c.Store.URL); err != nil {
			add("store.url", c.Store.URL, err)
		}
	}
	if c.Store.MaxTransfers < 0 {
		add("store.maxTransfers", c.Store.MaxTransfers, nil)
	}
	if c.Store.IOLimitBytesPerSec < 0 {
		add("store.ioLimitBytesPerSec", c.Store.IOLimitBytesPerSec, nil)
	}
	if _, err := c.Level(); err != nil {
		add("logLevel", c.LogLevel, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		add("logFormat", c.LogFormat, nil)
	}
	return errors.Join(errs...)
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
