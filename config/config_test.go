package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/mixgo/mixer"
	"github.com/hupe1980/mixgo/sink/pairlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const macroConfig = `
doMerge: false
mixingStrategy: 1
mixingDepth: 5
is23: true
applyCuts: true
randomSeed: 7
inputFileName: AO2D_merged.root
outputFileName: output/mixed.root
`

func TestParse_MacroKeys(t *testing.T) {
	cfg, err := Parse([]byte(macroConfig))
	require.NoError(t, err)

	assert.Equal(t, mixer.RotationMixing, cfg.MixingStrategy)
	assert.Equal(t, 5, cfg.MixingDepth)
	assert.True(t, cfg.Is23)
	assert.True(t, cfg.ApplyCuts)
	assert.Equal(t, int64(7), cfg.RandomSeed)
	assert.Equal(t, "AO2D_merged.root", cfg.InputFileName)
	assert.Equal(t, "output/mixed.root", cfg.OutputFileName)

	// Absent keys keep their defaults.
	def := Default()
	assert.Equal(t, def.Binning, cfg.Binning)
	assert.Equal(t, def.Cuts, cfg.Cuts)
	assert.Equal(t, mixer.DefaultReuseCap, cfg.ReuseCap)
}

func TestParse_StrategyNames(t *testing.T) {
	for in, want := range map[string]mixer.Strategy{
		"0":             mixer.EventMixing,
		"event":         mixer.EventMixing,
		"rotation":      mixer.RotationMixing,
		"rotation-pool": mixer.RotationPool,
		"like-sign":     mixer.LikeSignPool,
	} {
		cfg, err := Parse([]byte("mixingStrategy: " + in))
		require.NoError(t, err, in)
		assert.Equal(t, want, cfg.MixingStrategy, in)
	}

	_, err := Parse([]byte("mixingStrategy: 7"))
	require.Error(t, err)
	assert.ErrorIs(t, err, mixer.ErrUnknownStrategy)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_Extended(t *testing.T) {
	cfg, err := Parse([]byte(`
workers: 4
mixOverflow: true
binning: {zBins: 5, zMin: -10, zMax: 10, multBins: 4, multMin: 0, multMax: 100}
cuts: {etaMax: 0.8}
sinks:
  pairLog: out/pairs.mixp
  pairLogCodec: lz4
  sqlite: out/pairs.db
store:
  url: s3://bucket/li4
  workDir: /tmp/mixgo
logLevel: debug
logFormat: json
`))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.MixOverflow)
	assert.Equal(t, 5, cfg.Binning.ZBins)
	assert.InDelta(t, 0.8, cfg.Cuts.EtaMax, 1e-12)
	// Sibling cut values keep their defaults.
	assert.Equal(t, Default().Cuts.Chi2TPCMax, cfg.Cuts.Chi2TPCMax)
	assert.Equal(t, pairlog.CodecLZ4, cfg.Sinks.PairLogCodec)
	assert.Equal(t, "out/pairs.db", cfg.Sinks.SQLite)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestValidate_Joined(t *testing.T) {
	cfg := Default()
	cfg.MixingDepth = 0
	cfg.Workers = 0
	cfg.Binning.ZBins = 0
	cfg.DoMerge = true
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, mixer.ErrInvalidDepth)
	assert.ErrorIs(t, err, ErrInvalid)

	var fields []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var fe *FieldError
		require.True(t, errors.As(e, &fe))
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"mixingDepth", "workers", "binning", "inputFileName", "logLevel"}, fields)
}

func TestValidate_MergeInPlace(t *testing.T) {
	cfg := Default()
	cfg.DoMerge = true
	cfg.InputFileName = "data.root"
	cfg.CandidatesFileName = "data.root"
	cfg.CollisionsFileName = "data.root"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "candidatesFileName", fe.Field)

	cfg.CandidatesFileName = "merged.root"
	cfg.CollisionsFileName = "merged.root"
	assert.NoError(t, cfg.Validate())
}

func TestRead_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("mixingDepht: 3"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(macroConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, mixer.RotationMixing, cfg.MixingStrategy)

	data, err := cfg.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("s3://bucket/li4/run1/")
	require.NoError(t, err)
	assert.Equal(t, Location{Scheme: SchemeS3, Bucket: "bucket", Prefix: "li4/run1"}, loc)

	loc, err = ParseLocation("minio://localhost:9000/analysis/li4")
	require.NoError(t, err)
	assert.Equal(t, Location{Scheme: SchemeMinIO, Endpoint: "localhost:9000", Bucket: "analysis", Prefix: "li4"}, loc)

	loc, err = ParseLocation("file:///data/li4")
	require.NoError(t, err)
	assert.Equal(t, "/data/li4", loc.Dir)

	for _, bad := range []string{"s3://", "minio://host", "gs://b/p", "file://"} {
		_, err := ParseLocation(bad)
		assert.ErrorIs(t, err, ErrBadLocation, bad)
	}
}
