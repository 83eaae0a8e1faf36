package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mixgo/config"
	"github.com/hupe1980/mixgo/ingest"
	"github.com/hupe1980/mixgo/mixer"
)

func TestParseArgs_Defaults(t *testing.T) {
	cfg, c, err := parseArgs(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.True(t, c.printJSON)
}

func TestParseArgs_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mixingStrategy: 1
mixingDepth: 3
randomSeed: 9
outputFileName: from-file.root
`), 0o600))

	cfg, _, err := parseArgs([]string{
		"-config", path,
		"-strategy", "like-sign",
		"-seed", "0",
		"-cuts=false",
		"-sqlite", "pairs.db",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, mixer.LikeSignPool, cfg.MixingStrategy)
	assert.Equal(t, 3, cfg.MixingDepth)
	assert.Equal(t, int64(0), cfg.RandomSeed)
	assert.False(t, cfg.ApplyCuts)
	assert.Equal(t, "from-file.root", cfg.OutputFileName)
	assert.Equal(t, "pairs.db", cfg.Sinks.SQLite)
}

func TestParseArgs_Errors(t *testing.T) {
	_, _, err := parseArgs([]string{"-strategy", "shuffle"}, io.Discard)
	assert.ErrorIs(t, err, mixer.ErrUnknownStrategy)

	_, _, err = parseArgs([]string{"-nope"}, io.Discard)
	assert.Error(t, err)

	_, _, err = parseArgs([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, io.Discard)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOpenStore(t *testing.T) {
	s, err := openStore(context.Background(), config.StoreConfig{})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = openStore(context.Background(), config.StoreConfig{URL: "file:///tmp/mixgo"})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = openStore(context.Background(), config.StoreConfig{URL: "minio://localhost:9000/bucket/runs", Insecure: true})
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestPromCollector(t *testing.T) {
	c := newPromCollector()

	c.RecordStage("fetch", 2, 1024, time.Second, nil)
	c.RecordIngest(ingest.Stats{Rows: 10, Rejected: 3}, 4, 7, time.Millisecond, nil)

	sat := roaring.New()
	sat.AddMany([]uint32{1, 5})
	c.RecordMix(mixer.Stats{Strategy: mixer.EventMixing, Pairs: 40, CappedPairings: 2, Saturated: sat}, nil)
	c.RecordRun(2*time.Second, nil)
	c.RecordRun(time.Second, errors.New("boom"))

	assert.Equal(t, 1024.0, testutil.ToFloat64(c.stageBytes.WithLabelValues("fetch")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.stageFiles.WithLabelValues("fetch")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.rows))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.rejected))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.primaries))
	assert.Equal(t, 40.0, testutil.ToFloat64(c.pairs.WithLabelValues("event")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.saturated))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("error")))
}

func TestPromCollector_Push(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path = r.Method, r.URL.Path
		mu.Unlock()
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newPromCollector()
	c.RecordRun(time.Second, nil)
	require.NoError(t, c.Push(context.Background(), srv.URL, "mixgo", "run-7"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/mixgo/run/run-7", path)
}
