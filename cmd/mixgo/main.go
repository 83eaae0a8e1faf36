// Command mixgo runs the ⁴Li → ³He + p event mixing on a candidate and a
// collision file and writes the mixed pairs.
//
// Usage:
//
//	mixgo -config mixing.yaml [-strategy rotation-pool] [-depth 10] ...
//
// Flags override the values of the configuration file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/mixgo"
	"github.com/hupe1980/mixgo/blobstore"
	miniostore "github.com/hupe1980/mixgo/blobstore/minio"
	s3store "github.com/hupe1980/mixgo/blobstore/s3"
	"github.com/hupe1980/mixgo/config"
	"github.com/hupe1980/mixgo/mixer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "mixgo:", err)
		stop()
		os.Exit(1)
	}
}

type cli struct {
	configPath string
	printJSON  bool
	progress   time.Duration

	strategy   string
	depth      int
	seed       int64
	workers    int
	is23       bool
	applyCuts  bool
	doMerge    bool
	input      string
	candidates string
	collisions string
	output     string
	pairLog    string
	sqlite     string
	plots      string
	summary    string
	storeURL   string
	workDir    string
	pushURL    string
	logLevel   string
	logFormat  string
}

// parseArgs loads the configuration file and applies every flag that was
// set on the command line.
func parseArgs(args []string, stderr io.Writer) (config.Config, cli, error) {
	var c cli
	fs := flag.NewFlagSet("mixgo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	fs.BoolVar(&c.printJSON, "json", true, "print the run summary as JSON to stdout")
	fs.DurationVar(&c.progress, "progress", 0, "log mixing progress at this interval")

	fs.StringVar(&c.strategy, "strategy", "", "mixing strategy: event, rotation, rotation-pool, like-sign")
	fs.IntVar(&c.depth, "depth", 0, "mixing depth")
	fs.Int64Var(&c.seed, "seed", 0, "random seed")
	fs.IntVar(&c.workers, "workers", 0, "mixing goroutines")
	fs.BoolVar(&c.is23, "is23", false, "treat the data as 2023 data")
	fs.BoolVar(&c.applyCuts, "cuts", true, "apply the track selection")
	fs.BoolVar(&c.doMerge, "merge", false, "merge the DF_ partitions of -input first")
	fs.StringVar(&c.input, "input", "", "partitioned input file")
	fs.StringVar(&c.candidates, "candidates", "", "candidate file")
	fs.StringVar(&c.collisions, "collisions", "", "collision file")
	fs.StringVar(&c.output, "output", "", "output ROOT file")
	fs.StringVar(&c.pairLog, "pairlog", "", "write a compressed pair log")
	fs.StringVar(&c.sqlite, "sqlite", "", "write pairs to a SQLite database")
	fs.StringVar(&c.plots, "plots", "", "directory for QA plots")
	fs.StringVar(&c.summary, "summary", "", "write the run summary to this file")
	fs.StringVar(&c.storeURL, "store", "", "object store url (s3://, minio://, file://)")
	fs.StringVar(&c.workDir, "workdir", "", "local work directory for staged files")
	fs.StringVar(&c.pushURL, "push", "", "Prometheus Pushgateway url")
	fs.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&c.logFormat, "log-format", "", "text or json")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, c, err
	}

	cfg := config.Default()
	if c.configPath != "" {
		var err error
		if cfg, err = config.Load(c.configPath); err != nil {
			return config.Config{}, c, err
		}
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strategy":
			var s mixer.Strategy
			if perr := s.UnmarshalText([]byte(c.strategy)); perr != nil {
				err = perr
				return
			}
			cfg.MixingStrategy = s
		case "depth":
			cfg.MixingDepth = c.depth
		case "seed":
			cfg.RandomSeed = c.seed
		case "workers":
			cfg.Workers = c.workers
		case "is23":
			cfg.Is23 = c.is23
		case "cuts":
			cfg.ApplyCuts = c.applyCuts
		case "merge":
			cfg.DoMerge = c.doMerge
		case "input":
			cfg.InputFileName = c.input
		case "candidates":
			cfg.CandidatesFileName = c.candidates
		case "collisions":
			cfg.CollisionsFileName = c.collisions
		case "output":
			cfg.OutputFileName = c.output
		case "pairlog":
			cfg.Sinks.PairLog = c.pairLog
		case "sqlite":
			cfg.Sinks.SQLite = c.sqlite
		case "plots":
			cfg.QAPlotsDir = c.plots
		case "summary":
			cfg.SummaryFileName = c.summary
		case "store":
			cfg.Store.URL = c.storeURL
		case "workdir":
			cfg.Store.WorkDir = c.workDir
		case "push":
			cfg.Metrics.PushURL = c.pushURL
		case "log-level":
			cfg.LogLevel = c.logLevel
		case "log-format":
			cfg.LogFormat = c.logFormat
		}
	})
	if err != nil {
		return config.Config{}, c, err
	}
	return cfg, c, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, c, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := mixgo.NewFormatLogger(stderr, cfg.LogFormat, level)

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	metrics := newPromCollector()
	opts := []mixgo.Option{
		mixgo.WithLogger(logger),
		mixgo.WithMetricsCollector(metrics),
		mixgo.WithRunID(runID),
		mixgo.WithProgress(c.progress),
	}
	if store != nil {
		opts = append(opts, mixgo.WithStore(store))
	}

	summary, runErr := mixgo.Run(ctx, cfg, opts...)

	if cfg.Metrics.PushURL != "" {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		if err := metrics.Push(pctx, cfg.Metrics.PushURL, cfg.Metrics.Job, runID); err != nil {
			logger.Warn("metrics push failed", "url", cfg.Metrics.PushURL, "error", err)
		}
		cancel()
	}

	if runErr != nil {
		return runErr
	}
	if c.printJSON {
		return summary.WriteJSON(stdout)
	}
	return nil
}

// openStore builds the client for s3:// and minio:// urls. file:// urls
// and an empty url need none.
func openStore(ctx context.Context, sc config.StoreConfig) (blobstore.Store, error) {
	if sc.URL == "" {
		return nil, nil
	}
	loc, err := config.ParseLocation(sc.URL)
	if err != nil {
		return nil, err
	}

	switch loc.Scheme {
	case config.SchemeS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		return s3store.NewStore(s3.NewFromConfig(awsCfg), loc.Bucket, loc.Prefix), nil
	case config.SchemeMinIO:
		client, err := minio.New(loc.Endpoint, &minio.Options{
			Creds: credentials.NewChainCredentials([]credentials.Provider{
				&credentials.EnvMinio{},
				&credentials.EnvAWS{},
			}),
			Secure: !sc.Insecure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, loc.Bucket, loc.Prefix), nil
	default:
		return nil, nil
	}
}
