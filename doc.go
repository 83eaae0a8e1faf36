// Package mixgo estimates the combinatorial background of the ⁴Li → ³He + p
// decay with event mixing and rotation mixing.
//
// Run executes one analysis pass described by a config.Config: it stages
// inputs from object storage, merges partitioned input trees, ingests and
// brackets the candidates, mixes pairs into every configured sink, saves the
// QA histograms and publishes the outputs.
//
// # Quick Start
//
//	cfg, err := config.Load("config/configMixingLi4.yml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	summary, err := mixgo.Run(ctx, cfg, mixgo.WithLogger(mixgo.NewTextLogger(slog.LevelInfo)))
//
// # Packages
//
// The mixing core lives in binning, ingest, selection, physics and mixer and
// depends on no I/O. The tree, qa, sink/pairlog, sink/sqlite, blobstore and
// stage packages provide the storage around it.
package mixgo
