// Package testutil provides testing utilities for mixgo.
//
// This package is intended for use in tests and benchmarks only.
// It generates synthetic collisions whose candidate rows pass
// selection.DefaultCuts, and ingests them into datasets.
//
// # Synthetic events
//
//	rng := testutil.NewRNG(seed)
//	colls, rows := rng.Events(testutil.DefaultEventSpec())
//	ds := rng.Dataset(testutil.DefaultEventSpec())
package testutil
