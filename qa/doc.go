// Package qa collects the quality-assurance distributions filled during
// ingestion and mixing.
//
// Producers talk to the Recorder interface. Histograms is the hbook-backed
// implementation; it can be persisted to a ROOT directory with Save and
// rendered with Plot. Nop discards everything.
package qa
