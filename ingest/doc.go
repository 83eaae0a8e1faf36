// Package ingest consumes the aligned collision and candidate streams and
// builds the immutable inputs of a mixing run: one He3 and one collision per
// distinct collision, one hadron per accepted row, and the bin-indexed
// bracket table that maps each collision to its contiguous hadron range.
//
// Two consecutive accepted rows belong to the same collision when their
// vertex positions differ by less than VertexEpsilon.
package ingest
