// Package tree reads and writes the ROOT trees of the ⁴Li analysis with
// groot.
//
// Inputs are the candidate tree (CandidateTree) and the collision tree
// (CollisionTree). A file may hold them at top level or split across DF_*
// directories, one per data frame; Source streams either layout, and Merge
// rewrites a partitioned file into a flat one. Mixed pairs are written to
// the MixedTree tree by PairWriter.
package tree
