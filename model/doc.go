// Package model defines the records flowing through the mixing engine.
//
// # Candidate Types
//
//   - He3Candidate: the heavy (primary) particle, one per collision
//   - HadronCandidate: the light (pairable) particle, one per input row
//   - Collision: per-collision summary (vertex, centrality, data era)
//   - CandidateRow: one row of the candidate stream, carrying both particles
//
// # Index Types
//
//   - Bracket: closed index range of hadrons that belong to one collision
//   - Pair: a synthesized (He3, hadron) combination with derived kinematics
//
// Transverse momenta are signed: the sign encodes the electric charge.
package model
