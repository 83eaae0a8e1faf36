// Package mixer synthesizes background He3-hadron pairs from an ingested
// dataset.
//
// Four strategies are available:
//
//   - EventMixing pairs each He3 with the hadrons of other collisions drawn
//     from the same vertex/centrality bin. Every hadron contributes to at
//     most ReuseCap pairs over the whole run.
//   - RotationMixing pairs each He3 with the hadrons of its own collision.
//   - RotationPool draws unlike-sign hadrons from the whole pool and rotates
//     their azimuth by a random angle.
//   - LikeSignPool draws like-sign hadrons from the whole pool.
//
// A Mixer draws from one seeded generator. With more than one worker the
// primaries are split into fixed-size chunks, each with a generator derived
// from the run seed, and pairs are delivered to the sink in primary order.
package mixer
