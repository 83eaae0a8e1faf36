// Package physics provides the pair kinematics used to score mixed candidates.
//
// Momenta are given as (transverse momentum magnitude, pseudorapidity, azimuth)
// and converted to Cartesian four-vectors before combining them:
//
//	px = p·cos(φ), py = p·sin(φ), pz = p·sinh(η), E = sqrt(|p|² + m²)
//
// All functions evaluate in float64 so that histograms filled from different
// call sites stay bin-for-bin reproducible.
package physics
