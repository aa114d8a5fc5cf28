// SPDX-License-Identifier: MIT

// Package splitting: the classical Chebyshev acceleration schedule.
// Chebyshev variants do not change the base splitting; they combine three
// successive iterates with polynomial coefficients derived from the base
// spectral radius. The schedule computed here initializes both the classical
// engine and the unfolded networks' per-layer (γ, ω) coefficients.
package splitting

import "fmt"

// Schedule returns the classical Chebyshev combination coefficients for T
// acceleration steps, one [γ, ω] pair per step. The recurrence is
//
//	γ_k = 1,   ω_1 = 1,   ω_{k+1} = 1 / (1 − ρ²·ω_k/4),
//
// with ρ the base method's spectral radius. At ρ = 0 every ω_k is 1 and the
// combined step reduces to the plain base iteration.
//
// Calling Schedule on a non-Chebyshev splitting panics (programmer error).
// A non-convergent base (ρ ≥ 1) still yields a schedule: the divergence is
// then observed and flagged by the engine, not masked here. If the
// recurrence denominator degenerates, the previous ω is carried forward to
// keep the coefficients finite.
// Complexity: O(T).
func (s *Splitting) Schedule(depth int) [][]float64 {
	if !s.Method.Chebyshev() {
		panic(fmt.Sprintf("splitting: Schedule on non-Chebyshev method %v", s.Method))
	}
	if depth < 0 {
		panic(fmt.Sprintf("splitting: Schedule: negative depth %d", depth))
	}

	var (
		out   = make([][]float64, depth)
		rho2  = s.SpectralRadius * s.SpectralRadius
		omega = 1.0
		denom float64
		k     int
	)
	for k = 0; k < depth; k++ {
		out[k] = []float64{1, omega} // [γ_k, ω_k]
		denom = 1 - rho2*omega/4
		if denom != 0 && finite(1/denom) {
			omega = 1 / denom
		}
	}

	return out
}
