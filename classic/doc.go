// SPDX-License-Identifier: MIT

// Package classic executes the fixed-coefficient iterative methods: the
// baseline every unfolded network is measured against.
//
// Overview:
//
//   - Run iterates x_{k+1} = B·x_k + c for exactly T steps, where B and c
//     are the iteration matrix and update vector of a precomputed
//     splitting.Splitting. B and c are materialized once and reused across
//     all steps — the classical method, unlike its unfolded counterpart,
//     is iteration-invariant.
//   - Chebyshev-accelerated methods run the three-term recurrence over an
//     explicit (x_{k-1}, x_k) state pair using the classical coefficient
//     schedule derived from the base spectral radius.
//   - The Trace records every iterate x_0..x_T and the residual norm
//     ‖A·x_k − b‖₂ at each step.
//
// Divergence:
//
//   - A non-finite component or a residual above the configured threshold
//     marks the trace Diverged and truncates it at the offending step.
//     This is a recorded condition, not an error: comparing divergent and
//     convergent configurations is an expected use of the engine.
//
// Example usage:
//
//	sp, _ := splitting.Compute(sys.A, splitting.Jacobi, splitting.Params{})
//	trace, err := classic.Run(sys, sp, 20)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(trace.FinalResidual()) // < 1e-6 for diagonally dominant A
package classic
