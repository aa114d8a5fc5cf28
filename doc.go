// SPDX-License-Identifier: MIT

// Package unfold turns classical stationary iterative solvers for dense
// linear systems A·x = b into trainable unfolded networks, and benchmarks
// both sides of that correspondence.
//
// 🚀 What is unfold?
//
//	A dense-algebra toolkit that brings together:
//		• System generation: random diagonally dominant or SPD systems
//		• Splittings: Richardson, Jacobi, Gauss–Seidel, SOR, AOR and their
//		  Chebyshev-accelerated variants, with spectral-radius diagnostics
//		• Classical engine: fixed-depth iteration with residual traces
//		  and divergence detection
//		• Unfolded networks: the same recurrence with per-layer trainable
//		  coefficients and exact reverse-mode gradients
//		• Training: mini-batch SGD/Adam with a divergence guard
//
// ✨ Why choose unfold?
//
//   - Exact correspondence – an untrained network reproduces its classical
//     method to machine precision, so every improvement is attributable
//     to training
//   - Deterministic – every random draw flows through an explicit
//     *rand.Rand; a seed fixes the whole experiment
//   - Analytic gradients – reverse accumulation through the unrolled
//     recurrence, no autodiff framework required
//
// Everything is organized under five subpackages:
//
//	linsys/    — system generation (diagonally dominant, symmetric PD)
//	splitting/ — A = D − L − U decompositions and the affine step family
//	classic/   — the fixed-depth classical iteration engine
//	unfoldnet/ — unfolded networks: forward tapes, backward sweeps, snapshots
//	training/  — the gradient-descent loop, optimizers, loss functions
//
// The root package is the facade: string method identifiers, a Config,
// and Run, which wires generation, splitting, classical baselines and
// training into a single comparable Report.
//
// Quick start:
//
//	cfg := unfold.DefaultConfig()
//	cfg.Seed = 42
//	report, err := unfold.Run([]string{"SOR", "SORNet"}, cfg)
//	if err != nil { ... }
//	for _, res := range report.Results {
//	    fmt.Println(res.ID, res.SpectralRadius, res.ClassicalLoss, res.TrainedLoss)
//	}
//
// Each subpackage carries its own focused documentation; start with
// splitting for the underlying algebra and unfoldnet for the gradient
// machinery.
package unfold
