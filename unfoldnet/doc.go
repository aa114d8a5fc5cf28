// SPDX-License-Identifier: MIT

// Package unfoldnet turns the T-step recurrence of a classical iterative
// method into a trainable computation graph — deep unfolding.
//
// Overview:
//
//   - A Network mirrors the classical recurrence exactly but carries one
//     independent trainable coefficient record per layer l ∈ [1, T]: α_l for
//     Richardson, ω_l for Jacobi/Gauss-Seidel/SOR, (r_l, ω_l) for AOR, and
//     (γ_l, ω_l) for the Chebyshev variants. Parameters are per-iteration,
//     never shared across layers — this is what distinguishes the network
//     from the iteration-invariant classical method.
//   - Build initializes every layer from the classical fixed values of a
//     Splitting, so an untrained network reproduces the classical engine's
//     iterates exactly (to floating rounding).
//   - Forward maps an input system (A, b) to x_T. The structural operators
//     (D, L, U and the per-layer M(θ_l), N(θ_l)) are recomputed from each
//     input system and are never trained; only the scalar layer
//     coefficients are.
//
// Differentiation:
//
//   - Each layer solves M(θ_l)·x_{l+1} = N(θ_l)·x_l + c(θ_l), with M, N, c
//     affine in θ_l (see package splitting). Reverse accumulation through
//     the unrolled graph therefore needs only the adjoint solve and the
//     family derivatives:
//
//     Mᵀ·w   = ḡ                                (one transposed LU solve)
//     ∂L/∂θᵢ = w·(Nᵢ·x_l + cᵢ·b − Mᵢ·x_{l+1})
//     ḡ_prev = Nᵀ·w
//
//   - Chebyshev layers combine three iterates; their two-state recurrence
//     is threaded explicitly through (x_{k-1}, x_k) and the backward pass
//     carries a matching pair of adjoints. ForwardTape records everything
//     the backward pass needs; Backward never re-derives the algebra.
//
// Serialization:
//
//   - Params snapshots a network into a flat ParamSet (method name, depth,
//     classical parameters, per-layer coefficients) that marshals to JSON;
//     Restore rebuilds an equivalent network without retraining.
//
// Ownership:
//
//   - A Network's coefficients are owned by exactly one training procedure;
//     nothing in this package mutates them except SetCoeffVector/SetParams.
package unfoldnet
