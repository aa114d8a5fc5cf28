// SPDX-License-Identifier: MIT

// Package splitting computes the matrix splittings, iteration operators and
// convergence diagnostics behind the classical stationary iterative methods
// Richardson, Jacobi, Gauss-Seidel, SOR, AOR and their Chebyshev-accelerated
// variants.
//
// Overview:
//
//   - Every supported method is one fixed-point recurrence
//     M·x_{k+1} = N·x_k + c,   A = (M − N) up to the method's scaling,
//     equivalently x_{k+1} = B·x_k + M⁻¹c with iteration matrix B = M⁻¹N.
//   - Compute produces a Splitting: the operators of that recurrence, the
//     spectral radius ρ(B), and the convergence guarantee ρ(B) < 1.
//   - The splitting is computed once per (A, method, params) pair and reused
//     for every iteration step, classical or unfolded.
//
// The affine coefficient family:
//
//   - Deep unfolding replaces the method's fixed scalar coefficients (step
//     size α, relaxation ω, acceleration r) with per-layer trainable values.
//     To serve the classical engine and the unfolded networks with one
//     algebra, a Splitting exposes the step operators as affine functions of
//     the coefficient vector θ:
//
//     M(θ) = M0 + Σᵢ θᵢ·Mᵢ
//     N(θ) = N0 + Σᵢ θᵢ·Nᵢ
//     c(θ) = (Σᵢ θᵢ·cᵢ)·b
//
//     The classical method is Materialize(Theta) at the fixed classical θ;
//     a trainable layer is Materialize of its own θ. The derivative terms
//     (Mᵢ, Nᵢ, cᵢ) are exactly what reverse-mode differentiation through a
//     step needs, so gradients never re-derive the algebra.
//
// Per-method splittings (A = D − L − U; L, U strictly lower/upper):
//
//   - Richardson(α):   M = I,      N = I − αA,             c = αb
//   - Jacobi(ω):       M = D,      N = (1−ω)D + ω(L+U),    c = ωb
//   - GaussSeidel(ω):  M = D − L,  N = (1−ω)(D−L) + ωU,    c = ωb
//   - SOR(ω):          M = D − ωL, N = (1−ω)D + ωU,        c = ωb
//   - AOR(r, ω):       M = D − rL, N = (1−ω)D + (ω−r)L + ωU, c = ωb
//
// Jacobi and Gauss-Seidel carry a damping weight ω with classical value 1,
// at which they reduce exactly to the textbook methods; the weight exists so
// their unfolded counterparts have a trainable coefficient.
//
// Chebyshev acceleration:
//
//   - ChebySOR/ChebyAOR wrap the base splitting with the three-term
//     recurrence x_{k+1} = ω_k·(γ_k·(z_k − x_k) + (x_k − x_{k-1})) + x_{k-1},
//     where z_k = B·x_k + M⁻¹c is the base step. Schedule derives the
//     classical coefficients γ_k = 1 and ω_1 = 1,
//     ω_{k+1} = 1/(1 − ρ²·ω_k/4) from the base spectral radius ρ.
//
// Diagnostics:
//
//   - SpectralRadius is the maximum eigenvalue modulus of B, computed by a
//     general (non-symmetric) eigendecomposition. ρ ≥ 1 is reported through
//     Convergent == false, never as an error: divergence of a configuration
//     is an informative outcome, and the caller decides whether to proceed.
//
// Errors (sentinel):
//
//   - ErrNotSquare         if A is not square.
//   - ErrSingularSplitting if the splitting diagonal has a zero entry.
//   - ErrUnknownMethod     if the method value is outside the closed enum.
//   - ErrEigenFailed       if the eigendecomposition does not converge.
package splitting
