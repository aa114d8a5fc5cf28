// SPDX-License-Identifier: MIT

// Package linsys: domain types, sentinel errors and functional options for
// random linear-system generation. Errors and options live here per the
// global conventions; the constructive generators live in generator.go.
package linsys

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors returned by the generator.
var (
	// ErrBadSize indicates that the requested system dimension is not positive.
	ErrBadSize = errors.New("linsys: dimension must be > 0")

	// ErrNilRand indicates that a nil random source was supplied.
	// Entropy must always be threaded explicitly; there is no global fallback.
	ErrNilRand = errors.New("linsys: random source is nil")

	// ErrConstruction indicates that the requested structural property could
	// not be satisfied for the given parameters. Constructive generation makes
	// this unreachable for valid options; it exists as a defensive contract.
	ErrConstruction = errors.New("linsys: cannot satisfy requested structure")

	// ErrBadDominance indicates a non-positive dominance margin.
	ErrBadDominance = errors.New("linsys: dominance margin must be positive")

	// ErrBadRidge indicates a non-positive ridge coefficient.
	ErrBadRidge = errors.New("linsys: ridge coefficient must be positive")
)

// Structure selects the structural property the generated matrix satisfies.
//
// DiagDominant – strict diagonal dominance (default); guarantees classical
// convergence of Jacobi and Gauss-Seidel splittings.
// SymmetricPD  – symmetric positive-definite via A = RᵀR + λI.
type Structure int

const (
	// DiagDominant builds a strictly diagonally dominant matrix.
	DiagDominant Structure = iota

	// SymmetricPD builds a symmetric positive-definite matrix.
	SymmetricPD
)

// Defaults (single source of truth).
const (
	// DefaultDominance is the strict-dominance margin added to each diagonal
	// entry on top of the off-diagonal row sum.
	DefaultDominance = 1.0

	// DefaultRidge is the λ in A = RᵀR + λI for SymmetricPD generation.
	DefaultRidge = 0.5
)

// System is one random linear problem A·x = b.
//
// Invariants:
//   - A is square N×N, B has length N.
//   - If XStar != nil, then A·XStar == B up to floating-point rounding,
//     because B was constructed as A·XStar.
type System struct {
	A     *mat.Dense    // coefficient matrix, N×N
	B     *mat.VecDense // right-hand side, length N
	XStar *mat.VecDense // exact solution, nil when unknown
	N     int           // system dimension
}

// Residual returns ‖A·x − b‖₂ for a candidate solution x.
// Complexity: O(N²).
func (s *System) Residual(x *mat.VecDense) float64 {
	r := mat.NewVecDense(s.N, nil)
	r.MulVec(s.A, x)    // r = A·x
	r.SubVec(r, s.B)    // r = A·x − b
	return mat.Norm(r, 2)
}

// Options configures system generation.
//
// Structure     – which structural property A must satisfy.
// Dominance     – strict-dominance margin (DiagDominant only). Must be > 0.
// Ridge         – λ in A = RᵀR + λI (SymmetricPD only). Must be > 0.
// KnownSolution – sample x* and derive b = A·x* (true by default) rather
// than sampling b directly.
type Options struct {
	Structure     Structure
	Dominance     float64
	Ridge         float64
	KnownSolution bool
}

// Option is a functional option for configuring generation.
type Option func(*Options)

// defaultOptions returns the documented defaults.
func defaultOptions() Options {
	return Options{
		Structure:     DiagDominant,
		Dominance:     DefaultDominance,
		Ridge:         DefaultRidge,
		KnownSolution: true,
	}
}

// WithStructure selects the structural property of the generated matrix.
func WithStructure(s Structure) Option {
	return func(o *Options) {
		o.Structure = s
	}
}

// WithDominance sets the strict-dominance margin for DiagDominant matrices.
// Must be positive; non-positive values panic (programmer error).
func WithDominance(margin float64) Option {
	return func(o *Options) {
		if margin <= 0 {
			panic(ErrBadDominance.Error())
		}
		o.Dominance = margin
	}
}

// WithRidge sets λ for SymmetricPD generation (A = RᵀR + λI).
// Must be positive; non-positive values panic (programmer error).
func WithRidge(lambda float64) Option {
	return func(o *Options) {
		if lambda <= 0 {
			panic(ErrBadRidge.Error())
		}
		o.Ridge = lambda
	}
}

// WithKnownSolution controls whether x* is sampled and b derived as A·x*.
// When disabled, b is sampled directly and System.XStar is nil.
func WithKnownSolution(known bool) Option {
	return func(o *Options) {
		o.KnownSolution = known
	}
}
