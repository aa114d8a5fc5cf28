// SPDX-License-Identifier: MIT

// Package linsys: constructive generators for random, convergence-friendly
// linear systems. Generation is deterministic in the supplied *rand.Rand.
package linsys

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Generate produces one random System of dimension n.
// Stage 1 (Validate): check n and the random source.
// Stage 2 (Construct): build A with the requested structure.
// Stage 3 (Finalize): sample x* (or b) and assemble the System.
// Complexity: O(n²) for DiagDominant, O(n³) for SymmetricPD (RᵀR product).
func Generate(n int, rng *rand.Rand, opts ...Option) (*System, error) {
	// Stage 1: Validate input
	if n <= 0 {
		return nil, fmt.Errorf("Generate: n=%d: %w", n, ErrBadSize)
	}
	if rng == nil {
		return nil, fmt.Errorf("Generate: %w", ErrNilRand)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	// Stage 2: Construct A with the requested structure
	var (
		a   *mat.Dense
		err error
	)
	switch o.Structure {
	case DiagDominant:
		a = diagDominant(n, o.Dominance, rng)
	case SymmetricPD:
		a = symmetricPD(n, o.Ridge, rng)
	default:
		return nil, fmt.Errorf("Generate: structure %d: %w", o.Structure, ErrConstruction)
	}
	if err = checkFinite(a); err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}

	// Stage 3: Sample the right-hand side (and the exact solution if requested)
	sys := &System{A: a, N: n}
	if o.KnownSolution {
		xs := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			xs.SetVec(i, rng.NormFloat64()) // x* ~ N(0, 1) componentwise
		}
		b := mat.NewVecDense(n, nil)
		b.MulVec(a, xs) // b = A·x*, so the supervised loss target is exact
		sys.XStar = xs
		sys.B = b
	} else {
		b := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			b.SetVec(i, rng.NormFloat64())
		}
		sys.B = b
	}

	return sys, nil
}

// MustGenerate is Generate that panics on error. Intended for tests and
// examples where the inputs are known-valid.
func MustGenerate(n int, rng *rand.Rand, opts ...Option) *System {
	sys, err := Generate(n, rng, opts...)
	if err != nil {
		panic(err)
	}

	return sys
}

// Batch draws count independent Systems from the same option set.
// Systems within one batch share structure but not entries.
// Complexity: count × Generate.
func Batch(count, n int, rng *rand.Rand, opts ...Option) ([]*System, error) {
	if count <= 0 {
		return nil, fmt.Errorf("Batch: count=%d: %w", count, ErrBadSize)
	}
	out := make([]*System, count)
	for i := range out {
		sys, err := Generate(n, rng, opts...)
		if err != nil {
			return nil, fmt.Errorf("Batch[%d]: %w", i, err)
		}
		out[i] = sys
	}

	return out, nil
}

// diagDominant builds a strictly diagonally dominant matrix:
// off-diagonal entries uniform in [-1, 1], each diagonal entry set to the
// off-diagonal row magnitude sum plus the dominance margin. The diagonal
// sign is kept positive so the splitting diagonal is trivially invertible.
func diagDominant(n int, margin float64, rng *rand.Rand) *mat.Dense {
	var (
		a      = mat.NewDense(n, n, nil)
		i, j   int
		v, sum float64
	)
	for i = 0; i < n; i++ {
		sum = 0
		for j = 0; j < n; j++ {
			if i == j {
				continue
			}
			v = 2*rng.Float64() - 1 // uniform in [-1, 1]
			a.Set(i, j, v)
			sum += math.Abs(v)
		}
		a.Set(i, i, sum+margin) // |A_ii| = Σ_{j≠i}|A_ij| + margin > Σ_{j≠i}|A_ij|
	}

	return a
}

// symmetricPD builds A = Rᵀ·R + λ·I with gaussian R. RᵀR is symmetric
// positive semi-definite; the ridge λ > 0 shifts all eigenvalues strictly
// positive, so A is symmetric positive-definite.
func symmetricPD(n int, lambda float64, rng *rand.Rand) *mat.Dense {
	var (
		r    = mat.NewDense(n, n, nil)
		a    = mat.NewDense(n, n, nil)
		i, j int
	)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			r.Set(i, j, rng.NormFloat64())
		}
	}
	a.Mul(r.T(), r) // a = RᵀR
	for i = 0; i < n; i++ {
		a.Set(i, i, a.At(i, i)+lambda)
	}

	return a
}

// checkFinite scans a matrix for NaN/Inf entries and reports ErrConstruction
// when any is found. Generation from bounded/gaussian draws cannot produce
// them; the scan guards the constructive contract.
func checkFinite(a *mat.Dense) error {
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := a.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return ErrConstruction
			}
		}
	}

	return nil
}
