// SPDX-License-Identifier: MIT

// Package splitting: the splitting algebra. Decompose splits A into its
// diagonal and strictly triangular parts; Compute assembles the affine step
// family, the iteration matrix and the convergence diagnostic per method.
package splitting

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Decompose splits a square matrix into A = D − L − U, where D is the
// diagonal, L the negated strictly lower part and U the negated strictly
// upper part. The sign convention matches the classical splitting
// literature, so e.g. the Jacobi operator is D⁻¹(L+U).
// Complexity: O(n²) time and memory.
func Decompose(a *mat.Dense) (d, l, u *mat.Dense) {
	var (
		n, _ = a.Dims()
		i, j int
		v    float64
	)
	d = mat.NewDense(n, n, nil)
	l = mat.NewDense(n, n, nil)
	u = mat.NewDense(n, n, nil)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			v = a.At(i, j)
			switch {
			case i == j:
				d.Set(i, j, v)
			case i > j:
				l.Set(i, j, -v) // A = D − L − ... ⇒ L holds −(strict lower)
			default:
				u.Set(i, j, -v)
			}
		}
	}

	return d, l, u
}

// Compute builds the Splitting for method m applied to A with classical
// coefficients p.
// Stage 1 (Validate): square shape, method range, invertible diagonal.
// Stage 2 (Decompose): A = D − L − U.
// Stage 3 (Assemble): per-method affine family M(θ), N(θ), c(θ).
// Stage 4 (Diagnose): iteration matrix B = M⁻¹N, spectral radius, guarantee.
// Complexity: O(n³) dominated by the solve for B and the eigendecomposition.
func Compute(a *mat.Dense, m Method, p Params) (*Splitting, error) {
	// Stage 1: Validate input
	rows, cols := a.Dims()
	if rows != cols {
		return nil, fmt.Errorf("Compute: %dx%d: %w", rows, cols, ErrNotSquare)
	}
	if !m.Valid() {
		return nil, fmt.Errorf("Compute: %v: %w", m, ErrUnknownMethod)
	}
	p = p.normalized()
	if m.Base() != Richardson { // every splitting except Richardson divides by D
		for i := 0; i < rows; i++ {
			if a.At(i, i) == 0 {
				return nil, fmt.Errorf("Compute: diagonal entry %d: %w", i, ErrSingularSplitting)
			}
		}
	}

	// Stage 2: Decompose A = D − L − U
	d, l, u := Decompose(a)

	// Stage 3: Assemble the affine family of the base method
	s := &Splitting{Method: m, Dim: rows, Params: p}
	assemble(s, a, d, l, u)

	// Stage 4: Iteration matrix and spectral diagnostics
	var (
		bigM, bigN = s.materializeDense(s.theta)
		iter       mat.Dense
		err        error
	)
	if err = iter.Solve(bigM, bigN); err != nil {
		// M is triangular with the validated diagonal (or the identity), so a
		// failed solve indicates a pathological parameter choice.
		return nil, fmt.Errorf("Compute: iteration matrix: %w", ErrSingularSplitting)
	}
	s.iter = &iter
	s.luM = new(mat.LU)
	s.luM.Factorize(bigM)

	if s.SpectralRadius, err = spectralRadius(s.iter); err != nil {
		return nil, fmt.Errorf("Compute: %w", err)
	}
	s.Convergent = s.SpectralRadius < 1

	return s, nil
}

// assemble fills the affine family for the base method of s.Method.
// Coefficient order: Richardson [α]; Jacobi/GaussSeidel/SOR [ω]; AOR [r, ω].
// Chebyshev variants reuse their base family at fixed classical θ; the
// schedule coefficients γ/ω live outside the family (see Schedule).
func assemble(s *Splitting, a, d, l, u *mat.Dense) {
	var (
		n   = s.Dim
		p   = s.Params
		lpu = mat.NewDense(n, n, nil) // L + U
		dml = mat.NewDense(n, n, nil) // D − L
	)
	lpu.Add(l, u)
	dml.Sub(d, l)

	switch s.Method.Base() {
	case Richardson:
		// M = I, N = I − αA, c = αb.
		negA := mat.NewDense(n, n, nil)
		negA.Scale(-1, a)
		s.m0 = eye(n)
		s.md = []*mat.Dense{nil}
		s.n0 = eye(n)
		s.nd = []*mat.Dense{negA}
		s.cd = []float64{1}
		s.theta = []float64{p.Alpha}

	case Jacobi:
		// M = D, N = (1−ω)D + ω(L+U) = D + ω(L+U−D), c = ωb.
		nd := mat.NewDense(n, n, nil)
		nd.Sub(lpu, d)
		s.m0 = mat.DenseCopyOf(d)
		s.md = []*mat.Dense{nil}
		s.n0 = mat.DenseCopyOf(d)
		s.nd = []*mat.Dense{nd}
		s.cd = []float64{1}
		s.theta = []float64{p.Omega}

	case GaussSeidel:
		// M = D − L, N = (1−ω)(D−L) + ωU = (D−L) + ω(U−D+L), c = ωb.
		nd := mat.NewDense(n, n, nil)
		nd.Sub(u, dml)
		s.m0 = mat.DenseCopyOf(dml)
		s.md = []*mat.Dense{nil}
		s.n0 = mat.DenseCopyOf(dml)
		s.nd = []*mat.Dense{nd}
		s.cd = []float64{1}
		s.theta = []float64{p.Omega}

	case SOR:
		// M = D − ωL, N = (1−ω)D + ωU = D + ω(U−D), c = ωb.
		md := mat.NewDense(n, n, nil)
		md.Scale(-1, l)
		nd := mat.NewDense(n, n, nil)
		nd.Sub(u, d)
		s.m0 = mat.DenseCopyOf(d)
		s.md = []*mat.Dense{md}
		s.n0 = mat.DenseCopyOf(d)
		s.nd = []*mat.Dense{nd}
		s.cd = []float64{1}
		s.theta = []float64{p.Omega}

	case AOR:
		// M = D − rL, N = (1−ω)D + (ω−r)L + ωU = D − rL + ω(L+U−D), c = ωb.
		negL := mat.NewDense(n, n, nil)
		negL.Scale(-1, l)
		ndOmega := mat.NewDense(n, n, nil)
		ndOmega.Sub(lpu, d)
		s.m0 = mat.DenseCopyOf(d)
		s.md = []*mat.Dense{negL, nil}
		s.n0 = mat.DenseCopyOf(d)
		s.nd = []*mat.Dense{negL, ndOmega}
		s.cd = []float64{0, 1}
		s.theta = []float64{p.R, p.Omega}
	}
}

// Materialize builds the step operators at an arbitrary coefficient vector
// θ: M(θ), N(θ) and the scalar c-scale such that c(θ) = cScale·b.
// The returned matrices are fresh and owned by the caller.
// Complexity: O(k·n²) for k = NumCoeffs.
func (s *Splitting) Materialize(theta []float64) (bigM, bigN *mat.Dense, cScale float64) {
	if len(theta) != len(s.theta) {
		panic(fmt.Sprintf("splitting: Materialize: want %d coefficients, got %d", len(s.theta), len(theta)))
	}
	bigM, bigN = s.materializeDense(theta)

	return bigM, bigN, s.cScale(theta)
}

// Derivative returns the family derivatives (∂M/∂θᵢ, ∂N/∂θᵢ, ∂cScale/∂θᵢ)
// for coefficient i. A nil matrix denotes the zero matrix; the returned
// matrices are owned by the Splitting and must not be modified.
func (s *Splitting) Derivative(i int) (dM, dN *mat.Dense, dc float64) {
	return s.md[i], s.nd[i], s.cd[i]
}

// materializeDense assembles M(θ) and N(θ) without the c-scale.
func (s *Splitting) materializeDense(theta []float64) (bigM, bigN *mat.Dense) {
	bigM = mat.DenseCopyOf(s.m0)
	bigN = mat.DenseCopyOf(s.n0)
	var scaled mat.Dense
	for i, t := range theta {
		if s.md[i] != nil && t != 0 {
			scaled.Scale(t, s.md[i])
			bigM.Add(bigM, &scaled)
		}
		if s.nd[i] != nil && t != 0 {
			scaled.Scale(t, s.nd[i])
			bigN.Add(bigN, &scaled)
		}
	}

	return bigM, bigN
}

// cScale evaluates the scalar b-multiplier of c(θ).
func (s *Splitting) cScale(theta []float64) float64 {
	var scale float64
	for i, t := range theta {
		scale += t * s.cd[i]
	}

	return scale
}

// eye returns the n×n identity matrix.
func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}

	return m
}

// finite reports whether v is neither NaN nor ±Inf.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
