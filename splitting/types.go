// SPDX-License-Identifier: MIT

// Package splitting: the closed method enum, classical parameters, sentinel
// errors and the Splitting type. The algebra lives in splitting.go, the
// spectral diagnostics in spectral.go, the Chebyshev schedule in chebyshev.go.
package splitting

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors returned by splitting computation.
var (
	// ErrNotSquare indicates that the coefficient matrix is not square.
	ErrNotSquare = errors.New("splitting: matrix must be square")

	// ErrSingularSplitting indicates a zero diagonal entry, so the diagonal
	// block of the splitting is not invertible.
	ErrSingularSplitting = errors.New("splitting: zero diagonal entry, splitting is singular")

	// ErrUnknownMethod indicates a Method value outside the closed enum.
	// Unreachable through the exported constants; reachable through casts
	// and identifier parsing at the API boundary.
	ErrUnknownMethod = errors.New("splitting: unknown method")

	// ErrEigenFailed indicates that the eigendecomposition used for the
	// spectral radius did not converge.
	ErrEigenFailed = errors.New("splitting: eigendecomposition failed")
)

// Method is the closed enumeration of supported iterative methods.
// Dispatch is by switch over these values; there is no string lookup in the
// core, so an unsupported method cannot slip past construction.
type Method int

const (
	// Richardson is the stationary Richardson iteration x + α(b − Ax).
	Richardson Method = iota

	// Jacobi is the (damped) Jacobi method; classical at ω = 1.
	Jacobi

	// GaussSeidel is the (damped) Gauss-Seidel method; classical at ω = 1.
	GaussSeidel

	// SOR is successive over-relaxation with relaxation weight ω.
	SOR

	// AOR is accelerated over-relaxation with acceleration r and weight ω.
	AOR

	// ChebySOR is SOR wrapped in the three-term Chebyshev recurrence.
	ChebySOR

	// ChebyAOR is AOR wrapped in the three-term Chebyshev recurrence.
	ChebyAOR

	numMethods // sentinel, keep last
)

// methodNames maps Method values to their canonical names.
var methodNames = [...]string{
	Richardson:  "Richardson",
	Jacobi:      "Jacobi",
	GaussSeidel: "GaussSeidel",
	SOR:         "SOR",
	AOR:         "AOR",
	ChebySOR:    "ChebySOR",
	ChebyAOR:    "ChebyAOR",
}

// String returns the canonical method name, or "Method(n)" outside the enum.
func (m Method) String() string {
	if m.Valid() {
		return methodNames[m]
	}

	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod maps a canonical method name (as produced by Method.String)
// back onto the enum. Returns ErrUnknownMethod for anything else.
func ParseMethod(name string) (Method, error) {
	for m := Richardson; m < numMethods; m++ {
		if methodNames[m] == name {
			return m, nil
		}
	}

	return 0, fmt.Errorf("ParseMethod: %q: %w", name, ErrUnknownMethod)
}

// Valid reports whether m is one of the exported Method constants.
func (m Method) Valid() bool {
	return m >= Richardson && m < numMethods
}

// Chebyshev reports whether m is a Chebyshev-accelerated variant.
func (m Method) Chebyshev() bool {
	return m == ChebySOR || m == ChebyAOR
}

// Base returns the underlying stationary method: the SOR/AOR core of a
// Chebyshev variant, or m itself otherwise.
func (m Method) Base() Method {
	switch m {
	case ChebySOR:
		return SOR
	case ChebyAOR:
		return AOR
	default:
		return m
	}
}

// LayerCoeffs returns the number of trainable coefficients one unfolded
// layer of this method carries: [α] for Richardson, [ω] for Jacobi,
// Gauss-Seidel and SOR, [r, ω] for AOR, [γ, ω] for Chebyshev variants.
func (m Method) LayerCoeffs() int {
	switch m {
	case AOR, ChebySOR, ChebyAOR:
		return 2
	default:
		return 1
	}
}

// Classical parameter defaults (single source of truth).
const (
	// DefaultAlpha is the Richardson step size used when Params.Alpha is 0.
	DefaultAlpha = 0.1

	// DefaultOmega is the relaxation weight used when Params.Omega is 0.
	// ω = 1 makes SOR coincide with Gauss-Seidel and makes the damped
	// Jacobi/Gauss-Seidel splittings exactly classical.
	DefaultOmega = 1.0

	// DefaultR is the AOR acceleration used when Params.R is 0.
	DefaultR = 0.5
)

// Params holds the classical fixed coefficients of a method. Zero-valued
// fields fall back to the documented defaults; fields irrelevant to the
// chosen method are ignored.
type Params struct {
	Alpha float64 // Richardson step size
	Omega float64 // relaxation weight (Jacobi/GS damping, SOR/AOR weight)
	R     float64 // AOR acceleration
}

// normalized returns p with zero fields replaced by defaults.
func (p Params) normalized() Params {
	if p.Alpha == 0 {
		p.Alpha = DefaultAlpha
	}
	if p.Omega == 0 {
		p.Omega = DefaultOmega
	}
	if p.R == 0 {
		p.R = DefaultR
	}

	return p
}

// Splitting is the computed iteration algebra for one (A, method, params)
// combination. It is immutable after Compute and safe to share across
// classical runs and unfolded networks built from the same system shape.
type Splitting struct {
	// Method is the iterative method this splitting realizes.
	Method Method

	// Dim is the system dimension n.
	Dim int

	// Params are the normalized classical coefficients.
	Params Params

	// SpectralRadius is ρ(B) of the iteration matrix at the classical
	// coefficients (for Chebyshev variants: of the base method's B).
	SpectralRadius float64

	// Convergent reports the classical guarantee ρ(B) < 1. A false value is
	// a warning, not an error: the caller decides whether to iterate anyway.
	Convergent bool

	// Affine family M(θ) = m0 + Σ θᵢ·md[i], N(θ) = n0 + Σ θᵢ·nd[i],
	// c(θ) = (Σ θᵢ·cd[i])·b. Nil derivative entries denote the zero matrix.
	m0, n0 *mat.Dense
	md, nd []*mat.Dense
	cd     []float64

	// theta holds the classical coefficient values of the affine family.
	theta []float64

	iter *mat.Dense // cached B = M⁻¹N at theta
	luM  *mat.LU    // cached factorization of M(theta)
}

// NumCoeffs returns the dimension of the affine coefficient vector θ.
// For Chebyshev variants this is the base method's count; the γ/ω schedule
// coefficients live outside the affine family (see Schedule).
func (s *Splitting) NumCoeffs() int {
	return len(s.theta)
}

// Theta returns a copy of the classical affine coefficients.
func (s *Splitting) Theta() []float64 {
	out := make([]float64, len(s.theta))
	copy(out, s.theta)

	return out
}

// IterationMatrix returns the iteration matrix B = M⁻¹N at the classical
// coefficients. The returned matrix is owned by the Splitting and must not
// be modified.
func (s *Splitting) IterationMatrix() *mat.Dense {
	return s.iter
}

// UpdateVector returns the classical update vector M⁻¹·c(θ) for a given
// right-hand side b. Complexity: O(n²) (one triangular-solve pair).
func (s *Splitting) UpdateVector(b *mat.VecDense) *mat.VecDense {
	var (
		scaled = mat.NewVecDense(s.Dim, nil)
		out    = mat.NewVecDense(s.Dim, nil)
	)
	scaled.ScaleVec(s.cScale(s.theta), b)
	// M(theta) is invertible (validated diagonal), the solve cannot fail.
	_ = s.luM.SolveVecTo(out, false, scaled)

	return out
}
