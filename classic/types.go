// SPDX-License-Identifier: MIT

// Package classic: trace type, sentinel errors and functional options for
// the fixed-coefficient iteration engine. The engine itself lives in
// engine.go.
package classic

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors returned by the engine.
var (
	// ErrNilSystem indicates a nil linear system.
	ErrNilSystem = errors.New("classic: system is nil")

	// ErrNilSplitting indicates a nil splitting.
	ErrNilSplitting = errors.New("classic: splitting is nil")

	// ErrBadIterations indicates a negative iteration count.
	ErrBadIterations = errors.New("classic: iteration count must be >= 0")

	// ErrDimensionMismatch indicates that the system, splitting or initial
	// guess dimensions disagree.
	ErrDimensionMismatch = errors.New("classic: dimension mismatch")

	// ErrBadThreshold indicates a non-positive divergence threshold.
	ErrBadThreshold = errors.New("classic: divergence threshold must be positive")
)

// DefaultDivergenceThreshold is the residual norm above which a run is
// declared divergent when no explicit threshold is configured.
const DefaultDivergenceThreshold = 1e12

// Trace is the record of one classical solve: the iterate sequence
// x_0..x_Steps and the residual norm at each of those iterates.
//
// Lifecycle: created fresh by Run, never mutated afterwards. When Diverged
// is true the trace is truncated at the last finite, in-threshold iterate.
type Trace struct {
	// X holds the iterates x_0..x_Steps (Steps+1 vectors).
	X []*mat.VecDense

	// Residuals holds ‖A·x_k − b‖₂ for each recorded iterate.
	Residuals []float64

	// Steps is the number of iteration steps actually performed.
	Steps int

	// Diverged reports that the run hit a non-finite value or exceeded the
	// divergence threshold before completing all requested steps.
	Diverged bool
}

// Final returns the last recorded iterate.
func (tr *Trace) Final() *mat.VecDense {
	return tr.X[len(tr.X)-1]
}

// FinalResidual returns the residual norm at the last recorded iterate.
func (tr *Trace) FinalResidual() float64 {
	return tr.Residuals[len(tr.Residuals)-1]
}

// Options configures a classical run.
//
// X0        – initial guess; nil means the zero vector.
// Threshold – residual norm above which the run is declared divergent.
type Options struct {
	X0        *mat.VecDense
	Threshold float64
}

// Option is a functional option for configuring Run.
type Option func(*Options)

// defaultOptions returns the documented defaults.
func defaultOptions() Options {
	return Options{Threshold: DefaultDivergenceThreshold}
}

// WithInitialGuess sets the starting iterate x_0. The vector is copied;
// the caller's copy is never mutated.
func WithInitialGuess(x0 *mat.VecDense) Option {
	return func(o *Options) {
		o.X0 = x0
	}
}

// WithDivergenceThreshold sets the residual norm treated as divergence.
// Must be positive; non-positive values panic (programmer error).
func WithDivergenceThreshold(v float64) Option {
	return func(o *Options) {
		if v <= 0 {
			panic(ErrBadThreshold.Error())
		}
		o.Threshold = v
	}
}
