// SPDX-License-Identifier: MIT

package training

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Optimizer applies one in-place update to a flat coefficient vector given
// the gradient of the loss with respect to it. Implementations may keep
// per-coordinate state between calls; that state is sized lazily from the
// first Step, so one Optimizer value must not be shared across networks of
// different coefficient counts.
type Optimizer interface {
	// Step updates params in place. len(grad) == len(params).
	Step(params, grad []float64)
}

// SGD is plain stochastic gradient descent:
//
//	θ ← θ − lr·g
//
// Zero state, safe to reuse across runs.
type SGD struct {
	// LR is the learning rate. Must be positive.
	LR float64
}

// Step implements Optimizer.
func (s *SGD) Step(params, grad []float64) {
	floats.AddScaled(params, -s.LR, grad)
}

// Adam is the Adam optimizer (Kingma & Ba, 2015) with bias-corrected first
// and second moment estimates:
//
//	m ← β₁·m + (1−β₁)·g
//	v ← β₂·v + (1−β₂)·g²
//	θ ← θ − lr·m̂ / (√v̂ + ε)
//
// Moment slices are allocated on the first Step.
type Adam struct {
	LR      float64
	Beta1   float64
	Beta2   float64
	Epsilon float64

	m, v []float64
	t    int
}

// NewAdam returns an Adam optimizer with the standard defaults
// β₁=0.9, β₂=0.999, ε=1e-8.
func NewAdam(lr float64) *Adam {
	return &Adam{LR: lr, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
}

// Step implements Optimizer.
func (a *Adam) Step(params, grad []float64) {
	if a.m == nil {
		a.m = make([]float64, len(params))
		a.v = make([]float64, len(params))
	}
	a.t++
	c1 := 1 - math.Pow(a.Beta1, float64(a.t))
	c2 := 1 - math.Pow(a.Beta2, float64(a.t))
	for i, g := range grad {
		a.m[i] = a.Beta1*a.m[i] + (1-a.Beta1)*g
		a.v[i] = a.Beta2*a.v[i] + (1-a.Beta2)*g*g
		mHat := a.m[i] / c1
		vHat := a.v[i] / c2
		params[i] -= a.LR * mHat / (math.Sqrt(vHat) + a.Epsilon)
	}
}

// Reset clears the moment estimates so the optimizer can start a fresh run.
func (a *Adam) Reset() {
	a.m, a.v, a.t = nil, nil, 0
}
