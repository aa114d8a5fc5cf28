// SPDX-License-Identifier: MIT

// Package classic: the fixed-point iteration engine.
package classic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/solverlab/unfold/linsys"
	"github.com/solverlab/unfold/splitting"
)

// Run executes the classical recurrence of sp on sys for exactly depth
// steps, recording every iterate and residual norm.
// Stage 1 (Validate): nil checks, dimension agreement, iteration count.
// Stage 2 (Prepare): materialize B and c once, seed x_0.
// Stage 3 (Execute): iterate, recording residuals and watching divergence.
// Stage 4 (Finalize): return the (possibly truncated) trace.
// Complexity: O(depth·n²) after the O(n²) setup; memory O(depth·n).
func Run(sys *linsys.System, sp *splitting.Splitting, depth int, opts ...Option) (*Trace, error) {
	// Stage 1: Validate input
	if sys == nil {
		return nil, fmt.Errorf("Run: %w", ErrNilSystem)
	}
	if sp == nil {
		return nil, fmt.Errorf("Run: %w", ErrNilSplitting)
	}
	if depth < 0 {
		return nil, fmt.Errorf("Run: depth=%d: %w", depth, ErrBadIterations)
	}
	if sys.N != sp.Dim {
		return nil, fmt.Errorf("Run: system n=%d, splitting n=%d: %w", sys.N, sp.Dim, ErrDimensionMismatch)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.X0 != nil && o.X0.Len() != sys.N {
		return nil, fmt.Errorf("Run: x0 len=%d: %w", o.X0.Len(), ErrDimensionMismatch)
	}

	// Stage 2: Prepare operators and the starting iterate
	var (
		b  = sp.IterationMatrix() // B = M⁻¹N, shared and read-only
		c  = sp.UpdateVector(sys.B)
		x0 = mat.NewVecDense(sys.N, nil)
		tr = &Trace{
			X:         make([]*mat.VecDense, 0, depth+1),
			Residuals: make([]float64, 0, depth+1),
		}
	)
	if o.X0 != nil {
		x0.CopyVec(o.X0)
	}
	tr.X = append(tr.X, x0)
	tr.Residuals = append(tr.Residuals, sys.Residual(x0))

	// Stage 3: Execute the recurrence
	if sp.Method.Chebyshev() {
		runChebyshev(sys, sp, depth, b, c, x0, o.Threshold, tr)
	} else {
		runStationary(sys, depth, b, c, x0, o.Threshold, tr)
	}

	// Stage 4: Finalize
	return tr, nil
}

// runStationary iterates x ← B·x + c, appending each healthy iterate.
func runStationary(sys *linsys.System, depth int, b *mat.Dense, c, x0 *mat.VecDense, threshold float64, tr *Trace) {
	var (
		x    = mat.NewVecDense(sys.N, nil)
		next *mat.VecDense
		k    int
	)
	x.CopyVec(x0)
	for k = 0; k < depth; k++ {
		next = mat.NewVecDense(sys.N, nil)
		next.MulVec(b, x)
		next.AddVec(next, c)
		if !record(sys, next, threshold, tr) {
			return
		}
		x = next
		tr.Steps++
	}
}

// runChebyshev iterates the three-term recurrence
//
//	z   = B·x_cur + c
//	x⁺  = ω_k·(γ_k·(z − x_cur) + (x_cur − x_prev)) + x_prev
//
// over the explicit (x_prev, x_cur) state, using the classical schedule.
// Both states start at x_0; with ω_1 = γ_1 = 1 the first step is the plain
// base iteration.
func runChebyshev(sys *linsys.System, sp *splitting.Splitting, depth int, b *mat.Dense, c, x0 *mat.VecDense, threshold float64, tr *Trace) {
	var (
		sched = sp.Schedule(depth)
		prev  = mat.NewVecDense(sys.N, nil)
		cur   = mat.NewVecDense(sys.N, nil)
		z     = mat.NewVecDense(sys.N, nil)
		next  *mat.VecDense
		gamma float64
		omega float64
		i, k  int
	)
	prev.CopyVec(x0)
	cur.CopyVec(x0)
	for k = 0; k < depth; k++ {
		gamma, omega = sched[k][0], sched[k][1]
		z.MulVec(b, cur)
		z.AddVec(z, c)
		next = mat.NewVecDense(sys.N, nil)
		for i = 0; i < sys.N; i++ {
			next.SetVec(i, omega*(gamma*(z.AtVec(i)-cur.AtVec(i))+(cur.AtVec(i)-prev.AtVec(i)))+prev.AtVec(i))
		}
		if !record(sys, next, threshold, tr) {
			return
		}
		prev, cur = cur, next
		tr.Steps++
	}
}

// record appends the iterate and its residual to the trace unless the
// iterate is non-finite or the residual exceeds the divergence threshold,
// in which case the trace is flagged and truncated.
func record(sys *linsys.System, x *mat.VecDense, threshold float64, tr *Trace) bool {
	for i := 0; i < x.Len(); i++ {
		if v := x.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			tr.Diverged = true
			return false
		}
	}
	res := sys.Residual(x)
	if math.IsNaN(res) || res > threshold {
		tr.Diverged = true
		return false
	}
	tr.X = append(tr.X, x)
	tr.Residuals = append(tr.Residuals, res)

	return true
}
