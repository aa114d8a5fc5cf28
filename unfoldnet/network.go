// SPDX-License-Identifier: MIT

// Package unfoldnet: network construction and the differentiable forward
// pass. The backward pass lives in backward.go.
package unfoldnet

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/solverlab/unfold/classic"
	"github.com/solverlab/unfold/linsys"
	"github.com/solverlab/unfold/splitting"
)

// Build constructs a depth-T network whose layers are initialized from the
// classical fixed coefficients of sp, so that the untrained network
// reproduces the classical engine exactly.
// Stage 1 (Validate): nil splitting, non-negative depth.
// Stage 2 (Initialize): one layer per step — affine θ for stationary
// methods, the classical (γ, ω) schedule for Chebyshev variants.
// Complexity: O(T·k) time and memory for k coefficients per layer.
func Build(sp *splitting.Splitting, depth int) (*Network, error) {
	// Stage 1: Validate input
	if sp == nil {
		return nil, fmt.Errorf("Build: %w", ErrNilSplitting)
	}
	if depth < 0 {
		return nil, fmt.Errorf("Build: depth=%d: %w", depth, ErrBadDepth)
	}

	// Stage 2: Initialize layers from the classical values
	var (
		width = sp.Method.LayerCoeffs()
		net   = &Network{
			method: sp.Method,
			params: sp.Params,
			depth:  depth,
			flat:   make([]float64, depth*width),
		}
		l int
	)
	net.layers = sliceLayers(net.flat, depth, width)
	if sp.Method.Chebyshev() {
		sched := sp.Schedule(depth)
		for l = 0; l < depth; l++ {
			copy(net.layers[l], sched[l])
		}
	} else {
		theta := sp.Theta()
		for l = 0; l < depth; l++ {
			copy(net.layers[l], theta)
		}
	}

	return net, nil
}

// Forward runs the unfolded recurrence on one input system and returns x_T
// together with the full iteration trace. Structural operators are rebuilt
// from sys; only the layer coefficients come from the network.
// Complexity: O(T·n³) dominated by the per-layer LU factorizations.
func (n *Network) Forward(sys *linsys.System) (*mat.VecDense, *classic.Trace, error) {
	x, tp, err := n.ForwardTape(sys)
	if err != nil {
		return nil, nil, err
	}

	return x, tp.trace(sys), nil
}

// Tape is the record of one forward pass: every intermediate state and
// factorization the backward pass needs. A Tape is valid only for the
// coefficient values it was recorded with.
type Tape struct {
	sys *linsys.System
	sp  *splitting.Splitting

	xs []*mat.VecDense // x_0..x_T

	// Stationary methods: per-layer operators and factorizations.
	ms  []*mat.Dense
	ns  []*mat.Dense
	lus []*mat.LU

	// Chebyshev methods: fixed base operators and per-layer base outputs.
	baseM, baseN *mat.Dense
	baseLU       *mat.LU
	baseC        *mat.VecDense
	zs           []*mat.VecDense
}

// FinalState returns x_T of the recorded pass.
func (tp *Tape) FinalState() *mat.VecDense {
	return tp.xs[len(tp.xs)-1]
}

// trace converts the recorded states into a classic.Trace with residuals.
func (tp *Tape) trace(sys *linsys.System) *classic.Trace {
	tr := &classic.Trace{
		X:         tp.xs,
		Residuals: make([]float64, len(tp.xs)),
		Steps:     len(tp.xs) - 1,
	}
	for k, x := range tp.xs {
		tr.Residuals[k] = sys.Residual(x)
		if math.IsNaN(tr.Residuals[k]) || math.IsInf(tr.Residuals[k], 0) {
			tr.Diverged = true
		}
	}

	return tr
}

// ForwardTape runs the forward pass and records the tape for Backward.
// Every layer l solves M(θ_l)·x_{l+1} = N(θ_l)·x_l + c(θ_l) by LU; for
// Chebyshev methods the base operators are fixed and the layer combines
// three iterates with its own (γ_l, ω_l).
func (n *Network) ForwardTape(sys *linsys.System) (*mat.VecDense, *Tape, error) {
	// Stage 1: Validate input and rebuild structural operators
	if sys == nil {
		return nil, nil, fmt.Errorf("ForwardTape: %w", ErrNilSystem)
	}
	sp, err := splitting.Compute(sys.A, n.method, n.params)
	if err != nil {
		return nil, nil, fmt.Errorf("ForwardTape: %w", err)
	}

	tp := &Tape{
		sys: sys,
		sp:  sp,
		xs:  make([]*mat.VecDense, 1, n.depth+1),
	}
	tp.xs[0] = mat.NewVecDense(sys.N, nil) // x_0 = 0

	// Stage 2: Unroll
	if n.method.Chebyshev() {
		err = n.forwardChebyshev(tp)
	} else {
		err = n.forwardStationary(tp)
	}
	if err != nil {
		return nil, nil, err
	}

	return tp.FinalState(), tp, nil
}

// forwardStationary unrolls the affine-family recurrence with per-layer θ.
func (n *Network) forwardStationary(tp *Tape) error {
	var (
		sys  = tp.sys
		x    = tp.xs[0]
		next *mat.VecDense
		rhs  = mat.NewVecDense(sys.N, nil)
		l    int
	)
	tp.ms = make([]*mat.Dense, n.depth)
	tp.ns = make([]*mat.Dense, n.depth)
	tp.lus = make([]*mat.LU, n.depth)
	for l = 0; l < n.depth; l++ {
		bigM, bigN, cScale := tp.sp.Materialize(n.layers[l])
		lu := new(mat.LU)
		lu.Factorize(bigM)

		// rhs = N(θ_l)·x_l + cScale·b
		rhs.MulVec(bigN, x)
		rhs.AddScaledVec(rhs, cScale, sys.B)

		next = mat.NewVecDense(sys.N, nil)
		if err := lu.SolveVecTo(next, false, rhs); err != nil {
			// A trained θ_l can make M(θ_l) singular (e.g. ω_l driving the
			// effective diagonal to zero); surface it as a setup error.
			return fmt.Errorf("ForwardTape: layer %d: %w", l, splitting.ErrSingularSplitting)
		}

		tp.ms[l], tp.ns[l], tp.lus[l] = bigM, bigN, lu
		tp.xs = append(tp.xs, next)
		x = next
	}

	return nil
}

// forwardChebyshev unrolls the three-term recurrence over the explicit
// (x_prev, x_cur) state pair. The base operators use the fixed classical
// coefficients; only the per-layer (γ_l, ω_l) are trainable.
func (n *Network) forwardChebyshev(tp *Tape) error {
	var (
		sys          = tp.sys
		gamma, omega float64
		prev, cur    = tp.xs[0], tp.xs[0]
		z, next      *mat.VecDense
		rhs          = mat.NewVecDense(sys.N, nil)
		i, l         int
	)
	baseM, baseN, cScale := tp.sp.Materialize(tp.sp.Theta())
	baseLU := new(mat.LU)
	baseLU.Factorize(baseM)
	baseC := mat.NewVecDense(sys.N, nil)
	baseC.ScaleVec(cScale, sys.B)
	tp.baseM, tp.baseN, tp.baseLU, tp.baseC = baseM, baseN, baseLU, baseC
	tp.zs = make([]*mat.VecDense, n.depth)

	for l = 0; l < n.depth; l++ {
		gamma, omega = n.layers[l][0], n.layers[l][1]

		// z = B·x_cur + M⁻¹c, evaluated as a solve against the base M.
		rhs.MulVec(baseN, cur)
		rhs.AddVec(rhs, baseC)
		z = mat.NewVecDense(sys.N, nil)
		if err := baseLU.SolveVecTo(z, false, rhs); err != nil {
			return fmt.Errorf("ForwardTape: layer %d: %w", l, splitting.ErrSingularSplitting)
		}
		tp.zs[l] = z

		// x⁺ = ω(γ(z − x_cur) + (x_cur − x_prev)) + x_prev
		next = mat.NewVecDense(sys.N, nil)
		for i = 0; i < sys.N; i++ {
			next.SetVec(i, omega*(gamma*(z.AtVec(i)-cur.AtVec(i))+(cur.AtVec(i)-prev.AtVec(i)))+prev.AtVec(i))
		}
		tp.xs = append(tp.xs, next)
		prev, cur = cur, next
	}

	return nil
}
