// SPDX-License-Identifier: MIT

package training

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/solverlab/unfold/linsys"
	"github.com/solverlab/unfold/unfoldnet"
)

// Train fits the network's layer coefficients by mini-batch gradient
// descent over systems drawn from the sampler.
//
// The blueprint:
//
//	Stage 1 (Validate) – reject nil network, sampler or random source.
//	Stage 2 (Prepare)  – resolve options, snapshot the starting coefficients.
//	Stage 3 (Descend)  – per epoch, per batch: draw BatchSize systems,
//	                     average loss and gradient across them, apply one
//	                     optimizer step. Batches whose loss or gradient is
//	                     non-finite are skipped and the last finite
//	                     coefficients kept.
//	Stage 4 (Record)   – append the epoch loss (held-out validation loss
//	                     when configured, otherwise the mean loss of the
//	                     last applied batch) and emit a progress line.
//
// Train mutates net in place and returns the per-run State. An epoch in
// which every batch was skipped stops the run with ErrTrainingDiverged;
// the partially populated State is still returned so callers can inspect
// how far training got.
//
// Complexity: O(Epochs · BatchesPerEpoch · BatchSize · T · n³) dominated
// by the per-layer dense solves of the forward and backward sweeps.
func Train(net *unfoldnet.Network, sample Sampler, rng *rand.Rand, opts ...Option) (*State, error) {
	// Stage 1 (Validate).
	if net == nil {
		return nil, ErrNilNetwork
	}
	if sample == nil {
		return nil, ErrNilSampler
	}
	if rng == nil {
		return nil, ErrNilRand
	}

	// Stage 2 (Prepare).
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	st := &State{LossHistory: make([]float64, 0, o.Epochs)}
	coeffs := net.CoeffVector()
	grad := make([]float64, len(coeffs))

	// Stage 3 (Descend).
	for epoch := 0; epoch < o.Epochs; epoch++ {
		var (
			applied   int
			batchLoss float64
		)
		for b := 0; b < o.BatchesPerEpoch; b++ {
			loss, ok, err := accumulateBatch(net, sample, rng, o, grad)
			if err != nil {
				return st, err
			}
			if !ok {
				st.Diverged = true
				st.SkippedSteps++
				continue
			}
			o.Optimizer.Step(coeffs, grad)
			if err := net.SetCoeffVector(coeffs); err != nil {
				return st, err
			}
			applied++
			batchLoss = loss
		}
		if applied == 0 {
			return st, ErrTrainingDiverged
		}

		// Stage 4 (Record).
		epochLoss := batchLoss
		if len(o.Validation) > 0 {
			v, err := Evaluate(net, o.Validation, o.Loss)
			if err != nil {
				return st, err
			}
			epochLoss = v
		}
		st.Epoch = epoch + 1
		st.LossHistory = append(st.LossHistory, epochLoss)
		if o.Progress != nil {
			fmt.Fprintf(o.Progress, "epoch %d/%d  loss %.6e\n", st.Epoch, o.Epochs, epochLoss)
		}
	}

	return st, nil
}

// Evaluate returns the mean loss of the network over a fixed set of
// systems without touching its coefficients.
func Evaluate(net *unfoldnet.Network, systems []*linsys.System, kind LossKind) (float64, error) {
	if net == nil {
		return 0, ErrNilNetwork
	}
	var total float64
	for _, sys := range systems {
		xT, _, err := net.Forward(sys)
		if err != nil {
			return 0, err
		}
		loss, _, err := lossAndGrad(sys, xT, kind)
		if err != nil {
			return 0, err
		}
		total += loss
	}
	if len(systems) > 0 {
		total /= float64(len(systems))
	}

	return total, nil
}

// accumulateBatch draws one batch, writes the mean gradient into grad and
// returns the mean loss. ok reports whether the batch is usable; a batch
// containing any non-finite loss or gradient component is rejected whole.
func accumulateBatch(net *unfoldnet.Network, sample Sampler, rng *rand.Rand, o Options, grad []float64) (loss float64, ok bool, err error) {
	zero(grad)
	inv := 1.0 / float64(o.BatchSize)
	for i := 0; i < o.BatchSize; i++ {
		sys, err := sample(rng)
		if err != nil {
			return 0, false, err
		}
		xT, tape, err := net.ForwardTape(sys)
		if err != nil {
			return 0, false, err
		}
		l, g, err := lossAndGrad(sys, xT, o.Loss)
		if err != nil {
			return 0, false, err
		}
		theta, _, err := net.Backward(tape, g)
		if err != nil {
			return 0, false, err
		}
		if !math.IsInf(l, 0) && !math.IsNaN(l) && allFinite(theta) {
			loss += l * inv
			floats.AddScaled(grad, inv, theta)
			continue
		}

		return 0, false, nil
	}

	return loss, allFinite(grad) && !math.IsNaN(loss) && !math.IsInf(loss, 0), nil
}

// lossAndGrad evaluates the configured objective and its gradient with
// respect to the final iterate.
//
// LossSolutionMSE: L = ‖x_T − x*‖²/n,     ∂L/∂x_T = 2(x_T − x*)/n.
// LossResidualMSE: L = ‖A·x_T − b‖²/n,    ∂L/∂x_T = 2·Aᵀ(A·x_T − b)/n.
// LossAuto resolves to SolutionMSE when the system carries x*; an explicit
// LossSolutionMSE on a system without x* is ErrMissingSolution.
func lossAndGrad(sys *linsys.System, xT *mat.VecDense, kind LossKind) (float64, *mat.VecDense, error) {
	if kind == LossAuto {
		if sys.XStar != nil {
			kind = LossSolutionMSE
		} else {
			kind = LossResidualMSE
		}
	}
	n := sys.N
	g := mat.NewVecDense(n, nil)
	switch kind {
	case LossSolutionMSE:
		if sys.XStar == nil {
			return 0, nil, ErrMissingSolution
		}
		var loss float64
		for i := 0; i < n; i++ {
			d := xT.AtVec(i) - sys.XStar.AtVec(i)
			loss += d * d
			g.SetVec(i, 2*d/float64(n))
		}

		return loss / float64(n), g, nil
	default: // LossResidualMSE
		r := mat.NewVecDense(n, nil)
		r.MulVec(sys.A, xT)
		r.SubVec(r, sys.B)
		loss := mat.Dot(r, r) / float64(n)
		g.MulVec(sys.A.T(), r)
		g.ScaleVec(2/float64(n), g)

		return loss, g, nil
	}
}

func zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return true
}
