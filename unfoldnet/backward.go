// SPDX-License-Identifier: MIT

// Package unfoldnet: reverse accumulation through the unrolled recurrence.
// The backward pass is a fold over the tape in reverse layer order; the
// per-layer parameter records and the step algebra stay decoupled, so the
// depth T can change without touching any of this code.
package unfoldnet

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/solverlab/unfold/splitting"
)

// Backward computes the gradient of a scalar loss with respect to every
// layer coefficient, given the tape of a forward pass and the loss gradient
// ḡ = ∂loss/∂x_T. It returns the coefficient gradients in layer-major order
// (matching CoeffVector) and the propagated input gradient ∂loss/∂x_0.
//
// For a stationary layer M(θ)·x_{l+1} = N(θ)·x_l + c(θ)·b the adjoint step
// is one transposed solve Mᵀw = ḡ, then
//
//	∂loss/∂θᵢ = w·(Nᵢ·x_l + cᵢ·b − Mᵢ·x_{l+1}),   ḡ ← Nᵀ·w.
//
// Chebyshev layers carry a pair of adjoints matching their explicit
// (x_prev, x_cur) state.
// Complexity: O(T·n²) — the forward factorizations are reused.
func (n *Network) Backward(tp *Tape, lossGrad *mat.VecDense) ([]float64, *mat.VecDense, error) {
	// Stage 1: Validate input
	if tp == nil || len(tp.xs) != n.depth+1 {
		return nil, nil, fmt.Errorf("Backward: %w", ErrBadParamSet)
	}
	if lossGrad == nil || lossGrad.Len() != tp.sys.N {
		return nil, nil, fmt.Errorf("Backward: %w", ErrCoeffMismatch)
	}

	// Stage 2: Fold backwards over the layers
	if n.method.Chebyshev() {
		return n.backwardChebyshev(tp, lossGrad)
	}

	return n.backwardStationary(tp, lossGrad)
}

// backwardStationary reverse-accumulates through the affine-family layers.
func (n *Network) backwardStationary(tp *Tape, lossGrad *mat.VecDense) ([]float64, *mat.VecDense, error) {
	var (
		width = n.method.LayerCoeffs()
		grads = make([]float64, n.depth*width)
		dim   = tp.sys.N
		gbar  = mat.NewVecDense(dim, nil)
		w     = mat.NewVecDense(dim, nil)
		v     = mat.NewVecDense(dim, nil)
		tmp   = mat.NewVecDense(dim, nil)
		l, i  int
	)
	gbar.CopyVec(lossGrad)

	for l = n.depth - 1; l >= 0; l-- {
		// w = M(θ_l)⁻ᵀ·ḡ, reusing the forward factorization.
		if err := tp.lus[l].SolveVecTo(w, true, gbar); err != nil {
			return nil, nil, fmt.Errorf("Backward: layer %d: %w", l, splitting.ErrSingularSplitting)
		}

		// Coefficient gradients from the family derivatives.
		for i = 0; i < width; i++ {
			dM, dN, dc := tp.sp.Derivative(i)
			v.Zero()
			if dN != nil {
				tmp.MulVec(dN, tp.xs[l])
				v.AddVec(v, tmp)
			}
			if dc != 0 {
				v.AddScaledVec(v, dc, tp.sys.B)
			}
			if dM != nil {
				tmp.MulVec(dM, tp.xs[l+1])
				v.SubVec(v, tmp)
			}
			grads[l*width+i] = mat.Dot(w, v)
		}

		// ḡ ← N(θ_l)ᵀ·w.
		gbar.MulVec(tp.ns[l].T(), w)
	}

	return grads, gbar, nil
}

// backwardChebyshev reverse-accumulates through the three-term recurrence.
// The adjoint state is the pair (ābar, b̄bar) for (x_prev, x_cur) after each
// layer; the base-step Jacobian Bᵀ·v is applied as Nᵀ·(M⁻ᵀ·v) against the
// fixed base operators.
func (n *Network) backwardChebyshev(tp *Tape, lossGrad *mat.VecDense) ([]float64, *mat.VecDense, error) {
	var (
		grads        = make([]float64, n.depth*2)
		dim          = tp.sys.N
		abar         = mat.NewVecDense(dim, nil) // adjoint of x_prev after layer l
		bbar         = mat.NewVecDense(dim, nil) // adjoint of x_next after layer l
		w            = mat.NewVecDense(dim, nil)
		bt           = mat.NewVecDense(dim, nil)
		dcur         = mat.NewVecDense(dim, nil)
		gamma, omega float64
		xPrev, xCur  *mat.VecDense
		i, l         int
	)
	bbar.CopyVec(lossGrad)

	for l = n.depth - 1; l >= 0; l-- {
		gamma, omega = n.layers[l][0], n.layers[l][1]
		xCur = tp.xs[l]
		if l > 0 {
			xPrev = tp.xs[l-1]
		} else {
			xPrev = tp.xs[0] // layer 0 starts with x_prev = x_cur = x_0
		}
		z := tp.zs[l]

		// Coefficient gradients:
		//   ∂x⁺/∂ω = γ(z − x_cur) + (x_cur − x_prev)
		//   ∂x⁺/∂γ = ω(z − x_cur)
		var gGamma, gOmega float64
		for i = 0; i < dim; i++ {
			dz := z.AtVec(i) - xCur.AtVec(i)
			gGamma += bbar.AtVec(i) * omega * dz
			gOmega += bbar.AtVec(i) * (gamma*dz + xCur.AtVec(i) - xPrev.AtVec(i))
		}
		grads[l*2] = gGamma
		grads[l*2+1] = gOmega

		// Bᵀ·b̄ through the base operators: solve Mᵀw = b̄, then Nᵀw.
		if err := tp.baseLU.SolveVecTo(w, true, bbar); err != nil {
			return nil, nil, fmt.Errorf("Backward: layer %d: %w", l, splitting.ErrSingularSplitting)
		}
		bt.MulVec(tp.baseN.T(), w)

		// Adjoint transition:
		//   x⁺ = ωγ·z + ω(1−γ)·x_cur + (1−ω)·x_prev,  z = B·x_cur + M⁻¹c
		//   new b̄ (for x_cur) = ā + ω(1−γ)·b̄ + ωγ·Bᵀb̄
		//   new ā (for x_prev) = (1−ω)·b̄
		for i = 0; i < dim; i++ {
			dcur.SetVec(i, abar.AtVec(i)+omega*(1-gamma)*bbar.AtVec(i)+omega*gamma*bt.AtVec(i))
		}
		for i = 0; i < dim; i++ {
			abar.SetVec(i, (1-omega)*bbar.AtVec(i))
		}
		bbar.CopyVec(dcur)
	}

	// Both initial states are x_0, so its adjoint is the pair's sum.
	out := mat.NewVecDense(dim, nil)
	out.AddVec(abar, bbar)

	return grads, out, nil
}
