// SPDX-License-Identifier: MIT

// Package unfoldnet: network and parameter-set types with their sentinel
// errors. The forward/backward passes live in network.go and backward.go,
// serialization in serialize.go.
package unfoldnet

import (
	"errors"

	"github.com/solverlab/unfold/splitting"
)

// Sentinel errors returned by network construction and restoration.
var (
	// ErrNilSplitting indicates a nil init splitting passed to Build.
	ErrNilSplitting = errors.New("unfoldnet: init splitting is nil")

	// ErrNilSystem indicates a nil input system passed to a forward pass.
	ErrNilSystem = errors.New("unfoldnet: system is nil")

	// ErrBadDepth indicates a negative unfolding depth T.
	ErrBadDepth = errors.New("unfoldnet: depth must be >= 0")

	// ErrBadParamSet indicates a parameter set whose shape (depth, layer
	// coefficient counts, method name) does not describe a valid network.
	ErrBadParamSet = errors.New("unfoldnet: malformed parameter set")

	// ErrCoeffMismatch indicates a coefficient vector of the wrong length.
	ErrCoeffMismatch = errors.New("unfoldnet: coefficient vector length mismatch")
)

// Network is one unfolded iterative method: a depth-T stack of layers, each
// holding its own trainable coefficients, plus the non-trainable recipe
// (method and classical parameters) for rebuilding structural operators
// from any input system.
//
// The zero value is not usable; construct via Build or Restore.
type Network struct {
	method splitting.Method
	params splitting.Params // classical coefficients, fixed structural part
	depth  int

	// flat is the backing store of all trainable coefficients in layer-major
	// order; layers holds one window per layer into flat.
	flat   []float64
	layers [][]float64
}

// Method returns the unfolded method.
func (n *Network) Method() splitting.Method { return n.method }

// Depth returns the number of unfolded layers T.
func (n *Network) Depth() int { return n.depth }

// NumParams returns the total number of trainable coefficients.
func (n *Network) NumParams() int { return len(n.flat) }

// Layer returns a copy of layer l's coefficients.
func (n *Network) Layer(l int) []float64 {
	out := make([]float64, len(n.layers[l]))
	copy(out, n.layers[l])

	return out
}

// CoeffVector returns a copy of all coefficients in layer-major order.
// The copy decouples optimizer arithmetic from network state; apply the
// result of an optimizer step with SetCoeffVector.
func (n *Network) CoeffVector() []float64 {
	out := make([]float64, len(n.flat))
	copy(out, n.flat)

	return out
}

// SetCoeffVector replaces all coefficients from a layer-major vector.
// Returns ErrCoeffMismatch when the length disagrees with NumParams.
func (n *Network) SetCoeffVector(v []float64) error {
	if len(v) != len(n.flat) {
		return ErrCoeffMismatch
	}
	copy(n.flat, v)

	return nil
}

// Clone returns an independent deep copy of the network, including its
// current coefficients. Useful for keeping an untrained baseline around
// while a copy is being trained.
func (n *Network) Clone() *Network {
	c := &Network{method: n.method, params: n.params, depth: n.depth}
	c.flat = make([]float64, len(n.flat))
	copy(c.flat, n.flat)
	c.layers = sliceLayers(c.flat, n.depth, n.method.LayerCoeffs())

	return c
}

// sliceLayers windows a flat coefficient store into per-layer views.
func sliceLayers(flat []float64, depth, width int) [][]float64 {
	layers := make([][]float64, depth)
	for l := 0; l < depth; l++ {
		layers[l] = flat[l*width : (l+1)*width]
	}

	return layers
}

// ParamSet is the flat, serializable snapshot of a trained network:
// everything needed to rebuild it without retraining.
type ParamSet struct {
	// Method is the canonical method name (splitting.Method.String()).
	Method string `json:"method"`

	// Depth is the unfolding depth T.
	Depth int `json:"depth"`

	// Classical holds the fixed structural coefficients of the method.
	Classical splitting.Params `json:"classical"`

	// Layers holds one coefficient slice per layer, layer-major.
	Layers [][]float64 `json:"layers"`
}
