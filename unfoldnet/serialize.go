// SPDX-License-Identifier: MIT

// Package unfoldnet: parameter-set snapshots. A ParamSet is a plain record
// (method name, depth, classical coefficients, per-layer values) so trained
// networks survive as flat JSON and restore without retraining.
package unfoldnet

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/solverlab/unfold/splitting"
)

// Params snapshots the network into a flat ParamSet.
func (n *Network) Params() ParamSet {
	layers := make([][]float64, n.depth)
	for l := range layers {
		layers[l] = n.Layer(l)
	}

	return ParamSet{
		Method:    n.method.String(),
		Depth:     n.depth,
		Classical: n.params,
		Layers:    layers,
	}
}

// SetParams replaces the network's trainable coefficients from a snapshot.
// The snapshot must describe the same method and depth.
func (n *Network) SetParams(ps ParamSet) error {
	m, err := splitting.ParseMethod(ps.Method)
	if err != nil {
		return fmt.Errorf("SetParams: %w", err)
	}
	if m != n.method || ps.Depth != n.depth {
		return fmt.Errorf("SetParams: %v/T=%d into %v/T=%d: %w", m, ps.Depth, n.method, n.depth, ErrBadParamSet)
	}
	if err = validateLayers(m, ps.Layers, ps.Depth); err != nil {
		return fmt.Errorf("SetParams: %w", err)
	}
	for l, layer := range ps.Layers {
		copy(n.layers[l], layer)
	}

	return nil
}

// Restore rebuilds a network from a snapshot, e.g. one unmarshaled from
// JSON, producing forward passes identical to the snapshotted network.
func Restore(ps ParamSet) (*Network, error) {
	m, err := splitting.ParseMethod(ps.Method)
	if err != nil {
		return nil, fmt.Errorf("Restore: %w", err)
	}
	if ps.Depth < 0 {
		return nil, fmt.Errorf("Restore: depth=%d: %w", ps.Depth, ErrBadDepth)
	}
	if err = validateLayers(m, ps.Layers, ps.Depth); err != nil {
		return nil, fmt.Errorf("Restore: %w", err)
	}

	var (
		width = m.LayerCoeffs()
		net   = &Network{
			method: m,
			params: ps.Classical,
			depth:  ps.Depth,
			flat:   make([]float64, ps.Depth*width),
		}
	)
	net.layers = sliceLayers(net.flat, ps.Depth, width)
	for l, layer := range ps.Layers {
		copy(net.layers[l], layer)
	}

	return net, nil
}

// validateLayers checks the snapshot's layer shape and value sanity.
func validateLayers(m splitting.Method, layers [][]float64, depth int) error {
	if len(layers) != depth {
		return ErrBadParamSet
	}
	width := m.LayerCoeffs()
	for _, layer := range layers {
		if len(layer) != width {
			return ErrBadParamSet
		}
		for _, v := range layer {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return ErrBadParamSet
			}
		}
	}

	return nil
}

// MarshalJSON/UnmarshalJSON: ParamSet is a plain struct; the methods exist
// only to pin the wire shape against accidental field changes.
var (
	_ json.Marshaler   = ParamSet{}
	_ json.Unmarshaler = (*ParamSet)(nil)
)

// paramSetWire is the stable JSON shape of a ParamSet.
type paramSetWire struct {
	Method    string           `json:"method"`
	Depth     int              `json:"depth"`
	Classical splitting.Params `json:"classical"`
	Layers    [][]float64      `json:"layers"`
}

// MarshalJSON encodes the snapshot in its stable wire shape.
func (ps ParamSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(paramSetWire(ps))
}

// UnmarshalJSON decodes the stable wire shape.
func (ps *ParamSet) UnmarshalJSON(data []byte) error {
	var w paramSetWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*ps = ParamSet(w)

	return nil
}
