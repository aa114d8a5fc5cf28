// SPDX-License-Identifier: MIT

// Package unfoldnet_test validates network construction, the zero-training
// equivalence with the classical engine, boundary depths, coefficient
// plumbing and snapshot round-trips.
package unfoldnet_test

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solverlab/unfold/classic"
	"github.com/solverlab/unfold/linsys"
	"github.com/solverlab/unfold/splitting"
	"github.com/solverlab/unfold/unfoldnet"
)

// allMethods enumerates every method with workable classical parameters.
var allMethods = []struct {
	m splitting.Method
	p splitting.Params
}{
	{splitting.Richardson, splitting.Params{Alpha: 0.05}},
	{splitting.Jacobi, splitting.Params{}},
	{splitting.GaussSeidel, splitting.Params{}},
	{splitting.SOR, splitting.Params{Omega: 1.2}},
	{splitting.AOR, splitting.Params{R: 0.5, Omega: 0.9}},
	{splitting.ChebySOR, splitting.Params{Omega: 1.0}},
	{splitting.ChebyAOR, splitting.Params{R: 0.5, Omega: 0.9}},
}

// ------------------------------------------------------------------------
// 1. Validation.
// ------------------------------------------------------------------------

func TestBuild_Validation(t *testing.T) {
	_, err := unfoldnet.Build(nil, 5)
	require.ErrorIs(t, err, unfoldnet.ErrNilSplitting)

	rng := rand.New(rand.NewSource(1))
	sys := linsys.MustGenerate(4, rng)
	sp, err := splitting.Compute(sys.A, splitting.SOR, splitting.Params{})
	require.NoError(t, err)

	_, err = unfoldnet.Build(sp, -1)
	require.ErrorIs(t, err, unfoldnet.ErrBadDepth)

	net, err := unfoldnet.Build(sp, 3)
	require.NoError(t, err)
	_, _, err = net.Forward(nil)
	require.ErrorIs(t, err, unfoldnet.ErrNilSystem)
}

// ------------------------------------------------------------------------
// 2. Zero-training equivalence: untrained forward == classical engine.
// ------------------------------------------------------------------------

func TestForward_UntrainedMatchesClassical(t *testing.T) {
	const (
		n     = 8
		depth = 15
		tol   = 1e-9
	)
	rng := rand.New(rand.NewSource(2))
	sys := linsys.MustGenerate(n, rng, linsys.WithDominance(3.0))

	for _, tc := range allMethods {
		sp, err := splitting.Compute(sys.A, tc.m, tc.p)
		require.NoError(t, err, tc.m)
		require.True(t, sp.Convergent, tc.m)

		tr, err := classic.Run(sys, sp, depth)
		require.NoError(t, err, tc.m)
		require.False(t, tr.Diverged, tc.m)

		net, err := unfoldnet.Build(sp, depth)
		require.NoError(t, err, tc.m)
		xT, netTr, err := net.Forward(sys)
		require.NoError(t, err, tc.m)
		require.Equal(t, depth, netTr.Steps, tc.m)

		for i := 0; i < n; i++ {
			assert.InDelta(t, tr.Final().AtVec(i), xT.AtVec(i), tol,
				"%v component %d", tc.m, i)
		}
		// The whole trace agrees, not just the endpoint.
		for k := range tr.X {
			for i := 0; i < n; i++ {
				assert.InDelta(t, tr.X[k].AtVec(i), netTr.X[k].AtVec(i), tol,
					"%v step %d component %d", tc.m, k, i)
			}
		}
	}
}

// ------------------------------------------------------------------------
// 3. Boundary depths.
// ------------------------------------------------------------------------

func TestForward_ZeroDepthReturnsInitialGuess(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	sys := linsys.MustGenerate(5, rng)
	sp, err := splitting.Compute(sys.A, splitting.Jacobi, splitting.Params{})
	require.NoError(t, err)

	net, err := unfoldnet.Build(sp, 0)
	require.NoError(t, err)
	require.Equal(t, 0, net.NumParams())

	xT, tr, err := net.Forward(sys)
	require.NoError(t, err)
	require.Equal(t, 0, tr.Steps)
	for i := 0; i < sys.N; i++ {
		assert.Equal(t, 0.0, xT.AtVec(i))
	}
}

func TestForward_DepthOneIsSingleClassicalStep(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	sys := linsys.MustGenerate(5, rng)

	for _, tc := range allMethods {
		sp, err := splitting.Compute(sys.A, tc.m, tc.p)
		require.NoError(t, err, tc.m)

		net, err := unfoldnet.Build(sp, 1)
		require.NoError(t, err, tc.m)
		xT, _, err := net.Forward(sys)
		require.NoError(t, err, tc.m)

		tr, err := classic.Run(sys, sp, 1)
		require.NoError(t, err, tc.m)
		for i := 0; i < sys.N; i++ {
			assert.InDelta(t, tr.Final().AtVec(i), xT.AtVec(i), 1e-10, tc.m)
		}
	}
}

// ------------------------------------------------------------------------
// 4. Coefficient plumbing.
// ------------------------------------------------------------------------

func TestCoeffVector_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	sys := linsys.MustGenerate(4, rng)
	sp, err := splitting.Compute(sys.A, splitting.AOR, splitting.Params{R: 0.4, Omega: 0.8})
	require.NoError(t, err)

	net, err := unfoldnet.Build(sp, 3)
	require.NoError(t, err)
	require.Equal(t, 6, net.NumParams()) // 3 layers × (r, ω)

	v := net.CoeffVector()
	assert.Equal(t, []float64{0.4, 0.8, 0.4, 0.8, 0.4, 0.8}, v)

	// Mutating the copy must not touch the network.
	v[0] = 42
	assert.Equal(t, 0.4, net.Layer(0)[0])

	require.NoError(t, net.SetCoeffVector([]float64{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, []float64{3, 4}, net.Layer(1))

	require.ErrorIs(t, net.SetCoeffVector([]float64{1, 2}), unfoldnet.ErrCoeffMismatch)
}

func TestClone_Independent(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	sys := linsys.MustGenerate(4, rng)
	sp, err := splitting.Compute(sys.A, splitting.SOR, splitting.Params{Omega: 1.1})
	require.NoError(t, err)

	net, err := unfoldnet.Build(sp, 4)
	require.NoError(t, err)
	clone := net.Clone()

	require.NoError(t, net.SetCoeffVector([]float64{9, 9, 9, 9}))
	assert.Equal(t, []float64{1.1}, clone.Layer(0), "clone must not see later mutations")
	assert.Equal(t, net.Method(), clone.Method())
	assert.Equal(t, net.Depth(), clone.Depth())
}

func TestBuild_ChebyshevLayersFollowSchedule(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sys := linsys.MustGenerate(6, rng)
	sp, err := splitting.Compute(sys.A, splitting.ChebySOR, splitting.Params{Omega: 1.0})
	require.NoError(t, err)

	net, err := unfoldnet.Build(sp, 4)
	require.NoError(t, err)
	sched := sp.Schedule(4)
	for l := 0; l < 4; l++ {
		assert.Equal(t, sched[l], net.Layer(l), "layer %d", l)
	}
	// ω_1 is always 1, later ω grow for 0 < ρ < 1.
	assert.Equal(t, 1.0, net.Layer(0)[1])
	assert.Greater(t, net.Layer(3)[1], net.Layer(1)[1])
}

// ------------------------------------------------------------------------
// 5. Snapshot round-trips.
// ------------------------------------------------------------------------

func TestParamSet_JSONRoundTripExactForward(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	sys := linsys.MustGenerate(6, rng)
	sp, err := splitting.Compute(sys.A, splitting.SOR, splitting.Params{Omega: 1.3})
	require.NoError(t, err)

	net, err := unfoldnet.Build(sp, 5)
	require.NoError(t, err)
	// Perturb away from the classical values, as training would.
	v := net.CoeffVector()
	for i := range v {
		v[i] += 0.01 * float64(i+1)
	}
	require.NoError(t, net.SetCoeffVector(v))

	before, _, err := net.Forward(sys)
	require.NoError(t, err)

	raw, err := json.Marshal(net.Params())
	require.NoError(t, err)

	var ps unfoldnet.ParamSet
	require.NoError(t, json.Unmarshal(raw, &ps))
	restored, err := unfoldnet.Restore(ps)
	require.NoError(t, err)

	after, _, err := restored.Forward(sys)
	require.NoError(t, err)

	// Identical coefficients on the identical computation: exact match.
	for i := 0; i < sys.N; i++ {
		assert.Equal(t, before.AtVec(i), after.AtVec(i), "component %d", i)
	}
}

func TestRestore_RejectsMalformedSets(t *testing.T) {
	_, err := unfoldnet.Restore(unfoldnet.ParamSet{Method: "NoSuchMethod", Depth: 1, Layers: [][]float64{{1}}})
	require.ErrorIs(t, err, splitting.ErrUnknownMethod)

	_, err = unfoldnet.Restore(unfoldnet.ParamSet{Method: "SOR", Depth: 2, Layers: [][]float64{{1}}})
	require.ErrorIs(t, err, unfoldnet.ErrBadParamSet)

	_, err = unfoldnet.Restore(unfoldnet.ParamSet{Method: "AOR", Depth: 1, Layers: [][]float64{{1}}})
	require.ErrorIs(t, err, unfoldnet.ErrBadParamSet, "AOR layers carry two coefficients")
}

func TestSetParams_ShapeChecks(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	sys := linsys.MustGenerate(4, rng)
	sp, err := splitting.Compute(sys.A, splitting.SOR, splitting.Params{})
	require.NoError(t, err)
	net, err := unfoldnet.Build(sp, 2)
	require.NoError(t, err)

	other := net.Params()
	other.Method = "Jacobi"
	require.ErrorIs(t, net.SetParams(other), unfoldnet.ErrBadParamSet)

	good := net.Params()
	good.Layers[1][0] = 1.7
	require.NoError(t, net.SetParams(good))
	assert.Equal(t, 1.7, net.Layer(1)[0])
}
