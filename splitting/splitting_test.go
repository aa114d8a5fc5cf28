// SPDX-License-Identifier: MIT

// Package splitting_test validates the splitting algebra against the
// closed-form operators of each method, the convergence guarantee on
// diagonally dominant systems, the affine-family derivatives, and the
// Chebyshev coefficient schedule.
package splitting_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/solverlab/unfold/linsys"
	"github.com/solverlab/unfold/splitting"
)

// testMatrix is a small strictly diagonally dominant matrix with known
// decomposition, reused across the closed-form checks.
func testMatrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		4, -1, 1,
		-2, 5, 0,
		1, 1, 3,
	})
}

// ------------------------------------------------------------------------
// 1. Validation.
// ------------------------------------------------------------------------

func TestCompute_NotSquare(t *testing.T) {
	a := mat.NewDense(2, 3, nil)
	_, err := splitting.Compute(a, splitting.Jacobi, splitting.Params{})
	require.ErrorIs(t, err, splitting.ErrNotSquare)
}

func TestCompute_SingularDiagonal(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{0, 1, 1, 2}) // A[0][0] == 0
	_, err := splitting.Compute(a, splitting.Jacobi, splitting.Params{})
	require.ErrorIs(t, err, splitting.ErrSingularSplitting)

	// Richardson never divides by the diagonal, so the same matrix passes.
	_, err = splitting.Compute(a, splitting.Richardson, splitting.Params{})
	require.NoError(t, err)
}

func TestCompute_UnknownMethod(t *testing.T) {
	_, err := splitting.Compute(testMatrix(), splitting.Method(42), splitting.Params{})
	require.ErrorIs(t, err, splitting.ErrUnknownMethod)
}

// ------------------------------------------------------------------------
// 2. Decomposition sign convention: A = D − L − U.
// ------------------------------------------------------------------------

func TestDecompose_SignConvention(t *testing.T) {
	a := testMatrix()
	d, l, u := splitting.Decompose(a)

	var rebuilt mat.Dense
	rebuilt.Sub(d, l)
	rebuilt.Sub(&rebuilt, u)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, a.At(i, j), rebuilt.At(i, j), 1e-15)
		}
	}
	// L strictly lower: −A below the diagonal, zero elsewhere.
	assert.Equal(t, 2.0, l.At(1, 0))
	assert.Equal(t, 0.0, l.At(0, 1))
	assert.Equal(t, 0.0, l.At(1, 1))
	// U strictly upper.
	assert.Equal(t, 1.0, u.At(0, 1))
	assert.Equal(t, -1.0, u.At(0, 2))
}

// ------------------------------------------------------------------------
// 3. Closed-form iteration operators per method.
// ------------------------------------------------------------------------

// reference inverts m explicitly and returns m⁻¹·n.
func reference(t *testing.T, m, n *mat.Dense) *mat.Dense {
	t.Helper()
	var inv, b mat.Dense
	require.NoError(t, inv.Inverse(m))
	b.Mul(&inv, n)

	return &b
}

func assertMatEqual(t *testing.T, want, got *mat.Dense, tol float64) {
	t.Helper()
	r, c := want.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			assert.InDelta(t, want.At(i, j), got.At(i, j), tol, "entry (%d,%d)", i, j)
		}
	}
}

func TestCompute_JacobiOperator(t *testing.T) {
	a := testMatrix()
	d, l, u := splitting.Decompose(a)
	sp, err := splitting.Compute(a, splitting.Jacobi, splitting.Params{})
	require.NoError(t, err)

	var lpu mat.Dense
	lpu.Add(l, u)
	assertMatEqual(t, reference(t, d, &lpu), sp.IterationMatrix(), 1e-12)
}

func TestCompute_GaussSeidelOperator(t *testing.T) {
	a := testMatrix()
	d, l, u := splitting.Decompose(a)
	sp, err := splitting.Compute(a, splitting.GaussSeidel, splitting.Params{})
	require.NoError(t, err)

	var dml mat.Dense
	dml.Sub(d, l)
	assertMatEqual(t, reference(t, &dml, u), sp.IterationMatrix(), 1e-12)
}

func TestCompute_SOROperator(t *testing.T) {
	const omega = 1.25
	a := testMatrix()
	d, l, u := splitting.Decompose(a)
	sp, err := splitting.Compute(a, splitting.SOR, splitting.Params{Omega: omega})
	require.NoError(t, err)

	// M = D − ωL, N = (1−ω)D + ωU.
	var m, n, tmp mat.Dense
	tmp.Scale(omega, l)
	m.Sub(d, &tmp)
	n.Scale(1-omega, d)
	tmp.Scale(omega, u)
	n.Add(&n, &tmp)
	assertMatEqual(t, reference(t, &m, &n), sp.IterationMatrix(), 1e-12)
}

func TestCompute_AOROperator(t *testing.T) {
	const (
		r     = 0.6
		omega = 1.1
	)
	a := testMatrix()
	d, l, u := splitting.Decompose(a)
	sp, err := splitting.Compute(a, splitting.AOR, splitting.Params{R: r, Omega: omega})
	require.NoError(t, err)

	// M = D − rL, N = (1−ω)D + (ω−r)L + ωU.
	var m, n, tmp mat.Dense
	tmp.Scale(r, l)
	m.Sub(d, &tmp)
	n.Scale(1-omega, d)
	tmp.Scale(omega-r, l)
	n.Add(&n, &tmp)
	tmp.Scale(omega, u)
	n.Add(&n, &tmp)
	assertMatEqual(t, reference(t, &m, &n), sp.IterationMatrix(), 1e-12)
}

func TestCompute_RichardsonOperator(t *testing.T) {
	const alpha = 0.05
	a := testMatrix()
	sp, err := splitting.Compute(a, splitting.Richardson, splitting.Params{Alpha: alpha})
	require.NoError(t, err)

	// B = I − αA.
	n := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := -alpha * a.At(i, j)
			if i == j {
				v++
			}
			n.Set(i, j, v)
		}
	}
	assertMatEqual(t, n, sp.IterationMatrix(), 1e-12)
}

func TestCompute_UpdateVector(t *testing.T) {
	const omega = 1.25
	a := testMatrix()
	d, l, _ := splitting.Decompose(a)
	sp, err := splitting.Compute(a, splitting.SOR, splitting.Params{Omega: omega})
	require.NoError(t, err)

	b := mat.NewVecDense(3, []float64{1, 2, 3})
	got := sp.UpdateVector(b)

	// c = ω(D − ωL)⁻¹·b.
	var m, inv, tmp mat.Dense
	tmp.Scale(omega, l)
	m.Sub(d, &tmp)
	require.NoError(t, inv.Inverse(&m))
	want := mat.NewVecDense(3, nil)
	want.MulVec(&inv, b)
	want.ScaleVec(omega, want)

	for i := 0; i < 3; i++ {
		assert.InDelta(t, want.AtVec(i), got.AtVec(i), 1e-12)
	}
}

// ------------------------------------------------------------------------
// 4. Convergence guarantees and warnings.
// ------------------------------------------------------------------------

func TestCompute_DiagDominantConverges(t *testing.T) {
	// Classical theory: strict diagonal dominance implies ρ < 1 for both
	// Jacobi and Gauss-Seidel. Check across several random systems.
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 5; trial++ {
		sys := linsys.MustGenerate(10, rng)
		for _, m := range []splitting.Method{splitting.Jacobi, splitting.GaussSeidel} {
			sp, err := splitting.Compute(sys.A, m, splitting.Params{})
			require.NoError(t, err)
			assert.Less(t, sp.SpectralRadius, 1.0, "%v trial %d", m, trial)
			assert.True(t, sp.Convergent)
		}
	}
}

func TestCompute_NonConvergentIsWarningNotError(t *testing.T) {
	// Jacobi on a matrix with weak diagonal: ρ(D⁻¹(L+U)) > 1.
	a := mat.NewDense(2, 2, []float64{1, 3, 3, 1})
	sp, err := splitting.Compute(a, splitting.Jacobi, splitting.Params{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sp.SpectralRadius, 1.0)
	assert.False(t, sp.Convergent)
}

// ------------------------------------------------------------------------
// 5. Affine family: Materialize vs Derivative consistency.
// ------------------------------------------------------------------------

func TestAffineFamily_DerivativeMatchesFiniteDifference(t *testing.T) {
	const h = 1e-6
	a := testMatrix()

	cases := []struct {
		method splitting.Method
		params splitting.Params
	}{
		{splitting.Richardson, splitting.Params{Alpha: 0.07}},
		{splitting.Jacobi, splitting.Params{Omega: 0.9}},
		{splitting.GaussSeidel, splitting.Params{Omega: 1.1}},
		{splitting.SOR, splitting.Params{Omega: 1.3}},
		{splitting.AOR, splitting.Params{R: 0.6, Omega: 1.2}},
	}
	for _, tc := range cases {
		sp, err := splitting.Compute(a, tc.method, tc.params)
		require.NoError(t, err, tc.method)

		theta := sp.Theta()
		for i := range theta {
			up := append([]float64(nil), theta...)
			dn := append([]float64(nil), theta...)
			up[i] += h
			dn[i] -= h
			mU, nU, cU := sp.Materialize(up)
			mD, nD, cD := sp.Materialize(dn)
			dM, dN, dc := sp.Derivative(i)

			for r := 0; r < 3; r++ {
				for c := 0; c < 3; c++ {
					wantM := (mU.At(r, c) - mD.At(r, c)) / (2 * h)
					wantN := (nU.At(r, c) - nD.At(r, c)) / (2 * h)
					gotM, gotN := 0.0, 0.0
					if dM != nil {
						gotM = dM.At(r, c)
					}
					if dN != nil {
						gotN = dN.At(r, c)
					}
					assert.InDelta(t, wantM, gotM, 1e-8, "%v dM[%d] (%d,%d)", tc.method, i, r, c)
					assert.InDelta(t, wantN, gotN, 1e-8, "%v dN[%d] (%d,%d)", tc.method, i, r, c)
				}
			}
			assert.InDelta(t, (cU-cD)/(2*h), dc, 1e-8, "%v dc[%d]", tc.method, i)
		}
	}
}

func TestAffineFamily_ClassicalThetaReproducesOperators(t *testing.T) {
	a := testMatrix()
	sp, err := splitting.Compute(a, splitting.SOR, splitting.Params{Omega: 1.4})
	require.NoError(t, err)

	m, n, cScale := sp.Materialize(sp.Theta())
	assert.Equal(t, 1.4, cScale)
	assertMatEqual(t, reference(t, m, n), sp.IterationMatrix(), 1e-12)
}

// ------------------------------------------------------------------------
// 6. Method enum and Chebyshev schedule.
// ------------------------------------------------------------------------

func TestMethod_EnumHelpers(t *testing.T) {
	assert.Equal(t, "ChebySOR", splitting.ChebySOR.String())
	assert.Equal(t, splitting.SOR, splitting.ChebySOR.Base())
	assert.Equal(t, splitting.AOR, splitting.ChebyAOR.Base())
	assert.Equal(t, splitting.Jacobi, splitting.Jacobi.Base())
	assert.True(t, splitting.ChebyAOR.Chebyshev())
	assert.False(t, splitting.SOR.Chebyshev())
	assert.False(t, splitting.Method(99).Valid())
	assert.Equal(t, 2, splitting.AOR.LayerCoeffs())
	assert.Equal(t, 2, splitting.ChebySOR.LayerCoeffs())
	assert.Equal(t, 1, splitting.SOR.LayerCoeffs())
}

func TestSchedule_ClassicalRecurrence(t *testing.T) {
	a := testMatrix()
	sp, err := splitting.Compute(a, splitting.ChebySOR, splitting.Params{Omega: 1.0})
	require.NoError(t, err)

	sched := sp.Schedule(5)
	require.Len(t, sched, 5)

	// γ_k = 1 throughout, ω_1 = 1, then the three-term recurrence.
	rho2 := sp.SpectralRadius * sp.SpectralRadius
	omega := 1.0
	for k, pair := range sched {
		require.Len(t, pair, 2)
		assert.Equal(t, 1.0, pair[0], "γ_%d", k)
		assert.InDelta(t, omega, pair[1], 1e-15, "ω_%d", k)
		omega = 1 / (1 - rho2*omega/4)
		assert.False(t, math.IsNaN(omega) || math.IsInf(omega, 0))
	}
	// ω grows monotonically toward its fixed point for 0 < ρ < 1.
	assert.Greater(t, sched[4][1], sched[1][1])
}

func TestSchedule_PanicsOnNonChebyshev(t *testing.T) {
	sp, err := splitting.Compute(testMatrix(), splitting.SOR, splitting.Params{})
	require.NoError(t, err)
	assert.Panics(t, func() { sp.Schedule(3) })
}
