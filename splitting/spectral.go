// SPDX-License-Identifier: MIT

// Package splitting: spectral diagnostics. The spectral radius of the
// iteration matrix is the single quantity governing classical convergence,
// so it is computed eagerly by Compute and stored on the Splitting.
package splitting

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// spectralRadius returns max |λᵢ| over the eigenvalues of b.
// Iteration matrices of Gauss-Seidel/SOR/AOR splittings are generally
// non-symmetric, so a full general eigendecomposition is required; the
// eigenvalues may be complex and only their moduli matter.
// Complexity: O(n³).
func spectralRadius(b *mat.Dense) (float64, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(b, mat.EigenNone); !ok {
		return 0, ErrEigenFailed
	}

	var (
		vals = eig.Values(nil)
		rho  float64
		m    float64
	)
	for _, v := range vals {
		if m = cmplx.Abs(v); m > rho {
			rho = m
		}
	}

	return rho, nil
}
