// SPDX-License-Identifier: MIT

// Package training fits the per-layer coefficients of an unfolded network
// by mini-batch gradient descent over a distribution of random linear
// systems.
//
// Overview:
//
//   - Train draws batches from a caller-supplied Sampler, runs the
//     network's forward pass on each system, reverse-accumulates the loss
//     gradient through all T unfolded layers, and applies one optimizer
//     step per batch on the mean gradient.
//   - The loss is the mean squared solution error ‖x_T − x*‖²/n when the
//     sampled system carries its exact solution, or the mean squared
//     residual ‖A·x_T − b‖²/n otherwise.
//   - Optimizers implement a single Step(params, grad) contract; SGD and
//     Adam are provided.
//
// Divergence guard:
//
//   - A batch producing a non-finite loss or gradient is skipped: the
//     optimizer never sees it, the last finite parameters stay intact, and
//     the skip is counted on the returned State. If an entire epoch yields
//     no applicable step, training stops early and reports
//     ErrTrainingDiverged — the network still holds its last good
//     coefficients.
//
// Determinism:
//
//   - All sampling entropy flows through the explicit *rand.Rand, so a
//     fixed seed and option set reproduce the exact parameter trajectory.
//
// Example usage:
//
//	sampler := func(r *rand.Rand) (*linsys.System, error) {
//	    return linsys.Generate(10, r)
//	}
//	state, err := training.Train(net, sampler, rng,
//	    training.WithEpochs(50),
//	    training.WithBatchSize(16),
//	    training.WithOptimizer(training.NewAdam(0.01)),
//	)
package training
