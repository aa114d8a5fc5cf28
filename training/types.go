// SPDX-License-Identifier: MIT

// Package training: sentinel errors, the training state record and the
// functional options of the training loop. Optimizers live in
// optimizer.go, the loop in trainer.go.
package training

import (
	"errors"
	"io"
	"math/rand"

	"github.com/solverlab/unfold/linsys"
)

// Sentinel errors returned by the training procedure.
var (
	// ErrNilNetwork indicates a nil network.
	ErrNilNetwork = errors.New("training: network is nil")

	// ErrNilSampler indicates a nil system sampler.
	ErrNilSampler = errors.New("training: sampler is nil")

	// ErrNilRand indicates a nil random source.
	ErrNilRand = errors.New("training: random source is nil")

	// ErrMissingSolution indicates that LossSolutionMSE was requested for a
	// system generated without a known solution x*.
	ErrMissingSolution = errors.New("training: solution loss needs a known x*")

	// ErrTrainingDiverged indicates that an entire epoch produced only
	// non-finite losses or gradients, so no optimizer step could be applied
	// and training stopped early. The network retains its last finite
	// coefficients.
	ErrTrainingDiverged = errors.New("training: diverged, no finite step in epoch")

	// ErrBadEpochs indicates a non-positive epoch count.
	ErrBadEpochs = errors.New("training: epochs must be > 0")

	// ErrBadBatch indicates a non-positive batch size or batch count.
	ErrBadBatch = errors.New("training: batch size/count must be > 0")

	// ErrBadRate indicates a non-positive learning rate.
	ErrBadRate = errors.New("training: learning rate must be > 0")
)

// Defaults (single source of truth).
const (
	DefaultEpochs          = 10
	DefaultBatchSize       = 16
	DefaultBatchesPerEpoch = 1
	DefaultLearningRate    = 0.01
)

// LossKind selects the training objective.
//
// LossAuto        – SolutionMSE when the sampled system carries x*,
// ResidualMSE otherwise (decided per system).
// LossSolutionMSE – mean squared solution error ‖x_T − x*‖²/n. Requires
// systems generated with a known x*; a system without one fails with
// ErrMissingSolution.
// LossResidualMSE – mean squared residual ‖A·x_T − b‖²/n.
type LossKind int

const (
	LossAuto LossKind = iota
	LossSolutionMSE
	LossResidualMSE
)

// State is the mutable record of one training run. It is owned by exactly
// one Train invocation and returned when the run finishes.
type State struct {
	// Epoch is the number of completed epochs.
	Epoch int

	// LossHistory holds one loss value per completed epoch: the validation
	// loss when a validation set is configured, otherwise the mean training
	// loss of the epoch's last applied batch.
	LossHistory []float64

	// Diverged reports that at least one batch was skipped for producing a
	// non-finite loss or gradient.
	Diverged bool

	// SkippedSteps counts the skipped batches.
	SkippedSteps int
}

// Sampler draws one system from the training distribution using the
// provided random source. A Sampler must be deterministic in the source:
// the same *rand.Rand stream yields the same sequence of systems.
type Sampler func(rng *rand.Rand) (*linsys.System, error)

// Options configures the training loop.
type Options struct {
	Epochs          int
	BatchSize       int
	BatchesPerEpoch int
	Optimizer       Optimizer
	Loss            LossKind
	Progress        io.Writer
	Validation      []*linsys.System
}

// Option is a functional option for configuring Train.
type Option func(*Options)

// defaultOptions returns the documented defaults. The optimizer defaults
// to plain SGD at DefaultLearningRate.
func defaultOptions() Options {
	return Options{
		Epochs:          DefaultEpochs,
		BatchSize:       DefaultBatchSize,
		BatchesPerEpoch: DefaultBatchesPerEpoch,
		Optimizer:       &SGD{LR: DefaultLearningRate},
		Loss:            LossAuto,
	}
}

// WithEpochs sets the epoch count. Must be positive; panics otherwise.
func WithEpochs(n int) Option {
	return func(o *Options) {
		if n <= 0 {
			panic(ErrBadEpochs.Error())
		}
		o.Epochs = n
	}
}

// WithBatchSize sets the number of systems drawn per batch.
// Must be positive; panics otherwise.
func WithBatchSize(n int) Option {
	return func(o *Options) {
		if n <= 0 {
			panic(ErrBadBatch.Error())
		}
		o.BatchSize = n
	}
}

// WithBatchesPerEpoch sets how many optimizer steps one epoch applies.
// Must be positive; panics otherwise.
func WithBatchesPerEpoch(n int) Option {
	return func(o *Options) {
		if n <= 0 {
			panic(ErrBadBatch.Error())
		}
		o.BatchesPerEpoch = n
	}
}

// WithOptimizer replaces the default SGD optimizer.
func WithOptimizer(opt Optimizer) Option {
	return func(o *Options) {
		if opt != nil {
			o.Optimizer = opt
		}
	}
}

// WithLoss selects the training objective.
func WithLoss(k LossKind) Option {
	return func(o *Options) {
		o.Loss = k
	}
}

// WithProgress directs per-epoch progress lines to w. Silent when unset.
func WithProgress(w io.Writer) Option {
	return func(o *Options) {
		o.Progress = w
	}
}

// WithValidation supplies a fixed held-out set; the per-epoch loss history
// is then computed on it instead of the training batches.
func WithValidation(systems []*linsys.System) Option {
	return func(o *Options) {
		o.Validation = systems
	}
}
