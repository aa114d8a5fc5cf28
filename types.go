// SPDX-License-Identifier: MIT

package unfold

import (
	"errors"

	"github.com/solverlab/unfold/linsys"
	"github.com/solverlab/unfold/splitting"
	"github.com/solverlab/unfold/unfoldnet"
)

// Sentinel errors of the facade.
var (
	// ErrUnknownMethod indicates a method identifier outside the catalog
	// (see ListMethods).
	ErrUnknownMethod = errors.New("unfold: unknown method identifier")

	// ErrBadConfig indicates a Config field outside its valid range.
	ErrBadConfig = errors.New("unfold: invalid configuration")

	// ErrNoMethods indicates an empty identifier list.
	ErrNoMethods = errors.New("unfold: no method identifiers given")
)

// Default configuration values.
const (
	DefaultN            = 16
	DefaultDepth        = 25
	DefaultEpochs       = 20
	DefaultBatchSize    = 16
	DefaultHoldoutSize  = 8
	DefaultLearningRate = 0.01
)

// Config fixes one experiment: the system distribution, the unrolling
// depth and the training regime. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// N is the system dimension.
	N int

	// T is the iteration depth, shared by the classical baseline and the
	// unfolded network.
	T int

	// Epochs and BatchSize control training of *Net identifiers.
	Epochs    int
	BatchSize int

	// HoldoutSize is the number of held-out systems losses are reported on.
	HoldoutSize int

	// LearningRate is the Adam step size used for *Net identifiers.
	LearningRate float64

	// Seed fixes every random draw of the experiment. Equal seeds and
	// equal configs produce equal reports.
	Seed int64

	// Structure selects the system distribution.
	Structure linsys.Structure

	// Params holds the classical coefficients shared by the baseline and
	// the network initialization. Zero fields assume method defaults.
	Params splitting.Params
}

// DefaultConfig returns a small, convergent experiment: diagonally
// dominant systems, depth 25, Adam at 0.01.
func DefaultConfig() Config {
	return Config{
		N:            DefaultN,
		T:            DefaultDepth,
		Epochs:       DefaultEpochs,
		BatchSize:    DefaultBatchSize,
		HoldoutSize:  DefaultHoldoutSize,
		LearningRate: DefaultLearningRate,
		Seed:         1,
		Structure:    linsys.DiagDominant,
	}
}

// validate rejects out-of-range fields with ErrBadConfig.
func (c Config) validate() error {
	switch {
	case c.N <= 0,
		c.T < 0,
		c.Epochs <= 0,
		c.BatchSize <= 0,
		c.HoldoutSize <= 0,
		c.LearningRate <= 0:
		return ErrBadConfig
	}

	return nil
}

// MethodResult is the per-identifier outcome of a Run.
type MethodResult struct {
	// ID is the method identifier ("SOR", "SORNet", ...).
	ID string

	// SpectralRadius is ρ(B) of the classical iteration matrix on the
	// evaluation system; Convergent reports ρ < 1.
	SpectralRadius float64
	Convergent     bool

	// Residuals is the classical baseline's per-step residual trace
	// (‖A·x_k − b‖₂, including the initial guess).
	Residuals []float64

	// Diverged reports that the classical baseline tripped the divergence
	// guard, or that training never found a finite step.
	Diverged bool

	// ClassicalLoss is the held-out mean loss of the untrained network,
	// identical to the classical method's loss at depth T.
	ClassicalLoss float64

	// TrainedLoss and LossHistory are populated for *Net identifiers only;
	// for classical identifiers TrainedLoss equals ClassicalLoss and
	// LossHistory is nil.
	TrainedLoss float64
	LossHistory []float64

	// Params is the trained coefficient snapshot; nil for classical
	// identifiers.
	Params *unfoldnet.ParamSet
}

// Report collects one MethodResult per requested identifier, in request
// order.
type Report struct {
	Results []MethodResult
}
