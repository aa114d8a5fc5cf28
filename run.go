// SPDX-License-Identifier: MIT

package unfold

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/solverlab/unfold/classic"
	"github.com/solverlab/unfold/linsys"
	"github.com/solverlab/unfold/splitting"
	"github.com/solverlab/unfold/training"
	"github.com/solverlab/unfold/unfoldnet"
)

// catalog fixes the identifier set and its stable order: the seven
// classical methods first, then their unfolded counterparts.
var catalog = []struct {
	id  string
	m   splitting.Method
	net bool
}{
	{"RI", splitting.Richardson, false},
	{"JA", splitting.Jacobi, false},
	{"GS", splitting.GaussSeidel, false},
	{"SOR", splitting.SOR, false},
	{"AOR", splitting.AOR, false},
	{"ChebySOR", splitting.ChebySOR, false},
	{"ChebyAOR", splitting.ChebyAOR, false},
	{"RINet", splitting.Richardson, true},
	{"JANet", splitting.Jacobi, true},
	{"GSNet", splitting.GaussSeidel, true},
	{"SORNet", splitting.SOR, true},
	{"AORNet", splitting.AOR, true},
	{"ChebySORNet", splitting.ChebySOR, true},
	{"ChebyAORNet", splitting.ChebyAOR, true},
}

// ListMethods returns every recognized identifier in stable order.
func ListMethods() []string {
	ids := make([]string, len(catalog))
	for i, entry := range catalog {
		ids[i] = entry.id
	}

	return ids
}

// Parse maps an identifier onto its splitting method and reports whether
// it names a trainable network. Unknown identifiers yield ErrUnknownMethod.
func Parse(id string) (splitting.Method, bool, error) {
	for _, entry := range catalog {
		if entry.id == id {
			return entry.m, entry.net, nil
		}
	}

	return 0, false, fmt.Errorf("Parse: %q: %w", id, ErrUnknownMethod)
}

// Run executes one experiment per identifier and collects the outcomes in
// request order.
//
// The blueprint, per identifier:
//
//	Stage 1 (Validate) – parse every identifier up front; unknown ids and
//	                     bad configs fail fast before any computation.
//	Stage 2 (Sample)   – reseed from cfg.Seed and draw the held-out
//	                     systems, so each identifier's result is
//	                     reproducible in isolation.
//	Stage 3 (Baseline) – compute the splitting on the evaluation system,
//	                     run the classical iteration for its residual
//	                     trace, and score the untrained network on the
//	                     held-out set.
//	Stage 4 (Train)    – for *Net identifiers, fit the layer coefficients
//	                     with Adam and rescore. A training run that never
//	                     finds a finite step marks the result Diverged and
//	                     keeps the classical coefficients.
//
// Numerical misbehavior (ρ ≥ 1, divergence, training collapse) is reported
// in the MethodResult, never as an error.
func Run(ids []string, cfg Config) (*Report, error) {
	// Stage 1 (Validate).
	if len(ids) == 0 {
		return nil, ErrNoMethods
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, _, err := Parse(id); err != nil {
			return nil, err
		}
	}

	report := &Report{Results: make([]MethodResult, 0, len(ids))}
	for _, id := range ids {
		res, err := runOne(id, cfg)
		if err != nil {
			return nil, fmt.Errorf("Run: %s: %w", id, err)
		}
		report.Results = append(report.Results, *res)
	}

	return report, nil
}

// runOne executes Stages 2..4 for a single identifier.
func runOne(id string, cfg Config) (*MethodResult, error) {
	m, isNet, err := Parse(id)
	if err != nil {
		return nil, err
	}

	// Stage 2 (Sample).
	rng := rand.New(rand.NewSource(cfg.Seed))
	holdout, err := linsys.Batch(cfg.HoldoutSize, cfg.N, rng, linsys.WithStructure(cfg.Structure))
	if err != nil {
		return nil, err
	}
	evalSys := holdout[0]

	// Stage 3 (Baseline).
	sp, err := splitting.Compute(evalSys.A, m, cfg.Params)
	if err != nil {
		return nil, err
	}
	tr, err := classic.Run(evalSys, sp, cfg.T)
	if err != nil {
		return nil, err
	}
	net, err := unfoldnet.Build(sp, cfg.T)
	if err != nil {
		return nil, err
	}
	classicalLoss, err := training.Evaluate(net, holdout, training.LossAuto)
	if err != nil {
		return nil, err
	}

	res := &MethodResult{
		ID:             id,
		SpectralRadius: sp.SpectralRadius,
		Convergent:     sp.Convergent,
		Residuals:      tr.Residuals,
		Diverged:       tr.Diverged,
		ClassicalLoss:  classicalLoss,
		TrainedLoss:    classicalLoss,
	}
	if !isNet {
		return res, nil
	}

	// Stage 4 (Train).
	sampler := func(r *rand.Rand) (*linsys.System, error) {
		return linsys.Generate(cfg.N, r, linsys.WithStructure(cfg.Structure))
	}
	st, err := training.Train(net, sampler, rng,
		training.WithEpochs(cfg.Epochs),
		training.WithBatchSize(cfg.BatchSize),
		training.WithOptimizer(training.NewAdam(cfg.LearningRate)),
		training.WithValidation(holdout))
	switch {
	case errors.Is(err, training.ErrTrainingDiverged):
		res.Diverged = true
	case err != nil:
		return nil, err
	}
	if st != nil {
		res.LossHistory = st.LossHistory
	}

	trainedLoss, err := training.Evaluate(net, holdout, training.LossAuto)
	if err != nil {
		return nil, err
	}
	res.TrainedLoss = trainedLoss
	ps := net.Params()
	res.Params = &ps

	return res, nil
}
