package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/log"
	"github.com/raterudder/ptxhub/pkg/lp"
	"github.com/raterudder/ptxhub/pkg/types"
)

// ErrInvalidModel wraps every error that stops a model from being built.
var ErrInvalidModel = errors.New("invalid model input")

// FeasibilityTolerance is the largest constraint violation logged as
// acceptable after a solve.
const FeasibilityTolerance = 1e-6

// Optimizer builds and solves scenarios with a fixed solver.
type Optimizer struct {
	solver lp.Solver
}

// NewOptimizer returns an Optimizer using solver.
func NewOptimizer(solver lp.Solver) *Optimizer {
	return &Optimizer{solver: solver}
}

// Solver returns the name of the underlying solver.
func (o *Optimizer) Solver() string {
	return o.solver.Name()
}

// Optimize finds the least-cost design and dispatch of scenario.
func (o *Optimizer) Optimize(ctx context.Context, scenario types.Scenario, table *assumptions.Table) (*Result, error) {
	ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("scenario", scenario.ID)))

	start := time.Now()
	m, err := Build(scenario, table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	log.Ctx(ctx).InfoContext(
		ctx,
		"model built",
		slog.Int("hours", m.Hours),
		slog.Int("variables", m.Problem.NumVariables()),
		slog.Int("constraints", len(m.Problem.Constraints)),
		slog.Int("nonZeros", m.Problem.NonZeros()),
		slog.Duration("elapsed", time.Since(start)),
	)

	start = time.Now()
	sol, err := o.solver.Solve(ctx, m.Problem)
	if err != nil {
		return nil, o.classify(scenario, err)
	}
	res := m.decode(o.solver.Name(), sol)

	if worst, name := m.Problem.MaxViolation(sol.X); worst > FeasibilityTolerance {
		log.Ctx(ctx).WarnContext(
			ctx,
			"solution violates constraint",
			slog.String("constraint", name),
			slog.Float64("violation", worst),
		)
	}
	log.Ctx(ctx).InfoContext(
		ctx,
		"scenario optimized",
		slog.String("solver", o.solver.Name()),
		slog.Float64("objective", sol.Objective),
		slog.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (o *Optimizer) classify(scenario types.Scenario, err error) error {
	var numErr *lp.NumericalError
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return &InfeasibleModelError{Scenario: scenario.ID, Err: err}
	case errors.Is(err, lp.ErrUnbounded):
		return &UnboundedModelError{Scenario: scenario.ID, Err: err}
	case errors.As(err, &numErr):
		return &SolverNumericalError{
			Scenario:   scenario.ID,
			Solver:     numErr.Solver,
			Diagnostic: numErr.Diagnostic,
			Err:        err,
		}
	}
	return fmt.Errorf("failed to solve scenario %q: %w", scenario.ID, err)
}

// TableFunc resolves the assumption table of a scenario.
type TableFunc func(ctx context.Context, scenario types.Scenario) (*assumptions.Table, error)

// Outcome is the result of one scenario of a batch. Exactly one of Result
// and Err is set.
type Outcome struct {
	Scenario types.Scenario
	Result   *Result
	Err      error
}

// OptimizeAll optimizes independent scenarios with at most concurrency
// solves in flight. A failing scenario does not stop the others. Outcomes
// are returned in input order.
func (o *Optimizer) OptimizeAll(ctx context.Context, scenarios []types.Scenario, resolve TableFunc, concurrency int) []Outcome {
	if concurrency < 1 {
		concurrency = 1
	}
	outcomes := make([]Outcome, len(scenarios))

	var eg errgroup.Group
	eg.SetLimit(concurrency)
	for i, sc := range scenarios {
		eg.Go(func() error {
			outcomes[i].Scenario = sc
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			table, err := resolve(ctx, sc)
			if err != nil {
				outcomes[i].Err = fmt.Errorf("failed to resolve assumptions: %w", err)
				return nil
			}
			outcomes[i].Result, outcomes[i].Err = o.Optimize(ctx, sc, table)
			if outcomes[i].Err != nil {
				log.Ctx(ctx).ErrorContext(
					ctx,
					"failed to optimize scenario",
					slog.String("scenario", sc.ID),
					slog.Any("error", outcomes[i].Err),
				)
			}
			return nil
		})
	}
	_ = eg.Wait()
	return outcomes
}
