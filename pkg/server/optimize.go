package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/hub"
	"github.com/raterudder/ptxhub/pkg/log"
	"github.com/raterudder/ptxhub/pkg/report"
	"github.com/raterudder/ptxhub/pkg/storage"
	"github.com/raterudder/ptxhub/pkg/types"
)

// defaultAssumptions is the table name that always resolves to the
// built-in assumptions unless it has been overridden in storage.
const defaultAssumptions = "default"

// resolveTable returns the assumption table a scenario asks for. Tables
// that cannot be built from their rows are reported as invalid input.
func (s *Server) resolveTable(ctx context.Context, scenario types.Scenario) (*assumptions.Table, error) {
	var (
		table *assumptions.Table
		err   error
	)
	switch scenario.Assumptions {
	case "":
		table, err = assumptions.Default(scenario.Year)
	default:
		var rows []assumptions.Row
		rows, err = s.storage.GetAssumptions(ctx, scenario.Assumptions)
		if errors.Is(err, storage.ErrAssumptionsNotFound) && scenario.Assumptions == defaultAssumptions {
			rows, err = assumptions.DefaultRows(), nil
		}
		if err != nil {
			return nil, err
		}
		table, err = assumptions.New(scenario.Year, rows)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", hub.ErrInvalidModel, err)
	}
	return table, nil
}

// optimize solves scenario and returns the run together with the HTTP status
// that describes its outcome. The run is complete even when the solve fails.
func (s *Server) optimize(ctx context.Context, scenario types.Scenario) (types.Run, int) {
	run := types.Run{
		ID:         uuid.NewString(),
		ScenarioID: scenario.ID,
		Solver:     s.optimizer.Solver(),
		TSStart:    time.Now(),
	}
	ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("runID", run.ID)))

	code, err := s.solve(ctx, scenario, &run)
	run.TSEnd = time.Now()
	run.Status = hub.RunStatus(err)
	observeRun(run)
	if err != nil {
		run.Error = err.Error()
		if code == http.StatusUnprocessableEntity {
			log.Ctx(ctx).WarnContext(ctx, "scenario has no optimum", slog.Any("error", err))
		} else {
			log.Ctx(ctx).ErrorContext(ctx, "failed to optimize scenario", slog.Any("error", err))
		}
		return run, code
	}
	return run, http.StatusOK
}

func (s *Server) solve(ctx context.Context, scenario types.Scenario, run *types.Run) (int, error) {
	table, err := s.resolveTable(ctx, scenario)
	if err != nil {
		switch {
		case errors.Is(err, hub.ErrInvalidModel), errors.Is(err, storage.ErrAssumptionsNotFound):
			return http.StatusBadRequest, err
		}
		return http.StatusInternalServerError, fmt.Errorf("failed to resolve assumptions: %w", err)
	}

	solveCtx, cancel := context.WithTimeout(ctx, s.solveTimeout)
	defer cancel()
	res, err := s.optimizer.Optimize(solveCtx, scenario, table)
	if err != nil {
		return statusForError(err), err
	}

	rep, err := report.Compile(table, res)
	if err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to compile report: %w", err)
	}
	run.Objective = res.Objective
	run.Report = &rep
	return http.StatusOK, nil
}

// statusForError maps an optimization error onto an HTTP status.
func statusForError(err error) int {
	var (
		infeasible *hub.InfeasibleModelError
		unbounded  *hub.UnboundedModelError
		numerical  *hub.SolverNumericalError
	)
	switch {
	case errors.Is(err, hub.ErrInvalidModel):
		return http.StatusBadRequest
	case errors.As(err, &infeasible), errors.As(err, &unbounded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &numerical):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// handleOptimize solves a scenario posted in the body without storing
// anything.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var scenario types.Scenario
	if err := decodeBody(w, r, &scenario); err != nil {
		writeJSONError(w, fmt.Sprintf("invalid scenario: %v", err), http.StatusBadRequest)
		return
	}
	if scenario.ID == "" {
		scenario.ID = "adhoc"
	}

	run, code := s.optimize(ctx, scenario)
	if code != http.StatusOK {
		writeJSONError(w, run.Error, code)
		return
	}
	writeJSON(w, run, http.StatusOK)
}
