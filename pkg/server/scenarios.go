package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/raterudder/ptxhub/pkg/log"
	"github.com/raterudder/ptxhub/pkg/storage"
	"github.com/raterudder/ptxhub/pkg/types"
)

// ids end up in document paths
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scenarios, err := s.storage.ListScenarios(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list scenarios", slog.Any("error", err))
		writeJSONError(w, "failed to list scenarios", http.StatusInternalServerError)
		return
	}
	writeJSON(w, scenarios, http.StatusOK)
}

func (s *Server) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var scenario types.Scenario
	if err := decodeBody(w, r, &scenario); err != nil {
		writeJSONError(w, fmt.Sprintf("invalid scenario: %v", err), http.StatusBadRequest)
		return
	}
	if !idPattern.MatchString(scenario.ID) {
		writeJSONError(w, "invalid scenario id", http.StatusBadRequest)
		return
	}
	if err := scenario.Validate(); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, kind := range types.ProfileKinds() {
		if n := len(scenario.Profiles.Get(kind)); n != scenario.Horizon() {
			writeJSONError(w, fmt.Sprintf("%s profile has %d values, want %d", kind, n, scenario.Horizon()), http.StatusBadRequest)
			return
		}
	}

	if err := s.storage.SaveScenario(ctx, scenario); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to save scenario", slog.String("scenario", scenario.ID), slog.Any("error", err))
		writeJSONError(w, "failed to save scenario", http.StatusInternalServerError)
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "scenario saved", slog.String("scenario", scenario.ID))
	writeJSON(w, map[string]string{"id": scenario.ID}, http.StatusOK)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scenario, err := s.storage.GetScenario(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrScenarioNotFound) {
			writeJSONError(w, "scenario not found", http.StatusNotFound)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to get scenario", slog.Any("error", err))
		writeJSONError(w, "failed to get scenario", http.StatusInternalServerError)
		return
	}
	writeJSON(w, scenario, http.StatusOK)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	runs, err := s.storage.ListRuns(ctx, r.PathValue("id"))
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to list runs", slog.Any("error", err))
		writeJSONError(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	// listings omit the reports, fetch a run for its report
	for i := range runs {
		runs[i].Report = nil
	}
	writeJSON(w, runs, http.StatusOK)
}

// handleCreateRun optimizes a stored scenario and stores the run, including
// runs without an optimum.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scenarioID := r.PathValue("id")
	ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("scenario", scenarioID)))

	scenario, err := s.storage.GetScenario(ctx, scenarioID)
	if err != nil {
		if errors.Is(err, storage.ErrScenarioNotFound) {
			writeJSONError(w, "scenario not found", http.StatusNotFound)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to get scenario", slog.Any("error", err))
		writeJSONError(w, "failed to get scenario", http.StatusInternalServerError)
		return
	}

	run, code := s.optimize(ctx, scenario)

	// the request may have been cancelled mid-solve, the run is still stored
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.storage.SaveRun(saveCtx, run); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to save run", slog.String("runID", run.ID), slog.Any("error", err))
		writeJSONError(w, "failed to save run", http.StatusInternalServerError)
		return
	}
	writeJSON(w, run, code)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	run, err := s.storage.GetRun(ctx, r.PathValue("scenarioID"), r.PathValue("runID"))
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			writeJSONError(w, "run not found", http.StatusNotFound)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to get run", slog.Any("error", err))
		writeJSONError(w, "failed to get run", http.StatusInternalServerError)
		return
	}
	writeJSON(w, run, http.StatusOK)
}
