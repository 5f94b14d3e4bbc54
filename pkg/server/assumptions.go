package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/log"
	"github.com/raterudder/ptxhub/pkg/storage"
)

func (s *Server) handleGetAssumptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")

	rows, err := s.storage.GetAssumptions(ctx, name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAssumptionsNotFound) && name == defaultAssumptions:
			rows = assumptions.DefaultRows()
		case errors.Is(err, storage.ErrAssumptionsNotFound):
			writeJSONError(w, "assumptions not found", http.StatusNotFound)
			return
		default:
			log.Ctx(ctx).ErrorContext(ctx, "failed to get assumptions", slog.String("name", name), slog.Any("error", err))
			writeJSONError(w, "failed to get assumptions", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, rows, http.StatusOK)
}

func (s *Server) handleSetAssumptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")
	if !idPattern.MatchString(name) {
		writeJSONError(w, "invalid assumptions name", http.StatusBadRequest)
		return
	}

	var rows []assumptions.Row
	if err := decodeBody(w, r, &rows); err != nil {
		writeJSONError(w, fmt.Sprintf("invalid assumptions: %v", err), http.StatusBadRequest)
		return
	}
	if len(rows) == 0 {
		writeJSONError(w, "assumptions cannot be empty", http.StatusBadRequest)
		return
	}
	if err := validateRows(rows); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.storage.SetAssumptions(ctx, name, rows); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to set assumptions", slog.String("name", name), slog.Any("error", err))
		writeJSONError(w, "failed to set assumptions", http.StatusInternalServerError)
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "assumptions saved", slog.String("name", name), slog.Int("rows", len(rows)))
	writeJSON(w, map[string]string{"name": name}, http.StatusOK)
}

// validateRows builds a table for every year the rows mention so that
// unknown names, duplicate keys and non-finite values are rejected up front.
func validateRows(rows []assumptions.Row) error {
	seen := make(map[int]bool)
	for _, row := range rows {
		for year := range row.Values {
			seen[year] = true
		}
	}
	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Ints(years)
	if len(years) == 0 {
		years = append(years, 0)
	}
	for _, year := range years {
		if _, err := assumptions.New(year, rows); err != nil {
			return err
		}
	}
	return nil
}
