package storage

import (
	"context"
	"errors"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/types"
)

var (
	ErrScenarioNotFound    = errors.New("scenario not found")
	ErrRunNotFound         = errors.New("run not found")
	ErrAssumptionsNotFound = errors.New("assumptions not found")
)

// Database defines the interface for persisting scenarios, optimization runs
// and assumption tables.
type Database interface {
	// Scenarios
	SaveScenario(ctx context.Context, scenario types.Scenario) error
	GetScenario(ctx context.Context, scenarioID string) (types.Scenario, error)
	// ListScenarios returns every scenario without its profiles.
	ListScenarios(ctx context.Context) ([]types.Scenario, error)

	// Runs
	SaveRun(ctx context.Context, run types.Run) error
	GetRun(ctx context.Context, scenarioID, runID string) (types.Run, error)
	// ListRuns returns the runs of a scenario, newest first.
	ListRuns(ctx context.Context, scenarioID string) ([]types.Run, error)

	// Assumptions
	GetAssumptions(ctx context.Context, name string) ([]assumptions.Row, error)
	SetAssumptions(ctx context.Context, name string, rows []assumptions.Row) error

	// Lifecycle
	Close() error
}
