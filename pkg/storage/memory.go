package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/types"
)

// MemoryProvider keeps everything in process memory. It is meant for the
// batch CLI and local runs where nothing has to outlive the process.
type MemoryProvider struct {
	mu          sync.RWMutex
	scenarios   map[string]types.Scenario
	runs        map[string]map[string]types.Run
	assumptions map[string][]assumptions.Row
}

// NewMemory returns an empty MemoryProvider.
func NewMemory() *MemoryProvider {
	return &MemoryProvider{
		scenarios:   make(map[string]types.Scenario),
		runs:        make(map[string]map[string]types.Run),
		assumptions: make(map[string][]assumptions.Row),
	}
}

var _ Database = (*MemoryProvider)(nil)

func (m *MemoryProvider) SaveScenario(ctx context.Context, scenario types.Scenario) error {
	if scenario.ID == "" {
		return fmt.Errorf("scenarioID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenarios[scenario.ID] = scenario
	return nil
}

func (m *MemoryProvider) GetScenario(ctx context.Context, scenarioID string) (types.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sc, ok := m.scenarios[scenarioID]
	if !ok {
		return types.Scenario{}, fmt.Errorf("%w: %s", ErrScenarioNotFound, scenarioID)
	}
	return sc, nil
}

func (m *MemoryProvider) ListScenarios(ctx context.Context) ([]types.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Scenario, 0, len(m.scenarios))
	for _, sc := range m.scenarios {
		sc.Profiles = types.Profiles{}
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryProvider) SaveRun(ctx context.Context, run types.Run) error {
	if run.ScenarioID == "" {
		return fmt.Errorf("scenarioID cannot be empty")
	}
	if run.ID == "" {
		return fmt.Errorf("runID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runs[run.ScenarioID] == nil {
		m.runs[run.ScenarioID] = make(map[string]types.Run)
	}
	m.runs[run.ScenarioID][run.ID] = run
	return nil
}

func (m *MemoryProvider) GetRun(ctx context.Context, scenarioID, runID string) (types.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[scenarioID][runID]
	if !ok {
		return types.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, nil
}

func (m *MemoryProvider) ListRuns(ctx context.Context, scenarioID string) ([]types.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Run, 0, len(m.runs[scenarioID]))
	for _, run := range m.runs[scenarioID] {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TSStart.After(out[j].TSStart) })
	return out, nil
}

func (m *MemoryProvider) GetAssumptions(ctx context.Context, name string) ([]assumptions.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.assumptions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssumptionsNotFound, name)
	}
	return rows, nil
}

func (m *MemoryProvider) SetAssumptions(ctx context.Context, name string, rows []assumptions.Row) error {
	if name == "" {
		return fmt.Errorf("assumptions name cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assumptions[name] = rows
	return nil
}

func (m *MemoryProvider) Close() error {
	return nil
}
