package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/storage"
	"github.com/raterudder/ptxhub/pkg/types"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) SaveScenario(ctx context.Context, scenario types.Scenario) error {
	args := m.Called(ctx, scenario)
	return args.Error(0)
}

func (m *MockDatabase) GetScenario(ctx context.Context, scenarioID string) (types.Scenario, error) {
	args := m.Called(ctx, scenarioID)
	if len(args) > 0 {
		return args.Get(0).(types.Scenario), args.Error(1)
	}
	return types.Scenario{}, nil
}

func (m *MockDatabase) ListScenarios(ctx context.Context) ([]types.Scenario, error) {
	args := m.Called(ctx)
	if len(args) > 0 {
		scenarios, _ := args.Get(0).([]types.Scenario)
		return scenarios, args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) SaveRun(ctx context.Context, run types.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockDatabase) GetRun(ctx context.Context, scenarioID, runID string) (types.Run, error) {
	args := m.Called(ctx, scenarioID, runID)
	if len(args) > 0 {
		return args.Get(0).(types.Run), args.Error(1)
	}
	return types.Run{}, nil
}

func (m *MockDatabase) ListRuns(ctx context.Context, scenarioID string) ([]types.Run, error) {
	args := m.Called(ctx, scenarioID)
	if len(args) > 0 {
		runs, _ := args.Get(0).([]types.Run)
		return runs, args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) GetAssumptions(ctx context.Context, name string) ([]assumptions.Row, error) {
	args := m.Called(ctx, name)
	if len(args) > 0 {
		rows, _ := args.Get(0).([]assumptions.Row)
		return rows, args.Error(1)
	}
	return nil, nil
}

func (m *MockDatabase) SetAssumptions(ctx context.Context, name string, rows []assumptions.Row) error {
	args := m.Called(ctx, name, rows)
	return args.Error(0)
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	if len(args) > 0 {
		return args.Error(0)
	}
	return nil
}
