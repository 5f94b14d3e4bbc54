package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/common"
	"github.com/raterudder/ptxhub/pkg/hub"
	"github.com/raterudder/ptxhub/pkg/lp"
	"github.com/raterudder/ptxhub/pkg/profile"
	"github.com/raterudder/ptxhub/pkg/types"
)

func scenario(id string) types.Scenario {
	return types.Scenario{
		ID:              id,
		Year:            2030,
		Hours:           2,
		Demand:          types.Demand{AmmoniaMWH: types.HoursPerYear},
		LandAreaKM2:     100,
		WavePotentialMW: 50,
		Profiles:        profile.Constant(2, 0.3, 0.35, 0.4, 0.3),
	}
}

func TestSources(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	single, err := json.Marshal(scenario("single"))
	require.NoError(t, err)
	singlePath := filepath.Join(dir, "single.json")
	require.NoError(t, os.WriteFile(singlePath, single, 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]types.Scenario{scenario("remote-a"), scenario("remote-b")})
	}))
	defer srv.Close()

	src := sources{client: common.HTTPClient(time.Second)}

	t.Run("File And URL", func(t *testing.T) {
		got, err := src.scenarios(ctx, []string{singlePath, " " + srv.URL, ""})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "single", got[0].ID)
		assert.Equal(t, "remote-b", got[2].ID)
		assert.Len(t, got[0].Profiles.Wind, 2)
	})

	t.Run("Duplicate IDs", func(t *testing.T) {
		_, err := src.scenarios(ctx, []string{singlePath, singlePath})
		assert.ErrorContains(t, err, "duplicate")
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := src.scenarios(ctx, []string{filepath.Join(dir, "nope.json")})
		assert.Error(t, err)
	})

	t.Run("Nothing Given", func(t *testing.T) {
		_, err := src.scenarios(ctx, []string{""})
		assert.ErrorContains(t, err, "no scenarios")
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	opt := hub.NewOptimizer(lp.NewSimplexSolver(lp.DefaultSimplexTolerance))

	barren := scenario("barren")
	barren.LandAreaKM2 = 0
	barren.WavePotentialMW = 0

	var buf bytes.Buffer
	failed, err := run(ctx, opt, []types.Scenario{scenario("coast"), barren}, assumptions.DefaultRows(), 2, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	var lines []line
	sc := bufio.NewScanner(&buf)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		var l line
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l))
		lines = append(lines, l)
	}
	require.Len(t, lines, 2)

	assert.Equal(t, "coast", lines[0].Scenario)
	assert.Equal(t, types.RunStatusOptimal, lines[0].Status)
	require.NotNil(t, lines[0].Report)
	assert.InDelta(t, lines[0].Objective, lines[0].Report.TotalCost, 1e-6*lines[0].Objective)

	assert.Equal(t, "barren", lines[1].Scenario)
	assert.Equal(t, types.RunStatusInfeasible, lines[1].Status)
	assert.NotEmpty(t, lines[1].Error)
	assert.Nil(t, lines[1].Report)
}

func TestRunUnknownYear(t *testing.T) {
	sc := scenario("future")
	sc.Year = 2099
	var buf bytes.Buffer
	failed, err := run(context.Background(), hub.NewOptimizer(lp.NewSimplexSolver(0)), []types.Scenario{sc}, assumptions.DefaultRows(), 1, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Contains(t, buf.String(), "2099")
}

func TestRunStoredAssumptions(t *testing.T) {
	stored := scenario("stored")
	stored.Assumptions = "pessimistic"

	var buf bytes.Buffer
	failed, err := run(context.Background(), hub.NewOptimizer(lp.NewSimplexSolver(0)), []types.Scenario{stored, scenario("plain")}, assumptions.DefaultRows(), 1, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	dec := json.NewDecoder(&buf)
	var first, second line
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))

	assert.Equal(t, "stored", first.Scenario)
	assert.Equal(t, types.RunStatusFailed, first.Status)
	assert.Contains(t, first.Error, "pessimistic")
	assert.Nil(t, first.Report)

	assert.Equal(t, "plain", second.Scenario)
	assert.Equal(t, types.RunStatusOptimal, second.Status)
}
