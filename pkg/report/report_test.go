package report

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/hub"
	"github.com/raterudder/ptxhub/pkg/lp"
	"github.com/raterudder/ptxhub/pkg/profile"
	"github.com/raterudder/ptxhub/pkg/types"
)

func solve(t *testing.T, table *assumptions.Table) *hub.Result {
	t.Helper()
	sc := types.Scenario{
		ID:              "report",
		Year:            2040,
		Hours:           3,
		Demand:          types.Demand{AmmoniaMWH: types.HoursPerYear, MethanolMWH: types.HoursPerYear / 2},
		LandAreaKM2:     100,
		WavePotentialMW: 50,
		Profiles:        profile.Constant(3, 0.3, 0.35, 0.4, 0.3),
	}
	res, err := hub.NewOptimizer(lp.NewSimplexSolver(0)).Optimize(context.Background(), sc, table)
	require.NoError(t, err)
	return res
}

func TestCompile(t *testing.T) {
	table, err := assumptions.Default(2040)
	require.NoError(t, err)
	res := solve(t, table)

	rep, err := Compile(table, res)
	require.NoError(t, err)
	assert.Equal(t, "report", rep.ScenarioID)
	assert.Equal(t, 2040, rep.Year)
	assert.Equal(t, 3, rep.Hours)

	t.Run("Section Order", func(t *testing.T) {
		var titles []string
		for _, s := range rep.Sections {
			titles = append(titles, s.Title)
		}
		assert.Equal(t, []string{
			SectionCapacity,
			SectionProduction,
			SectionConsumption,
			SectionInvestment,
			SectionOperating,
			SectionSystemCost,
		}, titles)
	})

	t.Run("Total Matches Objective", func(t *testing.T) {
		assert.InEpsilon(t, res.Objective, rep.TotalCost, 1e-6)
		sys, ok := rep.Section(SectionSystemCost)
		require.True(t, ok)
		total, ok := sys.Value(LabelTotal)
		require.True(t, ok)
		assert.Equal(t, rep.TotalCost, total)

		inv, _ := sys.Value(LabelInvestment)
		opex, _ := sys.Value(LabelOperating)
		ramp, _ := sys.Value(LabelRamping)
		assert.InDelta(t, total, inv+opex+ramp, 1e-6)
	})

	t.Run("Capacities", func(t *testing.T) {
		s, ok := rep.Section(SectionCapacity)
		require.True(t, ok)
		assert.Len(t, s.Rows, len(types.Technologies())+1)

		v, ok := s.Value(types.TechElectrolyser.Label())
		require.True(t, ok)
		assert.Equal(t, res.Capacity[types.TechElectrolyser], v)

		ep, err := table.Lookup(types.TechBattery, types.CompEPRatio)
		require.NoError(t, err)
		v, ok = s.Value(types.TechBatteryInterface.Label())
		require.True(t, ok)
		assert.InDelta(t, res.Capacity[types.TechBattery]/ep, v, 1e-9)
	})

	t.Run("Production", func(t *testing.T) {
		s, ok := rep.Section(SectionProduction)
		require.True(t, ok)
		v, ok := s.Value(types.TechAmmoniaSynthesis.Label())
		require.True(t, ok)
		assert.InDelta(t, res.Total(hub.ActAmmonia), v, 1e-9)
		assert.GreaterOrEqual(t, v, 3-1e-6)

		_, ok = s.Value(types.TechAmmoniaSynthesis.Label() + " excess heat")
		assert.True(t, ok)
		v, ok = s.Value(types.TechWindOnshore.Label())
		require.True(t, ok)
		assert.InDelta(t, res.Generation(types.TechWindOnshore), v, 1e-9)
	})

	t.Run("Consumption", func(t *testing.T) {
		s, ok := rep.Section(SectionConsumption)
		require.True(t, ok)

		h2In, err := table.Lookup(types.TechAmmoniaSynthesis, types.CompHydrogenIn)
		require.NoError(t, err)
		v, ok := s.Value("Hydrogen: " + types.TechAmmoniaSynthesis.Label())
		require.True(t, ok)
		assert.InDelta(t, h2In*res.Total(hub.ActAmmonia), v, 1e-6)

		for _, label := range []string{"Electricity", "Gas", "Hydrogen", "CO2", "Heat"} {
			_, ok := s.Value(label)
			assert.True(t, ok, label)
		}

		elec, _ := s.Value("Electricity")
		var sum float64
		for _, row := range s.Rows {
			if strings.HasPrefix(row.Label, "Electricity: ") {
				sum += row.Value
			}
		}
		assert.InDelta(t, elec, sum, 1e-6)
		assert.Greater(t, elec, 0.0)
	})

	t.Run("Cost Rows", func(t *testing.T) {
		s, ok := rep.Section(SectionInvestment)
		require.True(t, ok)
		assert.Len(t, s.Rows, len(hub.CostTechnologies()))
		ramps, err := hub.Ramps(table)
		require.NoError(t, err)
		s, ok = rep.Section(SectionOperating)
		require.True(t, ok)
		assert.Len(t, s.Rows, len(hub.CostTechnologies())+len(ramps))

		sys, ok := rep.Section(SectionSystemCost)
		require.True(t, ok)
		var rampTotal float64
		for _, r := range ramps {
			v, ok := s.Value(r.Technology.Label() + " ramping")
			require.True(t, ok, r.Technology)
			assert.InDelta(t, r.Cost*res.Total(r.Activity), v, 1e-9)
			rampTotal += v
		}
		ramping, _ := sys.Value(LabelRamping)
		assert.InDelta(t, rampTotal, ramping, 1e-9)
	})
}

func TestCompileMissingParameter(t *testing.T) {
	table, err := assumptions.New(2030, nil)
	require.NoError(t, err)
	_, err = Compile(table, &hub.Result{})
	var notFound *assumptions.ParameterNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
