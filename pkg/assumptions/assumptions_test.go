package assumptions

import (
	"errors"
	"testing"

	"github.com/raterudder/ptxhub/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnualizedCapex(t *testing.T) {
	tbl, err := New(2030, []Row{
		{Technology: types.TechPVFixed, Component: types.CompCAPEX, Values: map[int]float64{2030: 1000}},
		{Technology: types.TechPVFixed, Component: types.CompLifetime, Values: map[int]float64{2030: 20}},
	})
	require.NoError(t, err)

	v, err := tbl.AnnualizedCapex(types.TechPVFixed)
	require.NoError(t, err)
	assert.InDelta(t, 94.39, v, 0.005)

	t.Run("Missing Lifetime", func(t *testing.T) {
		tbl, err := New(2030, []Row{
			{Technology: types.TechWave, Component: types.CompCAPEX, Values: map[int]float64{2030: 1000}},
		})
		require.NoError(t, err)
		_, err = tbl.AnnualizedCapex(types.TechWave)
		var nf *ParameterNotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, types.CompLifetime, nf.Key.Component)
	})
}

func TestCapitalRecoveryFactor(t *testing.T) {
	assert.InDelta(t, 0.0943929, CapitalRecoveryFactor(0.07, 20), 1e-7)
	assert.InDelta(t, 0.1, CapitalRecoveryFactor(0, 10), 1e-12)
}

func TestLookup(t *testing.T) {
	rows := []Row{
		{Technology: types.TechHeatPump, Component: types.CompCOP, Values: map[int]float64{2030: 3.0, 2040: 3.4}},
	}

	t.Run("Year Column", func(t *testing.T) {
		tbl, err := New(2040, rows)
		require.NoError(t, err)
		assert.Equal(t, 2040, tbl.Year())
		v, err := tbl.Lookup(types.TechHeatPump, types.CompCOP)
		require.NoError(t, err)
		assert.Equal(t, 3.4, v)
	})

	t.Run("Missing Year", func(t *testing.T) {
		tbl, err := New(2050, rows)
		require.NoError(t, err)
		_, err = tbl.Lookup(types.TechHeatPump, types.CompCOP)
		var nf *ParameterNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, 2050, nf.Year)
		assert.Contains(t, err.Error(), "heat_pump/COP")
	})

	t.Run("Missing Key", func(t *testing.T) {
		tbl, err := New(2030, rows)
		require.NoError(t, err)
		_, err = tbl.Lookup(types.TechElectrolyser, types.CompCOP)
		var nf *ParameterNotFoundError
		assert.ErrorAs(t, err, &nf)
	})

	t.Run("Ambiguous", func(t *testing.T) {
		_, err := New(2030, append(rows, Row{
			Technology: types.TechHeatPump,
			Component:  types.CompCOP,
			Values:     map[int]float64{2030: 2.5},
		}))
		var amb *AmbiguousParameterError
		require.ErrorAs(t, err, &amb)
		assert.Equal(t, 2, amb.Count)
	})

	t.Run("Unknown Component", func(t *testing.T) {
		_, err := New(2030, []Row{{Technology: types.TechHeatPump, Component: "Colour", Values: map[int]float64{2030: 1}}})
		assert.ErrorContains(t, err, "unknown component")
	})
}

func TestDefault(t *testing.T) {
	for _, year := range Years {
		tbl, err := Default(year)
		require.NoError(t, err)
		require.NoError(t, tbl.Check(types.Technologies()...), "year %d", year)
		require.NoError(t, tbl.Check(types.TechBatteryInterface), "year %d", year)
	}

	t.Run("Check Rejects Zero Cost", func(t *testing.T) {
		tbl, err := New(2030, []Row{
			flat(types.TechWave, types.CompCAPEX, 1),
			flat(types.TechWave, types.CompOPEX, 0),
			flat(types.TechWave, types.CompLifetime, 20),
		})
		require.NoError(t, err)
		assert.ErrorContains(t, tbl.Check(types.TechWave), "OPEX of wave must be positive")
	})

	t.Run("Rows Round Trip", func(t *testing.T) {
		tbl, err := Default(2040)
		require.NoError(t, err)
		again, err := New(2040, tbl.Rows())
		require.NoError(t, err)
		for _, r := range tbl.Rows() {
			v, err := again.Lookup(r.Technology, r.Component)
			require.NoError(t, err)
			assert.Equal(t, r.Values[2040], v)
		}
	})
}
