package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScenarioValidate(t *testing.T) {
	base := Scenario{
		Hours:           2,
		Demand:          Demand{AmmoniaMWH: 100},
		LandAreaKM2:     10,
		WavePotentialMW: 5,
		Profiles: Profiles{
			PVFixed:    []float64{0.1, 0.2},
			PVTracking: []float64{0.1, 0.2},
			Wind:       []float64{0.5, 0.4},
			Wave:       []float64{0.3, 0.3},
		},
	}
	assert.NoError(t, base.Validate())

	t.Run("Negative Demand", func(t *testing.T) {
		s := base
		s.Demand.MethanolMWH = -1
		assert.ErrorContains(t, s.Validate(), "methanol demand")
	})

	t.Run("NaN Land", func(t *testing.T) {
		s := base
		s.LandAreaKM2 = math.NaN()
		assert.ErrorContains(t, s.Validate(), "land area")
	})

	t.Run("Negative Profile Value", func(t *testing.T) {
		s := base
		s.Profiles.Wind = []float64{0.5, -0.1}
		assert.ErrorContains(t, s.Validate(), "wind profile hour 2")
	})

	t.Run("Negative Hours", func(t *testing.T) {
		s := base
		s.Hours = -3
		assert.Error(t, s.Validate())
	})
}

func TestScenarioHorizon(t *testing.T) {
	assert.Equal(t, HoursPerYear, Scenario{}.Horizon())
	assert.Equal(t, 24, Scenario{Hours: 24}.Horizon())
}

func TestDemandHourly(t *testing.T) {
	d := Demand{AmmoniaMWH: 8760, MethaneMWH: 17520}
	assert.InDelta(t, 1.0, d.Hourly(CarrierAmmonia), 1e-12)
	assert.InDelta(t, 2.0, d.Hourly(CarrierMethane), 1e-12)
	assert.Zero(t, d.Hourly(CarrierElectricity))
	assert.InDelta(t, 3.0, d.Scale(3).Hourly(CarrierAmmonia), 1e-12)
}

func TestTechnologies(t *testing.T) {
	techs := Technologies()
	assert.Len(t, techs, 22)
	seen := map[Technology]bool{}
	for _, tech := range techs {
		assert.True(t, tech.Valid(), tech)
		assert.NotEmpty(t, tech.Unit(), tech)
		assert.False(t, seen[tech], "duplicate %s", tech)
		seen[tech] = true
	}
	assert.NotContains(t, techs, TechBatteryInterface)
	assert.False(t, Technology("nuclear").Valid())
	assert.True(t, CompCOP.Valid())
	assert.False(t, Component("Color").Valid())
}
