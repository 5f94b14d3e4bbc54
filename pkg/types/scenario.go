package types

import (
	"fmt"
	"math"
)

// HoursPerYear is the length of a full representative year.
const HoursPerYear = 8760

// ProfileKind selects one of the renewable capacity-factor series.
type ProfileKind string

const (
	ProfilePVFixed    ProfileKind = "pv_fixed"
	ProfilePVTracking ProfileKind = "pv_tracking"
	ProfileWind       ProfileKind = "wind"
	ProfileWave       ProfileKind = "wave"
)

// Profiles holds the hourly capacity factors (fraction of nameplate output)
// of the renewable generators.
type Profiles struct {
	PVFixed    []float64 `json:"pvFixed"`
	PVTracking []float64 `json:"pvTracking"`
	Wind       []float64 `json:"wind"`
	Wave       []float64 `json:"wave"`
}

// Get returns the series for the given kind.
func (p Profiles) Get(kind ProfileKind) []float64 {
	switch kind {
	case ProfilePVFixed:
		return p.PVFixed
	case ProfilePVTracking:
		return p.PVTracking
	case ProfileWind:
		return p.Wind
	case ProfileWave:
		return p.Wave
	}
	return nil
}

// ProfileKinds returns every profile kind.
func ProfileKinds() []ProfileKind {
	return []ProfileKind{ProfilePVFixed, ProfilePVTracking, ProfileWind, ProfileWave}
}

// Demand holds the annual offtake of every synthetic fuel in MWh/year.
type Demand struct {
	AmmoniaMWH  float64 `json:"ammoniaMWH"`
	MethaneMWH  float64 `json:"methaneMWH"`
	MethanolMWH float64 `json:"methanolMWH"`
	FTLiquidMWH float64 `json:"ftLiquidMWH"`
}

// Annual returns the annual demand of the fuel carrier. Carriers without an
// external demand return 0.
func (d Demand) Annual(c Carrier) float64 {
	switch c {
	case CarrierAmmonia:
		return d.AmmoniaMWH
	case CarrierMethane:
		return d.MethaneMWH
	case CarrierMethanol:
		return d.MethanolMWH
	case CarrierFTLiquid:
		return d.FTLiquidMWH
	}
	return 0
}

// Hourly returns the flat hourly offtake of the fuel carrier.
func (d Demand) Hourly(c Carrier) float64 {
	return d.Annual(c) / HoursPerYear
}

// Scale returns the demand multiplied by k.
func (d Demand) Scale(k float64) Demand {
	return Demand{
		AmmoniaMWH:  d.AmmoniaMWH * k,
		MethaneMWH:  d.MethaneMWH * k,
		MethanolMWH: d.MethanolMWH * k,
		FTLiquidMWH: d.FTLiquidMWH * k,
	}
}

// Scenario is one site/demand case to optimize.
type Scenario struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Year selects the assumption column.
	Year int `json:"year"`
	// Hours is the modeled horizon, 0 means a full year.
	Hours           int      `json:"hours,omitempty"`
	Demand          Demand   `json:"demand"`
	LandAreaKM2     float64  `json:"landAreaKM2"`
	WavePotentialMW float64  `json:"wavePotentialMW"`
	Profiles        Profiles `json:"profiles"`
	// Assumptions names a stored assumption table, empty means the defaults.
	Assumptions string `json:"assumptions,omitempty"`
}

// Horizon returns the number of modeled hours.
func (s Scenario) Horizon() int {
	if s.Hours <= 0 {
		return HoursPerYear
	}
	return s.Hours
}

// Validate checks the scalar inputs and the values of the profiles. Profile
// lengths are checked when the model is built.
func (s Scenario) Validate() error {
	if s.Hours < 0 {
		return fmt.Errorf("hours cannot be negative: %d", s.Hours)
	}
	scalars := []struct {
		name  string
		value float64
	}{
		{"ammonia demand", s.Demand.AmmoniaMWH},
		{"methane demand", s.Demand.MethaneMWH},
		{"methanol demand", s.Demand.MethanolMWH},
		{"ft liquid demand", s.Demand.FTLiquidMWH},
		{"land area", s.LandAreaKM2},
		{"wave potential", s.WavePotentialMW},
	}
	for _, sc := range scalars {
		if math.IsNaN(sc.value) || math.IsInf(sc.value, 0) || sc.value < 0 {
			return fmt.Errorf("%s must be a non-negative number: %v", sc.name, sc.value)
		}
	}
	for _, kind := range ProfileKinds() {
		for h, v := range s.Profiles.Get(kind) {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%s profile hour %d must be a non-negative number: %v", kind, h+1, v)
			}
		}
	}
	return nil
}
