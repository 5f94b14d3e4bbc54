package hub

import (
	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/types"
)

// Cost is the annual cost of a technology per unit of the capacity it is
// sized by.
type Cost struct {
	Technology types.Technology
	// Basis is the capacity variable the cost applies to. It differs from
	// Technology only for the battery interface, which is sized by the
	// battery's energy capacity.
	Basis      types.Technology
	Investment float64
	Operating  float64
}

// CostTechnologies returns every costed technology in reporting order.
func CostTechnologies() []types.Technology {
	var techs []types.Technology
	for _, t := range types.Technologies() {
		techs = append(techs, t)
		if t == types.TechBattery {
			techs = append(techs, types.TechBatteryInterface)
		}
	}
	return techs
}

// CostCoefficients resolves the annualized investment and the operating cost
// of every technology. Both the objective and the report use it.
func CostCoefficients(table *assumptions.Table) ([]Cost, error) {
	ep, err := table.Lookup(types.TechBattery, types.CompEPRatio)
	if err != nil {
		return nil, err
	}

	var costs []Cost
	for _, tech := range CostTechnologies() {
		inv, err := table.AnnualizedCapex(tech)
		if err != nil {
			return nil, err
		}
		opex, err := table.Lookup(tech, types.CompOPEX)
		if err != nil {
			return nil, err
		}
		c := Cost{
			Technology: tech,
			Basis:      tech,
			Investment: inv,
			Operating:  opex,
		}
		switch tech {
		case types.TechDAC:
			// DAC capacity is t/h while its costs are per t/year
			c.Investment *= types.HoursPerYear
			c.Operating *= types.HoursPerYear
		case types.TechBatteryInterface:
			// priced on the implied power rating
			c.Basis = types.TechBattery
			c.Investment /= ep
			c.Operating /= ep
		}
		costs = append(costs, c)
	}
	return costs, nil
}

// Ramp is the ramp-up cost of one ramp-costed synthesis.
type Ramp struct {
	Technology types.Technology
	Activity   Activity
	// Cost is charged per unit of hourly output increase.
	Cost float64
}

// Ramps resolves the ramp-up cost of every ramp-costed synthesis in model
// order. Both the objective and the report use it.
func Ramps(table *assumptions.Table) ([]Ramp, error) {
	var ramps []Ramp
	for _, c := range converters {
		if c.rampUp == "" {
			continue
		}
		v, err := table.Lookup(c.tech, types.CompRampUp)
		if err != nil {
			return nil, err
		}
		ramps = append(ramps, Ramp{Technology: c.tech, Activity: c.rampUp, Cost: v})
	}
	return ramps, nil
}

// RampCosts returns the cost per unit of ramp-up keyed by the ramp series.
func RampCosts(table *assumptions.Table) (map[Activity]float64, error) {
	ramps, err := Ramps(table)
	if err != nil {
		return nil, err
	}
	costs := make(map[Activity]float64, len(ramps))
	for _, r := range ramps {
		costs[r.Activity] = r.Cost
	}
	return costs, nil
}
