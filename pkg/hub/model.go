package hub

import (
	"fmt"
	"math"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/lp"
	"github.com/raterudder/ptxhub/pkg/types"
)

// Model is the linear program of one scenario together with the index of
// its variables.
type Model struct {
	Scenario types.Scenario
	Hours    int
	Problem  *lp.Problem

	capacity map[types.Technology]int
	series   map[Activity][]int
	flows    []Flow
}

// storageParams are the resolved parameters of a reservoir.
type storageParams struct {
	reservoir
	ep        float64
	chargeEff float64
	dischEff  float64
}

// Build declares every variable and constraint of the scenario. Every
// parameter is resolved before the first row is added so a bad assumption
// table never yields a partial model.
func Build(scenario types.Scenario, table *assumptions.Table) (*Model, error) {
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	hours := scenario.Horizon()
	for _, kind := range types.ProfileKinds() {
		if n := len(scenario.Profiles.Get(kind)); n != hours {
			return nil, &ProfileLengthError{Profile: kind, Got: n, Want: hours}
		}
	}

	if err := table.Check(CostTechnologies()...); err != nil {
		return nil, fmt.Errorf("invalid assumptions: %w", err)
	}
	flows, err := Flows(table)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve flows: %w", err)
	}
	costs, err := CostCoefficients(table)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve costs: %w", err)
	}
	ramps, err := RampCosts(table)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ramp costs: %w", err)
	}
	stores, err := resolveStorage(table)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage parameters: %w", err)
	}
	gtH2, err := table.Lookup(types.TechGasTurbine, types.CompH2ToPowerEff)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve gas turbine: %w", err)
	}
	gtCH4, err := table.Lookup(types.TechGasTurbine, types.CompCH4ToPowerEff)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve gas turbine: %w", err)
	}
	wasteHeat, err := table.Lookup(types.TechElectrolyser, types.CompExcessHeat)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve electrolyser waste heat: %w", err)
	}

	m := &Model{
		Scenario: scenario,
		Hours:    hours,
		Problem:  &lp.Problem{},
		capacity: make(map[types.Technology]int),
		series:   make(map[Activity][]int),
		flows:    flows,
	}
	m.declareCapacities(costs)
	m.declareSeries(ramps)

	m.addLandUse()
	m.addBalances()
	m.addGasTurbine(gtH2, gtCH4)
	m.addHeatPump(wasteHeat)
	m.addConverters()
	for _, s := range stores {
		m.addStorage(s)
	}
	return m, nil
}

func resolveStorage(table *assumptions.Table) ([]storageParams, error) {
	stores := make([]storageParams, 0, len(reservoirs))
	for _, r := range reservoirs {
		s := storageParams{reservoir: r, chargeEff: 1, dischEff: 1}
		var err error
		s.ep, err = table.Lookup(r.tech, types.CompEPRatio)
		if err != nil {
			return nil, err
		}
		if s.ep <= 0 {
			return nil, fmt.Errorf("E/P ratio of %s must be positive: %v", r.tech, s.ep)
		}
		if r.lossy {
			s.chargeEff, err = table.Lookup(r.tech, types.CompChargingEff)
			if err != nil {
				return nil, err
			}
			s.dischEff, err = table.Lookup(r.tech, types.CompDischargingEff)
			if err != nil {
				return nil, err
			}
			if s.chargeEff <= 0 || s.dischEff <= 0 {
				return nil, fmt.Errorf("efficiencies of %s must be positive", r.tech)
			}
		}
		stores = append(stores, s)
	}
	return stores, nil
}

func (m *Model) declareCapacities(costs []Cost) {
	upper := map[types.Technology]float64{
		types.TechWave: m.Scenario.WavePotentialMW,
	}
	for _, r := range renewables {
		if r.density > 0 {
			upper[r.tech] = m.Scenario.LandAreaKM2 * LandUseFraction * r.density
		}
	}

	for _, tech := range types.Technologies() {
		ub, ok := upper[tech]
		if !ok {
			ub = math.Inf(1)
		}
		var cost float64
		for _, c := range costs {
			if c.Basis == tech {
				cost += c.Investment + c.Operating
			}
		}
		m.capacity[tech] = m.Problem.AddVariable("cap["+string(tech)+"]", 0, ub, cost)
	}
}

func (m *Model) declareSeries(ramps map[Activity]float64) {
	acts := []Activity{
		ActGasTurbineOutput,
		ActGasTurbineH2,
		ActGasTurbineCH4,
		ActHeatPumpAmbient,
		ActHeatPumpWaste,
	}
	for _, c := range converters {
		acts = append(acts, c.activity)
		if c.rampUp != "" {
			acts = append(acts, c.rampUp)
		}
	}
	for _, r := range reservoirs {
		acts = append(acts, Charge(r.tech), Discharge(r.tech), SOC(r.tech))
	}

	for _, act := range acts {
		idx := make([]int, m.Hours)
		for h := range idx {
			idx[h] = m.Problem.AddVariable(fmt.Sprintf("%s[%d]", act, h+1), 0, math.Inf(1), ramps[act])
		}
		m.series[act] = idx
	}
}

// addLandUse limits the land covered by PV and wind to the site's area.
func (m *Model) addLandUse() {
	var terms []lp.Term
	for _, r := range renewables {
		if r.density > 0 {
			terms = append(terms, lp.Term{Var: m.capacity[r.tech], Coef: 1 / (LandUseFraction * r.density)})
		}
	}
	m.Problem.AddConstraint("land_use", lp.LessEqual, m.Scenario.LandAreaKM2, terms...)
}

// addBalances adds supply >= demand + use for every carrier and hour.
func (m *Model) addBalances() {
	byCarrier := make(map[types.Carrier][]Flow)
	for _, f := range m.flows {
		byCarrier[f.Carrier] = append(byCarrier[f.Carrier], f)
	}

	for h := 0; h < m.Hours; h++ {
		for _, c := range types.Carriers() {
			flows := byCarrier[c]
			terms := make([]lp.Term, 0, len(flows)+len(renewables))
			for _, f := range flows {
				terms = append(terms, lp.Term{Var: m.series[f.Activity][h], Coef: f.Coef})
			}
			if c == types.CarrierElectricity {
				for _, r := range renewables {
					cf := m.Scenario.Profiles.Get(r.profile)[h]
					if cf != 0 {
						terms = append(terms, lp.Term{Var: m.capacity[r.tech], Coef: cf})
					}
				}
			}
			m.Problem.AddConstraint(
				fmt.Sprintf("balance.%s[%d]", c, h+1),
				lp.GreaterEqual,
				m.Scenario.Demand.Hourly(c),
				terms...,
			)
		}
	}
}

// addGasTurbine ties the turbine output to its fuel draw and capacity.
func (m *Model) addGasTurbine(h2Eff, ch4Eff float64) {
	out := m.series[ActGasTurbineOutput]
	h2 := m.series[ActGasTurbineH2]
	ch4 := m.series[ActGasTurbineCH4]
	capVar := m.capacity[types.TechGasTurbine]
	for h := 0; h < m.Hours; h++ {
		m.Problem.AddConstraint(
			fmt.Sprintf("gas_turbine.fuel[%d]", h+1),
			lp.Equal,
			0,
			lp.Term{Var: out[h], Coef: 1},
			lp.Term{Var: h2[h], Coef: -h2Eff},
			lp.Term{Var: ch4[h], Coef: -ch4Eff},
		)
		m.Problem.AddConstraint(
			fmt.Sprintf("gas_turbine.capacity[%d]", h+1),
			lp.LessEqual,
			0,
			lp.Term{Var: out[h], Coef: 1},
			lp.Term{Var: capVar, Coef: -1},
		)
	}
}

// addHeatPump shares the capacity between both heat sources and limits the
// waste heat source to what the electrolyser rejects.
func (m *Model) addHeatPump(wasteHeat float64) {
	amb := m.series[ActHeatPumpAmbient]
	waste := m.series[ActHeatPumpWaste]
	el := m.series[ActElectrolyser]
	capVar := m.capacity[types.TechHeatPump]
	for h := 0; h < m.Hours; h++ {
		m.Problem.AddConstraint(
			fmt.Sprintf("heat_pump.capacity[%d]", h+1),
			lp.LessEqual,
			0,
			lp.Term{Var: amb[h], Coef: 1},
			lp.Term{Var: waste[h], Coef: 1},
			lp.Term{Var: capVar, Coef: -1},
		)
		m.Problem.AddConstraint(
			fmt.Sprintf("heat_pump.waste_heat[%d]", h+1),
			lp.LessEqual,
			0,
			lp.Term{Var: waste[h], Coef: 1},
			lp.Term{Var: el[h], Coef: -wasteHeat},
		)
	}
}

// addConverters adds capacity, minimum load and ramp-up rows.
func (m *Model) addConverters() {
	for _, c := range converters {
		out := m.series[c.activity]
		capVar := m.capacity[c.tech]
		for h := 0; h < m.Hours; h++ {
			m.Problem.AddConstraint(
				fmt.Sprintf("%s.capacity[%d]", c.tech, h+1),
				lp.LessEqual,
				0,
				lp.Term{Var: out[h], Coef: 1},
				lp.Term{Var: capVar, Coef: -1},
			)
			if c.minLoad > 0 {
				m.Problem.AddConstraint(
					fmt.Sprintf("%s.min_load[%d]", c.tech, h+1),
					lp.GreaterEqual,
					0,
					lp.Term{Var: out[h], Coef: 1},
					lp.Term{Var: capVar, Coef: -c.minLoad},
				)
			}
		}
		if c.rampUp == "" {
			continue
		}
		// the first hour is not compared against the last one
		ramp := m.series[c.rampUp]
		for h := 1; h < m.Hours; h++ {
			m.Problem.AddConstraint(
				fmt.Sprintf("%s.ramp_up[%d]", c.tech, h+1),
				lp.GreaterEqual,
				0,
				lp.Term{Var: ramp[h], Coef: 1},
				lp.Term{Var: out[h], Coef: -1},
				lp.Term{Var: out[h-1], Coef: 1},
			)
		}
	}
}

// addStorage adds rate limits, the SOC recursion and the cyclic closure of
// one reservoir. Hour 1 follows the last hour.
func (m *Model) addStorage(s storageParams) {
	ch := m.series[Charge(s.tech)]
	dis := m.series[Discharge(s.tech)]
	soc := m.series[SOC(s.tech)]
	capVar := m.capacity[s.tech]
	rate := -1 / s.ep
	for h := 0; h < m.Hours; h++ {
		m.Problem.AddConstraint(
			fmt.Sprintf("%s.charge_rate[%d]", s.tech, h+1),
			lp.LessEqual,
			0,
			lp.Term{Var: ch[h], Coef: 1},
			lp.Term{Var: capVar, Coef: rate},
		)
		m.Problem.AddConstraint(
			fmt.Sprintf("%s.discharge_rate[%d]", s.tech, h+1),
			lp.LessEqual,
			0,
			lp.Term{Var: dis[h], Coef: 1},
			lp.Term{Var: capVar, Coef: rate},
		)
		m.Problem.AddConstraint(
			fmt.Sprintf("%s.soc_capacity[%d]", s.tech, h+1),
			lp.LessEqual,
			0,
			lp.Term{Var: soc[h], Coef: 1},
			lp.Term{Var: capVar, Coef: -1},
		)
		prev := (h - 1 + m.Hours) % m.Hours
		m.Problem.AddConstraint(
			fmt.Sprintf("%s.soc[%d]", s.tech, h+1),
			lp.Equal,
			0,
			lp.Term{Var: soc[h], Coef: 1},
			lp.Term{Var: soc[prev], Coef: -1},
			lp.Term{Var: ch[prev], Coef: -s.chargeEff},
			lp.Term{Var: dis[prev], Coef: 1 / s.dischEff},
		)
	}
}
