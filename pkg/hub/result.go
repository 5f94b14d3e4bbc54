package hub

import (
	"fmt"

	"github.com/raterudder/ptxhub/pkg/lp"
	"github.com/raterudder/ptxhub/pkg/types"
)

// Result is the optimal design and dispatch of one scenario.
type Result struct {
	Scenario  types.Scenario
	Hours     int
	Solver    string
	Objective float64

	// Capacity is indexed by technology in the technology's own unit.
	Capacity map[types.Technology]float64
	// Series holds every hourly decision series.
	Series map[Activity][]float64
	// Renewable holds capacity times profile for each generator.
	Renewable map[types.Technology][]float64

	flows   []Flow
	problem *lp.Problem
	x       []float64
}

// StorageTrace is the hourly operation of one reservoir.
type StorageTrace struct {
	Charge    []float64
	Discharge []float64
	SOC       []float64
}

func (m *Model) decode(solver string, sol lp.Solution) *Result {
	r := &Result{
		Scenario:  m.Scenario,
		Hours:     m.Hours,
		Solver:    solver,
		Objective: sol.Objective,
		Capacity:  make(map[types.Technology]float64, len(m.capacity)),
		Series:    make(map[Activity][]float64, len(m.series)),
		Renewable: make(map[types.Technology][]float64, len(renewables)),
		flows:     m.flows,
		problem:   m.Problem,
		x:         sol.X,
	}
	for tech, v := range m.capacity {
		r.Capacity[tech] = sol.X[v]
	}
	for act, idx := range m.series {
		vals := make([]float64, len(idx))
		for h, v := range idx {
			vals[h] = sol.X[v]
		}
		r.Series[act] = vals
	}
	for _, g := range renewables {
		profile := m.Scenario.Profiles.Get(g.profile)
		out := make([]float64, m.Hours)
		for h := range out {
			out[h] = r.Capacity[g.tech] * profile[h]
		}
		r.Renewable[g.tech] = out
	}
	return r
}

// Total sums an hourly series over the horizon.
func (r *Result) Total(act Activity) float64 {
	var sum float64
	for _, v := range r.Series[act] {
		sum += v
	}
	return sum
}

// Generation sums the output of a renewable generator over the horizon.
func (r *Result) Generation(tech types.Technology) float64 {
	var sum float64
	for _, v := range r.Renewable[tech] {
		sum += v
	}
	return sum
}

// Use is the annual flow of one carrier through one technology.
type Use struct {
	Technology types.Technology
	// Consumer is set when the technology draws the carrier.
	Consumer bool
	// Byproduct is set when the carrier is released but is not what the
	// technology is built to produce.
	Byproduct bool
	// Amount is non-negative for producers and consumers alike.
	Amount float64
}

// CarrierUse sums the flows of carrier c per technology over the horizon,
// in model order. Reservoir flows are left out. Renewable generation is
// reported for electricity.
func (r *Result) CarrierUse(c types.Carrier) []Use {
	var uses []Use
	idx := make(map[types.Technology]int)
	add := func(tech types.Technology, coef, total float64, byproduct bool) {
		i, ok := idx[tech]
		if !ok {
			i = len(uses)
			idx[tech] = i
			uses = append(uses, Use{Technology: tech, Consumer: coef < 0, Byproduct: byproduct})
		}
		if coef < 0 {
			coef = -coef
		}
		uses[i].Amount += coef * total
	}

	if c == types.CarrierElectricity {
		for _, g := range renewables {
			add(g.tech, 1, r.Generation(g.tech), false)
		}
	}
	for _, f := range r.flows {
		if f.Carrier != c || f.Storage {
			continue
		}
		add(f.Technology, f.Coef, r.Total(f.Activity), f.Byproduct)
	}
	return uses
}

// Storage returns the trace of a reservoir.
func (r *Result) Storage(tech types.Technology) StorageTrace {
	return StorageTrace{
		Charge:    r.Series[Charge(tech)],
		Discharge: r.Series[Discharge(tech)],
		SOC:       r.Series[SOC(tech)],
	}
}

// Check re-evaluates every bound and constraint of the model at the
// solution and fails if any is violated by more than tol.
func (r *Result) Check(tol float64) error {
	if r.problem == nil {
		return fmt.Errorf("result has no model attached")
	}
	worst, name := r.problem.MaxViolation(r.x)
	if worst > tol {
		return fmt.Errorf("%s is violated by %g", name, worst)
	}
	return nil
}
