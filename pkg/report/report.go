// Package report turns a solved hub into the labelled tables handed to
// exporters.
package report

import (
	"fmt"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/hub"
	"github.com/raterudder/ptxhub/pkg/types"
)

// Section titles in report order.
const (
	SectionCapacity    = "Installed capacity"
	SectionProduction  = "Annual production"
	SectionConsumption = "Annual consumption"
	SectionInvestment  = "Annualized investment cost"
	SectionOperating   = "Annual operating cost"
	SectionSystemCost  = "System cost"
)

// Row labels of the system cost section.
const (
	LabelInvestment = "Investment"
	LabelOperating  = "Operating"
	LabelRamping    = "Ramping"
	LabelTotal      = "Total"
)

const costUnit = "EUR/yr"

// consumed carriers and their report labels
var consumption = []struct {
	carrier types.Carrier
	label   string
}{
	{types.CarrierElectricity, "Electricity"},
	{types.CarrierMethane, "Gas"},
	{types.CarrierHydrogen, "Hydrogen"},
	{types.CarrierCO2, "CO2"},
	{types.CarrierHeat, "Heat"},
}

// Compile derives every reported quantity from res. Costs are recomputed
// with the same coefficients the objective was built from.
func Compile(table *assumptions.Table, res *hub.Result) (types.Report, error) {
	costs, err := hub.CostCoefficients(table)
	if err != nil {
		return types.Report{}, fmt.Errorf("failed to resolve costs: %w", err)
	}
	ramps, err := hub.Ramps(table)
	if err != nil {
		return types.Report{}, fmt.Errorf("failed to resolve ramp costs: %w", err)
	}
	ep, err := table.Lookup(types.TechBattery, types.CompEPRatio)
	if err != nil {
		return types.Report{}, fmt.Errorf("failed to resolve battery E/P ratio: %w", err)
	}

	rep := types.Report{
		ScenarioID: res.Scenario.ID,
		Year:       table.Year(),
		Hours:      res.Hours,
	}
	rep.Sections = append(rep.Sections,
		capacitySection(res, ep),
		productionSection(res),
		consumptionSection(res),
	)

	inv := types.ReportSection{Title: SectionInvestment}
	opex := types.ReportSection{Title: SectionOperating}
	var invTotal, opexTotal, rampTotal float64
	for _, c := range costs {
		size := res.Capacity[c.Basis]
		inv.Rows = append(inv.Rows, types.ReportRow{Label: c.Technology.Label(), Unit: costUnit, Value: c.Investment * size})
		opex.Rows = append(opex.Rows, types.ReportRow{Label: c.Technology.Label(), Unit: costUnit, Value: c.Operating * size})
		invTotal += c.Investment * size
		opexTotal += c.Operating * size
	}
	for _, r := range ramps {
		v := r.Cost * res.Total(r.Activity)
		opex.Rows = append(opex.Rows, types.ReportRow{Label: r.Technology.Label() + " ramping", Unit: costUnit, Value: v})
		rampTotal += v
	}

	total := invTotal + opexTotal + rampTotal
	rep.Sections = append(rep.Sections, inv, opex, types.ReportSection{
		Title: SectionSystemCost,
		Rows: []types.ReportRow{
			{Label: LabelInvestment, Unit: costUnit, Value: invTotal},
			{Label: LabelOperating, Unit: costUnit, Value: opexTotal},
			{Label: LabelRamping, Unit: costUnit, Value: rampTotal},
			{Label: LabelTotal, Unit: costUnit, Value: total},
		},
	})
	rep.TotalCost = total
	return rep, nil
}

func capacitySection(res *hub.Result, ep float64) types.ReportSection {
	s := types.ReportSection{Title: SectionCapacity}
	for _, tech := range types.Technologies() {
		s.Rows = append(s.Rows, types.ReportRow{Label: tech.Label(), Unit: tech.Unit(), Value: res.Capacity[tech]})
		if tech == types.TechBattery {
			// the interface is implied by the battery's E/P ratio
			s.Rows = append(s.Rows, types.ReportRow{
				Label: types.TechBatteryInterface.Label(),
				Unit:  types.TechBatteryInterface.Unit(),
				Value: res.Capacity[tech] / ep,
			})
		}
	}
	return s
}

func productionSection(res *hub.Result) types.ReportSection {
	s := types.ReportSection{Title: SectionProduction}
	for _, c := range types.Carriers() {
		for _, u := range res.CarrierUse(c) {
			if u.Consumer {
				continue
			}
			label := u.Technology.Label()
			if u.Byproduct {
				label += " excess heat"
			}
			s.Rows = append(s.Rows, types.ReportRow{Label: label, Unit: c.Unit(), Value: u.Amount})
		}
	}
	return s
}

func consumptionSection(res *hub.Result) types.ReportSection {
	s := types.ReportSection{Title: SectionConsumption}
	for _, cc := range consumption {
		var total float64
		var rows []types.ReportRow
		for _, u := range res.CarrierUse(cc.carrier) {
			if !u.Consumer {
				continue
			}
			rows = append(rows, types.ReportRow{
				Label: fmt.Sprintf("%s: %s", cc.label, u.Technology.Label()),
				Unit:  cc.carrier.Unit(),
				Value: u.Amount,
			})
			total += u.Amount
		}
		s.Rows = append(s.Rows, types.ReportRow{Label: cc.label, Unit: cc.carrier.Unit(), Value: total})
		s.Rows = append(s.Rows, rows...)
	}
	return s
}
