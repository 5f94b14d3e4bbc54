package assumptions

import "github.com/raterudder/ptxhub/pkg/types"

// Years covered by DefaultRows.
var Years = []int{2030, 2040, 2050}

// cost returns the CAPEX, OPEX and Lifetime rows of a technology. CAPEX is
// given per horizon year, OPEX and Lifetime are constant.
func cost(tech types.Technology, capex [3]float64, opex, lifetime float64) []Row {
	return []Row{
		{
			Technology: tech,
			Component:  types.CompCAPEX,
			Values:     map[int]float64{Years[0]: capex[0], Years[1]: capex[1], Years[2]: capex[2]},
		},
		flat(tech, types.CompOPEX, opex),
		flat(tech, types.CompLifetime, lifetime),
	}
}

func flat(tech types.Technology, comp types.Component, v float64) Row {
	values := make(map[int]float64, len(Years))
	for _, y := range Years {
		values[y] = v
	}
	return Row{Technology: tech, Component: comp, Values: values}
}

// DefaultRows returns the built-in assumption set. Costs are in EUR per unit
// of capacity (MW, MWh, t/h of DAC per year of operation, t of CO2 storage),
// OPEX per unit and year, conversion ratios per MWh (or t) of output.
func DefaultRows() []Row {
	var rows []Row
	add := func(r ...Row) {
		rows = append(rows, r...)
	}

	// generation
	add(cost(types.TechPVFixed, [3]float64{380e3, 320e3, 280e3}, 7.2e3, 35)...)
	add(cost(types.TechPVTracking, [3]float64{450e3, 380e3, 330e3}, 8.5e3, 35)...)
	add(cost(types.TechWindOnshore, [3]float64{1.12e6, 1.04e6, 0.98e6}, 14e3, 30)...)
	add(cost(types.TechWave, [3]float64{3.5e6, 2.6e6, 2.0e6}, 95e3, 20)...)

	add(cost(types.TechGasTurbine, [3]float64{600e3, 580e3, 560e3}, 20e3, 25)...)
	add(
		flat(types.TechGasTurbine, types.CompH2ToPowerEff, 0.40),
		flat(types.TechGasTurbine, types.CompCH4ToPowerEff, 0.41),
	)

	// battery energy and power parts
	add(cost(types.TechBattery, [3]float64{142e3, 94e3, 75e3}, 1.5e3, 20)...)
	add(
		flat(types.TechBattery, types.CompEPRatio, 4),
		flat(types.TechBattery, types.CompChargingEff, 0.98),
		flat(types.TechBattery, types.CompDischargingEff, 0.97),
	)
	add(cost(types.TechBatteryInterface, [3]float64{160e3, 100e3, 80e3}, 2e3, 20)...)

	// heat
	add(cost(types.TechHeatPump, [3]float64{700e3, 650e3, 600e3}, 2.3e3, 25)...)
	add(flat(types.TechHeatPump, types.CompCOP, 3.0))
	add(cost(types.TechElectricHeater, [3]float64{60e3, 60e3, 60e3}, 1e3, 30)...)
	add(flat(types.TechElectricHeater, types.CompElectricityIn, 1.01))
	add(cost(types.TechThermalStorage, [3]float64{25e3, 22e3, 20e3}, 300, 30)...)
	add(flat(types.TechThermalStorage, types.CompEPRatio, 10))

	// hydrogen and carbon
	add(cost(types.TechElectrolyser, [3]float64{550e3, 400e3, 300e3}, 12e3, 25)...)
	add(
		flat(types.TechElectrolyser, types.CompElectricityIn, 1.45),
		flat(types.TechElectrolyser, types.CompExcessHeat, 0.2),
	)
	add(cost(types.TechDAC, [3]float64{730, 550, 420}, 30, 20)...)
	add(
		flat(types.TechDAC, types.CompElectricityIn, 0.25),
		flat(types.TechDAC, types.CompHeatIn, 1.5),
	)

	// fuel synthesis
	add(cost(types.TechAmmoniaSynthesis, [3]float64{1.3e6, 1.2e6, 1.1e6}, 40e3, 30)...)
	add(
		flat(types.TechAmmoniaSynthesis, types.CompHydrogenIn, 1.13),
		flat(types.TechAmmoniaSynthesis, types.CompElectricityIn, 0.08),
		flat(types.TechAmmoniaSynthesis, types.CompExcessHeat, 0.1),
		flat(types.TechAmmoniaSynthesis, types.CompRampUp, 15),
	)
	add(cost(types.TechMethanation, [3]float64{700e3, 600e3, 500e3}, 20e3, 25)...)
	add(
		flat(types.TechMethanation, types.CompHydrogenIn, 1.28),
		flat(types.TechMethanation, types.CompCO2In, 0.198),
	)
	add(cost(types.TechMethanolSynthesis, [3]float64{800e3, 700e3, 620e3}, 25e3, 25)...)
	add(
		flat(types.TechMethanolSynthesis, types.CompHydrogenIn, 1.14),
		flat(types.TechMethanolSynthesis, types.CompCO2In, 0.25),
		flat(types.TechMethanolSynthesis, types.CompElectricityIn, 0.04),
		flat(types.TechMethanolSynthesis, types.CompRampUp, 12),
	)
	add(cost(types.TechFischerTropsch, [3]float64{1.0e6, 0.9e6, 0.8e6}, 30e3, 25)...)
	add(
		flat(types.TechFischerTropsch, types.CompHydrogenIn, 1.43),
		flat(types.TechFischerTropsch, types.CompCO2In, 0.31),
		flat(types.TechFischerTropsch, types.CompElectricityIn, 0.01),
		flat(types.TechFischerTropsch, types.CompExcessHeat, 0.2),
	)

	// reservoirs
	storages := []struct {
		tech     types.Technology
		capex    [3]float64
		opex     float64
		lifetime float64
		ep       float64
	}{
		{types.TechAmmoniaStorage, [3]float64{180, 180, 180}, 4, 30, 500},
		{types.TechMethaneStorage, [3]float64{120, 120, 120}, 2, 40, 1000},
		{types.TechMethanolStorage, [3]float64{30, 30, 30}, 1, 30, 500},
		{types.TechLiquidFuelStorage, [3]float64{30, 30, 30}, 1, 30, 500},
		{types.TechH2RockCavern, [3]float64{2.5e3, 2.3e3, 2.1e3}, 40, 40, 500},
		{types.TechH2PipeStorage, [3]float64{12e3, 11e3, 10e3}, 120, 30, 50},
		{types.TechCO2Storage, [3]float64{2.2e3, 2.0e3, 1.9e3}, 50, 25, 20},
	}
	for _, s := range storages {
		add(cost(s.tech, s.capex, s.opex, s.lifetime)...)
		add(flat(s.tech, types.CompEPRatio, s.ep))
	}

	return rows
}

// Default returns the built-in table resolved for year.
func Default(year int) (*Table, error) {
	return New(year, DefaultRows())
}
