package hub

import (
	"github.com/raterudder/ptxhub/pkg/types"
)

const (
	// LandUseFraction is the share of the land area that may be covered by
	// generators.
	LandUseFraction = 0.1
	// PVPowerDensity is the installable PV capacity per km² (MW/km²).
	PVPowerDensity = 150.0
	// WindPowerDensity is the installable wind capacity per km² (MW/km²).
	WindPowerDensity = 8.4
	// ElectrolyserMinLoad is the minimum electrolyser output as a share of
	// its capacity.
	ElectrolyserMinLoad = 0.2
	// SynthesisMinLoad is the minimum output of continuous synthesis
	// processes as a share of their capacity.
	SynthesisMinLoad = 0.5
)

// Activity names an hourly decision series.
type Activity string

const (
	ActGasTurbineOutput Activity = "gas_turbine.output"
	ActGasTurbineH2     Activity = "gas_turbine.h2"
	ActGasTurbineCH4    Activity = "gas_turbine.ch4"
	ActHeatPumpAmbient  Activity = "heat_pump.ambient"
	ActHeatPumpWaste    Activity = "heat_pump.waste_heat"
	ActElectricHeater   Activity = "electric_heater.output"
	ActElectrolyser     Activity = "electrolyser.output"
	ActDAC              Activity = "dac.output"
	ActAmmonia          Activity = "ammonia_synthesis.output"
	ActMethanation      Activity = "methanation.output"
	ActMethanol         Activity = "methanol_synthesis.output"
	ActFischerTropsch   Activity = "fischer_tropsch.output"
	ActAmmoniaRampUp    Activity = "ammonia_synthesis.ramp_up"
	ActMethanolRampUp   Activity = "methanol_synthesis.ramp_up"
)

// Charge is the hourly inflow series of a reservoir.
func Charge(tech types.Technology) Activity {
	return Activity(string(tech) + ".charge")
}

// Discharge is the hourly outflow series of a reservoir.
func Discharge(tech types.Technology) Activity {
	return Activity(string(tech) + ".discharge")
}

// SOC is the hourly state-of-charge series of a reservoir.
func SOC(tech types.Technology) Activity {
	return Activity(string(tech) + ".soc")
}

// renewable is a generator whose hourly output is its capacity times a
// capacity-factor profile.
type renewable struct {
	tech    types.Technology
	profile types.ProfileKind
	// density is the installable capacity per km² of land, 0 when the
	// generator does not use land.
	density float64
}

var renewables = []renewable{
	{types.TechPVFixed, types.ProfilePVFixed, PVPowerDensity},
	{types.TechPVTracking, types.ProfilePVTracking, PVPowerDensity},
	{types.TechWindOnshore, types.ProfileWind, WindPowerDensity},
	{types.TechWave, types.ProfileWave, 0},
}

// converter turns input carriers into one output carrier. Input ratios are
// read from the component matching the carrier, by-products from Excess
// heat.
type converter struct {
	tech       types.Technology
	activity   Activity
	output     types.Carrier
	inputs     []types.Carrier
	byproducts []types.Carrier
	minLoad    float64
	rampUp     Activity
}

var converters = []converter{
	{
		tech:     types.TechElectricHeater,
		activity: ActElectricHeater,
		output:   types.CarrierHeat,
		inputs:   []types.Carrier{types.CarrierElectricity},
	},
	{
		tech:     types.TechElectrolyser,
		activity: ActElectrolyser,
		output:   types.CarrierHydrogen,
		inputs:   []types.Carrier{types.CarrierElectricity},
		minLoad:  ElectrolyserMinLoad,
	},
	{
		tech:     types.TechDAC,
		activity: ActDAC,
		output:   types.CarrierCO2,
		inputs:   []types.Carrier{types.CarrierElectricity, types.CarrierHeat},
	},
	{
		tech:       types.TechAmmoniaSynthesis,
		activity:   ActAmmonia,
		output:     types.CarrierAmmonia,
		inputs:     []types.Carrier{types.CarrierHydrogen, types.CarrierElectricity},
		byproducts: []types.Carrier{types.CarrierHeat},
		minLoad:    SynthesisMinLoad,
		rampUp:     ActAmmoniaRampUp,
	},
	{
		tech:     types.TechMethanation,
		activity: ActMethanation,
		output:   types.CarrierMethane,
		inputs:   []types.Carrier{types.CarrierHydrogen, types.CarrierCO2},
	},
	{
		tech:     types.TechMethanolSynthesis,
		activity: ActMethanol,
		output:   types.CarrierMethanol,
		inputs:   []types.Carrier{types.CarrierHydrogen, types.CarrierCO2, types.CarrierElectricity},
		minLoad:  SynthesisMinLoad,
		rampUp:   ActMethanolRampUp,
	},
	{
		tech:       types.TechFischerTropsch,
		activity:   ActFischerTropsch,
		output:     types.CarrierFTLiquid,
		inputs:     []types.Carrier{types.CarrierHydrogen, types.CarrierCO2, types.CarrierElectricity},
		byproducts: []types.Carrier{types.CarrierHeat},
		minLoad:    SynthesisMinLoad,
	},
}

// inputComponent maps an input carrier to the component holding its ratio.
var inputComponent = map[types.Carrier]types.Component{
	types.CarrierElectricity: types.CompElectricityIn,
	types.CarrierHydrogen:    types.CompHydrogenIn,
	types.CarrierCO2:         types.CompCO2In,
	types.CarrierHeat:        types.CompHeatIn,
}

// reservoir stores a carrier. Only lossy reservoirs read charge and
// discharge efficiencies, the rest are lossless.
type reservoir struct {
	tech    types.Technology
	carrier types.Carrier
	lossy   bool
}

var reservoirs = []reservoir{
	{types.TechBattery, types.CarrierElectricity, true},
	{types.TechThermalStorage, types.CarrierHeat, false},
	{types.TechAmmoniaStorage, types.CarrierAmmonia, false},
	{types.TechMethaneStorage, types.CarrierMethane, false},
	{types.TechMethanolStorage, types.CarrierMethanol, false},
	{types.TechLiquidFuelStorage, types.CarrierFTLiquid, false},
	{types.TechH2RockCavern, types.CarrierHydrogen, false},
	{types.TechH2PipeStorage, types.CarrierHydrogen, false},
	{types.TechCO2Storage, types.CarrierCO2, false},
}

// Reservoirs returns the storage technologies in model order.
func Reservoirs() []types.Technology {
	techs := make([]types.Technology, len(reservoirs))
	for i, r := range reservoirs {
		techs[i] = r.tech
	}
	return techs
}
