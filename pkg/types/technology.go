package types

// Technology identifies a generation, conversion or storage unit of the hub.
type Technology string

const (
	TechPVFixed           Technology = "pv_fixed"
	TechPVTracking        Technology = "pv_tracking"
	TechWindOnshore       Technology = "wind_onshore"
	TechWave              Technology = "wave"
	TechGasTurbine        Technology = "gas_turbine"
	TechBattery           Technology = "battery"
	TechBatteryInterface  Technology = "battery_interface"
	TechHeatPump          Technology = "heat_pump"
	TechElectricHeater    Technology = "electric_heater"
	TechThermalStorage    Technology = "thermal_storage"
	TechElectrolyser      Technology = "electrolyser"
	TechDAC               Technology = "dac"
	TechAmmoniaSynthesis  Technology = "ammonia_synthesis"
	TechAmmoniaStorage    Technology = "ammonia_storage"
	TechMethanation       Technology = "methanation"
	TechMethaneStorage    Technology = "methane_storage"
	TechMethanolSynthesis Technology = "methanol_synthesis"
	TechMethanolStorage   Technology = "methanol_storage"
	TechFischerTropsch    Technology = "fischer_tropsch"
	TechLiquidFuelStorage Technology = "liquid_fuel_storage"
	TechH2RockCavern      Technology = "h2_rock_cavern"
	TechH2PipeStorage     Technology = "h2_pipe_storage"
	TechCO2Storage        Technology = "co2_storage"
)

var technologyInfo = map[Technology]struct {
	label string
	unit  string
}{
	TechPVFixed:           {"PV fixed-tilt", "MW"},
	TechPVTracking:        {"PV single-axis", "MW"},
	TechWindOnshore:       {"Onshore wind", "MW"},
	TechWave:              {"Wave", "MW"},
	TechGasTurbine:        {"Gas turbine", "MW"},
	TechBattery:           {"Battery", "MWh"},
	TechBatteryInterface:  {"Battery interface", "MW"},
	TechHeatPump:          {"Heat pump", "MW_th"},
	TechElectricHeater:    {"Electric heater", "MW_th"},
	TechThermalStorage:    {"Thermal storage", "MWh_th"},
	TechElectrolyser:      {"Electrolyser", "MW"},
	TechDAC:               {"Direct air capture", "t/h"},
	TechAmmoniaSynthesis:  {"Ammonia synthesis", "MW"},
	TechAmmoniaStorage:    {"Ammonia storage", "MWh"},
	TechMethanation:       {"Methanation", "MW"},
	TechMethaneStorage:    {"CH4 storage", "MWh"},
	TechMethanolSynthesis: {"Methanol synthesis", "MW"},
	TechMethanolStorage:   {"Methanol storage", "MWh"},
	TechFischerTropsch:    {"Fischer-Tropsch", "MW"},
	TechLiquidFuelStorage: {"Liquid fuel storage", "MWh"},
	TechH2RockCavern:      {"H2 rock cavern storage", "MWh"},
	TechH2PipeStorage:     {"H2 pipe storage", "MWh"},
	TechCO2Storage:        {"CO2 storage", "t"},
}

// Technologies returns every installable technology in reporting order. The
// battery interface is not listed since it is sized by the battery.
func Technologies() []Technology {
	return []Technology{
		TechPVFixed,
		TechPVTracking,
		TechWindOnshore,
		TechWave,
		TechGasTurbine,
		TechBattery,
		TechHeatPump,
		TechElectricHeater,
		TechThermalStorage,
		TechElectrolyser,
		TechDAC,
		TechAmmoniaSynthesis,
		TechAmmoniaStorage,
		TechMethanation,
		TechMethaneStorage,
		TechMethanolSynthesis,
		TechMethanolStorage,
		TechFischerTropsch,
		TechLiquidFuelStorage,
		TechH2RockCavern,
		TechH2PipeStorage,
		TechCO2Storage,
	}
}

// Valid reports whether t is a known technology.
func (t Technology) Valid() bool {
	_, ok := technologyInfo[t]
	return ok
}

// Label returns the human readable name of the technology.
func (t Technology) Label() string {
	if info, ok := technologyInfo[t]; ok {
		return info.label
	}
	return string(t)
}

// Unit returns the unit its capacity is measured in.
func (t Technology) Unit() string {
	return technologyInfo[t].unit
}

// Component identifies a single parameter of a technology.
type Component string

const (
	CompCAPEX          Component = "CAPEX"
	CompOPEX           Component = "OPEX"
	CompLifetime       Component = "Lifetime"
	CompEPRatio        Component = "E/P ratio"
	CompChargingEff    Component = "Charging eff"
	CompDischargingEff Component = "Discharging eff"
	CompElectricityIn  Component = "Electricity in"
	CompHydrogenIn     Component = "Hydrogen in"
	CompCO2In          Component = "CO2 in"
	CompHeatIn         Component = "Heat in"
	CompExcessHeat     Component = "Excess heat"
	CompRampUp         Component = "Ramp up"
	CompCOP            Component = "COP"
	CompH2ToPowerEff   Component = "H2 to power eff"
	CompCH4ToPowerEff  Component = "CH4 to power eff"
)

var components = map[Component]bool{
	CompCAPEX:          true,
	CompOPEX:           true,
	CompLifetime:       true,
	CompEPRatio:        true,
	CompChargingEff:    true,
	CompDischargingEff: true,
	CompElectricityIn:  true,
	CompHydrogenIn:     true,
	CompCO2In:          true,
	CompHeatIn:         true,
	CompExcessHeat:     true,
	CompRampUp:         true,
	CompCOP:            true,
	CompH2ToPowerEff:   true,
	CompCH4ToPowerEff:  true,
}

// Valid reports whether c is a known component.
func (c Component) Valid() bool {
	return components[c]
}

// Carrier is an energy or mass flow balanced every hour.
type Carrier string

const (
	CarrierElectricity Carrier = "electricity"
	CarrierHeat        Carrier = "heat"
	CarrierHydrogen    Carrier = "hydrogen"
	CarrierCO2         Carrier = "co2"
	CarrierAmmonia     Carrier = "ammonia"
	CarrierMethane     Carrier = "methane"
	CarrierMethanol    Carrier = "methanol"
	CarrierFTLiquid    Carrier = "ft_liquid"
)

// Carriers returns every balanced carrier.
func Carriers() []Carrier {
	return []Carrier{
		CarrierElectricity,
		CarrierHeat,
		CarrierHydrogen,
		CarrierCO2,
		CarrierAmmonia,
		CarrierMethane,
		CarrierMethanol,
		CarrierFTLiquid,
	}
}

// Unit returns the unit one hour of the carrier is measured in.
func (c Carrier) Unit() string {
	switch c {
	case CarrierCO2:
		return "t"
	case CarrierHeat:
		return "MWh_th"
	default:
		return "MWh"
	}
}
