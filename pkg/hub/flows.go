package hub

import (
	"fmt"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/types"
)

// Flow links an hourly series to a carrier balance. A positive Coef
// supplies the carrier, a negative one consumes it.
type Flow struct {
	Technology types.Technology
	Activity   Activity
	Carrier    types.Carrier
	Coef       float64
	// Storage is set for reservoir charge and discharge flows.
	Storage bool
	// Byproduct is set for excess heat released by a synthesis.
	Byproduct bool
}

// Flows returns every carrier flow of the hub, resolved against table.
// Renewable generation is not included since it is driven by capacity and
// not by an hourly series.
func Flows(table *assumptions.Table) ([]Flow, error) {
	var flows []Flow

	// gas turbine burns hydrogen and methane
	flows = append(flows,
		Flow{Technology: types.TechGasTurbine, Activity: ActGasTurbineOutput, Carrier: types.CarrierElectricity, Coef: 1},
		Flow{Technology: types.TechGasTurbine, Activity: ActGasTurbineH2, Carrier: types.CarrierHydrogen, Coef: -1},
		Flow{Technology: types.TechGasTurbine, Activity: ActGasTurbineCH4, Carrier: types.CarrierMethane, Coef: -1},
	)

	// heat pump output from either source draws electricity through COP
	cop, err := table.Lookup(types.TechHeatPump, types.CompCOP)
	if err != nil {
		return nil, err
	}
	if cop <= 0 {
		return nil, fmt.Errorf("COP of %s must be positive: %v", types.TechHeatPump, cop)
	}
	for _, act := range []Activity{ActHeatPumpAmbient, ActHeatPumpWaste} {
		flows = append(flows,
			Flow{Technology: types.TechHeatPump, Activity: act, Carrier: types.CarrierHeat, Coef: 1},
			Flow{Technology: types.TechHeatPump, Activity: act, Carrier: types.CarrierElectricity, Coef: -1 / cop},
		)
	}

	for _, c := range converters {
		flows = append(flows, Flow{Technology: c.tech, Activity: c.activity, Carrier: c.output, Coef: 1})
		for _, in := range c.inputs {
			ratio, err := table.Lookup(c.tech, inputComponent[in])
			if err != nil {
				return nil, err
			}
			flows = append(flows, Flow{Technology: c.tech, Activity: c.activity, Carrier: in, Coef: -ratio})
		}
		for _, by := range c.byproducts {
			ratio, err := table.Lookup(c.tech, types.CompExcessHeat)
			if err != nil {
				return nil, err
			}
			flows = append(flows, Flow{Technology: c.tech, Activity: c.activity, Carrier: by, Coef: ratio, Byproduct: true})
		}
	}

	for _, r := range reservoirs {
		flows = append(flows,
			Flow{Technology: r.tech, Activity: Discharge(r.tech), Carrier: r.carrier, Coef: 1, Storage: true},
			Flow{Technology: r.tech, Activity: Charge(r.tech), Carrier: r.carrier, Coef: -1, Storage: true},
		)
	}
	return flows, nil
}
