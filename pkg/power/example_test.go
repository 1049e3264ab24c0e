package power_test

import (
	"fmt"

	"github.com/matzehuels/rigwire/pkg/network"
	"github.com/matzehuels/rigwire/pkg/power"
)

func ExampleCompute() {
	// Outlet → dimmer pack → two pars, plus a stray fixture nobody plugged in
	s := network.Snapshot{
		Connectables: []network.Connectable{
			network.NewOutlet("outlet_1", network.Pt(0, 0), "A-1", 1500, 2000),
			&network.Equipment{Wireable: network.Wireable{ID: "dimmer", CanPower: true}, PowerWatts: 50},
			&network.Equipment{Wireable: network.Wireable{ID: "par_1", CanPower: true}, PowerWatts: 750},
			&network.Equipment{Wireable: network.Wireable{ID: "par_2", CanPower: true}, PowerWatts: 750},
			&network.Equipment{Wireable: network.Wireable{ID: "spot", CanPower: true}, PowerWatts: 400},
		},
		Edges: []network.Edge{
			{ID: "w1", Kind: network.KindPower, From: "outlet_1", To: "dimmer"},
			{ID: "w2", Kind: network.KindPower, From: "dimmer", To: "par_1"},
			{ID: "w3", Kind: network.KindPower, From: "dimmer", To: "par_2"},
		},
	}

	r := power.Compute(s)
	o := r.Circuits["A-1"].Outlets["outlet_1"]
	fmt.Println("Outlet load:", o.TotalWatts, "of", o.LimitWatts)
	fmt.Println("Equipment:", o.EquipmentIDs)
	fmt.Println("Overloaded:", o.Overloaded())
	fmt.Println("Unpowered:", r.Unpowered)
	// Output:
	// Outlet load: 1550 of 1500
	// Equipment: [dimmer par_1 par_2]
	// Overloaded: true
	// Unpowered: [spot]
}
