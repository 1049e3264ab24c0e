package route_test

import (
	"fmt"

	"github.com/matzehuels/rigwire/pkg/network"
	"github.com/matzehuels/rigwire/pkg/route"
)

func ExampleRouter() {
	s := &network.Snapshot{Connectables: []network.Connectable{
		&network.Equipment{Wireable: network.Wireable{ID: "desk", Position: network.Pt(0, 0), CanDMX: true}},
		&network.Equipment{Wireable: network.Wireable{ID: "wash", Position: network.Pt(100, 200), CanDMX: true}},
	}}
	r := route.New(route.SnapshotSource(s), route.WithIDFunc(func() string { return "wire_1" }))

	_, _ = r.Begin("desk", network.KindDMX)

	// A free click commits the corner of the horizontal-first leg
	pv, _, _ := r.Click(network.Pt(100, 50))
	fmt.Println("Preview:", pv.Points)

	// Landing near the wash snaps onto it and completes the cable
	_, edge, _ := r.Click(network.Pt(104, 196))
	fmt.Println("Edge:", edge.From, "→", edge.To, edge.Via)
	fmt.Println("State:", r.State())
	// Output:
	// Preview: [{0 0} {100 0} {100 50}]
	// Edge: desk → wash [{100 0}]
	// State: idle
}

func ExamplePrune() {
	pts := []network.Point{network.Pt(0, 0), network.Pt(10, 0), network.Pt(20, 0), network.Pt(20, 10)}
	fmt.Println(route.Prune(pts))
	// Output:
	// [{0 0} {20 0} {20 10}]
}
