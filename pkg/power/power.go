package power

import (
	"slices"

	"github.com/matzehuels/rigwire/pkg/network"
)

// OutletLoad is the load credited to one outlet.
type OutletLoad struct {
	LimitWatts   float64  `json:"limit_watts"`
	TotalWatts   float64  `json:"total_watts"`
	EquipmentIDs []string `json:"equipment_ids"` // in BFS visit order
}

// Overloaded reports whether the load exceeds the tap capacity.
func (o OutletLoad) Overloaded() bool { return o.TotalWatts > o.LimitWatts }

// Circuit is the load of all outlets sharing a circuit id.
type Circuit struct {
	LimitWatts float64               `json:"limit_watts"`
	TotalWatts float64               `json:"total_watts"`
	Outlets    map[string]OutletLoad `json:"outlets"`
}

// Overloaded reports whether the summed outlet loads exceed the circuit
// capacity.
func (c Circuit) Overloaded() bool { return c.TotalWatts > c.LimitWatts }

// OutletIDs returns the outlet ids of c in ascending order.
func (c Circuit) OutletIDs() []string {
	ids := make([]string, 0, len(c.Outlets))
	for id := range c.Outlets {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Report is the result of [Compute].
type Report struct {
	Circuits  map[string]Circuit `json:"circuits"`
	Unpowered []string           `json:"unpowered"` // sorted by id
}

// Overload identifies one circuit or outlet whose total exceeds its limit.
// OutletID is empty for a circuit-level overload.
type Overload struct {
	CircuitID  string  `json:"circuit_id"`
	OutletID   string  `json:"outlet_id,omitempty"`
	TotalWatts float64 `json:"total_watts"`
	LimitWatts float64 `json:"limit_watts"`
}

// CircuitIDs returns the circuit ids of r in ascending order.
func (r Report) CircuitIDs() []string {
	ids := make([]string, 0, len(r.Circuits))
	for id := range r.Circuits {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Overloads lists every overloaded circuit and outlet, ordered by circuit id
// with the circuit entry before its outlets.
func (r Report) Overloads() []Overload {
	var out []Overload
	for _, cid := range r.CircuitIDs() {
		c := r.Circuits[cid]
		if c.Overloaded() {
			out = append(out, Overload{CircuitID: cid, TotalWatts: c.TotalWatts, LimitWatts: c.LimitWatts})
		}
		for _, oid := range c.OutletIDs() {
			o := c.Outlets[oid]
			if o.Overloaded() {
				out = append(out, Overload{CircuitID: cid, OutletID: oid, TotalWatts: o.TotalWatts, LimitWatts: o.LimitWatts})
			}
		}
	}
	return out
}

// TotalWatts returns the load summed over all circuits.
func (r Report) TotalWatts() float64 {
	var sum float64
	for _, c := range r.Circuits {
		sum += c.TotalWatts
	}
	return sum
}

// Compute builds the power report of s. It is a pure function: the claimed
// set lives for one call only and s is not modified.
func Compute(s network.Snapshot) Report {
	adj := network.Build(s, network.KindPower)
	idx := s.Index()
	claimed := make(map[string]bool)

	r := Report{Circuits: make(map[string]Circuit), Unpowered: []string{}}
	for _, o := range s.Outlets() {
		load := walk(o, adj, idx, claimed)

		c, ok := r.Circuits[o.CircuitID]
		if !ok {
			c = Circuit{LimitWatts: o.CircuitCapacityWatts, Outlets: make(map[string]OutletLoad)}
		}
		c.TotalWatts += load.TotalWatts
		c.Outlets[o.ID] = load
		r.Circuits[o.CircuitID] = c
	}

	for _, e := range s.Equipment() {
		if e.IsWireable() && e.PowerWatts > 0 && !claimed[e.ID] {
			r.Unpowered = append(r.Unpowered, e.ID)
		}
	}
	return r
}

// walk runs the breadth-first search from one outlet and claims every
// equipment it credits.
func walk(o *network.Outlet, adj network.Adjacency, idx map[string]network.Connectable, claimed map[string]bool) OutletLoad {
	load := OutletLoad{LimitWatts: o.TapCapacityWatts, EquipmentIDs: []string{}}

	visited := map[string]bool{o.ID: true}
	queue := []string{o.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		for _, next := range adj.Neighbors(id) {
			if visited[next] {
				continue
			}
			visited[next] = true

			e, ok := idx[next].(*network.Equipment)
			if !ok || !e.IsWireable() || claimed[next] {
				continue
			}
			claimed[next] = true
			load.TotalWatts += e.PowerWatts
			load.EquipmentIDs = append(load.EquipmentIDs, next)
			queue = append(queue, next)
		}
	}
	return load
}

// Owner returns the outlet and circuit an equipment id is credited to.
func (r Report) Owner(equipmentID string) (circuitID, outletID string, ok bool) {
	for _, cid := range r.CircuitIDs() {
		c := r.Circuits[cid]
		for _, oid := range c.OutletIDs() {
			if slices.Contains(c.Outlets[oid].EquipmentIDs, equipmentID) {
				return cid, oid, true
			}
		}
	}
	return "", "", false
}
