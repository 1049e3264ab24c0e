package network

import (
	"cmp"
	"slices"
)

// MaxAddress is the highest slot of a DMX universe.
const MaxAddress = 512

// Point is a 2D scene coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// AxisAligned reports whether the segment p→q is strictly horizontal or
// strictly vertical: the two points share exactly one coordinate.
func (p Point) AxisAligned(q Point) bool {
	return (p.X == q.X) != (p.Y == q.Y)
}

// Wireable holds the capability fields common to every connectable.
type Wireable struct {
	ID       string `json:"id"`
	Position Point  `json:"position"`
	CanPower bool   `json:"can_power"`
	CanDMX   bool   `json:"can_dmx"`
}

// Connectable is a node of the network: either *[Equipment] or *[Outlet].
// The interface is sealed; use a type switch for variant-specific fields.
type Connectable interface {
	// Base returns the shared capability fields.
	Base() *Wireable
	// IsWireable reports whether the connectable may be an edge endpoint.
	IsWireable() bool

	connectable()
}

// Patch is the DMX slot assignment of a fixture.
type Patch struct {
	Universe int    `json:"universe"`
	Address  int    `json:"address"`
	Mode     string `json:"mode"`
}

// Equipment is a placed instance of a catalog equipment type.
type Equipment struct {
	Wireable

	TypeID       string  `json:"type_id"` // catalog key, distinct from the instance ID
	Name         string  `json:"name"`
	IsController bool    `json:"is_controller"`
	PowerWatts   float64 `json:"power_watts"`
	Patch        Patch   `json:"patch"`

	// Channels is the channel count of Patch.Mode as resolved by the host's
	// catalog. Zero means the mode could not be resolved.
	Channels int `json:"channels"`
}

// Base implements Connectable.
func (e *Equipment) Base() *Wireable { return &e.Wireable }

// IsWireable reports whether the equipment has a power or DMX connector.
func (e *Equipment) IsWireable() bool { return e.CanPower || e.CanDMX }

func (*Equipment) connectable() {}

// Outlet is a power tap belonging to a circuit.
type Outlet struct {
	Wireable

	CircuitID            string  `json:"circuit_id"`
	TapCapacityWatts     float64 `json:"tap_capacity_watts"`
	CircuitCapacityWatts float64 `json:"circuit_capacity_watts"`
}

// Base implements Connectable.
func (o *Outlet) Base() *Wireable { return &o.Wireable }

// IsWireable is always true: an outlet exists to be wired.
func (o *Outlet) IsWireable() bool { return true }

func (*Outlet) connectable() {}

// NewOutlet returns an outlet with power capability set.
func NewOutlet(id string, pos Point, circuitID string, tapWatts, circuitWatts float64) *Outlet {
	return &Outlet{
		Wireable:             Wireable{ID: id, Position: pos, CanPower: true},
		CircuitID:            circuitID,
		TapCapacityWatts:     tapWatts,
		CircuitCapacityWatts: circuitWatts,
	}
}

// ID returns the id of c, or "" for nil.
func ID(c Connectable) string {
	if c == nil {
		return ""
	}
	return c.Base().ID
}

// Snapshot is the immutable input to every algorithm in this module: the
// current connectables and edges of a document after any pending edit has
// been applied.
type Snapshot struct {
	Connectables []Connectable
	Edges        []Edge
}

// Index returns connectables keyed by id. When ids collide the later entry
// wins.
func (s Snapshot) Index() map[string]Connectable {
	m := make(map[string]Connectable, len(s.Connectables))
	for _, c := range s.Connectables {
		if c != nil {
			m[c.Base().ID] = c
		}
	}
	return m
}

// Lookup returns the connectable with the given id.
func (s Snapshot) Lookup(id string) (Connectable, bool) {
	for _, c := range s.Connectables {
		if c != nil && c.Base().ID == id {
			return c, true
		}
	}
	return nil, false
}

// Outlets returns every outlet sorted by id. The order is the documented
// tie-break for shared equipment in power aggregation.
func (s Snapshot) Outlets() []*Outlet {
	var out []*Outlet
	for _, c := range s.Connectables {
		if o, ok := c.(*Outlet); ok && o != nil {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b *Outlet) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Equipment returns every equipment instance sorted by id.
func (s Snapshot) Equipment() []*Equipment {
	var out []*Equipment
	for _, c := range s.Connectables {
		if e, ok := c.(*Equipment); ok && e != nil {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *Equipment) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// EdgesOf returns the edges of kind k in snapshot order.
func (s Snapshot) EdgesOf(k Kind) []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// WithEdge returns a copy of s with e appended. It is the insertion check
// for edges coming from the router or the command layer: the edge must be
// valid on its own (see [Edge.Validate]) and both endpoints must be
// wireable connectables of s.
func (s Snapshot) WithEdge(e Edge) (Snapshot, error) {
	if err := e.Validate(); err != nil {
		return s, err
	}
	idx := s.Index()
	from, ok := idx[e.From]
	if !ok {
		return s, ErrUnknownEndpoint
	}
	to, ok := idx[e.To]
	if !ok {
		return s, ErrUnknownEndpoint
	}
	if !from.IsWireable() || !to.IsWireable() {
		return s, ErrNotWireable
	}
	out := Snapshot{
		Connectables: s.Connectables,
		Edges:        append(slices.Clip(s.Edges), e),
	}
	return out, nil
}

// WithoutEdge returns a copy of s without the edge with the given id.
// Removing an unknown id is not an error.
func (s Snapshot) WithoutEdge(id string) Snapshot {
	edges := slices.DeleteFunc(slices.Clone(s.Edges), func(e Edge) bool { return e.ID == id })
	return Snapshot{Connectables: s.Connectables, Edges: edges}
}
