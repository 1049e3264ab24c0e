package network

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidID is returned by [Edge.Validate] when the edge id or one of
	// its endpoint ids is empty.
	ErrInvalidID = errors.New("id must not be empty")

	// ErrInvalidKind is returned by [ParseKind] and [Edge.Validate] for a
	// kind other than power or dmx.
	ErrInvalidKind = errors.New("invalid wire kind")

	// ErrSelfLoop is returned by [NewEdge] and [Edge.Validate] when both
	// endpoints are the same connectable.
	ErrSelfLoop = errors.New("edge endpoints must differ")

	// ErrUnknownEndpoint is returned by [Snapshot.WithEdge] when an endpoint
	// does not reference a connectable of the snapshot.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")

	// ErrNotWireable is returned by [Snapshot.WithEdge] when an endpoint has
	// neither a power nor a DMX connector.
	ErrNotWireable = errors.New("connectable is not wireable")
)

// Kind is the cable type of an edge.
type Kind string

const (
	KindPower Kind = "power"
	KindDMX   Kind = "dmx"
)

// Kinds lists every valid kind.
var Kinds = []Kind{KindPower, KindDMX}

// ParseKind converts a wire category string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Valid reports whether k is one of [Kinds].
func (k Kind) Valid() bool { return slices.Contains(Kinds, k) }

func (k Kind) String() string { return string(k) }

// Edge is a cable between two connectables. Edges are stored directed
// (From/To as drawn) but every algorithm traverses them in both directions.
// Via holds the drawn bend points; it is geometry only and never consulted
// by graph traversal.
type Edge struct {
	ID   string  `json:"id"`
	Kind Kind    `json:"kind"`
	From string  `json:"from"`
	To   string  `json:"to"`
	Via  []Point `json:"via,omitempty"`
}

// NewEdge builds and validates an edge. The via slice is copied.
func NewEdge(id string, kind Kind, from, to string, via []Point) (Edge, error) {
	e := Edge{ID: id, Kind: kind, From: from, To: to, Via: slices.Clone(via)}
	if err := e.Validate(); err != nil {
		return Edge{}, err
	}
	return e, nil
}

// Validate checks the construction invariants of a single edge. It does not
// look at endpoints; see [Snapshot.WithEdge] for that.
func (e Edge) Validate() error {
	if e.ID == "" || e.From == "" || e.To == "" {
		return ErrInvalidID
	}
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, e.Kind)
	}
	if e.From == e.To {
		return ErrSelfLoop
	}
	return nil
}

// Other returns the endpoint opposite id, or "" when id is not an endpoint.
func (e Edge) Other(id string) string {
	switch id {
	case e.From:
		return e.To
	case e.To:
		return e.From
	}
	return ""
}

// Polyline returns start, the via points and end as one slice.
func (e Edge) Polyline(start, end Point) []Point {
	pts := make([]Point, 0, len(e.Via)+2)
	pts = append(pts, start)
	pts = append(pts, e.Via...)
	return append(pts, end)
}
