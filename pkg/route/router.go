package route

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rigwire/pkg/network"
)

// DefaultSnapRadius is the snap distance in scene units.
const DefaultSnapRadius = 15.0

var (
	// ErrNotWireable is returned by [Router.Begin] when the start
	// connectable has neither a power nor a DMX connector.
	ErrNotWireable = errors.New("start is not wireable")

	// ErrUnknownStart is returned by [Router.Begin] for an id the source
	// does not know, and by [Router.Click] when the start was removed while
	// routing.
	ErrUnknownStart = errors.New("unknown start connectable")

	// ErrNotRouting is returned by [Router.Click] outside a gesture.
	ErrNotRouting = errors.New("no routing gesture in progress")
)

// Source is the host's live view of the document. Positions are read
// through it on every event and never cached by the router.
type Source interface {
	Connectable(id string) (network.Connectable, bool)
	Connectables() []network.Connectable
}

// SnapshotSource adapts a snapshot to [Source]. Connectables are pointers,
// so position changes made by the host are visible to the router.
func SnapshotSource(s *network.Snapshot) Source { return snapshotSource{s} }

type snapshotSource struct{ s *network.Snapshot }

func (s snapshotSource) Connectable(id string) (network.Connectable, bool) { return s.s.Lookup(id) }
func (s snapshotSource) Connectables() []network.Connectable              { return s.s.Connectables }

// State is the router's mode.
type State int

const (
	Idle State = iota
	Routing
)

func (s State) String() string {
	if s == Routing {
		return "routing"
	}
	return "idle"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Preview is the polyline to draw after an event: the start position, the
// committed via-points, the pending corner when it is not degenerate and
// the current end. Target is the id of the snapped connectable, or empty.
type Preview struct {
	Points []network.Point `json:"points"`
	Target string          `json:"target,omitempty"`
}

// Snapped reports whether the preview ends on a completion target.
func (p Preview) Snapped() bool { return p.Target != "" }

// Option configures a [Router].
type Option func(*Router)

// WithSnapRadius sets the snap distance. Non-positive values are ignored.
func WithSnapRadius(r float64) Option {
	return func(rt *Router) {
		if r > 0 {
			rt.radius = r
		}
	}
}

// WithAxis sets the initial priority axis.
func WithAxis(a Axis) Option {
	return func(rt *Router) { rt.axis = a }
}

// WithLogger sets the logger for gesture events, logged at debug level.
func WithLogger(l *log.Logger) Option {
	return func(rt *Router) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithIDFunc overrides the edge id generator.
func WithIDFunc(f func() string) Option {
	return func(rt *Router) {
		if f != nil {
			rt.newID = f
		}
	}
}

// Router is the interactive routing state machine. The zero value is not
// usable; create one with [New].
type Router struct {
	src    Source
	radius float64
	logger *log.Logger
	newID  func() string

	axis    Axis
	state   State
	kind    network.Kind
	startID string
	via     []network.Point

	pointer    network.Point
	hasPointer bool
}

// New returns an idle router reading connectables from src.
func New(src Source, opts ...Option) *Router {
	r := &Router{
		src:    src,
		radius: DefaultSnapRadius,
		logger: log.New(io.Discard),
		newID:  func() string { return network.NewID(network.PrefixWire) },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current mode.
func (r *Router) State() State { return r.state }

// Axis returns the priority axis.
func (r *Router) Axis() Axis { return r.axis }

// Kind returns the wire kind of the pending gesture.
func (r *Router) Kind() network.Kind { return r.kind }

// Start returns the start id of the pending gesture, or "".
func (r *Router) Start() string { return r.startID }

// Via returns a copy of the committed via-points.
func (r *Router) Via() []network.Point { return slices.Clone(r.via) }

// Begin starts a gesture of the given kind at startID. A pending gesture is
// cancelled first.
func (r *Router) Begin(startID string, kind network.Kind) (Preview, error) {
	if r.state == Routing {
		r.Cancel()
	}
	if !kind.Valid() {
		return Preview{}, fmt.Errorf("%w: %q", network.ErrInvalidKind, kind)
	}
	c, ok := r.src.Connectable(startID)
	if !ok || c == nil {
		return Preview{}, fmt.Errorf("%w: %s", ErrUnknownStart, startID)
	}
	if !c.IsWireable() {
		return Preview{}, fmt.Errorf("%w: %s", ErrNotWireable, startID)
	}

	r.state = Routing
	r.kind = kind
	r.startID = startID
	r.via = nil
	r.hasPointer = false
	r.logger.Debug("routing started", "start", startID, "kind", kind, "axis", r.axis)
	return Preview{Points: []network.Point{c.Base().Position}}, nil
}

// Move updates the preview for a pointer at p. It returns an empty preview
// when idle, and cancels the gesture if the start has disappeared.
func (r *Router) Move(p network.Point) Preview {
	if r.state != Routing {
		return Preview{}
	}
	start, ok := r.startPosition()
	if !ok {
		r.Cancel()
		return Preview{}
	}
	r.pointer, r.hasPointer = p, true

	last := r.last(start)
	target, end := r.snap(p)

	pts := make([]network.Point, 0, len(r.via)+3)
	pts = append(pts, start)
	pts = append(pts, r.via...)
	if corner, ok := r.corner(last, end); ok {
		pts = append(pts, corner)
	}
	pts = append(pts, end)
	return Preview{Points: pts, Target: target}
}

// Click handles a click at p. On a snap target the gesture completes and
// the new edge is returned; otherwise the pending corner is committed as a
// via-point and routing continues.
func (r *Router) Click(p network.Point) (Preview, *network.Edge, error) {
	if r.state != Routing {
		return Preview{}, nil, ErrNotRouting
	}
	start, ok := r.startPosition()
	if !ok {
		id := r.startID
		r.Cancel()
		return Preview{}, nil, fmt.Errorf("%w: %s", ErrUnknownStart, id)
	}

	last := r.last(start)
	target, end := r.snap(p)

	if target == "" {
		if corner, ok := r.corner(last, end); ok {
			r.commit(start, corner)
		} else if end != last {
			// Straight leg: the pointer itself is the next bend.
			r.commit(start, end)
		}
		return r.Move(p), nil, nil
	}

	pts := make([]network.Point, 0, len(r.via)+3)
	pts = append(pts, start)
	pts = append(pts, r.via...)
	if corner, ok := r.corner(last, end); ok {
		pts = append(pts, corner)
	}
	pts = Prune(append(pts, end))

	var via []network.Point
	if len(pts) > 2 {
		via = pts[1 : len(pts)-1]
	}
	edge, err := network.NewEdge(r.newID(), r.kind, r.startID, target, via)
	if err != nil {
		return Preview{}, nil, err
	}
	r.logger.Debug("routing completed", "edge", edge.ID, "from", edge.From, "to", edge.To, "via", len(edge.Via))
	r.reset()
	return Preview{Points: edge.Polyline(start, end), Target: target}, &edge, nil
}

// ToggleAxis flips the priority axis and returns the new one. Call Move
// again to refresh the preview.
func (r *Router) ToggleAxis() Axis {
	r.axis = r.axis.Toggle()
	return r.axis
}

// Backtrack drops the last via-point, or cancels the gesture when there is
// none. It returns the preview for the last known pointer position.
func (r *Router) Backtrack() Preview {
	if r.state != Routing {
		return Preview{}
	}
	if len(r.via) == 0 {
		r.Cancel()
		return Preview{}
	}
	r.via = r.via[:len(r.via)-1]
	if !r.hasPointer {
		start, _ := r.startPosition()
		return Preview{Points: append([]network.Point{start}, r.via...)}
	}
	return r.Move(r.pointer)
}

// Cancel discards the pending gesture. It is a no-op when idle.
func (r *Router) Cancel() {
	if r.state == Routing {
		r.logger.Debug("routing cancelled", "start", r.startID, "via", len(r.via))
	}
	r.reset()
}

func (r *Router) reset() {
	r.state = Idle
	r.kind = ""
	r.startID = ""
	r.via = nil
	r.hasPointer = false
}

func (r *Router) startPosition() (network.Point, bool) {
	c, ok := r.src.Connectable(r.startID)
	if !ok || c == nil {
		return network.Point{}, false
	}
	return c.Base().Position, true
}

func (r *Router) last(start network.Point) network.Point {
	if n := len(r.via); n > 0 {
		return r.via[n-1]
	}
	return start
}

// corner returns the bend between last and end, and false when it would
// coincide with either and add a zero-length leg.
func (r *Router) corner(last, end network.Point) (network.Point, bool) {
	c := r.axis.Corner(last, end)
	if c == last || c == end {
		return network.Point{}, false
	}
	return c, true
}

// commit appends p to the via-points and drops the middle of a colinear
// tail triple, the start included.
func (r *Router) commit(start, p network.Point) {
	pts := append([]network.Point{start}, r.via...)
	pts = reduce(append(pts, p))
	r.via = slices.Clone(pts[1:])
	r.logger.Debug("via-point committed", "x", p.X, "y", p.Y, "via", len(r.via))
}

// snap returns the nearest wireable connectable other than the start whose
// position is within the snap radius of p, and the point to route to.
func (r *Router) snap(p network.Point) (string, network.Point) {
	best, bestDist := "", math.Inf(1)
	var bestPos network.Point
	for _, c := range r.src.Connectables() {
		if c == nil || !c.IsWireable() {
			continue
		}
		b := c.Base()
		if b.ID == r.startID {
			continue
		}
		dx, dy := b.Position.X-p.X, b.Position.Y-p.Y
		if math.Abs(dx) >= r.radius || math.Abs(dy) >= r.radius {
			continue
		}
		d := math.Hypot(dx, dy)
		if d < bestDist || (d == bestDist && cmp.Less(b.ID, best)) {
			best, bestDist, bestPos = b.ID, d, b.Position
		}
	}
	if best == "" {
		return "", p
	}
	return best, bestPos
}
