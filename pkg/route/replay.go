package route

import (
	"fmt"

	"github.com/matzehuels/rigwire/pkg/network"
)

// EventType names a recorded pointer or key event.
type EventType string

const (
	EventBegin     EventType = "begin"
	EventMove      EventType = "move"
	EventClick     EventType = "click"
	EventToggle    EventType = "toggle"
	EventBacktrack EventType = "backtrack"
	EventCancel    EventType = "cancel"
)

// Event is one step of a recorded gesture. Begin uses Start and Kind, Move
// and Click use X and Y, the others take no arguments.
type Event struct {
	Type  EventType    `json:"type"`
	Start string       `json:"start,omitempty"`
	Kind  network.Kind `json:"kind,omitempty"`
	X     float64      `json:"x,omitempty"`
	Y     float64      `json:"y,omitempty"`
}

// Point returns the event position.
func (e Event) Point() network.Point { return network.Pt(e.X, e.Y) }

// Trace is the outcome of [Replay].
type Trace struct {
	// Edges are the completed edges in completion order.
	Edges []network.Edge `json:"edges"`
	// Preview is the preview after the last event.
	Preview Preview `json:"preview"`
	// State is the router state after the last event.
	State State `json:"state"`
	// Cancelled holds the kind of every gesture abandoned by cancel,
	// backtrack or a new begin, in order.
	Cancelled []network.Kind `json:"cancelled"`
}

// Replay feeds events to r in order. It stops at the first event the
// router rejects and reports its index.
func Replay(r *Router, events []Event) (Trace, error) {
	var t Trace
	for i, ev := range events {
		var err error
		switch ev.Type {
		case EventBegin:
			if r.State() == Routing {
				t.Cancelled = append(t.Cancelled, r.Kind())
			}
			t.Preview, err = r.Begin(ev.Start, ev.Kind)
		case EventMove:
			t.Preview = r.Move(ev.Point())
		case EventClick:
			var edge *network.Edge
			t.Preview, edge, err = r.Click(ev.Point())
			if edge != nil {
				t.Edges = append(t.Edges, *edge)
			}
		case EventToggle:
			r.ToggleAxis()
			if r.State() == Routing && r.hasPointer {
				t.Preview = r.Move(r.pointer)
			}
		case EventBacktrack:
			routing, kind := r.State() == Routing, r.Kind()
			t.Preview = r.Backtrack()
			if routing && r.State() == Idle {
				t.Cancelled = append(t.Cancelled, kind)
			}
		case EventCancel:
			if r.State() == Routing {
				t.Cancelled = append(t.Cancelled, r.Kind())
			}
			r.Cancel()
			t.Preview = Preview{}
		default:
			err = fmt.Errorf("unknown event type %q", ev.Type)
		}
		if err != nil {
			t.State = r.State()
			return t, fmt.Errorf("event %d (%s): %w", i, ev.Type, err)
		}
	}
	t.State = r.State()
	return t, nil
}
