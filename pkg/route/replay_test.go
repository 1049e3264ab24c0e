package route

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/rigwire/pkg/network"
)

func TestReplay(t *testing.T) {
	r, _ := newRouter(t)
	events := []Event{
		{Type: EventBegin, Start: "start", Kind: network.KindDMX},
		{Type: EventMove, X: 50, Y: 50},
		{Type: EventClick, X: 50, Y: 50},
		{Type: EventToggle},
		{Type: EventClick, X: 100, Y: 195},
		{Type: EventBegin, Start: "target", Kind: network.KindPower},
		{Type: EventMove, X: 40, Y: 40},
	}

	trace, err := Replay(r, events)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(trace.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(trace.Edges))
	}
	e := trace.Edges[0]
	if e.From != "start" || e.To != "target" || e.Kind != network.KindDMX {
		t.Errorf("edge = %+v", e)
	}
	if diff := cmp.Diff([]network.Point{network.Pt(50, 0), network.Pt(50, 200)}, e.Via); diff != "" {
		t.Errorf("via (-want +got):\n%s", diff)
	}
	if trace.State != Routing || len(trace.Cancelled) != 0 {
		t.Errorf("state = %v, cancelled = %v", trace.State, trace.Cancelled)
	}
}

func TestReplayCancellations(t *testing.T) {
	r, _ := newRouter(t)
	trace, err := Replay(r, []Event{
		{Type: EventBegin, Start: "start", Kind: network.KindDMX},
		{Type: EventBacktrack},
		{Type: EventBacktrack},
		{Type: EventBegin, Start: "start", Kind: network.KindDMX},
		{Type: EventBegin, Start: "target", Kind: network.KindDMX},
		{Type: EventCancel},
		{Type: EventCancel},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(trace.Cancelled) != 3 {
		t.Errorf("cancelled = %v, want 3 gestures", trace.Cancelled)
	}
	if trace.State != Idle {
		t.Errorf("state = %v, want idle", trace.State)
	}
}

func TestReplayErrors(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   error
	}{
		{"click while idle", []Event{{Type: EventClick}}, ErrNotRouting},
		{"bad start", []Event{{Type: EventBegin, Start: "nowhere", Kind: network.KindDMX}}, ErrUnknownStart},
		{"not wireable", []Event{{Type: EventBegin, Start: "truss", Kind: network.KindPower}}, ErrNotWireable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRouter(t)
			_, err := Replay(r, tt.events)
			if !errors.Is(err, tt.want) {
				t.Errorf("Replay() error = %v, want %v", err, tt.want)
			}
		})
	}

	r, _ := newRouter(t)
	if _, err := Replay(r, []Event{{Type: "wiggle"}}); err == nil {
		t.Error("unknown event type should fail")
	}
}
