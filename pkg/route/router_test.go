package route

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/rigwire/pkg/network"
)

func fixture(id string, x, y float64) *network.Equipment {
	return &network.Equipment{Wireable: network.Wireable{ID: id, Position: network.Pt(x, y), CanPower: true, CanDMX: true}}
}

func newRouter(t *testing.T, opts ...Option) (*Router, *network.Snapshot) {
	t.Helper()
	s := &network.Snapshot{Connectables: []network.Connectable{
		fixture("start", 0, 0),
		fixture("target", 100, 200),
		&network.Equipment{Wireable: network.Wireable{ID: "truss", Position: network.Pt(300, 0)}},
	}}
	n := 0
	opts = append([]Option{WithIDFunc(func() string { n++; return fmt.Sprintf("wire_%d", n) })}, opts...)
	return New(SnapshotSource(s), opts...), s
}

func TestRouterSnapIntoTarget(t *testing.T) {
	r, _ := newRouter(t)
	if _, err := r.Begin("start", network.KindDMX); err != nil {
		t.Fatal(err)
	}

	pv := r.Move(network.Pt(100, 50))
	want := []network.Point{network.Pt(0, 0), network.Pt(100, 0), network.Pt(100, 50)}
	if diff := cmp.Diff(want, pv.Points); diff != "" {
		t.Errorf("preview (-want +got):\n%s", diff)
	}
	if pv.Snapped() {
		t.Error("preview should not be snapped")
	}

	if _, edge, err := r.Click(network.Pt(100, 50)); err != nil || edge != nil {
		t.Fatalf("first click = %v, %v", edge, err)
	}
	if diff := cmp.Diff([]network.Point{network.Pt(100, 0)}, r.Via()); diff != "" {
		t.Errorf("via after first click (-want +got):\n%s", diff)
	}

	pv, edge, err := r.Click(network.Pt(100, 200))
	if err != nil {
		t.Fatal(err)
	}
	if edge == nil {
		t.Fatal("second click should complete the edge")
	}
	wantEdge := &network.Edge{
		ID:   "wire_1",
		Kind: network.KindDMX,
		From: "start",
		To:   "target",
		Via:  []network.Point{network.Pt(100, 0)},
	}
	if diff := cmp.Diff(wantEdge, edge); diff != "" {
		t.Errorf("edge (-want +got):\n%s", diff)
	}
	if pv.Target != "target" {
		t.Errorf("preview target = %q", pv.Target)
	}
	if r.State() != Idle {
		t.Errorf("state = %v, want idle", r.State())
	}
}

func TestRouterVerticalAxis(t *testing.T) {
	r, _ := newRouter(t, WithAxis(Vertical))
	_, _ = r.Begin("start", network.KindPower)

	r.Click(network.Pt(100, 50))
	if diff := cmp.Diff([]network.Point{network.Pt(0, 50)}, r.Via()); diff != "" {
		t.Errorf("via (-want +got):\n%s", diff)
	}

	_, edge, err := r.Click(network.Pt(105, 195))
	if err != nil || edge == nil {
		t.Fatalf("Click() = %v, %v", edge, err)
	}
	// (0,50) → (0,200) → (100,200) collapses: (0,0),(0,50),(0,200) share x.
	if diff := cmp.Diff([]network.Point{network.Pt(0, 200)}, edge.Via); diff != "" {
		t.Errorf("via (-want +got):\n%s", diff)
	}
}

func TestRouterToggleAxisPersists(t *testing.T) {
	r, _ := newRouter(t)
	if got := r.ToggleAxis(); got != Vertical {
		t.Fatalf("ToggleAxis() = %v", got)
	}
	_, _ = r.Begin("start", network.KindDMX)
	r.Cancel()
	_, _ = r.Begin("start", network.KindDMX)
	pv := r.Move(network.Pt(40, 60))
	if diff := cmp.Diff(network.Pt(0, 60), pv.Points[1]); diff != "" {
		t.Errorf("corner (-want +got):\n%s", diff)
	}
}

func TestRouterColinearPruningOnCommit(t *testing.T) {
	r, _ := newRouter(t)
	_, _ = r.Begin("start", network.KindDMX)

	r.Click(network.Pt(50, 10))
	r.Click(network.Pt(120, 10))
	// (0,0) (50,0) (120,0) share y: the middle point goes.
	if diff := cmp.Diff([]network.Point{network.Pt(120, 0)}, r.Via()); diff != "" {
		t.Errorf("via (-want +got):\n%s", diff)
	}
}

func TestRouterStraightLegCommitsPointer(t *testing.T) {
	r, _ := newRouter(t)
	_, _ = r.Begin("start", network.KindDMX)

	r.Click(network.Pt(0, 80))
	if diff := cmp.Diff([]network.Point{network.Pt(0, 80)}, r.Via()); diff != "" {
		t.Errorf("via (-want +got):\n%s", diff)
	}
	r.Click(network.Pt(0, 80))
	if len(r.Via()) != 1 {
		t.Errorf("clicking the last point again must not commit, via = %v", r.Via())
	}
}

func TestRouterSnapRadius(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		p      network.Point
		want   string
	}{
		{"inside", 0, network.Pt(114, 186), "target"},
		{"edge of square excluded", 0, network.Pt(115, 200), ""},
		{"corner of square", 0, network.Pt(114.9, 214.9), "target"},
		{"start excluded", 0, network.Pt(1, 1), ""},
		{"not wireable", 0, network.Pt(300, 0), ""},
		{"custom radius", 40, network.Pt(130, 200), "target"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRouter(t, WithSnapRadius(tt.radius))
			_, _ = r.Begin("start", network.KindDMX)
			pv := r.Move(tt.p)
			if pv.Target != tt.want {
				t.Errorf("Target = %q, want %q", pv.Target, tt.want)
			}
			if tt.want != "" && pv.Points[len(pv.Points)-1] != network.Pt(100, 200) {
				t.Errorf("snapped preview must end on the target, got %v", pv.Points)
			}
		})
	}
}

func TestRouterSnapNearestThenID(t *testing.T) {
	s := &network.Snapshot{Connectables: []network.Connectable{
		fixture("start", 0, 0),
		fixture("b", 100, 10),
		fixture("a", 100, -10),
		fixture("c", 105, 0),
	}}
	r := New(SnapshotSource(s))
	_, _ = r.Begin("start", network.KindPower)

	if got := r.Move(network.Pt(100, 0)).Target; got != "c" {
		t.Errorf("nearest = %q, want c", got)
	}
	s.Connectables = s.Connectables[:3]
	if got := r.Move(network.Pt(100, 0)).Target; got != "a" {
		t.Errorf("tie = %q, want a", got)
	}
}

func TestRouterReadsLivePositions(t *testing.T) {
	r, s := newRouter(t)
	_, _ = r.Begin("start", network.KindDMX)

	start := s.Connectables[0].(*network.Equipment)
	start.Position = network.Pt(10, 10)
	pv := r.Move(network.Pt(50, 50))
	if pv.Points[0] != network.Pt(10, 10) {
		t.Errorf("preview start = %v, want moved position", pv.Points[0])
	}

	s.Connectables = s.Connectables[1:]
	if pv := r.Move(network.Pt(50, 50)); len(pv.Points) != 0 || r.State() != Idle {
		t.Errorf("removing the start should cancel, got %v in %v", pv, r.State())
	}
}

func TestRouterBegin(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		kind    network.Kind
		wantErr error
	}{
		{"ok", "start", network.KindPower, nil},
		{"not wireable", "truss", network.KindPower, ErrNotWireable},
		{"unknown", "ghost", network.KindPower, ErrUnknownStart},
		{"bad kind", "start", network.Kind("audio"), network.ErrInvalidKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRouter(t)
			_, err := r.Begin(tt.id, tt.kind)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Begin() error = %v, want %v", err, tt.wantErr)
			}
			wantState := Idle
			if tt.wantErr == nil {
				wantState = Routing
			}
			if r.State() != wantState {
				t.Errorf("State() = %v, want %v", r.State(), wantState)
			}
		})
	}
}

func TestRouterBeginCancelsPending(t *testing.T) {
	r, _ := newRouter(t)
	_, _ = r.Begin("start", network.KindDMX)
	r.Click(network.Pt(50, 50))
	_, _ = r.Begin("target", network.KindPower)
	if len(r.Via()) != 0 || r.Start() != "target" || r.Kind() != network.KindPower {
		t.Errorf("pending gesture not discarded: via=%v start=%s", r.Via(), r.Start())
	}
}

func TestRouterClickIdle(t *testing.T) {
	r, _ := newRouter(t)
	if _, _, err := r.Click(network.Pt(0, 0)); !errors.Is(err, ErrNotRouting) {
		t.Errorf("Click() error = %v, want ErrNotRouting", err)
	}
	if pv := r.Move(network.Pt(1, 1)); len(pv.Points) != 0 {
		t.Errorf("Move() while idle = %v", pv)
	}
}

func TestRouterBacktrackAndCancel(t *testing.T) {
	r, _ := newRouter(t)
	_, _ = r.Begin("start", network.KindDMX)
	r.Click(network.Pt(50, 50))
	r.ToggleAxis()
	r.Click(network.Pt(80, 120))
	if n := len(r.Via()); n != 2 {
		t.Fatalf("via = %v", r.Via())
	}

	pv := r.Backtrack()
	if diff := cmp.Diff([]network.Point{network.Pt(50, 0)}, r.Via()); diff != "" {
		t.Errorf("via after backtrack (-want +got):\n%s", diff)
	}
	if last := pv.Points[len(pv.Points)-1]; last != network.Pt(80, 120) {
		t.Errorf("preview should follow the last pointer, ends at %v", last)
	}

	r.Backtrack()
	if r.State() != Routing {
		t.Fatal("backtrack with one via-point must keep routing")
	}
	r.Backtrack()
	if r.State() != Idle {
		t.Error("backtrack without via-points must cancel")
	}

	_, _ = r.Begin("start", network.KindDMX)
	r.Click(network.Pt(50, 50))
	r.Cancel()
	if r.State() != Idle || len(r.Via()) != 0 {
		t.Errorf("Cancel() left state %v via %v", r.State(), r.Via())
	}
}

func TestParseAxis(t *testing.T) {
	for in, want := range map[string]Axis{"horizontal": Horizontal, "Vertical": Vertical, " v ": Vertical} {
		got, err := ParseAxis(in)
		if err != nil || got != want {
			t.Errorf("ParseAxis(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseAxis("diagonal"); err == nil {
		t.Error("ParseAxis(diagonal) should fail")
	}
}

func axisAligned(pts []network.Point) bool {
	for i := 1; i < len(pts); i++ {
		if !pts[i-1].AxisAligned(pts[i]) {
			return false
		}
	}
	return true
}

// grid maps v to a point on a coarse 8x8 grid so that generated paths are
// full of shared coordinates.
func grid(v int) network.Point {
	return network.Pt(float64(v%8)*40, float64(v/8)*40)
}

func TestRouterProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("completed edges are axis-aligned", prop.ForAll(
		func(clicks []int, toggles []bool) bool {
			s := &network.Snapshot{Connectables: []network.Connectable{
				fixture("start", 0, 0),
				fixture("target", 500, 500),
			}}
			r := New(SnapshotSource(s))
			if _, err := r.Begin("start", network.KindDMX); err != nil {
				return false
			}

			var edge *network.Edge
			for i, v := range clicks {
				if i < len(toggles) && toggles[i] {
					r.ToggleAxis()
				}
				r.Move(grid(v))
				_, e, err := r.Click(grid(v))
				if err != nil {
					return false
				}
				if e != nil {
					edge = e
					break
				}
			}
			if edge == nil {
				var err error
				if _, edge, err = r.Click(network.Pt(500, 500)); err != nil || edge == nil {
					return false
				}
			}
			return axisAligned(edge.Polyline(network.Pt(0, 0), network.Pt(500, 500)))
		},
		gen.SliceOf(gen.IntRange(0, 63)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("pruning is idempotent", prop.ForAll(
		func(vs []int) bool {
			var pts []network.Point
			for _, v := range vs {
				pts = append(pts, grid(v))
			}
			once := Prune(pts)
			return cmp.Equal(once, Prune(once))
		},
		gen.SliceOf(gen.IntRange(0, 63)),
	))

	properties.TestingRun(t)
}
