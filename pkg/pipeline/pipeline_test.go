package pipeline

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/rigwire/pkg/cache"
	"github.com/matzehuels/rigwire/pkg/errors"
	"github.com/matzehuels/rigwire/pkg/layout"
	"github.com/matzehuels/rigwire/pkg/network"
	"github.com/matzehuels/rigwire/pkg/observability"
	"github.com/matzehuels/rigwire/pkg/patch"
)

func stageOptions() Options {
	return Options{
		LayoutPath:  filepath.Join("testdata", "stage.json"),
		CatalogPath: filepath.Join("testdata", "library.json"),
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateStatus(t *testing.T) {
	for _, s := range []string{"", "power", "patch"} {
		if err := ValidateStatus(s); err != nil {
			t.Errorf("ValidateStatus(%q) = %v", s, err)
		}
	}
	if err := ValidateStatus("dmx"); err == nil {
		t.Error("ValidateStatus(dmx) should fail")
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	opts := Options{CatalogPath: "lib"}
	if err := opts.ValidateForLoad(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing layout path: %v", err)
	}
	opts = Options{LayoutPath: "stage.json"}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("missing catalog path should fail")
	}

	opts = stageOptions()
	if err := opts.ValidateForLoad(); err != nil {
		t.Fatal(err)
	}
	if opts.Defaults != layout.EditorDefaults() {
		t.Errorf("Defaults = %+v, want editor defaults", opts.Defaults)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"svg", Options{Format: "svg"}, false},
		{"dot with status", Options{Format: "dot", Status: "patch", Kinds: []string{"dmx"}}, false},
		{"no format", Options{}, true},
		{"bad kind", Options{Format: "dot", Kinds: []string{"audio"}}, true},
		{"bad status", Options{Format: "dot", Status: "heat"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForRender()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForRender() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiagramKeyOptsNormalizesKinds(t *testing.T) {
	a := Options{Format: "svg", Kinds: []string{"power", "dmx", "power"}}
	b := Options{Format: "svg", Kinds: []string{"dmx", "power"}}
	if diff := cmp.Diff(a.DiagramKeyOpts(), b.DiagramKeyOpts()); diff != "" {
		t.Errorf("key opts differ (-a +b):\n%s", diff)
	}
	if !slices.Equal(a.Kinds, []string{"power", "dmx", "power"}) {
		t.Error("DiagramKeyOpts modified Kinds")
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := stageOptions()
	opts.Format = FormatDOT

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Stats.Connectables != 6 || res.Stats.Edges != 3 {
		t.Errorf("stats = %+v", res.Stats)
	}

	circuit := res.Power.Circuits["A-1"]
	if circuit.TotalWatts != 360 {
		t.Errorf("A-1 total = %v, want 360", circuit.TotalWatts)
	}
	if diff := cmp.Diff([]string{"inst_desk0001"}, res.Power.Unpowered); diff != "" {
		t.Errorf("unpowered (-want +got):\n%s", diff)
	}

	want := patch.Summary{Overlaps: 1, Unreachable: 2, Severity: patch.SeverityOverlap}
	if diff := cmp.Diff(want, res.Patch.Summary); diff != "" {
		t.Errorf("patch summary (-want +got):\n%s", diff)
	}

	if !strings.HasPrefix(string(res.Diagram), "graph G {") {
		t.Errorf("diagram = %.60s", res.Diagram)
	}
	if res.CacheInfo.PowerHit || res.CacheInfo.PatchHit || res.CacheInfo.DiagramHit {
		t.Error("null cache should never hit")
	}
}

func TestExecuteWithoutFormatSkipsRender(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), stageOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.Diagram != nil {
		t.Error("diagram should be nil without a format")
	}
}

func TestExecuteCaches(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	opts := stageOptions()
	opts.Format = FormatDOT
	opts.Status = StatusPower

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if !second.CacheInfo.PowerHit || !second.CacheInfo.PatchHit || !second.CacheInfo.DiagramHit {
		t.Errorf("second run cache info = %+v, want all hits", second.CacheInfo)
	}
	if diff := cmp.Diff(first.Power, second.Power); diff != "" {
		t.Errorf("cached power report differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Patch.Rows(), second.Patch.Rows()); diff != "" {
		t.Errorf("cached patch rows differ (-first +second):\n%s", diff)
	}
	if string(first.Diagram) != string(second.Diagram) {
		t.Error("cached diagram differs")
	}

	opts.Refresh = true
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.PowerHit || third.CacheInfo.DiagramHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestLoadErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	opts := stageOptions()
	opts.LayoutPath = filepath.Join("testdata", "missing.json")
	if _, err := r.Load(context.Background(), opts); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing layout: %v (code %s)", err, errors.GetCode(err))
	}

	opts = stageOptions()
	opts.CatalogPath = filepath.Join("testdata", "missing.json")
	if _, err := r.Load(context.Background(), opts); err == nil {
		t.Error("missing catalog should fail")
	}
}

func TestSnapshotHash(t *testing.T) {
	a := network.Snapshot{Connectables: []network.Connectable{network.NewOutlet("o1", network.Pt(0, 0), "A", 1500, 2000)}}
	b := network.Snapshot{Connectables: []network.Connectable{network.NewOutlet("o1", network.Pt(0, 0), "A", 1500, 2500)}}

	ha, err := SnapshotHash(a)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := SnapshotHash(a)
	hb, _ := SnapshotHash(b)
	if ha != again {
		t.Error("SnapshotHash should be deterministic")
	}
	if ha == hb {
		t.Error("capacity change should change the hash")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	loads   []string
	power   int
	patches int
	renders []string
}

func (h *recordingHooks) OnLoadComplete(_ context.Context, source string, _, _ int, _ time.Duration, err error) {
	if err == nil {
		h.loads = append(h.loads, source)
	}
}
func (h *recordingHooks) OnPowerReport(context.Context, int, int, int, time.Duration) { h.power++ }
func (h *recordingHooks) OnPatchResult(context.Context, int, int, int, time.Duration) { h.patches++ }
func (h *recordingHooks) OnRenderComplete(_ context.Context, format string, _ time.Duration, _ error) {
	h.renders = append(h.renders, format)
}

func TestExecuteEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	opts := stageOptions()
	opts.Format = FormatDOT
	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	if len(hooks.loads) != 1 || hooks.power != 1 || hooks.patches != 1 {
		t.Errorf("hooks = %+v", hooks)
	}
	if diff := cmp.Diff([]string{"dot"}, hooks.renders); diff != "" {
		t.Errorf("renders (-want +got):\n%s", diff)
	}
}
