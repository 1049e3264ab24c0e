package layout

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/rigwire/pkg/catalog"
	"github.com/matzehuels/rigwire/pkg/errors"
	"github.com/matzehuels/rigwire/pkg/network"
)

func loadStage(t *testing.T) (*Document, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.Load(filepath.Join("testdata", "library.json"))
	if err != nil {
		t.Fatal(err)
	}
	doc, err := Load(filepath.Join("testdata", "stage.json"))
	if err != nil {
		t.Fatal(err)
	}
	return doc, cat
}

func TestSnapshot(t *testing.T) {
	doc, cat := loadStage(t)
	var logs bytes.Buffer

	s, err := doc.Snapshot(cat, WithLogger(log.New(&logs)))
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if got := len(s.Connectables); got != 6 {
		t.Errorf("connectables = %d, want 6 (unknown type skipped)", got)
	}
	if !strings.Contains(logs.String(), "deleted_type") {
		t.Errorf("expected a warning for the unknown type, got %q", logs.String())
	}

	var ids []string
	for _, e := range s.Edges {
		ids = append(ids, e.ID+":"+e.Kind.String())
	}
	if diff := cmp.Diff([]string{"wire_1:power", "wire_2:power", "wire_3:dmx"}, ids); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
}

func TestSnapshotOutletDefaults(t *testing.T) {
	doc, cat := loadStage(t)
	s, err := doc.Snapshot(cat, WithDefaults(Defaults{CircuitID: "House", TapWatts: 1000, CircuitWatts: 3000}))
	if err != nil {
		t.Fatal(err)
	}

	c, _ := s.Lookup("outlet_b1")
	o := c.(*network.Outlet)
	want := network.NewOutlet("outlet_b1", network.Pt(400, 0), "House", 1000, 3000)
	if diff := cmp.Diff(want, o); diff != "" {
		t.Errorf("outlet_b1 (-want +got):\n%s", diff)
	}

	c, _ = s.Lookup("outlet_a1")
	if o := c.(*network.Outlet); o.CircuitID != "A-1" || o.TapCapacityWatts != 1500 {
		t.Errorf("outlet_a1 = %+v", o)
	}
}

func TestSnapshotEquipment(t *testing.T) {
	doc, cat := loadStage(t)
	s, err := doc.Snapshot(cat)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id   string
		want network.Equipment
	}{
		{"inst_wash0001", network.Equipment{
			Wireable:   network.Wireable{ID: "inst_wash0001", Position: network.Pt(100, 100), CanPower: true, CanDMX: true},
			TypeID:     "wash_led",
			Name:       "LED Wash",
			PowerWatts: 180,
			Patch:      network.Patch{Universe: 1, Address: 1, Mode: "4ch"},
			Channels:   4,
		}},
		{"inst_desk0001", network.Equipment{
			Wireable:     network.Wireable{ID: "inst_desk0001", Position: network.Pt(0, 300), CanPower: true, CanDMX: true},
			TypeID:       "desk",
			Name:         "Lighting Desk",
			IsController: true,
			PowerWatts:   60,
			Patch:        network.Patch{Universe: 1, Address: 1},
		}},
		{"inst_par00001", network.Equipment{
			Wireable: network.Wireable{ID: "inst_par00001", Position: network.Pt(300, 100), CanPower: true, CanDMX: true},
			TypeID:   "equip_1",
			Name:     "PAR Light",
			Patch:    network.Patch{Universe: 1, Address: 20},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			c, ok := s.Lookup(tt.id)
			if !ok {
				t.Fatalf("%s missing", tt.id)
			}
			if diff := cmp.Diff(&tt.want, c); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestSnapshotDefaultMode(t *testing.T) {
	_, cat := loadStage(t)
	doc, err := Parse([]byte(`{"equipment_items":[{"instance_id":"inst_1","type_id":"wash_led"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	s, err := doc.Snapshot(cat)
	if err != nil {
		t.Fatal(err)
	}
	eq := s.Equipment()[0]
	if eq.Patch != (network.Patch{Universe: 1, Address: 1, Mode: "4ch"}) || eq.Channels != 4 {
		t.Errorf("equipment = %+v", eq)
	}
}

func TestSnapshotErrors(t *testing.T) {
	_, cat := loadStage(t)
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"negative tap", `{"venue":{"outlets":[{"instance_id":"o","info":{"tap_capacity":-1}}]}}`, errors.ErrCodeInvalidCapacity},
		{"address too high", `{"equipment_items":[{"instance_id":"i","type_id":"wash_led","dmx_data":{"universe":1,"address":600}}]}`, errors.ErrCodeInvalidPatch},
		{"negative universe", `{"equipment_items":[{"instance_id":"i","type_id":"wash_led","dmx_data":{"universe":-2,"address":1}}]}`, errors.ErrCodeInvalidPatch},
		{"duplicate id", `{"venue":{"outlets":[{"instance_id":"x"}]},"equipment_items":[{"instance_id":"x","type_id":"desk"}]}`, errors.ErrCodeInvalidLayout},
		{"bad id", `{"venue":{"outlets":[{"instance_id":"has space"}]}}`, errors.ErrCodeInvalidLayout},
		{"bad category", `{"venue":{"outlets":[{"instance_id":"o"}]},"equipment_items":[{"instance_id":"i","type_id":"desk"}],"wires":[{"start_item_id":"o","end_item_id":"i","wire_category":"audio"}]}`, errors.ErrCodeInvalidWire},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.data))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := doc.Snapshot(cat); !errors.Is(err, tt.code) {
				t.Errorf("Snapshot() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSnapshotSkipsSelfLoop(t *testing.T) {
	_, cat := loadStage(t)
	doc, err := Parse([]byte(`{"equipment_items":[{"instance_id":"i","type_id":"desk"}],"wires":[{"start_item_id":"i","end_item_id":"i"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	s, err := doc.Snapshot(cat)
	if err != nil || len(s.Edges) != 0 {
		t.Errorf("Snapshot() = %v, %v; want the self-loop dropped", s.Edges, err)
	}
}

func TestParseErrors(t *testing.T) {
	for _, data := range []string{`[]`, `null`, `{"wires": 3}`, `{`} {
		if _, err := Parse([]byte(data)); !errors.Is(err, errors.ErrCodeInvalidLayout) {
			t.Errorf("Parse(%s) error = %v, want INVALID_LAYOUT", data, err)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestWritePreservesUnknownKeys(t *testing.T) {
	doc, cat := loadStage(t)
	s, err := doc.Snapshot(cat)
	if err != nil {
		t.Fatal(err)
	}
	edge, err := network.NewEdge("wire_new", network.KindDMX, "inst_wash0001", "inst_wash0002", []network.Point{network.Pt(150, 100)})
	if err != nil {
		t.Fatal(err)
	}
	doc.SetEdges(s.Edges)
	doc.AddEdge(edge)

	path := filepath.Join(t.TempDir(), "out.json")
	if err := doc.Save(path); err != nil {
		t.Fatal(err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	var buf bytes.Buffer
	if err := back.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["background_color"]) != `"#969696"` {
		t.Errorf("background_color = %s", raw["background_color"])
	}
	if len(back.Wires) != 4 {
		t.Fatalf("wires = %d, want 4", len(back.Wires))
	}
	last := back.Wires[3]
	want := WireRecord{ID: "wire_new", Start: "inst_wash0001", End: "inst_wash0002", Points: []network.Point{network.Pt(150, 100)}, Category: "dmx"}
	if diff := cmp.Diff(want, last); diff != "" {
		t.Errorf("appended wire (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(raw["equipment_items"]), `"z_value": 3`) {
		t.Errorf("equipment_items lost editor keys: %s", raw["equipment_items"])
	}
}
