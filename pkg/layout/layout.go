package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/rigwire/pkg/errors"
	"github.com/matzehuels/rigwire/pkg/network"
)

// File is the engine-relevant part of a layout file.
type File struct {
	Venue     Venue             `json:"venue"`
	Equipment []EquipmentRecord `json:"equipment_items"`
	Wires     []WireRecord      `json:"wires"`
}

// Venue holds the room's fixed installations.
type Venue struct {
	Outlets []OutletRecord `json:"outlets"`
}

// OutletRecord is one power tap of the venue.
type OutletRecord struct {
	InstanceID string     `json:"instance_id"`
	X          *float64   `json:"x,omitempty"` // older files store the position outside info
	Y          *float64   `json:"y,omitempty"`
	Info       OutletInfo `json:"info"`
}

// OutletInfo carries the outlet's position and capacities.
type OutletInfo struct {
	X               *float64 `json:"x,omitempty"`
	Y               *float64 `json:"y,omitempty"`
	CircuitID       *string  `json:"circuit_id,omitempty"`
	TapCapacity     *float64 `json:"tap_capacity,omitempty" validate:"omitempty,gte=0"`
	CircuitCapacity *float64 `json:"circuit_capacity,omitempty" validate:"omitempty,gte=0"`
}

// EquipmentRecord is one placed equipment instance.
type EquipmentRecord struct {
	InstanceID string     `json:"instance_id"`
	TypeID     string     `json:"type_id"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	DMX        *DMXRecord `json:"dmx_data,omitempty"`
	Channel    *int       `json:"channel,omitempty"`
}

// DMXRecord is the patch of an equipment instance.
type DMXRecord struct {
	Universe int    `json:"universe" validate:"min=1"`
	Address  int    `json:"address" validate:"min=1,max=512"`
	ModeName string `json:"mode_name"`
}

// WireRecord is one cable. Points are the via-points between the two ends.
type WireRecord struct {
	ID       string          `json:"id,omitempty"`
	Start    string          `json:"start_item_id"`
	End      string          `json:"end_item_id"`
	Points   []network.Point `json:"points"`
	Category string          `json:"wire_category,omitempty"`
}

// Document is a decoded layout file. It keeps the original top-level keys
// so that writing it back only replaces what changed.
type Document struct {
	File
	raw map[string]json.RawMessage
}

// Read decodes a layout document.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "read layout")
	}
	return Parse(data)
}

// Parse decodes a layout document from bytes.
func Parse(data []byte) (*Document, error) {
	d := &Document{}
	if err := json.Unmarshal(data, &d.raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "layout must be a JSON object")
	}
	if d.raw == nil {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "layout must be a JSON object")
	}
	if err := json.Unmarshal(data, &d.File); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "decode layout")
	}
	return d, nil
}

// Load reads a layout file from disk.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "open layout %s", path)
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "layout %s", path)
	}
	return d, nil
}

// SetEdges replaces the wires of d with edges.
func (d *Document) SetEdges(edges []network.Edge) {
	d.Wires = make([]WireRecord, 0, len(edges))
	for _, e := range edges {
		d.Wires = append(d.Wires, recordOf(e))
	}
}

// AddEdge appends one wire to d.
func (d *Document) AddEdge(e network.Edge) {
	d.Wires = append(d.Wires, recordOf(e))
}

func recordOf(e network.Edge) WireRecord {
	return WireRecord{
		ID:       e.ID,
		Start:    e.From,
		End:      e.To,
		Points:   append([]network.Point{}, e.Via...),
		Category: e.Kind.String(),
	}
}

// Write encodes d with four-space indentation. Only the wires key is
// re-encoded; every other key is written back as it was read.
func (d *Document) Write(w io.Writer) error {
	out := make(map[string]json.RawMessage, len(d.raw)+1)
	for k, v := range d.raw {
		out[k] = v
	}
	wires, err := json.Marshal(d.Wires)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode wires")
	}
	out["wires"] = wires

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// Save writes d to path.
func (d *Document) Save(path string) error {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write layout %s", path)
	}
	return nil
}

func wireID(w WireRecord, i int) string {
	if w.ID != "" {
		return w.ID
	}
	return fmt.Sprintf("%s%d", network.PrefixWire, i+1)
}
