// Package catalog loads the equipment-type library of the layout editor.
//
// A catalog file is a tree of folders and equipment entries, in JSON or
// YAML:
//
//	- id: folder_1
//	  type: folder
//	  name: Fixtures
//	  children:
//	    - id: par64
//	      type: equipment
//	      name: PAR 64
//	      has_power: true
//	      power_consumption: 1000
//	      has_dmx: true
//	      dmx_modes:
//	        - {name: 1ch, channels: 1}
//
// Folders only group entries; ids are unique across the whole tree. Entries
// written before power and DMX were separate capabilities carry a single
// can_be_wired flag, which stands in for whichever of has_power and has_dmx
// is absent.
package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/rigwire/pkg/errors"
)

// Entry kinds.
const (
	KindFolder    = "folder"
	KindEquipment = "equipment"
)

// Mode is a DMX personality of an equipment type.
type Mode struct {
	Name     string `json:"name" yaml:"name" validate:"required"`
	Channels int    `json:"channels" yaml:"channels" validate:"min=1,max=512"`
}

// Type is one equipment entry of the catalog.
type Type struct {
	ID               string  `json:"id" yaml:"id" validate:"required"`
	Name             string  `json:"name" yaml:"name"`
	Manufacturer     string  `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	HasPower         *bool   `json:"has_power,omitempty" yaml:"has_power,omitempty"`
	HasDMX           *bool   `json:"has_dmx,omitempty" yaml:"has_dmx,omitempty"`
	CanBeWired       bool    `json:"can_be_wired,omitempty" yaml:"can_be_wired,omitempty"`
	IsController     bool    `json:"is_controller,omitempty" yaml:"is_controller,omitempty"`
	PowerConsumption float64 `json:"power_consumption,omitempty" yaml:"power_consumption,omitempty" validate:"gte=0"`
	DMXModes         []Mode  `json:"dmx_modes,omitempty" yaml:"dmx_modes,omitempty" validate:"dive"`
}

// CanPower reports whether instances of t have a power connector.
func (t Type) CanPower() bool {
	if t.HasPower != nil {
		return *t.HasPower
	}
	return t.CanBeWired
}

// CanDMX reports whether instances of t have a DMX connector.
func (t Type) CanDMX() bool {
	if t.HasDMX != nil {
		return *t.HasDMX
	}
	return t.CanBeWired
}

// DefaultMode returns the name of the first mode, or "".
func (t Type) DefaultMode() string {
	if len(t.DMXModes) == 0 {
		return ""
	}
	return t.DMXModes[0].Name
}

// Channels returns the channel count of the named mode.
func (t Type) Channels(mode string) (int, bool) {
	for _, m := range t.DMXModes {
		if m.Name == mode {
			return m.Channels, true
		}
	}
	return 0, false
}

// node is the on-disk tree form: a folder or an equipment entry.
type node struct {
	Type     `yaml:",inline"`
	Kind     string `json:"type" yaml:"type"`
	Children []node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Catalog is a read-only index of equipment types by id.
type Catalog struct {
	types map[string]Type
	order []string
}

// New builds a catalog from flat types. Later duplicates are rejected.
func New(types ...Type) (*Catalog, error) {
	c := &Catalog{types: make(map[string]Type, len(types))}
	for _, t := range types {
		if err := c.add(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(t Type) error {
	if err := errors.ValidateStruct(errors.ErrCodeInvalidCatalog, t); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "equipment %q", t.ID)
	}
	if _, dup := c.types[t.ID]; dup {
		return errors.New(errors.ErrCodeInvalidCatalog, "duplicate equipment id %q", t.ID)
	}
	c.types[t.ID] = t
	c.order = append(c.order, t.ID)
	return nil
}

// Format is a catalog file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension; anything but .yaml and
// .yml is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalog %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "read catalog %s", path)
	}
	c, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "catalog %s", path)
	}
	return c, nil
}

// Parse decodes a catalog tree.
func Parse(data []byte, format Format) (*Catalog, error) {
	var roots []node
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &roots); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode yaml")
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&roots); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode json")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported catalog format %q", format)
	}

	c := &Catalog{types: make(map[string]Type)}
	if err := c.walk(roots); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) walk(nodes []node) error {
	for _, n := range nodes {
		switch n.Kind {
		case KindFolder:
			if err := c.walk(n.Children); err != nil {
				return err
			}
		case KindEquipment:
			if err := c.add(n.Type); err != nil {
				return err
			}
		default:
			return errors.New(errors.ErrCodeInvalidCatalog, "entry %q: unknown type %q", n.ID, n.Kind)
		}
	}
	return nil
}

// Type returns the equipment type with the given id.
func (c *Catalog) Type(id string) (Type, bool) {
	t, ok := c.types[id]
	return t, ok
}

// Types returns every equipment type in tree order.
func (c *Catalog) Types() []Type {
	out := make([]Type, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.types[id])
	}
	return out
}

// Len returns the number of equipment types.
func (c *Catalog) Len() int { return len(c.order) }

// Channels resolves the channel count of a type's mode.
func (c *Catalog) Channels(typeID, mode string) (int, bool) {
	t, ok := c.types[typeID]
	if !ok {
		return 0, false
	}
	return t.Channels(mode)
}
