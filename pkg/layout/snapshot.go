package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rigwire/pkg/catalog"
	"github.com/matzehuels/rigwire/pkg/errors"
	"github.com/matzehuels/rigwire/pkg/network"
)

// Defaults are the outlet values used when a layout omits them.
type Defaults struct {
	CircuitID    string
	TapWatts     float64
	CircuitWatts float64
}

// EditorDefaults returns the defaults of the layout editor.
func EditorDefaults() Defaults {
	return Defaults{CircuitID: "Unknown", TapWatts: 1500, CircuitWatts: 2000}
}

// Option configures [Document.Snapshot].
type Option func(*options)

type options struct {
	defaults Defaults
	logger   *log.Logger
}

// WithDefaults overrides the outlet defaults.
func WithDefaults(d Defaults) Option {
	return func(o *options) { o.defaults = d }
}

// WithLogger sets the logger for skipped records.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Snapshot converts d into an engine snapshot, resolving equipment types
// and mode channel counts through cat.
func (d *Document) Snapshot(cat *catalog.Catalog, opts ...Option) (network.Snapshot, error) {
	o := options{defaults: EditorDefaults(), logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}

	var s network.Snapshot
	seen := make(map[string]bool)
	claim := func(id string) error {
		if err := errors.ValidateID(id); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidLayout, err, "instance id")
		}
		if seen[id] {
			return errors.New(errors.ErrCodeInvalidLayout, "duplicate instance id %q", id)
		}
		seen[id] = true
		return nil
	}

	for i, rec := range d.Venue.Outlets {
		out, err := outlet(rec, o.defaults)
		if err != nil {
			return network.Snapshot{}, errors.Wrap(errors.GetCode(err), err, "outlet %d", i)
		}
		if err := claim(out.ID); err != nil {
			return network.Snapshot{}, err
		}
		s.Connectables = append(s.Connectables, out)
	}

	for i, rec := range d.Equipment {
		typ, ok := cat.Type(rec.TypeID)
		if !ok {
			o.logger.Warn("skipping equipment of unknown type", "instance", rec.InstanceID, "type", rec.TypeID)
			continue
		}
		eq, err := equipment(rec, typ, cat)
		if err != nil {
			return network.Snapshot{}, errors.Wrap(errors.GetCode(err), err, "equipment %d (%s)", i, rec.InstanceID)
		}
		if err := claim(eq.ID); err != nil {
			return network.Snapshot{}, err
		}
		s.Connectables = append(s.Connectables, eq)
	}

	idx := s.Index()
	for i, w := range d.Wires {
		category := w.Category
		if category == "" {
			category = network.KindDMX.String()
		}
		kind, err := network.ParseKind(category)
		if err != nil {
			return network.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidWire, err, "wire %d", i)
		}
		if _, ok := idx[w.Start]; !ok {
			o.logger.Warn("skipping wire with unknown start", "wire", i, "start", w.Start)
			continue
		}
		if _, ok := idx[w.End]; !ok {
			o.logger.Warn("skipping wire with unknown end", "wire", i, "end", w.End)
			continue
		}
		e, err := network.NewEdge(wireID(w, i), kind, w.Start, w.End, w.Points)
		if err != nil {
			o.logger.Warn("skipping invalid wire", "wire", i, "err", err)
			continue
		}
		s.Edges = append(s.Edges, e)
	}
	return s, nil
}

func outlet(rec OutletRecord, def Defaults) (*network.Outlet, error) {
	if err := errors.ValidateStruct(errors.ErrCodeInvalidCapacity, rec.Info); err != nil {
		return nil, err
	}
	id := rec.InstanceID
	if id == "" {
		id = network.NewID(network.PrefixOutlet)
	}
	info := rec.Info
	pos := network.Pt(first(info.X, rec.X), first(info.Y, rec.Y))

	circuit := def.CircuitID
	if info.CircuitID != nil {
		circuit = *info.CircuitID
	}
	tap, total := def.TapWatts, def.CircuitWatts
	if info.TapCapacity != nil {
		tap = *info.TapCapacity
	}
	if info.CircuitCapacity != nil {
		total = *info.CircuitCapacity
	}
	return network.NewOutlet(id, pos, circuit, tap, total), nil
}

func first(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func equipment(rec EquipmentRecord, typ catalog.Type, cat *catalog.Catalog) (*network.Equipment, error) {
	id := rec.InstanceID
	if id == "" {
		id = network.NewID(network.PrefixEquipment)
	}

	dmx := DMXRecord{Universe: 1, Address: 1, ModeName: typ.DefaultMode()}
	switch {
	case rec.DMX != nil:
		dmx = *rec.DMX
		if dmx.Universe == 0 {
			dmx.Universe = 1
		}
		if dmx.Address == 0 {
			dmx.Address = 1
		}
	case rec.Channel != nil:
		dmx = DMXRecord{Universe: 1, Address: *rec.Channel}
	}
	if typ.CanDMX() {
		if err := errors.ValidateStruct(errors.ErrCodeInvalidPatch, dmx); err != nil {
			return nil, err
		}
	}

	channels, _ := cat.Channels(rec.TypeID, dmx.ModeName)
	return &network.Equipment{
		Wireable: network.Wireable{
			ID:       id,
			Position: network.Pt(rec.X, rec.Y),
			CanPower: typ.CanPower(),
			CanDMX:   typ.CanDMX(),
		},
		TypeID:       rec.TypeID,
		Name:         typ.Name,
		IsController: typ.IsController,
		PowerWatts:   typ.PowerConsumption,
		Patch:        network.Patch{Universe: dmx.Universe, Address: dmx.Address, Mode: dmx.ModeName},
		Channels:     channels,
	}, nil
}
