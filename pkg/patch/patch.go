package patch

import (
	"cmp"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rigwire/pkg/network"
)

// Flags is the validation outcome for one fixture.
type Flags struct {
	Reachable    bool     `json:"reachable"`
	Overflow     bool     `json:"overflow"`
	OverlapsWith []string `json:"overlaps_with"` // sorted ids

	Universe int `json:"universe"`
	Start    int `json:"start"`
	End      int `json:"end"`
	Channels int `json:"channels"` // after the single-channel fallback
}

// Severity returns the most serious condition flagged on f.
func (f Flags) Severity() Severity {
	switch {
	case len(f.OverlapsWith) > 0:
		return SeverityOverlap
	case f.Overflow:
		return SeverityOverflow
	case !f.Reachable:
		return SeverityUnreachable
	}
	return SeverityOK
}

// Option configures [Validate].
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger receiving channel-count fallback warnings.
// Without it warnings are discarded.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type entry struct {
	eq    *network.Equipment
	flags Flags
}

// Validate checks reachability, overflow and overlaps for every DMX-capable
// non-controller equipment of s. It never fails and does not modify s.
func Validate(s network.Snapshot, opts ...Option) Result {
	o := options{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}

	reachable := reach(s)

	var entries []*entry
	for _, eq := range s.Equipment() {
		if !eq.CanDMX || eq.IsController {
			continue
		}
		channels := eq.Channels
		if channels <= 0 {
			o.logger.Warn("unresolved DMX mode, assuming 1 channel",
				"id", eq.ID, "type", eq.TypeID, "mode", eq.Patch.Mode)
			channels = 1
		}
		start := eq.Patch.Address
		end := start + channels - 1
		entries = append(entries, &entry{eq: eq, flags: Flags{
			Reachable:    reachable[eq.ID],
			Overflow:     end > network.MaxAddress,
			OverlapsWith: []string{},
			Universe:     eq.Patch.Universe,
			Start:        start,
			End:          end,
			Channels:     channels,
		}})
	}

	overlaps := 0
	for i, a := range entries {
		for _, b := range entries[i+1:] {
			if !conflict(a, b) {
				continue
			}
			a.flags.OverlapsWith = append(a.flags.OverlapsWith, b.eq.ID)
			b.flags.OverlapsWith = append(b.flags.OverlapsWith, a.eq.ID)
			overlaps++
		}
	}

	r := Result{Flags: make(map[string]Flags, len(entries)), meta: make(map[string]rowMeta, len(entries))}
	r.Summary.Overlaps = overlaps
	for _, e := range entries {
		slices.Sort(e.flags.OverlapsWith)
		r.Flags[e.eq.ID] = e.flags
		r.meta[e.eq.ID] = rowMeta{name: e.eq.Name, mode: e.eq.Patch.Mode}
		if e.flags.Overflow {
			r.Summary.Overflows++
		}
		if !e.flags.Reachable {
			r.Summary.Unreachable++
		}
	}
	r.Summary.Severity = r.Summary.severity()
	return r
}

// conflict reports whether a and b share a universe and intersecting
// ranges, excluding benign duplicates.
func conflict(a, b *entry) bool {
	fa, fb := a.flags, b.flags
	if fa.Universe != fb.Universe {
		return false
	}
	if fa.Start > fb.End || fb.Start > fa.End {
		return false
	}
	benign := a.eq.Name == b.eq.Name &&
		a.eq.Patch.Mode == b.eq.Patch.Mode &&
		fa.Start == fb.Start
	return !benign
}

// reach returns the ids reachable from any DMX controller over DMX wires,
// expanding only through DMX-capable equipment.
func reach(s network.Snapshot) map[string]bool {
	adj := network.Build(s, network.KindDMX)
	idx := s.Index()

	visited := make(map[string]bool)
	var queue []string
	for _, eq := range s.Equipment() {
		if eq.CanDMX && eq.IsController && !visited[eq.ID] {
			visited[eq.ID] = true
			queue = append(queue, eq.ID)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj.Neighbors(id) {
			if visited[next] {
				continue
			}
			eq, ok := idx[next].(*network.Equipment)
			if !ok || !eq.CanDMX {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return visited
}

// Row is one line of a patch table.
type Row struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mode string `json:"mode"`
	Flags
}

type rowMeta struct{ name, mode string }

// Rows returns the flagged fixtures sorted by universe, start address and
// id, the order of the editor's patch list.
func (r Result) Rows() []Row {
	rows := make([]Row, 0, len(r.Flags))
	for id, f := range r.Flags {
		m := r.meta[id]
		rows = append(rows, Row{ID: id, Name: m.name, Mode: m.mode, Flags: f})
	}
	slices.SortFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(a.Universe, b.Universe); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return rows
}
