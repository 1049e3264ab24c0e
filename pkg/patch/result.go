package patch

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Severity ranks patch problems for status display. Higher is worse.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityUnreachable
	SeverityOverflow
	SeverityOverlap
)

var severityNames = [...]string{"ok", "unreachable", "overflow", "overlap"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	i := slices.Index(severityNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown severity %q", text)
	}
	*s = Severity(i)
	return nil
}

// Summary counts the problems of a [Result].
type Summary struct {
	Overlaps    int      `json:"overlaps"` // unordered pairs
	Overflows   int      `json:"overflows"`
	Unreachable int      `json:"unreachable"`
	Severity    Severity `json:"severity"`
}

func (s Summary) severity() Severity {
	switch {
	case s.Overlaps > 0:
		return SeverityOverlap
	case s.Overflows > 0:
		return SeverityOverflow
	case s.Unreachable > 0:
		return SeverityUnreachable
	}
	return SeverityOK
}

// OK reports whether no problem was found.
func (s Summary) OK() bool { return s.Severity == SeverityOK }

// Result is the outcome of [Validate].
type Result struct {
	Flags   map[string]Flags
	Summary Summary

	meta map[string]rowMeta
}

// MarshalJSON encodes the result with its rows in table order.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Summary Summary `json:"summary"`
		Rows    []Row   `json:"rows"`
	}{r.Summary, r.Rows()})
}

// UnmarshalJSON decodes the form written by [Result.MarshalJSON], so cached
// results keep their row names and modes.
func (r *Result) UnmarshalJSON(data []byte) error {
	var aux struct {
		Summary Summary `json:"summary"`
		Rows    []Row   `json:"rows"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Summary = aux.Summary
	r.Flags = make(map[string]Flags, len(aux.Rows))
	r.meta = make(map[string]rowMeta, len(aux.Rows))
	for _, row := range aux.Rows {
		r.Flags[row.ID] = row.Flags
		r.meta[row.ID] = rowMeta{name: row.Name, mode: row.Mode}
	}
	return nil
}
