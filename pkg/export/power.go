package export

import (
	"encoding/csv"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/rigwire/pkg/network"
	"github.com/matzehuels/rigwire/pkg/power"
)

// PowerLine is one outlet row of a power table.
type PowerLine struct {
	CircuitID  string
	OutletID   string
	Equipment  []string // display names
	TotalWatts float64
	LimitWatts float64
	Over       bool
}

// PowerSection groups the outlet rows of one circuit.
type PowerSection struct {
	CircuitID  string
	TotalWatts float64
	LimitWatts float64
	Over       bool
	Lines      []PowerLine
}

// UnpoweredLine is one unpowered equipment row.
type UnpoweredLine struct {
	ID    string
	Name  string
	Watts float64
}

// PowerTable is the display form of a [power.Report], in circuit and
// outlet id order, with equipment ids resolved to names through the
// snapshot.
type PowerTable struct {
	Sections  []PowerSection
	Unpowered []UnpoweredLine
}

// NewPowerTable builds the table for r. Ids missing from s are shown as is.
func NewPowerTable(s network.Snapshot, r power.Report) PowerTable {
	idx := s.Index()
	name := func(id string) string {
		if eq, ok := idx[id].(*network.Equipment); ok && eq.Name != "" {
			return eq.Name
		}
		return id
	}

	var t PowerTable
	for _, cid := range r.CircuitIDs() {
		c := r.Circuits[cid]
		sec := PowerSection{CircuitID: cid, TotalWatts: c.TotalWatts, LimitWatts: c.LimitWatts, Over: c.Overloaded()}
		for _, oid := range c.OutletIDs() {
			o := c.Outlets[oid]
			line := PowerLine{CircuitID: cid, OutletID: oid, TotalWatts: o.TotalWatts, LimitWatts: o.LimitWatts, Over: o.Overloaded()}
			for _, id := range o.EquipmentIDs {
				line.Equipment = append(line.Equipment, name(id))
			}
			sec.Lines = append(sec.Lines, line)
		}
		t.Sections = append(t.Sections, sec)
	}
	for _, id := range r.Unpowered {
		line := UnpoweredLine{ID: id, Name: name(id)}
		if eq, ok := idx[id].(*network.Equipment); ok {
			line.Watts = eq.PowerWatts
		}
		t.Unpowered = append(t.Unpowered, line)
	}
	return t
}

// PowerCSV writes one record per outlet followed by one per unpowered
// equipment, whose circuit and outlet columns are empty.
func PowerCSV(w io.Writer, t PowerTable) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"circuit", "outlet", "equipment", "total_watts", "limit_watts", "status"})
	for _, sec := range t.Sections {
		for _, l := range sec.Lines {
			_ = cw.Write([]string{
				l.CircuitID,
				l.OutletID,
				strings.Join(l.Equipment, "; "),
				watts(l.TotalWatts),
				watts(l.LimitWatts),
				status(l.Over),
			})
		}
	}
	for _, u := range t.Unpowered {
		_ = cw.Write([]string{"", "", u.Name, watts(u.Watts), "", "UNPOWERED"})
	}
	cw.Flush()
	return cw.Error()
}

var powerTmpl = template.Must(template.New("power").Funcs(funcs).Parse(
	`<table border="1" cellspacing="0" cellpadding="4" width="100%" style="color: black; background-color: white; border-collapse: collapse; font-size: 10pt;">
<tr style="background-color: #555; color: white;"><th>Circuit</th><th>Outlet</th><th>Equipment</th><th>Load</th><th>Status</th></tr>
{{- range .Sections}}
<tr style="background-color: #ccc; color: black;"><td colspan="5"><b>Circuit: {{.CircuitID}}</b> (total: {{watts .TotalWatts}}W / limit: {{watts .LimitWatts}}W) - {{state .Over}}</td></tr>
{{- range .Lines}}
<tr style="background-color: white; color: black;"><td></td><td>{{.OutletID}}</td><td>{{if .Equipment}}{{join .Equipment}}{{else}}(none){{end}}</td><td>{{watts .TotalWatts}}W</td><td>{{state .Over}}</td></tr>
{{- end}}
{{- end}}
{{- if .Unpowered}}
<tr style="background-color: #ffcccc; color: black;"><td colspan="5"><b>Unpowered equipment</b></td></tr>
{{- range .Unpowered}}
<tr style="background-color: white; color: black;"><td>-</td><td>-</td><td>{{.Name}}</td><td>{{watts .Watts}}W</td><td>unpowered</td></tr>
{{- end}}
{{- end}}
</table>
`))

// PowerHTML writes t as an HTML table fragment.
func PowerHTML(w io.Writer, t PowerTable) error {
	return powerTmpl.Execute(w, t)
}

var funcs = template.FuncMap{
	"watts": watts,
	"join":  func(s []string) string { return strings.Join(s, ", ") },
	"state": func(over bool) template.HTML {
		if over {
			return `<span style="color:red; font-weight:bold;">OVER</span>`
		}
		return "OK"
	},
	"stripe": func(i int) template.CSS {
		if i%2 == 0 {
			return "#f9f9f9"
		}
		return "#ffffff"
	},
}

func watts(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func status(over bool) string {
	if over {
		return "OVER"
	}
	return "OK"
}
