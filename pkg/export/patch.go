package export

import (
	"encoding/csv"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/rigwire/pkg/patch"
)

// PatchCSV writes one record per fixture in patch-list order.
func PatchCSV(w io.Writer, r patch.Result) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"universe", "address", "end", "name", "mode", "channels", "reachable", "overflow", "overlaps_with", "id"})
	for _, row := range r.Rows() {
		_ = cw.Write([]string{
			strconv.Itoa(row.Universe),
			strconv.Itoa(row.Start),
			strconv.Itoa(row.End),
			row.Name,
			row.Mode,
			strconv.Itoa(row.Channels),
			strconv.FormatBool(row.Reachable),
			strconv.FormatBool(row.Overflow),
			strings.Join(row.OverlapsWith, ";"),
			row.ID,
		})
	}
	cw.Flush()
	return cw.Error()
}

var patchTmpl = template.Must(template.New("patch").Funcs(funcs).Parse(
	`<table border="1" cellspacing="0" cellpadding="4" width="100%" style="color: black; background-color: white; border-collapse: collapse; font-size: 10pt;">
<tr style="background-color: #555; color: white;"><th>Univ</th><th>Addr</th><th>Name</th><th>Mode</th><th>Ch</th><th>Status</th></tr>
{{- range $i, $r := .}}
<tr style="background-color: {{stripe $i}}; color: black;"><td>{{$r.Universe}}</td><td>{{$r.Start}}</td><td>{{$r.Name}}</td><td>{{$r.Mode}}</td><td>{{$r.Channels}}</td><td>{{$r.Severity}}</td></tr>
{{- end}}
</table>
`))

// PatchHTML writes the patch list of r as an HTML table fragment.
func PatchHTML(w io.Writer, r patch.Result) error {
	return patchTmpl.Execute(w, r.Rows())
}
