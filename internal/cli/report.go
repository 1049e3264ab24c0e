package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/rigwire/pkg/export"
	"github.com/matzehuels/rigwire/pkg/patch"
)

// =============================================================================
// Power Table
// =============================================================================

var headerStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// renderPowerTable lays out one row per outlet, a subtotal per circuit and
// the unpowered equipment last. Overloaded rows are highlighted.
func renderPowerTable(t export.PowerTable) string {
	var rows [][]string
	var alert []bool
	for _, sec := range t.Sections {
		rows = append(rows, []string{sec.CircuitID, "", "", load(sec.TotalWatts, sec.LimitWatts), state(sec.Over)})
		alert = append(alert, sec.Over)
		for _, l := range sec.Lines {
			equipment := strings.Join(l.Equipment, ", ")
			if equipment == "" {
				equipment = "(none)"
			}
			rows = append(rows, []string{"", l.OutletID, equipment, load(l.TotalWatts, l.LimitWatts), state(l.Over)})
			alert = append(alert, l.Over)
		}
	}
	for _, u := range t.Unpowered {
		rows = append(rows, []string{"", "", u.Name, watts(u.Watts), "UNPOWERED"})
		alert = append(alert, false)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Circuit", "Outlet", "Equipment", "Load", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case alert[row]:
				return StyleAlert
			case rows[row][4] == "UNPOWERED":
				return StyleWarning
			case rows[row][0] != "":
				return StyleValue.Bold(true)
			}
			return StyleValue
		}).
		Render()
}

func load(total, limit float64) string {
	return watts(total) + " / " + watts(limit)
}

func watts(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + " W" }

func state(over bool) string {
	if over {
		return "OVER"
	}
	return "OK"
}

// =============================================================================
// Patch Table
// =============================================================================

// renderPatchTable lays out the patch list in universe and address order.
func renderPatchTable(r patch.Result) string {
	rs := r.Rows()
	rows := make([][]string, 0, len(rs))
	for _, row := range rs {
		rows = append(rows, []string{
			strconv.Itoa(row.Universe),
			fmt.Sprintf("%d-%d", row.Start, row.End),
			row.Name,
			row.Mode,
			strconv.Itoa(row.Channels),
			problems(row.Flags),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Univ", "Addr", "Name", "Mode", "Ch", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			switch rs[row].Severity() {
			case patch.SeverityOverlap, patch.SeverityOverflow:
				return StyleAlert
			case patch.SeverityUnreachable:
				return StyleWarning
			}
			return StyleValue
		}).
		Render()
}

// problems lists every condition flagged on f, worst first.
func problems(f patch.Flags) string {
	var out []string
	if len(f.OverlapsWith) > 0 {
		out = append(out, "overlaps "+strings.Join(f.OverlapsWith, ", "))
	}
	if f.Overflow {
		out = append(out, "overflow")
	}
	if !f.Reachable {
		out = append(out, "unreachable")
	}
	if len(out) == 0 {
		return "ok"
	}
	return strings.Join(out, "; ")
}

// =============================================================================
// File Output
// =============================================================================

// writeFile creates path and fills it with write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	printFile(path)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
