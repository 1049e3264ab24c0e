package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/rigwire/pkg/network"
	"github.com/matzehuels/rigwire/pkg/patch"
	"github.com/matzehuels/rigwire/pkg/power"
)

// Cable colours of the layout editor.
const (
	ColorPower = "#ff0000"
	ColorDMX   = "#00bcd4"
)

// Status fill colours.
const (
	FillAlert   = "#ffcccc"
	FillWarning = "#ffe0b2"
	FillNotice  = "#fff9c4"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds wattage and DMX patch lines to equipment labels.
	Detailed bool
	// Pinned places nodes at their stage positions.
	Pinned bool
	// Scale converts scene units to points when Pinned. Zero means 1.
	Scale float64
	// Kinds limits the drawn wires. Empty means all kinds.
	Kinds []network.Kind
	// Status maps connectable ids to a fill colour.
	Status map[string]string
}

// ToDOT converts a snapshot to Graphviz DOT format. Nodes are emitted in id
// order so the output is stable. Wires whose endpoints are missing from the
// snapshot are skipped.
func ToDOT(s network.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  splines=ortho;\n")
	} else {
		buf.WriteString("  rankdir=LR;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [penwidth=2];\n")
	buf.WriteString("\n")

	idx := s.Index()
	for _, id := range sortedIDs(idx) {
		attrs := nodeAttrs(idx[id], opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		if len(opts.Kinds) > 0 && !slices.Contains(opts.Kinds, e.Kind) {
			continue
		}
		if _, ok := idx[e.From]; !ok {
			continue
		}
		if _, ok := idx[e.To]; !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [color=%q, tooltip=%q];\n", e.From, e.To, edgeColor(e.Kind), e.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func sortedIDs(idx map[string]network.Connectable) []string {
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func edgeColor(k network.Kind) string {
	if k == network.KindPower {
		return ColorPower
	}
	return ColorDMX
}

func nodeAttrs(c network.Connectable, opts Options) []string {
	var attrs []string
	switch v := c.(type) {
	case *network.Outlet:
		attrs = append(attrs,
			fmt.Sprintf("label=%q", fmt.Sprintf("%s\n%s", v.CircuitID, v.ID)),
			"shape=circle", "fillcolor=\"#fff59d\"")
	case *network.Equipment:
		attrs = append(attrs, fmt.Sprintf("label=%q", equipmentLabel(v, opts.Detailed)))
		if v.IsController {
			attrs = append(attrs, "peripheries=2")
		}
		if !v.IsWireable() {
			attrs = append(attrs, "style=\"rounded,dashed\"")
		}
	}
	if fill, ok := opts.Status[c.Base().ID]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if opts.Pinned {
		scale := opts.Scale
		if scale == 0 {
			scale = 1
		}
		p := c.Base().Position
		// Scene y grows downwards, Graphviz y upwards.
		y := -p.Y * scale
		if y == 0 { // negative zero
			y = 0
		}
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", num(p.X*scale), num(y)))
	}
	return attrs
}

func equipmentLabel(e *network.Equipment, detailed bool) string {
	name := e.Name
	if name == "" {
		name = e.ID
	}
	if !detailed {
		return name
	}
	parts := []string{name}
	if e.PowerWatts > 0 {
		parts = append(parts, num(e.PowerWatts)+" W")
	}
	if e.CanDMX && !e.IsController {
		parts = append(parts, fmt.Sprintf("U%d.%03d %s", e.Patch.Universe, e.Patch.Address, e.Patch.Mode))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// PowerStatus colours overloaded outlets and unpowered equipment.
func PowerStatus(r power.Report) map[string]string {
	status := make(map[string]string)
	for _, o := range r.Overloads() {
		if o.OutletID != "" {
			status[o.OutletID] = FillAlert
		}
	}
	for _, id := range r.Unpowered {
		status[id] = FillWarning
	}
	return status
}

// PatchStatus colours fixtures by patch severity: overlaps red, overflows
// orange, unreachable yellow.
func PatchStatus(r patch.Result) map[string]string {
	status := make(map[string]string)
	for id, f := range r.Flags {
		switch f.Severity() {
		case patch.SeverityOverlap:
			status[id] = FillAlert
		case patch.SeverityOverflow:
			status[id] = FillWarning
		case patch.SeverityUnreachable:
			status[id] = FillNotice
		}
	}
	return status
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([-0-9.]+)\s+([-0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox drops Graphviz's fixed pt width and height so the SVG
// scales with its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
