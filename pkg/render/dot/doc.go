// Package dot renders lighting networks as Graphviz diagrams.
//
// # Overview
//
// [ToDOT] converts a [network.Snapshot] into DOT source: outlets are
// circles, equipment are rounded boxes, controllers get a double border.
// Power wires are red and DMX wires cyan, the colours the layout editor
// uses on the canvas.
//
//	src := dot.ToDOT(s, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// # Options
//
//   - Detailed: labels carry wattage and the DMX patch.
//   - Pinned: nodes keep their stage positions (neato with fixed pos)
//     instead of an automatic layered layout.
//   - Kinds: restrict the diagram to power or DMX wires.
//   - Status: per-id fill colours, typically derived from a power or patch
//     report to highlight overloaded, unpowered or conflicting items.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is required.
package dot
