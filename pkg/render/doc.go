// Package render provides visual output for lighting networks.
//
// # Overview
//
// Rendering is kept out of the engine packages: it only reads a
// [network.Snapshot] and the reports computed from it. The [dot]
// subpackage draws the network as a Graphviz diagram with power and DMX
// wires in the editor's cable colours.
//
//	src := dot.ToDOT(s, dot.Options{Pinned: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// [network.Snapshot]: github.com/matzehuels/rigwire/pkg/network#Snapshot
// [dot]: github.com/matzehuels/rigwire/pkg/render/dot
package render
