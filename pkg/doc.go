// Package pkg holds the rigwire libraries.
//
// # Overview
//
// Rigwire checks and routes the cabling of stage lighting rigs. A layout
// file places outlets and equipment on a plan and connects them with power
// and DMX wires; the packages below turn it into reports and new wires.
//
//	layout file + catalog
//	         ↓
//	    [layout] (decode, resolve types into a network.Snapshot)
//	         ↓
//	    [power]  [patch]  [route]
//	         ↓
//	    [export] tables, [render/dot] diagrams
//
// [pipeline] runs these stages with a [cache] in front of every analysis
// and is shared by the CLI and the [api] server.
//
// # Engine
//
// [network] defines connectables, edges and the immutable snapshot every
// algorithm reads. [power] totals equipment load per outlet and circuit,
// [patch] validates DMX reachability and address ranges, and [route] is
// the interactive orthogonal cable router.
//
// # Infrastructure
//
// [catalog] loads equipment types, [config] the TOML configuration,
// [errors] defines coded errors, [observability] the hook registry that
// [metrics] implements with Prometheus collectors.
//
// [layout]: github.com/matzehuels/rigwire/pkg/layout
// [power]: github.com/matzehuels/rigwire/pkg/power
// [patch]: github.com/matzehuels/rigwire/pkg/patch
// [route]: github.com/matzehuels/rigwire/pkg/route
// [export]: github.com/matzehuels/rigwire/pkg/export
// [render/dot]: github.com/matzehuels/rigwire/pkg/render/dot
// [pipeline]: github.com/matzehuels/rigwire/pkg/pipeline
// [cache]: github.com/matzehuels/rigwire/pkg/cache
// [api]: github.com/matzehuels/rigwire/pkg/api
// [network]: github.com/matzehuels/rigwire/pkg/network
// [catalog]: github.com/matzehuels/rigwire/pkg/catalog
// [config]: github.com/matzehuels/rigwire/pkg/config
// [errors]: github.com/matzehuels/rigwire/pkg/errors
// [observability]: github.com/matzehuels/rigwire/pkg/observability
// [metrics]: github.com/matzehuels/rigwire/pkg/metrics
package pkg
