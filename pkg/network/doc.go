// Package network models how stage equipment is interconnected by power and
// DMX cabling.
//
// # Overview
//
// A layout is a set of [Connectable] values joined by typed [Edge] values.
// Connectables come in two variants, [Equipment] and [Outlet], both embedding
// the shared [Wireable] capability struct so that graph code can work on the
// common fields (id, position, capability flags) and only switch on the
// concrete type where variant-specific numbers are needed (consumption for
// equipment, tap and circuit capacity for outlets).
//
// Algorithms never hold on to a graph. They receive an immutable [Snapshot]
// and derive an [Adjacency] for one edge [Kind] with [Build]:
//
//	s := network.Snapshot{Connectables: items, Edges: wires}
//	adj := network.Build(s, network.KindPower)
//	for _, id := range adj.Neighbors("outlet_1a2b3c4d") {
//	    // ...
//	}
//
// Rebuilding on every query keeps the adjacency a pure function of the
// current document; there is no cached graph that can go stale after an edit
// or an undo.
//
// # Dangling References
//
// [Build] does not check that edge endpoints exist. Ids without a matching
// connectable are carried in the adjacency and consumers treat them as
// absent neighbours. Edges entering a document should be checked with
// [Snapshot.WithEdge], which rejects self-loops and unknown endpoints.
//
// # Concurrency
//
// Snapshots and adjacencies are plain values. They are safe for concurrent
// reads; nothing in this package mutates its inputs.
package network
