// Package power aggregates equipment consumption onto outlets and circuits.
//
// # Overview
//
// [Compute] walks the power graph of a [network.Snapshot] breadth-first from
// every outlet and credits each reached equipment to exactly one outlet. The
// result is a [Report] grouped by circuit id, with per-outlet totals and the
// list of consuming equipment that no outlet reaches.
//
// # Traversal Rules
//
//   - Outlets are visited in ascending id order. When equipment is reachable
//     from several outlets, the outlet with the smallest id wins it.
//   - Equipment is a pass-through node: a power strip chained to further
//     equipment forwards the walk.
//   - The walk never enters another outlet.
//   - Equipment that is not wireable, or already credited to an earlier
//     outlet, is not expanded.
//   - Edge endpoints without a connectable are ignored.
//
// # Capacities
//
// An outlet's limit is its tap capacity. A circuit's limit is the circuit
// capacity of the first outlet of that circuit in id order. Exceeding a
// limit is reported through [Report.Overloads]; it is never an error and
// capacity values are compared as given, without sanitizing.
package power
