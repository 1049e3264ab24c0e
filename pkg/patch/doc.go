// Package patch validates the DMX patch of a lighting network.
//
// # Overview
//
// [Validate] inspects every DMX-capable equipment that is not a controller
// and produces one [Flags] value per fixture:
//
//   - Reachable: the fixture is connected to a controller through DMX
//     wires that only pass through DMX-capable equipment.
//   - Overflow: the fixture's address range ends past slot 512.
//   - OverlapsWith: the fixtures in the same universe whose address range
//     intersects this one.
//
// Reachability and overlap detection are independent: an unreachable
// fixture still takes part in the overlap scan.
//
// # Benign Duplicates
//
// Two entries with the same name, the same mode and the same start address
// are not reported as overlapping each other. Such pairs appear while an
// item is being duplicated or moved in the editor.
//
// # Channel Counts
//
// The channel count comes from [network.Equipment.Channels], resolved by
// the host catalog. A count of zero or less means the mode could not be
// resolved and falls back to a single channel; the fallback is logged at
// warn level once per fixture and per call.
//
// # Complexity
//
// Overlap detection compares every pair within a universe, O(n²) in the
// number of patched fixtures.
package patch
