// Package route implements interactive orthogonal cable routing.
//
// # Overview
//
// A [Router] turns pointer events into a Manhattan-style polyline between
// two connectables. It is a two-state machine:
//
//	Idle ──Begin──▶ Routing ──Click on target──▶ Idle (edge produced)
//	                  │  ▲
//	                  │  └── Click elsewhere: commit a via-point
//	                  └───── Cancel, or Backtrack with no via-points left
//
// Every segment bends once. With the [Horizontal] priority axis the
// horizontal leg comes first, with [Vertical] the vertical leg; the axis is
// flipped with [Router.ToggleAxis] and persists across points and gestures.
//
// # Snapping
//
// When the pointer is within the snap radius of another wireable
// connectable (a square test on both axes), the preview routes into that
// connectable's position instead of the pointer and the next click
// completes the edge. The nearest candidate wins; equal distances are
// broken by id.
//
// # Pruning
//
// Whenever a point is committed, a middle point of three points sharing an
// x or y coordinate is dropped, and the completed polyline is pruned again
// as a whole with [Prune]. Zero-length legs are never committed, so
// [start] + via + [end] of a produced edge is strictly axis-aligned.
//
// # Concurrency
//
// A Router is driven by a single event loop and is not safe for concurrent
// use. It never inserts edges anywhere: the host adds the returned
// [network.Edge] to its document.
package route
