package route

import "github.com/matzehuels/rigwire/pkg/network"

// Colinear reports whether a, b and c share an x or a y coordinate.
func Colinear(a, b, c network.Point) bool {
	return (a.X == b.X && b.X == c.X) || (a.Y == b.Y && b.Y == c.Y)
}

// Prune removes repeated points and the middle point of every colinear
// triple. The first point is always kept. Prune is idempotent and returns a
// new slice.
func Prune(points []network.Point) []network.Point {
	out := make([]network.Point, 0, len(points))
	for _, p := range points {
		out = reduce(append(out, p))
	}
	return out
}

// reduce restores the pruning invariant of pts after a point was pushed.
// Only the tail needs checking since the prefix is already pruned.
func reduce(pts []network.Point) []network.Point {
	for {
		n := len(pts)
		switch {
		case n >= 2 && pts[n-1] == pts[n-2]:
			pts = pts[:n-1]
		case n >= 3 && Colinear(pts[n-3], pts[n-2], pts[n-1]):
			pts[n-2] = pts[n-1]
			pts = pts[:n-1]
		default:
			return pts
		}
	}
}
