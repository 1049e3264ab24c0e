package network

// Adjacency maps a connectable id to the ids joined to it by an edge of one
// kind. Neighbour lists follow edge order and may contain ids with no
// matching connectable.
type Adjacency map[string][]string

// Build derives the adjacency of kind k from the edges of s. Both directions
// of every edge are inserted. Build is O(E) and never fails: invalid edges
// are carried as-is, except self-loops which contribute nothing.
func Build(s Snapshot, k Kind) Adjacency {
	return BuildEdges(s.Edges, k)
}

// BuildEdges is [Build] over a bare edge list.
func BuildEdges(edges []Edge, k Kind) Adjacency {
	adj := make(Adjacency)
	for _, e := range edges {
		if e.Kind != k || e.From == e.To {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}
	return adj
}

// Neighbors returns the ids adjacent to id. The slice is shared with the
// adjacency and must not be modified.
func (a Adjacency) Neighbors(id string) []string { return a[id] }

// Degree returns the number of edge ends at id.
func (a Adjacency) Degree(id string) int { return len(a[id]) }
