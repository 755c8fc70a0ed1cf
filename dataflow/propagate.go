package dataflow

// Propagate runs the forward fixpoint worklist algorithm: starting from
// every source node, it follows outgoing edges until no new node becomes
// tainted (spec §4.7's "single forward pass to a fixpoint, O(N+E)").
// The returned set's keys are node IDs; both source and downstream nodes
// are included, so a sink ID's presence in the set means at least one
// source reaches it.
func Propagate(g *Graph) map[string]bool {
	tainted := make(map[string]bool, len(g.Nodes))
	var worklist []string
	for _, id := range g.SourceIDs {
		if !tainted[id] {
			tainted[id] = true
			worklist = append(worklist, id)
		}
	}

	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, e := range g.Outgoing(id) {
			if tainted[e.To] {
				continue
			}
			tainted[e.To] = true
			worklist = append(worklist, e.To)
		}
	}
	return tainted
}
