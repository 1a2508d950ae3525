package policy

// DefaultRules mirror the checks the routing UI always made before a run.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:        "empty-graph",
			Condition: "nodeCount == 0",
			Message:   "The network is empty. Add some nodes first.",
		},
		{
			ID:        "too-many-nodes",
			Condition: "maxNodes > 0 && nodeCount > maxNodes",
			Message:   "The network has too many nodes for the routing service.",
		},
		{
			ID:        "too-many-edges",
			Condition: "maxEdges > 0 && edgeCount > maxEdges",
			Message:   "The network has too many edges for the routing service.",
		},
		{
			ID:        "dijkstra-negative-edges",
			Condition: "algorithm == 'dijkstra' && hasNegativeEdges",
			Message:   "Dijkstra's Algorithm isn't meant for graphs with negative edges!",
		},
		{
			ID:        "dijkstra-disconnected",
			Condition: "algorithm == 'dijkstra' && !connected",
			Message:   "Please use a connected graph for Dijkstra's Algorithm",
		},
	}
}
