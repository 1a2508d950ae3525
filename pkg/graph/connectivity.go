package graph

import "math"

// isConnected runs a BFS from node 0 over the undirected view of edges.
// Edges with unresolved endpoints are skipped. An empty graph is not connected.
func isConnected(n int, edges []Edge) bool {
	if n == 0 {
		return false
	}

	adj := make([][]int, n)
	for _, e := range edges {
		if e.IsLoop() || !inRange(e.Start, n) || !inRange(e.End, n) {
			continue
		}
		adj[e.Start] = append(adj[e.Start], e.End)
		adj[e.End] = append(adj[e.End], e.Start)
	}

	visited := make([]bool, n)
	visited[0] = true
	seen := 1
	queue := []int{0}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range adj[current] {
			if visited[next] {
				continue
			}
			visited[next] = true
			seen++
			queue = append(queue, next)
		}
	}

	return seen == n
}

func hasNegativeEdge(edges []Edge) bool {
	for _, e := range edges {
		if e.Cost < 0 {
			return true
		}
	}
	return false
}

// minCostBetween is 0 for a == b, +Inf when no edge joins the pair.
func minCostBetween(edges []Edge, a, b int) float64 {
	if a == b {
		return 0
	}
	best := math.Inf(1)
	for _, e := range edges {
		if e.Connects(a, b) && e.Cost < best {
			best = e.Cost
		}
	}
	return best
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
