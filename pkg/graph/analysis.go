package graph

// pairKey is an unordered endpoint pair.
type pairKey struct{ lo, hi int }

func keyOf(e Edge) pairKey {
	if e.Start <= e.End {
		return pairKey{e.Start, e.End}
	}
	return pairKey{e.End, e.Start}
}

// ParallelRank returns, for each edge, its ordinal among the edges that share
// its unordered endpoint pair. Renderers use it to fan out duplicates.
func ParallelRank(edges []Edge) []int {
	ranks := make([]int, len(edges))
	seen := make(map[pairKey]int, len(edges))
	for i, e := range edges {
		k := keyOf(e)
		ranks[i] = seen[k]
		seen[k]++
	}
	return ranks
}

// PathEdges maps a node path onto edge indices: for each consecutive pair the
// first edge joining them in either direction. Pairs with no edge are skipped.
func PathEdges(edges []Edge, path []int) []int {
	var out []int
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		for idx, e := range edges {
			if e.Connects(a, b) {
				out = append(out, idx)
				break
			}
		}
	}
	return out
}
