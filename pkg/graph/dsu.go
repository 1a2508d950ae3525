package graph

// UnionFind implements DSU over node indices.
// Supports amortized O(1) checks.
type UnionFind struct {
	parent []int
	rank   []int
	sets   int
}

// NewUnionFind initializes DSU with n singleton sets.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	rank := make([]int, n)
	for i := 0; i < n; i++ {
		parent[i] = i
	}
	return &UnionFind{parent: parent, rank: rank, sets: n}
}

// Find returns set representative, or -1 for an unknown index.
func (uf *UnionFind) Find(i int) int {
	if i < 0 || i >= len(uf.parent) {
		return -1
	}
	if uf.parent[i] != i {
		uf.parent[i] = uf.Find(uf.parent[i])
	}
	return uf.parent[i]
}

// Union merges sets.
func (uf *UnionFind) Union(i, j int) {
	rootI := uf.Find(i)
	rootJ := uf.Find(j)

	if rootI == -1 || rootJ == -1 || rootI == rootJ {
		return
	}

	// Union by rank
	if uf.rank[rootI] < uf.rank[rootJ] {
		uf.parent[rootI] = rootJ
	} else if uf.rank[rootI] > uf.rank[rootJ] {
		uf.parent[rootJ] = rootI
	} else {
		uf.parent[rootJ] = rootI
		uf.rank[rootI]++
	}
	uf.sets--
}

// Connected checks connectivity.
func (uf *UnionFind) Connected(i, j int) bool {
	r := uf.Find(i)
	return r != -1 && r == uf.Find(j)
}

// Sets returns the number of disjoint sets.
func (uf *UnionFind) Sets() int {
	return uf.sets
}
