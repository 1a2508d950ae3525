package playback

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableHistory(t *testing.T) {
	steps := twoSteps()
	first := Snapshot{Distances: steps[0].Distances, Predecessors: steps[0].Predecessors}
	next := Snapshot{Distances: steps[1].Distances, Predecessors: steps[1].Predecessors}

	tbl := NewTable(2, first)
	require.Len(t, tbl.Rows, 2)
	assert.True(t, math.IsInf(tbl.Rows[1].CurrentDistance(), 1))
	assert.Equal(t, NoPredecessor, tbl.Rows[1].CurrentPredecessor())

	assert.True(t, tbl.Apply(next))
	assert.Equal(t, []float64{math.Inf(1), 3}, tbl.Rows[1].Distances)
	assert.Equal(t, []int{NoPredecessor, 0}, tbl.Rows[1].Predecessors)
	assert.Len(t, tbl.Rows[0].Distances, 1)

	assert.False(t, tbl.Apply(next), "same snapshot changes nothing")

	assert.Equal(t,
		"node | distance | predecessor\n"+
			"N0 | 0 | null\n"+
			"N1 | ~∞~ 3 | ~null~ N0\n",
		tbl.Plain())
}

func TestTableIgnoresResetToNone(t *testing.T) {
	tbl := NewTable(1, Snapshot{
		Distances:    map[int]float64{0: 5},
		Predecessors: map[int]int{0: 2},
	})
	tbl.Apply(Snapshot{Distances: map[int]float64{0: 5}, Predecessors: map[int]int{0: NoPredecessor}})
	assert.Equal(t, []int{2}, tbl.Rows[0].Predecessors)

	tbl.Apply(Snapshot{Distances: map[int]float64{0: 5}, Predecessors: map[int]int{0: 2}})
	assert.Equal(t, []int{2, 2}, tbl.Rows[0].Predecessors)
}

func TestTableMissingKeys(t *testing.T) {
	tbl := NewTable(3, Snapshot{})
	for _, r := range tbl.Rows {
		assert.True(t, math.IsInf(r.CurrentDistance(), 1))
		assert.Equal(t, NoPredecessor, r.CurrentPredecessor())
	}
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "∞", FormatDistance(math.Inf(1)))
	assert.Equal(t, "-∞", FormatDistance(math.Inf(-1)))
	assert.Equal(t, "NaN", FormatDistance(math.NaN()))
	assert.Equal(t, "-4", FormatDistance(-4))
	assert.Equal(t, "2.5", FormatDistance(2.5))
	assert.Equal(t, "N3", FormatPredecessor(3))
}
