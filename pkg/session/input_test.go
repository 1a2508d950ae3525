package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNodeIndex(t *testing.T) {
	for in, want := range map[string]int{"3": 3, "N3": 3, " n0 ": 0, "node 4!": 4} {
		got, err := ParseNodeIndex("node", in, 5)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	var ie *InputError
	_, err := ParseNodeIndex("node", "abc", 5)
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "expected a node index", ie.Reason)

	for _, in := range []string{"5", "-1", "N-2"} {
		_, err = ParseNodeIndex("node", in, 5)
		require.True(t, errors.As(err, &ie), in)
		assert.Equal(t, "no such node", ie.Reason, in)
	}

	_, err = ParseNodeIndex("node", "1.5", 5)
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "expected a whole node index", ie.Reason)
}

func TestParseEdgeInput(t *testing.T) {
	got, err := ParseEdgeInput("0,2,7", 3)
	require.NoError(t, err)
	assert.Equal(t, EdgeInput{Start: 0, End: 2, Cost: 7}, got)

	got, err = ParseEdgeInput("N2 N2 -1.5", 3)
	require.NoError(t, err)
	assert.Equal(t, EdgeInput{Start: 2, End: 2, Cost: -1.5}, got)

	for _, bad := range []string{"", "0,1", "0,1,2,3", "0,9,1", "0,1,cheap", "0,1,Inf", "0,1,NaN"} {
		_, err := ParseEdgeInput(bad, 3)
		var ie *InputError
		assert.True(t, errors.As(err, &ie), bad)
	}
}

func TestParseRunInput(t *testing.T) {
	s, e, err := ParseRunInput("N0, N6", 7)
	require.NoError(t, err)
	assert.Equal(t, 0, s)
	assert.Equal(t, 6, e)

	_, _, err = ParseRunInput("0", 7)
	assert.Error(t, err)
	_, _, err = ParseRunInput("0 7", 7)
	assert.Error(t, err)
}
