package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peregrine-chess/peregrine/pkg/chess"
)

func TestTransTableRoundTrip(t *testing.T) {
	var tt = newTransTable(1)
	var key = uint64(0xDEADBEEFCAFEBABE)
	var move = chess.MoveFromValue16(0x0FAB)

	tt.Update(key, 7, -123, boundLower, move)
	var depth, score, bound, gotMove, ok = tt.Read(key)
	require.True(t, ok)
	assert.Equal(t, 7, depth)
	assert.Equal(t, -123, score)
	assert.Equal(t, boundLower, bound)
	assert.Equal(t, move, gotMove)

	// a different key mapping elsewhere misses
	_, _, _, _, ok = tt.Read(key + 1)
	assert.False(t, ok)

	tt.Clear()
	_, _, _, _, ok = tt.Read(key)
	assert.False(t, ok)
}

func TestTransTableReplacementPrefersDepth(t *testing.T) {
	var tt = newTransTable(1)
	var key = uint64(42)

	tt.Update(key, 9, 50, boundExact, chess.MoveEmpty)
	tt.Update(key, 3, -50, boundUpper, chess.MoveEmpty)
	var depth, score, _, _, ok = tt.Read(key)
	require.True(t, ok)
	assert.Equal(t, 9, depth, "shallower write must not evict a deeper entry")
	assert.Equal(t, 50, score)

	// equal depth: newer entry wins
	tt.Update(key, 9, 75, boundExact, chess.MoveEmpty)
	_, score, _, _, ok = tt.Read(key)
	require.True(t, ok)
	assert.Equal(t, 75, score)

	// colliding key: always overwrite
	var collision = key + uint64(len(tt.entries))
	tt.Update(collision, 1, 11, boundLower, chess.MoveEmpty)
	_, score, _, _, ok = tt.Read(collision)
	require.True(t, ok)
	assert.Equal(t, 11, score)
	_, _, _, _, ok = tt.Read(key)
	assert.False(t, ok)
}

func TestTransTableNegativeScores(t *testing.T) {
	var tt = newTransTable(1)
	for _, score := range []int{0, 1, -1, MateScore - 3, -MateScore + 5, 32767 - MateScore} {
		tt.Update(77, 5, score, boundExact, chess.MoveEmpty)
		var _, got, _, _, ok = tt.Read(77)
		require.True(t, ok)
		assert.Equal(t, score, got)
	}
}

func TestMateScoreNormalization(t *testing.T) {
	// mate two plies below a node at ply 3: score MateScore-5 there
	var atNode = MateScore - 5
	var stored = valueToTT(atNode, 3)
	assert.Equal(t, atNode, valueFromTT(stored, 3))
	// the same entry probed from ply 5 reports the mate two plies
	// further from that node's perspective
	assert.Equal(t, MateScore-7, valueFromTT(stored, 5))
	// non-mate scores pass through untouched
	assert.Equal(t, 42, valueToTT(42, 10))
	assert.Equal(t, -42, valueFromTT(-42, 10))
}
