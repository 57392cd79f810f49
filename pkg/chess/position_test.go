package chess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFenRoundTrip(t *testing.T) {
	var fens = []string{
		InitialPositionFen,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
	}
	for _, fen := range fens {
		var p, err = NewPositionFromFEN(fen)
		require.NoError(t, err, fen)
		assert.Equal(t, fen, p.String())
	}
}

func TestFenRejectsGarbage(t *testing.T) {
	for _, fen := range []string{
		"",
		"rnbqkbnr/pppppppp/8/8",
		"9/8/8/8/8/8/8/8 w - - 0 1",
		"8/8/8/8/8/8/8/8 w - - 0 1",
		// side not to move in check
		"k7/8/8/8/8/8/8/K6r b - - 0 1",
	} {
		var _, err = NewPositionFromFEN(fen)
		assert.Error(t, err, fen)
	}
}

func TestMakeMoveKeyIncremental(t *testing.T) {
	var p, err = NewPositionFromFEN(InitialPositionFen)
	require.NoError(t, err)

	var stack = []Position{p}
	for i := 0; i < 30; i++ {
		var cur = &stack[len(stack)-1]
		var ml = GenerateLegalMoves(cur)
		if len(ml) == 0 {
			break
		}
		var child Position
		require.True(t, cur.MakeMove(ml[i%len(ml)], &child))
		assert.Equal(t, child.computeKey(), child.Key, "incremental key diverged after %v", child.LastMove)
		stack = append(stack, child)
	}
}

func TestEnPassantAndCastling(t *testing.T) {
	var p, err = NewPositionFromFEN("rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	require.NoError(t, err)
	var child, ok = p.MakeMoveLAN("e5f6")
	require.True(t, ok)
	assert.Equal(t, Empty, child.PieceOn(SquareF5), "captured pawn must leave f5")
	assert.Equal(t, Pawn, child.PieceOn(SquareF6))

	p, err = NewPositionFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	child, ok = p.MakeMoveLAN("e1g1")
	require.True(t, ok)
	assert.Equal(t, Rook, child.PieceOn(SquareF1))
	assert.Equal(t, King, child.PieceOn(SquareG1))
	assert.Zero(t, child.CastleRights&(WhiteKingSide|WhiteQueenSide))
}

func TestMoveValue16RoundTrip(t *testing.T) {
	var p, err = NewPositionFromFEN("r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1")
	require.NoError(t, err)
	for _, mv := range GenerateLegalMoves(&p) {
		var wire = MoveFromValue16(mv.Value16())
		assert.True(t, mv.SameAs(wire))
		assert.Equal(t, mv.String(), wire.String())
	}
}

func TestMirrorPosition(t *testing.T) {
	var p, err = NewPositionFromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	var m = MirrorPosition(&p)
	assert.False(t, m.WhiteToMove)
	assert.Equal(t, len(GenerateLegalMoves(&p)), len(GenerateLegalMoves(&m)))
	var back = MirrorPosition(&m)
	assert.Equal(t, p.Key, back.Key)
}
