package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peregrine-chess/peregrine/pkg/chess"
)

func TestEvaluateSymmetry(t *testing.T) {
	var fens = []string{
		chess.InitialPositionFen,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}
	var e = NewEvaluationService()
	for _, fen := range fens {
		var p, err = chess.NewPositionFromFEN(fen)
		require.NoError(t, err)
		var m = chess.MirrorPosition(&p)
		assert.Equal(t, e.Evaluate(&p), e.Evaluate(&m), fen)
	}
}

func TestStartposIsBalanced(t *testing.T) {
	var p, err = chess.NewPositionFromFEN(chess.InitialPositionFen)
	require.NoError(t, err)
	assert.Zero(t, NewEvaluationService().Evaluate(&p))
}

func TestMaterialOrdering(t *testing.T) {
	assert.Greater(t, Material(chess.Queen), Material(chess.Rook))
	assert.Greater(t, Material(chess.Rook), Material(chess.Bishop))
	assert.GreaterOrEqual(t, Material(chess.Bishop), Material(chess.Knight))
	assert.Greater(t, Material(chess.Knight), Material(chess.Pawn))
	assert.Zero(t, Material(chess.Empty))
}

func TestMaterialAdvantageShows(t *testing.T) {
	var e = NewEvaluationService()
	// white is a queen up
	var p, err = chess.NewPositionFromFEN("3q2k1/8/8/8/8/8/8/3QQ1K1 w - - 0 1")
	require.NoError(t, err)
	assert.Greater(t, e.Evaluate(&p), 500)
	var flipped = p
	flipped.WhiteToMove = false
	// hand-flipping the mover negates the perspective
	assert.Less(t, e.Evaluate(&flipped), -500)
}
