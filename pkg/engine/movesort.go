package engine

import "github.com/peregrine-chess/peregrine/pkg/chess"

// Ordering material; the static evaluator owns the real weights, the
// sort only needs relative victim/attacker values.
var sortMaterial = [chess.King + 1]int{
	chess.Pawn:   100,
	chess.Knight: 320,
	chess.Bishop: 330,
	chess.Rook:   500,
	chess.Queen:  900,
}

// moveKey ranks a move for the search order: the TT move first, then
// en passant, then captures by exchange balance with winning and even
// trades ahead of losing ones, quiets last.
func moveKey(p *chess.Position, move, ttMove chess.Move) int {
	const equalityBound = 100 - 50
	if ttMove != chess.MoveEmpty && move == ttMove {
		return 20000
	}
	if move.MovingPiece() == chess.Pawn && move.To() == p.EpSquare &&
		move.CapturedPiece() == chess.Pawn {
		return 10000 + sortMaterial[chess.Pawn] + 20
	}
	if move.CapturedPiece() != chess.Empty {
		var captureValue = sortMaterial[move.CapturedPiece()] - sortMaterial[move.MovingPiece()]
		if captureValue >= equalityBound {
			return 10000 + captureValue
		}
		return 5000 + captureValue
	}
	return 0
}

// SortMoves orders ml in place, best key first. The sort is stable so
// equal keys keep generation order and the result is deterministic for
// a fixed ttMove.
func SortMoves(p *chess.Position, ml []chess.Move, ttMove chess.Move) {
	var keys [chess.MaxMoves]int
	for i, move := range ml {
		keys[i] = moveKey(p, move, ttMove)
	}
	for i := 1; i < len(ml); i++ {
		var move, key = ml[i], keys[i]
		var j = i
		for ; j > 0 && keys[j-1] < key; j-- {
			ml[j], keys[j] = ml[j-1], keys[j-1]
		}
		ml[j], keys[j] = move, key
	}
}
