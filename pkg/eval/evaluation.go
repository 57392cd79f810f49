// Package eval holds the static evaluator: material plus piece-square
// bonuses, scored from the side to move's perspective.
package eval

import (
	"github.com/peregrine-chess/peregrine/pkg/chess"
)

const PawnValue = 100

var material = [chess.King + 1]int{
	chess.Empty:  0,
	chess.Pawn:   PawnValue,
	chess.Knight: 320,
	chess.Bishop: 330,
	chess.Rook:   500,
	chess.Queen:  900,
	chess.King:   0,
}

// Material returns the midgame value of a piece type, the weight
// Evaluate counts per piece.
func Material(piece int) int {
	return material[piece]
}

type EvaluationService struct{}

func NewEvaluationService() *EvaluationService {
	return &EvaluationService{}
}

// Evaluate scores p from the side to move's perspective in centipawns.
func (e *EvaluationService) Evaluate(p *chess.Position) int {
	var score = 0

	score += material[chess.Pawn] * (chess.PopCount(p.Pawns&p.White) - chess.PopCount(p.Pawns&p.Black))
	score += material[chess.Knight] * (chess.PopCount(p.Knights&p.White) - chess.PopCount(p.Knights&p.Black))
	score += material[chess.Bishop] * (chess.PopCount(p.Bishops&p.White) - chess.PopCount(p.Bishops&p.Black))
	score += material[chess.Rook] * (chess.PopCount(p.Rooks&p.White) - chess.PopCount(p.Rooks&p.Black))
	score += material[chess.Queen] * (chess.PopCount(p.Queens&p.White) - chess.PopCount(p.Queens&p.Black))

	for bb := p.White; bb != 0; bb &= bb - 1 {
		var sq = chess.FirstOne(bb)
		score += pieceSquare[p.PieceOn(sq)][sq]
	}
	for bb := p.Black; bb != 0; bb &= bb - 1 {
		var sq = chess.FirstOne(bb)
		score -= pieceSquare[p.PieceOn(sq)][chess.FlipSquare(sq)]
	}

	if !p.WhiteToMove {
		score = -score
	}
	return score
}
