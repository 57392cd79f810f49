package engine

import "github.com/peregrine-chess/peregrine/pkg/chess"

func winIn(ply int) int {
	return MateScore - ply
}

func lossIn(ply int) int {
	return -MateScore + ply
}

// valueToTT stores mate scores relative to the entry's node instead of
// the probing ply, so a shared entry stays correct wherever it is hit.
func valueToTT(v, ply int) int {
	if v >= MaxMateScore {
		return v + ply
	}
	if v <= -MaxMateScore {
		return v - ply
	}
	return v
}

func valueFromTT(v, ply int) int {
	if v >= MaxMateScore {
		return v - ply
	}
	if v <= -MaxMateScore {
		return v + ply
	}
	return v
}

// NewUciScore converts an internal score to the UCI form: mate-in-N
// for scores at mate magnitude, centipawns otherwise.
func NewUciScore(v int) UciScore {
	if v >= MaxMateScore {
		return UciScore{Mate: (MateScore - v + 1) / 2}
	}
	if v <= -MaxMateScore {
		return UciScore{Mate: (-MateScore - v) / 2}
	}
	return UciScore{Centipawns: v}
}

func isCaptureOrPromotion(move chess.Move) bool {
	return move.CapturedPiece() != chess.Empty ||
		move.Promotion() != chess.Empty
}
