package chess

const (
	f1g1Mask = uint64(1)<<SquareF1 | uint64(1)<<SquareG1
	b1d1Mask = uint64(1)<<SquareB1 | uint64(1)<<SquareC1 | uint64(1)<<SquareD1
	f8g8Mask = uint64(1)<<SquareF8 | uint64(1)<<SquareG8
	b8d8Mask = uint64(1)<<SquareB8 | uint64(1)<<SquareC8 | uint64(1)<<SquareD8
)

var (
	whiteKingSideCastle  = makeMove(SquareE1, SquareG1, King, Empty)
	whiteQueenSideCastle = makeMove(SquareE1, SquareC1, King, Empty)
	blackKingSideCastle  = makeMove(SquareE8, SquareG8, King, Empty)
	blackQueenSideCastle = makeMove(SquareE8, SquareC8, King, Empty)
)

func addPromotions(ml []Move, move Move) int {
	ml[0] = move ^ Move(Queen<<18)
	ml[1] = move ^ Move(Rook<<18)
	ml[2] = move ^ Move(Bishop<<18)
	ml[3] = move ^ Move(Knight<<18)
	return 4
}

// GenerateMoves fills ml with pseudo-legal moves and returns the used
// prefix. When the side to move is in check, knight, bishop, rook and
// queen moves are limited to captures of the checker or interpositions
// and castling is skipped; pawn and king moves still generate in full.
// Every move still needs the MakeMove legality verdict.
func GenerateMoves(ml []Move, p *Position) []Move {
	var count = 0
	var ownPieces, oppPieces uint64
	if p.WhiteToMove {
		ownPieces, oppPieces = p.White, p.Black
	} else {
		ownPieces, oppPieces = p.Black, p.White
	}

	var target = ^ownPieces
	if p.Checkers != 0 {
		var kingSq = FirstOne(p.Kings & ownPieces)
		target = p.Checkers | Between(FirstOne(p.Checkers), kingSq)
	}

	var allPieces = p.White | p.Black
	var ownPawns = p.Pawns & ownPieces

	if p.EpSquare != SquareNone {
		for fromBB := PawnAttacks(p.EpSquare, !p.WhiteToMove) & ownPawns; fromBB != 0; fromBB &= fromBB - 1 {
			ml[count] = makeMove(FirstOne(fromBB), p.EpSquare, Pawn, Pawn)
			count++
		}
	}

	var forward, doubleRank, promoRank = 8, Rank2, Rank7Mask
	if !p.WhiteToMove {
		forward, doubleRank, promoRank = -8, Rank7, Rank2Mask
	}

	for fromBB := ownPawns &^ promoRank; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		if SquareMask[from+forward]&allPieces == 0 {
			ml[count] = makeMove(from, from+forward, Pawn, Empty)
			count++
			if Rank(from) == doubleRank && SquareMask[from+2*forward]&allPieces == 0 {
				ml[count] = makeMove(from, from+2*forward, Pawn, Empty)
				count++
			}
		}
		for toBB := PawnAttacks(from, p.WhiteToMove) & oppPieces; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = makeMove(from, to, Pawn, p.PieceOn(to))
			count++
		}
	}
	for fromBB := ownPawns & promoRank; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		if SquareMask[from+forward]&allPieces == 0 {
			count += addPromotions(ml[count:], makeMove(from, from+forward, Pawn, Empty))
		}
		for toBB := PawnAttacks(from, p.WhiteToMove) & oppPieces; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			count += addPromotions(ml[count:], makeMove(from, to, Pawn, p.PieceOn(to)))
		}
	}

	for fromBB := p.Knights & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := KnightAttacks[from] & target; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = makeMove(from, to, Knight, p.PieceOn(to))
			count++
		}
	}
	for fromBB := p.Bishops & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := BishopAttacks(from, allPieces) & target; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = makeMove(from, to, Bishop, p.PieceOn(to))
			count++
		}
	}
	for fromBB := p.Rooks & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := RookAttacks(from, allPieces) & target; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = makeMove(from, to, Rook, p.PieceOn(to))
			count++
		}
	}
	for fromBB := p.Queens & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := QueenAttacks(from, allPieces) & target; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = makeMove(from, to, Queen, p.PieceOn(to))
			count++
		}
	}

	var kingFrom = FirstOne(p.Kings & ownPieces)
	for toBB := KingAttacks[kingFrom] &^ ownPieces; toBB != 0; toBB &= toBB - 1 {
		var to = FirstOne(toBB)
		ml[count] = makeMove(kingFrom, to, King, p.PieceOn(to))
		count++
	}

	if p.Checkers == 0 {
		if p.WhiteToMove {
			if p.CastleRights&WhiteKingSide != 0 &&
				allPieces&f1g1Mask == 0 &&
				!p.isAttackedBySide(SquareF1, false) {
				ml[count] = whiteKingSideCastle
				count++
			}
			if p.CastleRights&WhiteQueenSide != 0 &&
				allPieces&b1d1Mask == 0 &&
				!p.isAttackedBySide(SquareD1, false) {
				ml[count] = whiteQueenSideCastle
				count++
			}
		} else {
			if p.CastleRights&BlackKingSide != 0 &&
				allPieces&f8g8Mask == 0 &&
				!p.isAttackedBySide(SquareF8, true) {
				ml[count] = blackKingSideCastle
				count++
			}
			if p.CastleRights&BlackQueenSide != 0 &&
				allPieces&b8d8Mask == 0 &&
				!p.isAttackedBySide(SquareD8, true) {
				ml[count] = blackQueenSideCastle
				count++
			}
		}
	}

	return ml[:count]
}

// GenerateNoisyMoves fills ml with pseudo-legal captures and queen
// promotions, the quiescence move set for a side not in check.
func GenerateNoisyMoves(ml []Move, p *Position) []Move {
	var count = 0
	var ownPieces, oppPieces uint64
	if p.WhiteToMove {
		ownPieces, oppPieces = p.White, p.Black
	} else {
		ownPieces, oppPieces = p.Black, p.White
	}

	var allPieces = p.White | p.Black
	var ownPawns = p.Pawns & ownPieces

	if p.EpSquare != SquareNone {
		for fromBB := PawnAttacks(p.EpSquare, !p.WhiteToMove) & ownPawns; fromBB != 0; fromBB &= fromBB - 1 {
			ml[count] = makeMove(FirstOne(fromBB), p.EpSquare, Pawn, Pawn)
			count++
		}
	}

	var forward, promoRank = 8, Rank7Mask
	if !p.WhiteToMove {
		forward, promoRank = -8, Rank2Mask
	}

	for fromBB := ownPawns &^ promoRank; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := PawnAttacks(from, p.WhiteToMove) & oppPieces; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = makeMove(from, to, Pawn, p.PieceOn(to))
			count++
		}
	}
	for fromBB := ownPawns & promoRank; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		if SquareMask[from+forward]&allPieces == 0 {
			ml[count] = makePawnMove(from, from+forward, Empty, Queen)
			count++
		}
		for toBB := PawnAttacks(from, p.WhiteToMove) & oppPieces; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = makePawnMove(from, to, p.PieceOn(to), Queen)
			count++
		}
	}

	for fromBB := p.Knights & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := KnightAttacks[from] & oppPieces; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = makeMove(from, to, Knight, p.PieceOn(to))
			count++
		}
	}
	for fromBB := p.Bishops & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := BishopAttacks(from, allPieces) & oppPieces; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = makeMove(from, to, Bishop, p.PieceOn(to))
			count++
		}
	}
	for fromBB := p.Rooks & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := RookAttacks(from, allPieces) & oppPieces; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = makeMove(from, to, Rook, p.PieceOn(to))
			count++
		}
	}
	for fromBB := p.Queens & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := QueenAttacks(from, allPieces) & oppPieces; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = makeMove(from, to, Queen, p.PieceOn(to))
			count++
		}
	}

	var kingFrom = FirstOne(p.Kings & ownPieces)
	for toBB := KingAttacks[kingFrom] & oppPieces; toBB != 0; toBB &= toBB - 1 {
		var to = FirstOne(toBB)
		ml[count] = makeMove(kingFrom, to, King, p.PieceOn(to))
		count++
	}

	return ml[:count]
}

// GenerateLegalMoves allocates; the search uses GenerateMoves with a
// per-frame buffer and filters through MakeMove instead.
func GenerateLegalMoves(p *Position) []Move {
	var buffer [MaxMoves]Move
	var child Position
	var result []Move
	for _, m := range GenerateMoves(buffer[:], p) {
		if p.MakeMove(m, &child) {
			result = append(result, m)
		}
	}
	return result
}
