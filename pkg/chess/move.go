package chess

// Move packs from, to, moving piece, captured piece and promotion into
// 21 bits of an int32. En passant is encoded as a pawn capturing a pawn
// on the en-passant square.
type Move int32

const MoveEmpty = Move(0)

func makeMove(from, to, movingPiece, capturedPiece int) Move {
	return Move(from ^ (to << 6) ^ (movingPiece << 12) ^ (capturedPiece << 15))
}

func makePawnMove(from, to, capturedPiece, promotion int) Move {
	return Move(from ^ (to << 6) ^ (Pawn << 12) ^ (capturedPiece << 15) ^ (promotion << 18))
}

func (m Move) From() int {
	return int(m & 63)
}

func (m Move) To() int {
	return int((m >> 6) & 63)
}

func (m Move) MovingPiece() int {
	return int((m >> 12) & 7)
}

func (m Move) CapturedPiece() int {
	return int((m >> 15) & 7)
}

func (m Move) Promotion() int {
	return int((m >> 18) & 7)
}

// Value16 is the compact wire form: from, to and promotion. It drops
// the piece fields, which any receiver can re-derive from its board.
func (m Move) Value16() uint16 {
	return uint16(m.From()) | uint16(m.To())<<6 | uint16(m.Promotion())<<12
}

// MoveFromValue16 expands a wire value into a move carrying only the
// squares and promotion. It prints correctly and matches a generated
// move via SameAs, but the piece fields stay empty.
func MoveFromValue16(v uint16) Move {
	if v == 0 {
		return MoveEmpty
	}
	return Move(int32(v&63) | int32(v>>6&63)<<6 | int32(v>>12&7)<<18)
}

// SameAs reports whether two moves name the same squares and
// promotion, ignoring the piece fields a wire move lacks.
func (m Move) SameAs(other Move) bool {
	return m.Value16() == other.Value16()
}

func (m Move) String() string {
	if m == MoveEmpty {
		return "0000"
	}
	var sPromotion = ""
	if m.Promotion() != Empty {
		sPromotion = string("nbrq"[m.Promotion()-Knight])
	}
	return SquareName(m.From()) + SquareName(m.To()) + sPromotion
}
