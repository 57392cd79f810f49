package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peregrine-chess/peregrine/pkg/chess"
)

var propertyFENs = []string{
	chess.InitialPositionFen,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r6r/1b2k1bq/8/8/7B/8/8/R3K2R b KQ - 3 2",
}

// naiveNegamax is the unpruned reference: full-width to depth, then
// the same quiescence the real search tail-calls.
func naiveNegamax(e *Engine, pos *chess.Position, depth, ply int) int {
	if depth <= 0 || ply >= MaxPly {
		var qs = newSearcher(e)
		qs.stack[ply].position = *pos
		return qs.qsearchNode(-Infinite, Infinite, ply)
	}
	var ml = chess.GenerateLegalMoves(pos)
	if len(ml) == 0 {
		if pos.IsCheck() {
			return lossIn(ply)
		}
		return 0
	}
	var best = -Infinite
	for _, move := range ml {
		var child chess.Position
		pos.MakeMove(move, &child)
		var score = -naiveNegamax(e, &child, depth-1, ply+1)
		if score > best {
			best = score
		}
	}
	return best
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	var e = newTestEngine(t)
	var seq = NewSequential(e)
	for _, fen := range propertyFENs {
		var p = mustPosition(t, fen)
		for depth := 1; depth <= 3; depth++ {
			e.transTable.Clear()
			var got = seq.RootSearch(&p, depth).Score
			var want = naiveNegamax(e, &p, depth, 0)
			assert.Equal(t, want, got, "fen %v depth %v", fen, depth)
		}
	}
}

func TestNegamaxSymmetry(t *testing.T) {
	var e = newTestEngine(t)
	var seq = NewSequential(e)
	for _, fen := range propertyFENs {
		var p = mustPosition(t, fen)
		var m = chess.MirrorPosition(&p)

		e.transTable.Clear()
		var score = seq.RootSearch(&p, 3).Score
		e.transTable.Clear()
		var mirrored = seq.RootSearch(&m, 3).Score
		assert.Equal(t, score, mirrored, fen)
	}
}

func TestStandPatFloor(t *testing.T) {
	var e = newTestEngine(t)
	for _, fen := range propertyFENs {
		var p = mustPosition(t, fen)
		if p.IsCheck() {
			continue
		}
		var s = newSearcher(e)
		s.stack[0].position = p
		var qscore = s.qsearchNode(-Infinite, Infinite, 0)
		assert.GreaterOrEqual(t, qscore, e.evaluator.Evaluate(&p), fen)
	}
}

func TestTTIdempotence(t *testing.T) {
	var e = newTestEngine(t)
	var seq = NewSequential(e)
	for _, fen := range propertyFENs {
		var p = mustPosition(t, fen)
		e.transTable.Clear()
		var first = seq.RootSearch(&p, 4).Score
		e.transTable.Clear()
		var second = seq.RootSearch(&p, 4).Score
		assert.Equal(t, first, second, fen)
	}
}

func TestMateScoreMonotonicity(t *testing.T) {
	var e = newTestEngine(t)
	var seq = NewSequential(e)
	var p = mustPosition(t, "6k1/5p1p/6p1/8/8/8/5PPP/3Q2K1 w - - 0 1")

	e.transTable.Clear()
	var shallow = seq.RootSearch(&p, 2).Score
	require.GreaterOrEqual(t, shallow, MaxMateScore)

	e.transTable.Clear()
	var deep = seq.RootSearch(&p, 3).Score
	assert.GreaterOrEqual(t, deep, shallow-2)
}

func TestNodeCounterMonotone(t *testing.T) {
	var e = newTestEngine(t)
	var p = mustPosition(t, chess.InitialPositionFen)
	e.BestMoveSearch(&p, 2)
	var shallow = e.sg.Nodes()
	require.Greater(t, shallow, int64(0))
	e.BestMoveSearch(&p, 4)
	assert.Greater(t, e.sg.Nodes(), shallow)
}

func TestSharedTTMatchesSequentialScore(t *testing.T) {
	var options = NewOptions()
	options.Hash = 8
	for _, fen := range propertyFENs {
		var p, err = chess.NewPositionFromFEN(fen)
		require.NoError(t, err)

		var seqEngine = NewEngine(stubEval{}, options)
		var seqScore = NewSequential(seqEngine).RootSearch(&p, 4).Score

		var smpEngine = NewEngine(stubEval{}, options)
		var smpScore = NewSharedTT(smpEngine, 4).RootSearch(&p, 4).Score

		assert.Equal(t, seqScore, smpScore, fen)
	}
}

// stubEval is material-only so score ties between different best moves
// do not depend on piece placement; the parallel strategy guarantees
// score equality, not move equality.
type stubEval struct{}

func (stubEval) Evaluate(p *chess.Position) int {
	var score = 100*(chess.PopCount(p.Pawns&p.White)-chess.PopCount(p.Pawns&p.Black)) +
		300*(chess.PopCount(p.Knights&p.White)-chess.PopCount(p.Knights&p.Black)) +
		300*(chess.PopCount(p.Bishops&p.White)-chess.PopCount(p.Bishops&p.Black)) +
		500*(chess.PopCount(p.Rooks&p.White)-chess.PopCount(p.Rooks&p.Black)) +
		900*(chess.PopCount(p.Queens&p.White)-chess.PopCount(p.Queens&p.Black))
	if !p.WhiteToMove {
		score = -score
	}
	return score
}

func TestSortMovesDeterministic(t *testing.T) {
	var p = mustPosition(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	var ml = chess.GenerateLegalMoves(&p)
	var ttMove = ml[len(ml)/2]

	var first = append([]chess.Move(nil), ml...)
	SortMoves(&p, first, ttMove)
	var second = append([]chess.Move(nil), ml...)
	SortMoves(&p, second, ttMove)

	assert.Equal(t, first, second)
	assert.Equal(t, ttMove, first[0], "tt move sorts first")

	// captures ahead of quiets
	var seenQuiet = false
	for _, move := range first[1:] {
		if move.CapturedPiece() == chess.Empty && move.Promotion() == chess.Empty {
			seenQuiet = true
		} else if seenQuiet && moveKey(&p, move, ttMove) > 0 {
			t.Fatalf("capture %v sorted after a quiet move", move)
		}
	}
}
