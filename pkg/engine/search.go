package engine

import "github.com/peregrine-chess/peregrine/pkg/chess"

// searcher carries one thread's search state: a pre-allocated stack of
// per-ply frames. Frame i holds the position at ply i; MakeMove writes
// the successor into frame i+1, so no frame is mutated while a deeper
// frame still refers to it.
type searcher struct {
	engine *Engine
	// non-nil when this searcher may fan a move loop out to threads;
	// worker searchers inside a parallel section keep it nil.
	split *SharedTT
	stack [MaxPly + 1]searchFrame
}

type searchFrame struct {
	position chess.Position
	buffer   [chess.MaxMoves]chess.Move
	pv       pvLine
}

type pvLine struct {
	items [MaxPly + 1]chess.Move
	size  int
}

func (pv *pvLine) clear() {
	pv.size = 0
}

func (pv *pvLine) assign(m chess.Move, child *pvLine) {
	pv.items[0] = m
	pv.size = 1 + child.size
	copy(pv.items[1:], child.items[:child.size])
}

func (pv *pvLine) toSlice() []chess.Move {
	var result = make([]chess.Move, pv.size)
	copy(result, pv.items[:pv.size])
	return result
}

func newSearcher(e *Engine) *searcher {
	return &searcher{engine: e}
}

// searchNode is the negamax alpha-beta core. The score returns through
// the result; the principal variation is left in s.stack[ply].pv.
func (s *searcher) searchNode(alpha, beta, depth, ply int) int {
	if depth <= 0 {
		return s.qsearchNode(alpha, beta, ply)
	}

	var frame = &s.stack[ply]
	frame.pv.clear()
	var pos = &frame.position
	var sg = s.engine.sg

	if ply > 0 {
		if sg.Stop() {
			return 0
		}
		if pos.Rule50 >= 100 || s.isRepeat(ply) {
			return 0
		}
		if ply >= MaxPly {
			return s.engine.evaluator.Evaluate(pos)
		}
		// mate distance pruning
		alpha = chess.Max(alpha, lossIn(ply))
		beta = chess.Min(beta, winIn(ply))
		if alpha >= beta {
			return alpha
		}
	}

	var pvNode = alpha != beta-1

	var ttMove = chess.MoveEmpty
	if ttDepth, ttScore, ttBound, mv, ok := s.engine.transTable.Read(pos.Key); ok {
		ttMove = mv
		if !pvNode && ttDepth >= depth {
			ttScore = valueFromTT(ttScore, ply)
			if ttBound == boundExact ||
				ttBound == boundLower && ttScore >= beta ||
				ttBound == boundUpper && ttScore <= alpha {
				return ttScore
			}
		}
	}

	sg.IncrementNodes()

	var ml = s.legalMoves(ply)
	if len(ml) == 0 {
		if pos.IsCheck() {
			return lossIn(ply)
		}
		return 0
	}

	// null-move pruning
	if s.engine.Options.NullMove && !pvNode && !pos.IsCheck() &&
		depth >= 3 && ply > 0 &&
		s.engine.evaluator.Evaluate(pos) >= beta {
		const nullReduction = 3
		pos.MakeNullMove(&s.stack[ply+1].position)
		var score = -s.searchNode(-beta, -beta+1, depth-nullReduction-1, ply+1)
		if score >= beta {
			return beta
		}
	}

	SortMoves(pos, ml, ttMove)

	if s.split != nil && s.split.eligible(depth, len(ml)) {
		return s.split.searchMoves(s, ml, alpha, beta, depth, ply, pvNode)
	}

	var best = -Infinite
	var bestMove = chess.MoveEmpty
	var oldAlpha = alpha
	var child = &s.stack[ply+1]

	for i, move := range ml {
		pos.MakeMove(move, &child.position)

		var newDepth = depth - 1
		// late move reductions
		if s.engine.Options.LMR && i >= 3 && depth > 2 &&
			!child.position.IsCheck() && !isCaptureOrPromotion(move) {
			newDepth = chess.Max(1, depth-2)
		}

		var score int
		if i == 0 {
			score = -s.searchNode(-beta, -alpha, newDepth, ply+1)
		} else {
			score = -s.searchNode(-alpha-1, -alpha, newDepth, ply+1)
			if score > alpha && newDepth < depth-1 {
				pos.MakeMove(move, &child.position)
				score = -s.searchNode(-alpha-1, -alpha, depth-1, ply+1)
			}
			if score > alpha {
				pos.MakeMove(move, &child.position)
				score = -s.searchNode(-beta, -alpha, depth-1, ply+1)
			}
		}

		if ply > 0 && sg.Stop() {
			return 0
		}

		if score > best {
			best = score
			bestMove = move
			if score > alpha {
				alpha = score
				if pvNode {
					frame.pv.assign(move, &child.pv)
				}
				if alpha >= beta {
					break
				}
			}
		}
	}

	var bound = boundExact
	if best >= beta {
		bound = boundLower
	} else if best <= oldAlpha {
		bound = boundUpper
	}
	s.engine.transTable.Update(pos.Key, depth, valueToTT(best, ply), bound, bestMove)

	return best
}

// qsearchNode resolves captures until the position is quiet. The side
// to move first stands on the static evaluation, in check as well;
// then every evasion is searched when in check, otherwise captures and
// queen promotions.
func (s *searcher) qsearchNode(alpha, beta, ply int) int {
	var sg = s.engine.sg
	if sg.Stop() {
		return 0
	}
	sg.IncrementNodes()

	var frame = &s.stack[ply]
	frame.pv.clear()
	var pos = &frame.position

	if ply >= MaxPly {
		return s.engine.evaluator.Evaluate(pos)
	}

	var eval = s.engine.evaluator.Evaluate(pos)
	if eval > alpha {
		alpha = eval
	}
	if eval >= beta {
		return beta
	}

	var ml []chess.Move
	if pos.IsCheck() {
		ml = chess.GenerateMoves(frame.buffer[:], pos)
	} else {
		ml = chess.GenerateNoisyMoves(frame.buffer[:], pos)
	}
	SortMoves(pos, ml, chess.MoveEmpty)

	var best = -Infinite
	var hasLegalMove = false
	var child = &s.stack[ply+1].position
	for _, move := range ml {
		if !pos.MakeMove(move, child) {
			continue
		}
		hasLegalMove = true
		var score = -s.qsearchNode(-beta, -alpha, ply+1)
		if sg.Stop() {
			return 0
		}
		if score > best {
			best = score
			if best > alpha {
				alpha = best
				if alpha >= beta {
					break
				}
			}
		}
	}

	if pos.IsCheck() && !hasLegalMove {
		return lossIn(ply)
	}
	return alpha
}

// legalMoves generates into the frame's buffer and keeps the legal
// prefix; the legality probe reuses the child frame as scratch.
func (s *searcher) legalMoves(ply int) []chess.Move {
	var frame = &s.stack[ply]
	var pseudo = chess.GenerateMoves(frame.buffer[:], &frame.position)
	var child = &s.stack[ply+1].position
	var count = 0
	for _, m := range pseudo {
		if frame.position.MakeMove(m, child) {
			pseudo[count] = m
			count++
		}
	}
	return pseudo[:count]
}

// isRepeat walks the stack towards the root while the line stays
// reversible, then falls back to the game history counts.
func (s *searcher) isRepeat(ply int) bool {
	var p = &s.stack[ply].position
	if p.Rule50 == 0 || p.LastMove == chess.MoveEmpty {
		return false
	}
	for i := ply - 1; i >= 0; i-- {
		var prev = &s.stack[i].position
		if prev.Key == p.Key {
			return true
		}
		if prev.Rule50 == 0 || prev.LastMove == chess.MoveEmpty {
			break
		}
	}
	return s.engine.sg.historyKeys[p.Key] >= 2
}
