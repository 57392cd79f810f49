package engine

import (
	"sync"
	"sync/atomic"

	"github.com/peregrine-chess/peregrine/pkg/chess"
)

// SharedTT is the multithreaded strategy. Threads share the
// transposition table, the node counter and the stop flag, and split
// the move list of selected nodes between them; everything else is
// thread-private. The table absorbs duplicated work between threads
// walking related subtrees, so the engine accepts speculative
// overwork instead of coordinating.
type SharedTT struct {
	engine   *Engine
	Threads  int
	searcher *searcher
}

func NewSharedTT(e *Engine, threads int) *SharedTT {
	var st = &SharedTT{
		engine:  e,
		Threads: chess.Max(1, threads),
	}
	st.searcher = newSearcher(e)
	st.searcher.split = st
	return st
}

func (st *SharedTT) RootSearch(pos *chess.Position, depth int) SearchResult {
	return st.SearchNode(pos, -Infinite, Infinite, depth, 0)
}

func (st *SharedTT) SearchNode(pos *chess.Position, alpha, beta, depth, ply int) SearchResult {
	st.searcher.stack[ply].position = *pos
	var score = st.searcher.searchNode(alpha, beta, depth, ply)
	return SearchResult{Score: score, PV: st.searcher.stack[ply].pv.toSlice()}
}

// eligible gates the fan-out: splitting a shallow or narrow node costs
// more in goroutine churn than the subtree is worth. Only the owning
// searcher splits, so parallel sections do not nest.
func (st *SharedTT) eligible(depth, moveCount int) bool {
	return st.Threads > 1 && depth >= 3 && moveCount >= 4
}

// searchMoves runs the PVS move loop of one node with the sorted move
// list shared between worker goroutines. Each worker owns a clone of
// the position and a private stack; best score, alpha and the PV
// update together under one mutex, and a cutoff raises a flag the
// other workers observe before taking their next move.
func (st *SharedTT) searchMoves(s *searcher, ml []chess.Move, alpha, beta, depth, ply int, pvNode bool) int {
	var e = st.engine
	var oldAlpha = alpha

	var nextIndex atomic.Int32
	var cutoff atomic.Bool
	var shared struct {
		sync.Mutex
		best     int
		alpha    int
		bestMove chess.Move
		pv       pvLine
	}
	shared.best = -Infinite
	shared.alpha = alpha

	var wg sync.WaitGroup
	for t := chess.Min(st.Threads, len(ml)); t > 0; t-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var ws = newSearcher(e)
			// Mirror the line leading here so repetition detection
			// inside the subtree sees the same ancestors.
			for i := 0; i <= ply; i++ {
				ws.stack[i].position = s.stack[i].position
			}
			var parent = &ws.stack[ply].position
			var child = &ws.stack[ply+1]

			for !cutoff.Load() && !e.sg.Stop() {
				var i = int(nextIndex.Add(1)) - 1
				if i >= len(ml) {
					return
				}
				var move = ml[i]

				shared.Lock()
				var localAlpha = shared.alpha
				shared.Unlock()

				parent.MakeMove(move, &child.position)
				var score int
				if i == 0 {
					score = -ws.searchNode(-beta, -localAlpha, depth-1, ply+1)
				} else {
					score = -ws.searchNode(-localAlpha-1, -localAlpha, depth-1, ply+1)
					if score > localAlpha {
						// fresh child for the re-search
						parent.MakeMove(move, &child.position)
						score = -ws.searchNode(-beta, -localAlpha, depth-1, ply+1)
					}
				}
				if e.sg.Stop() {
					return
				}

				shared.Lock()
				if score > shared.best {
					shared.best = score
					shared.bestMove = move
					if score > shared.alpha {
						shared.alpha = score
						if pvNode {
							shared.pv.assign(move, &child.pv)
						}
						if shared.alpha >= beta {
							cutoff.Store(true)
						}
					}
				}
				shared.Unlock()
			}
		}()
	}
	wg.Wait()

	if ply > 0 && e.sg.Stop() {
		return 0
	}

	var best = shared.best
	s.stack[ply].pv = shared.pv

	if best > -Infinite {
		var bound = boundExact
		if best >= beta {
			bound = boundLower
		} else if best <= oldAlpha {
			bound = boundUpper
		}
		e.transTable.Update(s.stack[ply].position.Key, depth, valueToTT(best, ply), bound, shared.bestMove)
	}
	return best
}
