package engine

import (
	"context"
	"time"

	"github.com/peregrine-chess/peregrine/pkg/chess"
)

// Evaluator scores a position from the side to move's perspective.
type Evaluator interface {
	Evaluate(p *chess.Position) int
}

// Strategy runs one full-window search of pos at the given depth and
// is invoked once per iterative-deepening step.
type Strategy interface {
	RootSearch(pos *chess.Position, depth int) SearchResult
}

// NodeSearcher searches a single node with an explicit window and ply,
// the entry point the distributed work pool drives on workers.
type NodeSearcher interface {
	SearchNode(pos *chess.Position, alpha, beta, depth, ply int) SearchResult
}

type Engine struct {
	Options    Options
	evaluator  Evaluator
	transTable *transTable
	sg         *SearchGlobals
	strategy   Strategy
	progress   func(SearchInfo)
}

func NewEngine(evaluator Evaluator, options Options) *Engine {
	var e = &Engine{
		Options:   options,
		evaluator: evaluator,
		sg:        NewSearchGlobals(),
	}
	e.Prepare()
	e.strategy = NewSequential(e)
	return e
}

// Prepare sizes the transposition table to the current options; it is
// called again from `isready` after a setoption.
func (e *Engine) Prepare() {
	if e.transTable == nil || e.transTable.Size() != e.Options.Hash {
		e.transTable = newTransTable(e.Options.Hash)
	}
}

func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
}

func (e *Engine) Globals() *SearchGlobals {
	return e.sg
}

func (e *Engine) SetStrategy(s Strategy) {
	e.strategy = s
}

// SetProgress installs the per-iteration sink used outside the UCI
// layer, e.g. by the benchmark shell.
func (e *Engine) SetProgress(progress func(SearchInfo)) {
	e.progress = progress
}

// Sequential is the single-threaded strategy and the reference the
// parallel variants are checked against.
type Sequential struct {
	engine   *Engine
	searcher *searcher
}

func NewSequential(e *Engine) *Sequential {
	return &Sequential{engine: e, searcher: newSearcher(e)}
}

func (st *Sequential) RootSearch(pos *chess.Position, depth int) SearchResult {
	return st.SearchNode(pos, -Infinite, Infinite, depth, 0)
}

func (st *Sequential) SearchNode(pos *chess.Position, alpha, beta, depth, ply int) SearchResult {
	st.searcher.stack[ply].position = *pos
	var score = st.searcher.searchNode(alpha, beta, depth, ply)
	return SearchResult{Score: score, PV: st.searcher.stack[ply].pv.toSlice()}
}

// BestMoveSearch is the iterative-deepening driver. A stop flag that
// is already set on entry means no iteration runs and no move returns;
// otherwise the session state resets and each completed depth updates
// the best move and reports progress.
func (e *Engine) BestMoveSearch(pos *chess.Position, maxDepth int) chess.Move {
	if e.sg.Stop() {
		return chess.MoveEmpty
	}
	e.sg.SetStopFlag(false)
	e.sg.ResetNodes()
	e.sg.SetStartTime(time.Now())
	e.sg.SetSideToMove(pos.WhiteToMove)
	e.transTable.Clear()

	var bestMove = chess.MoveEmpty
	for depth := 1; depth <= maxDepth; depth++ {
		var result = e.strategy.RootSearch(pos, depth)
		if depth > 1 && e.sg.Stop() {
			return bestMove
		}
		if len(result.PV) > 0 {
			bestMove = result.PV[0]
		}
		if e.progress != nil {
			e.progress(SearchInfo{
				Depth:    depth,
				Score:    NewUciScore(result.Score),
				Nodes:    e.sg.Nodes(),
				Time:     time.Since(e.sg.StartTime()),
				MainLine: result.PV,
			})
		}
	}
	return bestMove
}

// Search adapts the driver to the UCI layer: it installs the game
// history for repetition detection, honors the context for `stop`, and
// reports each completed iteration through params.Progress.
func (e *Engine) Search(ctx context.Context, params SearchParams) SearchInfo {
	e.Prepare()
	var p = &params.Positions[len(params.Positions)-1]
	e.sg.SetStopFlag(false)
	e.sg.SetHistoryKeys(HistoryKeys(params.Positions))

	var done = make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			e.sg.SetStopFlag(true)
		case <-done:
		}
	}()

	var maxDepth = params.Limits.Depth
	if maxDepth <= 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}
	if params.Limits.MoveTime > 0 {
		var timer = time.AfterFunc(time.Duration(params.Limits.MoveTime)*time.Millisecond,
			func() { e.sg.SetStopFlag(true) })
		defer timer.Stop()
	}

	var last SearchInfo
	e.progress = func(si SearchInfo) {
		last = si
		if params.Progress != nil {
			params.Progress(si)
		}
	}
	defer func() { e.progress = nil }()

	var bestMove = e.BestMoveSearch(p, maxDepth)
	if len(last.MainLine) == 0 && bestMove != chess.MoveEmpty {
		last.MainLine = []chess.Move{bestMove}
	}
	return last
}
