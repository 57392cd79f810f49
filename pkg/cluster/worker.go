package cluster

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/peregrine-chess/peregrine/pkg/chess"
	"github.com/peregrine-chess/peregrine/pkg/engine"
)

// Worker answers dispatch frames until the master terminates it. Each
// item searches the received position one ply short of the master's
// depth, from ply 1, with the full window; the reply carries the score
// from the worker's side to move.
type Worker struct {
	engine   *engine.Engine
	searcher engine.NodeSearcher
	log      zerolog.Logger
}

// NewWorker runs items on the sequential searcher. NewHybridWorker
// swaps in the shared-TT searcher instead.
func NewWorker(e *engine.Engine, log zerolog.Logger) *Worker {
	return &Worker{
		engine:   e,
		searcher: engine.NewSequential(e),
		log:      log,
	}
}

// NewHybridWorker nests the multithreaded searcher inside the work
// pool. Workers co-reside with the master and with each other, so the
// thread count should stay at about half the hardware threads.
func NewHybridWorker(e *engine.Engine, threads int, log zerolog.Logger) *Worker {
	return &Worker{
		engine:   e,
		searcher: engine.NewSharedTT(e, threads),
		log:      log,
	}
}

// Serve is the worker loop. It returns nil after a terminate frame;
// otherwise it returns the transport error, or an error for a
// dispatched position that does not parse. The transposition table persists
// across items; entries are keyed by position, so stale generations
// are harmless and often useful at the next depth.
func (w *Worker) Serve(rw io.ReadWriter) error {
	for {
		var d, err = readDispatch(rw)
		if err != nil {
			return err
		}
		if d.Terminate {
			w.log.Debug().Msg("worker terminating")
			return nil
		}
		if d.Idle {
			continue
		}

		var pos, posErr = chess.NewPositionFromFEN(d.FEN)
		if posErr != nil {
			return fmt.Errorf("cluster: dispatched position rejected: %w", posErr)
		}

		var sg = w.engine.Globals()
		var before = sg.Nodes()
		var result = w.searcher.SearchNode(&pos, -engine.Infinite, engine.Infinite, d.Depth-1, 1)
		var delta = sg.Nodes() - before

		var pv = make([]uint16, len(result.PV))
		for i, move := range result.PV {
			pv[i] = move.Value16()
		}
		w.log.Debug().
			Int("depth", d.Depth-1).
			Int("score", result.Score).
			Int64("nodes", delta).
			Msg("work item complete")

		if err := writeResult(rw, Result{
			Score:      int32(result.Score),
			NodesDelta: uint64(delta),
			PV:         pv,
		}); err != nil {
			return err
		}
	}
}
