// peregrine-hybrid is the benchmark shell for the nested strategy:
// a root-splitting master over in-process workers that each run the
// shared-TT multithreaded searcher.
//
// Usage: peregrine-hybrid <position-index> <depth>
package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/namsral/flag"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/peregrine-chess/peregrine/pkg/chess"
	"github.com/peregrine-chess/peregrine/pkg/cluster"
	"github.com/peregrine-chess/peregrine/pkg/engine"
	"github.com/peregrine-chess/peregrine/pkg/eval"
	"github.com/peregrine-chess/peregrine/pkg/uci"
)

var testPositions = []string{
	chess.InitialPositionFen,
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"rnbqkb1r/pppppppp/5n2/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 1 2",
}

func main() {
	var (
		flgWorkers  int
		flgThreads  int
		flgLogLevel string
	)
	var fs = flag.NewFlagSetWithEnvPrefix("peregrine-hybrid", "PEREGRINE", flag.ExitOnError)
	fs.IntVar(&flgWorkers, "workers", 2, "in-process workers")
	fs.IntVar(&flgThreads, "threads", defaultThreads(), "shared-tt threads per worker")
	fs.StringVar(&flgLogLevel, "log-level", "warn", "zerolog level")
	fs.Parse(os.Args[1:])

	var lvl, err = zerolog.ParseLevel(flgLogLevel)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()

	var positionIndex, maxDepth = 0, 6
	var args = fs.Args()
	if len(args) > 0 {
		positionIndex, _ = strconv.Atoi(args[0])
	}
	if len(args) > 1 {
		maxDepth, _ = strconv.Atoi(args[1])
	}
	if positionIndex < 0 || positionIndex >= len(testPositions) {
		positionIndex = 0
	}
	if maxDepth < 1 {
		maxDepth = 1
	}

	fmt.Println("Hybrid work-pool chess engine")
	fmt.Printf("Workers: %v\n", flgWorkers)
	fmt.Printf("Threads per worker: %v\n", flgThreads)
	fmt.Printf("Total parallel units: %v\n", flgWorkers*flgThreads)
	fmt.Println("----------------------------------------")
	fmt.Printf("Testing position %v: %v\n", positionIndex, testPositions[positionIndex])

	var pos, posErr = chess.NewPositionFromFEN(testPositions[positionIndex])
	if posErr != nil {
		log.Fatal().Err(posErr).Msg("bad test position")
	}

	var g errgroup.Group
	var conns = make([]io.ReadWriter, flgWorkers)
	for i := range conns {
		var masterSide, workerSide = net.Pipe()
		conns[i] = masterSide
		g.Go(func() error {
			var options = engine.NewOptions()
			options.Threads = flgThreads
			var worker = cluster.NewHybridWorker(
				engine.NewEngine(eval.NewEvaluationService(), options), flgThreads, log)
			var err = worker.Serve(workerSide)
			if err == io.EOF || err == io.ErrClosedPipe {
				return nil
			}
			return err
		})
	}

	var eng = engine.NewEngine(eval.NewEvaluationService(), engine.NewOptions())
	var master = cluster.NewMaster(eng, engine.NewSharedTT(eng, flgThreads), conns, log)
	eng.SetStrategy(master)
	eng.SetProgress(func(si engine.SearchInfo) {
		fmt.Println(uci.FormatInfo(si))
	})

	var start = time.Now()
	var bestMove = eng.BestMoveSearch(&pos, maxDepth)
	var elapsed = time.Since(start)

	master.Close()
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("worker failed")
	}

	fmt.Println("----------------------------------------")
	if bestMove != chess.MoveEmpty {
		fmt.Printf("Best move: %v\n", bestMove)
	} else {
		fmt.Println("No best move found")
	}
	var nodes = eng.Globals().Nodes()
	fmt.Printf("Total search time: %v ms\n", elapsed.Milliseconds())
	fmt.Printf("Total nodes searched: %v\n", nodes)
	if ms := elapsed.Milliseconds(); ms > 0 {
		fmt.Printf("Nodes per second: %v\n", nodes*1000/ms)
	}
}

func defaultThreads() int {
	if n := runtime.NumCPU() / 2; n > 1 {
		return n
	}
	return 1
}
