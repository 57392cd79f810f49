package main

import (
	"net"
	"os"
	"runtime"
	"time"

	"github.com/namsral/flag"
	"github.com/rs/zerolog"

	"github.com/peregrine-chess/peregrine/pkg/cluster"
	"github.com/peregrine-chess/peregrine/pkg/engine"
	"github.com/peregrine-chess/peregrine/pkg/eval"
)

func main() {
	var (
		flgConnect  string
		flgThreads  int
		flgSmp      bool
		flgHash     int
		flgLogLevel string
	)
	var fs = flag.NewFlagSetWithEnvPrefix(os.Args[0], "PEREGRINE", flag.ExitOnError)
	fs.StringVar(&flgConnect, "connect", "localhost:9370", "master address")
	fs.IntVar(&flgThreads, "threads", defaultWorkerThreads(), "threads for -smp search")
	fs.BoolVar(&flgSmp, "smp", false, "run items on the shared-tt searcher (hybrid mode)")
	fs.IntVar(&flgHash, "hash", 16, "transposition table megabytes")
	fs.StringVar(&flgLogLevel, "log-level", "info", "zerolog level")
	fs.Parse(os.Args[1:])

	var lvl, err = zerolog.ParseLevel(flgLogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()

	var conn, dialErr = net.Dial("tcp", flgConnect)
	if dialErr != nil {
		log.Fatal().Err(dialErr).Str("addr", flgConnect).Msg("dial master failed")
	}
	defer conn.Close()

	var options = engine.NewOptions()
	options.Hash = flgHash
	options.Threads = flgThreads
	var eng = engine.NewEngine(eval.NewEvaluationService(), options)

	var worker *cluster.Worker
	if flgSmp {
		worker = cluster.NewHybridWorker(eng, flgThreads, log)
		log.Info().Int("threads", flgThreads).Msg("hybrid worker ready")
	} else {
		worker = cluster.NewWorker(eng, log)
		log.Info().Msg("worker ready")
	}

	if err := worker.Serve(conn); err != nil {
		log.Fatal().Err(err).Msg("worker loop failed")
	}
}

// Worker processes co-reside with the master on small clusters, so
// half the hardware threads avoids oversubscription.
func defaultWorkerThreads() int {
	if n := runtime.NumCPU() / 2; n > 1 {
		return n
	}
	return 1
}
