package main

import (
	"io"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/namsral/flag"
	"github.com/rs/zerolog"

	"github.com/peregrine-chess/peregrine/pkg/cluster"
	"github.com/peregrine-chess/peregrine/pkg/engine"
	"github.com/peregrine-chess/peregrine/pkg/eval"
	"github.com/peregrine-chess/peregrine/pkg/uci"
)

const (
	name   = "Peregrine"
	author = "Peregrine authors"
)

var versionName = "dev"

func main() {
	var (
		flgStrategy string
		flgThreads  int
		flgListen   string
		flgWorkers  int
		flgHash     int
		flgLogLevel string
	)
	var fs = flag.NewFlagSetWithEnvPrefix(os.Args[0], "PEREGRINE", flag.ExitOnError)
	fs.StringVar(&flgStrategy, "strategy", "sequential", "search strategy: sequential|smp|cluster|hybrid")
	fs.IntVar(&flgThreads, "threads", runtime.NumCPU(), "shared-tt searcher thread count")
	fs.StringVar(&flgListen, "listen", "localhost:9370", "master bind address for cluster/hybrid")
	fs.IntVar(&flgWorkers, "workers", 0, "worker connections to wait for")
	fs.IntVar(&flgHash, "hash", 16, "transposition table megabytes")
	fs.StringVar(&flgLogLevel, "log-level", "info", "zerolog level")
	fs.Parse(os.Args[1:])

	var log = newLogger(flgLogLevel)
	log.Info().
		Str("version", versionName).
		Str("strategy", flgStrategy).
		Str("go", runtime.Version()).
		Int("cpus", runtime.NumCPU()).
		Msg("starting")

	var options = engine.NewOptions()
	options.Hash = flgHash
	options.Threads = flgThreads
	var eng = engine.NewEngine(eval.NewEvaluationService(), options)

	var uciOptions = []uci.Option{
		&uci.IntOption{Name: "Hash", Min: 4, Max: 1 << 16, Value: &eng.Options.Hash},
		&uci.BoolOption{Name: "NullMove", Value: &eng.Options.NullMove},
		&uci.BoolOption{Name: "LMR", Value: &eng.Options.LMR},
	}

	switch flgStrategy {
	case "sequential":
		// the engine default
	case "smp":
		var smp = engine.NewSharedTT(eng, flgThreads)
		eng.SetStrategy(smp)
		uciOptions = append(uciOptions,
			&uci.IntOption{Name: "Threads", Min: 1, Max: runtime.NumCPU(), Value: &smp.Threads})
	case "cluster", "hybrid":
		var master, err = startMaster(eng, flgListen, flgWorkers, flgThreads, flgStrategy, log)
		if err != nil {
			log.Fatal().Err(err).Msg("cluster bootstrap failed")
		}
		defer master.Close()
		eng.SetStrategy(master)
	default:
		log.Fatal().Str("strategy", flgStrategy).Msg("unknown strategy")
	}

	var protocol = uci.New(name, author, versionName, eng, uciOptions, log)
	protocol.Run()
}

// startMaster waits for the expected workers to dial in; with none
// expected the master degrades to its local fallback searcher.
func startMaster(eng *engine.Engine, listen string, workers, threads int, strategy string, log zerolog.Logger) (*cluster.Master, error) {
	var conns []io.ReadWriter
	if workers > 0 {
		var ln, err = net.Listen("tcp", listen)
		if err != nil {
			return nil, err
		}
		defer ln.Close()
		log.Info().Str("addr", listen).Int("workers", workers).Msg("waiting for workers")
		conns, err = cluster.AcceptWorkers(ln, workers, log)
		if err != nil {
			return nil, err
		}
	}
	var fallback engine.NodeSearcher
	if strategy == "hybrid" {
		fallback = engine.NewSharedTT(eng, threads)
	} else {
		fallback = engine.NewSequential(eng)
	}
	return cluster.NewMaster(eng, fallback, conns, log), nil
}

func newLogger(level string) zerolog.Logger {
	var lvl, err = zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	var output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}
