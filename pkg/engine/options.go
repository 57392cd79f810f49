package engine

// Options are the tunables the UCI layer and the command line expose.
// NullMove and LMR change search results and default off; the gated
// extras only pay off in long games.
type Options struct {
	Hash     int // transposition table size, megabytes
	Threads  int // shared-TT searcher thread count
	NullMove bool
	LMR      bool
}

func NewOptions() Options {
	return Options{
		Hash:    16,
		Threads: 1,
	}
}
