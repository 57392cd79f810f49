package engine

import (
	"sync/atomic"
	"time"

	"github.com/peregrine-chess/peregrine/pkg/chess"
)

const (
	// MaxPly bounds the search stack; a node entered at MaxPly returns
	// the static evaluation without recursing.
	MaxPly = 64

	// Score ladder: Infinite > MateScore > MaxMateScore > any static
	// evaluation. A mate found at ply p scores MateScore - p.
	MateScore    = 30000
	MaxMateScore = MateScore - 2*MaxPly
	Infinite     = MateScore + 1
)

// SearchResult carries a node's score and, at PV nodes, the principal
// variation leading to it.
type SearchResult struct {
	Score int
	PV    []chess.Move
}

// SearchGlobals is the per-`go` session state shared by every search
// frame and every thread: the cooperative stop flag, the node counter,
// the clock, and the repetition history of the game so far.
type SearchGlobals struct {
	stop        atomic.Bool
	nodes       atomic.Int64
	startTime   time.Time
	whiteToMove bool
	historyKeys map[uint64]int
}

func NewSearchGlobals() *SearchGlobals {
	return &SearchGlobals{}
}

func (sg *SearchGlobals) Stop() bool {
	return sg.stop.Load()
}

func (sg *SearchGlobals) SetStopFlag(v bool) {
	sg.stop.Store(v)
}

func (sg *SearchGlobals) IncrementNodes() {
	sg.nodes.Add(1)
}

// AddNodes folds a worker's node delta into the global counter.
func (sg *SearchGlobals) AddNodes(n int64) {
	sg.nodes.Add(n)
}

func (sg *SearchGlobals) Nodes() int64 {
	return sg.nodes.Load()
}

func (sg *SearchGlobals) ResetNodes() {
	sg.nodes.Store(0)
}

func (sg *SearchGlobals) StartTime() time.Time {
	return sg.startTime
}

func (sg *SearchGlobals) SetStartTime(t time.Time) {
	sg.startTime = t
}

func (sg *SearchGlobals) SideToMove() bool {
	return sg.whiteToMove
}

func (sg *SearchGlobals) SetSideToMove(whiteToMove bool) {
	sg.whiteToMove = whiteToMove
}

// SetHistoryKeys installs the zobrist keys of the game leading to the
// search root, counted per occurrence; repetition detection consults
// them below the oldest stack frame.
func (sg *SearchGlobals) SetHistoryKeys(keys map[uint64]int) {
	sg.historyKeys = keys
}

// HistoryKeys builds the repetition map from a game line, most recent
// position last. Positions older than the last irreversible move
// cannot repeat and are skipped.
func HistoryKeys(positions []chess.Position) map[uint64]int {
	var result = make(map[uint64]int)
	for i := len(positions) - 1; i >= 0; i-- {
		var p = &positions[i]
		result[p.Key]++
		if p.Rule50 == 0 {
			break
		}
	}
	return result
}

// SearchParams carries one UCI `go` request: the game line so far
// (current position last), the limits, and a progress sink invoked per
// completed iteration.
type SearchParams struct {
	Positions []chess.Position
	Limits    LimitsType
	Progress  func(SearchInfo)
}

// SearchInfo is one UCI info line worth of data.
type SearchInfo struct {
	Score    UciScore
	Depth    int
	Nodes    int64
	Time     time.Duration
	MainLine []chess.Move
}

// UciScore is either centipawns or a mate distance in full moves; a
// non-zero Mate wins.
type UciScore struct {
	Centipawns int
	Mate       int
}

// LimitsType mirrors the UCI `go` arguments.
type LimitsType struct {
	Ponder         bool
	Infinite       bool
	WhiteTime      int
	BlackTime      int
	WhiteIncrement int
	BlackIncrement int
	MoveTime       int
	MovesToGo      int
	Depth          int
	Nodes          int
	Mate           int
}
