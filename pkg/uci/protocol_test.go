package uci

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peregrine-chess/peregrine/pkg/chess"
	"github.com/peregrine-chess/peregrine/pkg/engine"
)

func TestSearchInfoToUci(t *testing.T) {
	var m1, _ = chess.NewPositionFromFEN(chess.InitialPositionFen)
	var e2e4, ok = m1.MakeMoveLAN("e2e4")
	require.True(t, ok)

	var line = searchInfoToUci(engine.SearchInfo{
		Depth:    7,
		Score:    engine.UciScore{Centipawns: 33},
		Nodes:    128000,
		Time:     time.Second,
		MainLine: []chess.Move{e2e4.LastMove},
	})
	assert.Equal(t, "info depth 7 score cp 33 time 1000 nodes 128000 nps 127872 pv e2e4", line)

	var mate = searchInfoToUci(engine.SearchInfo{
		Depth: 3,
		Score: engine.UciScore{Mate: 2},
	})
	assert.Contains(t, mate, "score mate 2")
}

func TestParseLimits(t *testing.T) {
	var limits = parseLimits([]string{"depth", "9", "movetime", "1500", "infinite"})
	assert.Equal(t, 9, limits.Depth)
	assert.Equal(t, 1500, limits.MoveTime)
	assert.True(t, limits.Infinite)
}

func TestPositionCommand(t *testing.T) {
	var p = New("test", "tester", "dev", nil, nil, zerolog.Nop())

	require.NoError(t, p.positionCommand([]string{"startpos", "moves", "e2e4", "c7c5"}))
	assert.Len(t, p.positions, 3)
	var last = p.positions[len(p.positions)-1]
	assert.True(t, last.WhiteToMove)

	require.NoError(t, p.positionCommand([]string{
		"fen", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8", "w", "-", "-", "0", "1",
	}))
	assert.Len(t, p.positions, 1)

	assert.Error(t, p.positionCommand([]string{"startpos", "moves", "e2e5"}))
	assert.Error(t, p.positionCommand([]string{"gibberish"}))
}

func TestOptionSet(t *testing.T) {
	var hash = 16
	var opt = IntOption{Name: "Hash", Min: 4, Max: 1024, Value: &hash}
	require.NoError(t, opt.Set("64"))
	assert.Equal(t, 64, hash)
	assert.Error(t, opt.Set("4096"))
	assert.Contains(t, opt.UciString(), "type spin default 64")

	var flag = false
	var b = BoolOption{Name: "NullMove", Value: &flag}
	require.NoError(t, b.Set("true"))
	assert.True(t, flag)
}
