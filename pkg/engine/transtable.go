package engine

import (
	"sync/atomic"

	"github.com/peregrine-chess/peregrine/pkg/chess"
)

const (
	boundExact = iota + 1
	boundLower
	boundUpper
)

// transEntry holds key XOR data next to data, so that a write torn
// between the two words fails the key check on the next probe and is
// simply ignored. No slot locks.
type transEntry struct {
	xorKey atomic.Uint64
	data   atomic.Uint64
}

// data layout: move in bits 0-20, depth 21-28, bound 29-30, score
// (int16, two's complement) 32-47.
func packEntry(depth, score, bound int, move chess.Move) uint64 {
	return uint64(uint32(move)&0x1fffff) |
		uint64(depth&0xff)<<21 |
		uint64(bound&3)<<29 |
		uint64(uint16(int16(score)))<<32
}

func unpackEntry(data uint64) (depth, score, bound int, move chess.Move) {
	move = chess.Move(data & 0x1fffff)
	depth = int(data >> 21 & 0xff)
	bound = int(data >> 29 & 3)
	score = int(int16(uint16(data >> 32)))
	return
}

type transTable struct {
	megabytes int
	entries   []transEntry
	mask      uint64
}

func roundPowerOfTwo(size int) int {
	var x = 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

func newTransTable(megabytes int) *transTable {
	var size = roundPowerOfTwo(1024 * 1024 * megabytes / 16)
	return &transTable{
		megabytes: megabytes,
		entries:   make([]transEntry, size),
		mask:      uint64(size - 1),
	}
}

func (tt *transTable) Size() int {
	return tt.megabytes
}

func (tt *transTable) Clear() {
	for i := range tt.entries {
		tt.entries[i].xorKey.Store(0)
		tt.entries[i].data.Store(0)
	}
}

func (tt *transTable) Read(key uint64) (depth, score, bound int, move chess.Move, ok bool) {
	var entry = &tt.entries[key&tt.mask]
	var xorKey = entry.xorKey.Load()
	var data = entry.data.Load()
	if data == 0 || xorKey^data != key {
		return
	}
	depth, score, bound, move = unpackEntry(data)
	ok = true
	return
}

// Update overwrites the slot when it belongs to another position or
// when the stored depth does not exceed the incoming one, so deeper
// entries survive and ties go to the newer result.
func (tt *transTable) Update(key uint64, depth, score, bound int, move chess.Move) {
	var entry = &tt.entries[key&tt.mask]
	var oldXor = entry.xorKey.Load()
	var oldData = entry.data.Load()
	if oldData != 0 && oldXor^oldData == key {
		var oldDepth, _, _, _ = unpackEntry(oldData)
		if oldDepth > depth {
			return
		}
	}
	var data = packEntry(depth, score, bound, move)
	entry.xorKey.Store(key ^ data)
	entry.data.Store(data)
}
