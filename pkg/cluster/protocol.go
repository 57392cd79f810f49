// Package cluster implements root-splitting search over a byte
// stream: one master orders the root moves and farms the resulting
// child positions out to worker processes, which search them and
// reply with score, node count and principal variation.
package cluster

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Message tags. Every frame starts with its tag byte; dispatch frames
// only flow master to worker and result frames only the other way, so
// an unexpected tag means the stream is corrupt.
const (
	tagDispatch byte = 0
	tagResult   byte = 1
)

// Sentinel FEN lengths in a dispatch frame.
const (
	fenLenTerminate = -1
	fenLenIdle      = 0
)

const maxFenLen = 128

// Dispatch is one work item: search the position after a root move to
// the given depth. Terminate ends the worker loop, Idle tells a
// worker to keep waiting.
type Dispatch struct {
	FEN       string
	Depth     int
	Terminate bool
	Idle      bool
}

// Result is a worker's answer: score from the searched side's
// perspective, nodes spent on this item, and the PV in 16-bit moves.
type Result struct {
	Score      int32
	NodesDelta uint64
	PV         []uint16
}

func writeDispatch(w io.Writer, d Dispatch) error {
	var fenLen = int32(len(d.FEN))
	if d.Terminate {
		fenLen = fenLenTerminate
	} else if d.Idle {
		fenLen = fenLenIdle
	}
	if err := binary.Write(w, binary.BigEndian, tagDispatch); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, fenLen); err != nil {
		return err
	}
	if fenLen <= 0 {
		return nil
	}
	if _, err := io.WriteString(w, d.FEN); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, int32(d.Depth))
}

func readDispatch(r io.Reader) (Dispatch, error) {
	var tag byte
	if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
		return Dispatch{}, err
	}
	if tag != tagDispatch {
		return Dispatch{}, fmt.Errorf("cluster: unexpected tag %d, want dispatch", tag)
	}
	var fenLen int32
	if err := binary.Read(r, binary.BigEndian, &fenLen); err != nil {
		return Dispatch{}, err
	}
	switch {
	case fenLen == fenLenTerminate:
		return Dispatch{Terminate: true}, nil
	case fenLen == fenLenIdle:
		return Dispatch{Idle: true}, nil
	case fenLen < 0 || fenLen > maxFenLen:
		return Dispatch{}, fmt.Errorf("cluster: bad fen length %d", fenLen)
	}
	var fen = make([]byte, fenLen)
	if _, err := io.ReadFull(r, fen); err != nil {
		return Dispatch{}, err
	}
	var depth int32
	if err := binary.Read(r, binary.BigEndian, &depth); err != nil {
		return Dispatch{}, err
	}
	return Dispatch{FEN: string(fen), Depth: int(depth)}, nil
}

func writeResult(w io.Writer, res Result) error {
	if err := binary.Write(w, binary.BigEndian, tagResult); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, res.Score); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, res.NodesDelta); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(len(res.PV))); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, res.PV)
}

func readResult(r io.Reader) (Result, error) {
	var tag byte
	if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
		return Result{}, err
	}
	if tag != tagResult {
		return Result{}, fmt.Errorf("cluster: unexpected tag %d, want result", tag)
	}
	var res Result
	if err := binary.Read(r, binary.BigEndian, &res.Score); err != nil {
		return Result{}, err
	}
	if err := binary.Read(r, binary.BigEndian, &res.NodesDelta); err != nil {
		return Result{}, err
	}
	var pvLen int32
	if err := binary.Read(r, binary.BigEndian, &pvLen); err != nil {
		return Result{}, err
	}
	if pvLen < 0 || pvLen > maxFenLen {
		return Result{}, fmt.Errorf("cluster: bad pv length %d", pvLen)
	}
	if pvLen > 0 {
		res.PV = make([]uint16, pvLen)
		if err := binary.Read(r, binary.BigEndian, res.PV); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}
