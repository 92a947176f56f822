package engine

import (
	"time"

	"github.com/kestrelchess/rosecore/internal/board"
)

// SearchInfo is the per-iteration progress report the search core hands
// to an EngineOutput, grounded on
// original_source/src/rose/engine_output.h's nested Info struct
// (depth, score, time, nodes, pv).
type SearchInfo struct {
	Depth Depth
	Score int
	Time  time.Duration
	Nodes uint64
	PV    []board.Move
}

// EngineOutput decouples the search core from how progress and the
// final choice get reported. The UCI layer implements a sink that
// writes "info ..."/"bestmove ..." lines; tests use NullOutput or
// RecordingOutput instead of parsing stdout.
type EngineOutput interface {
	Info(info SearchInfo)
	BestMove(m board.Move)
}

// NullOutput discards everything, for tests that only care about the
// move Run returns.
type NullOutput struct{}

func (NullOutput) Info(SearchInfo)     {}
func (NullOutput) BestMove(board.Move) {}

// RecordingOutput keeps every report it receives, for tests that
// assert on reported depths/scores/PVs without a UCI transcript.
type RecordingOutput struct {
	Infos   []SearchInfo
	Best    board.Move
	GotBest bool
}

func (r *RecordingOutput) Info(info SearchInfo) { r.Infos = append(r.Infos, info) }
func (r *RecordingOutput) BestMove(m board.Move) {
	r.Best = m
	r.GotBest = true
}
