package nnue

import (
	"fmt"
	"os"

	"github.com/kestrelchess/rosecore/internal/board"
)

// Evaluator bundles a loaded network with a per-search accumulator
// stack, mirroring the teacher's nnue.Evaluator wrapper.
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
}

// NewEvaluator loads weights from weightsFile, or falls back to
// deterministic random weights (for tests, or running without
// `EvalFile` configured) when weightsFile is empty.
func NewEvaluator(weightsFile string) (*Evaluator, error) {
	net := NewNetwork()

	if weightsFile != "" {
		f, err := os.Open(weightsFile)
		if err != nil {
			return nil, fmt.Errorf("nnue: opening weights file %q: %w", weightsFile, err)
		}
		defer f.Close()
		if err := net.LoadWeights(f); err != nil {
			return nil, fmt.Errorf("nnue: loading weights from %q: %w", weightsFile, err)
		}
	} else {
		net.InitRandom(0x5EED)
	}

	return &Evaluator{net: net, stack: NewAccumulatorStack()}, nil
}

// Evaluate returns the network's output in centipawns from the side
// to move's perspective, computing the accumulator from scratch if it
// has not been incrementally maintained up to this point.
func (e *Evaluator) Evaluate(pos *board.Position) int {
	acc := e.stack.Current()
	if !acc.Computed {
		acc.ComputeFull(pos, e.net)
	}
	return e.net.Forward(acc, pos.SideToMove.Index())
}

// Push advances the accumulator stack by one ply, ahead of a move
// being played.
func (e *Evaluator) Push() { e.stack.Push() }

// Pop returns the accumulator stack to its previous ply, after a move
// is unwound.
func (e *Evaluator) Pop() { e.stack.Pop() }

// Update incrementally applies m (already played: `before` is the
// position prior to the move) to the current accumulator.
func (e *Evaluator) Update(before *board.Position, m board.Move) {
	e.stack.Current().ApplyMove(e.net, before, m)
}

// Refresh forces a full recomputation of the current accumulator.
func (e *Evaluator) Refresh(pos *board.Position) {
	e.stack.Current().ComputeFull(pos, e.net)
}

// Reset clears the accumulator stack for a new game.
func (e *Evaluator) Reset() { e.stack.Reset() }
