package pool

import (
	"testing"

	"github.com/kestrelchess/rosecore/internal/board"
	"github.com/kestrelchess/rosecore/internal/engine"
	"github.com/kestrelchess/rosecore/internal/game"
)

type materialEvaluator struct{}

func (materialEvaluator) Evaluate(pos *board.Position) int {
	var score int
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c != pos.SideToMove {
			sign = -1
		}
		for id := 0; id < board.MaxPieceID; id++ {
			pt := pos.Kind[c][id]
			if pos.PieceSq[c][id] == board.NoSquare || pt == board.NoPieceType {
				continue
			}
			score += sign * board.PieceValue[pt]
		}
	}
	return score
}

func TestPoolRunsEveryWorkerAndReturnsLegalMoves(t *testing.T) {
	const n = 4
	tt := engine.NewTable(1)
	p := New(n, tt, materialEvaluator{}, engine.NullOutput{}, 0)
	p.Start()
	defer p.Stop()

	g := game.New()
	results := p.Go(g, engine.AllControl{Depth: 2})

	if len(results) != n {
		t.Fatalf("got %d results, want %d", len(results), n)
	}

	legal := board.GenerateLegalMoves(g.Position())
	for _, r := range results {
		if !legal.Contains(r.Move) {
			t.Fatalf("worker %d returned illegal move %s", r.WorkerID, r.Move)
		}
	}
}

func TestPoolStopsCleanly(t *testing.T) {
	tt := engine.NewTable(1)
	p := New(2, tt, materialEvaluator{}, engine.NullOutput{}, 0)
	p.Start()
	p.Go(game.New(), engine.AllControl{Depth: 1})
	p.Stop()
}
