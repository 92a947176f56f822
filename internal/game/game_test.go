package game

import (
	"testing"

	"github.com/kestrelchess/rosecore/internal/board"
)

func TestMoveAndUnmoveRoundTrip(t *testing.T) {
	g := New()
	start := *g.Position()

	m := board.NewDoublePush(board.E2, board.E4)
	g.Move(m)
	if g.Position().Hash == start.Hash {
		t.Fatalf("expected hash to change after a move")
	}

	g.Unmove()
	if g.Position().Hash != start.Hash {
		t.Fatalf("expected unmove to restore the starting hash")
	}
}

func TestThreefoldRepetitionDetected(t *testing.T) {
	g := New()
	knightOut := []board.Move{
		board.NewMove(board.G1, board.F3),
		board.NewMove(board.G8, board.F6),
		board.NewMove(board.F3, board.G1),
		board.NewMove(board.F6, board.G8),
	}

	for rep := 0; rep < 2; rep++ {
		for _, m := range knightOut {
			if g.IsRepetition(3) {
				t.Fatalf("repetition flagged too early")
			}
			g.Move(m)
		}
	}
	if !g.IsRepetition(3) {
		t.Fatalf("expected threefold repetition after returning to the start position twice more")
	}
}

func TestIsDrawByFiftyMoveRule(t *testing.T) {
	g := New()
	pos := *g.Position()
	pos.HalfMoveClock = 100
	g.SetPosition(pos)
	if !g.IsDraw() {
		t.Fatalf("expected a draw at half-move clock 100")
	}
}
