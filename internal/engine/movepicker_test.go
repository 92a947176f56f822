package engine

import (
	"testing"

	"github.com/kestrelchess/rosecore/internal/board"
)

func TestMovePickerEmitsTTMoveFirst(t *testing.T) {
	pos := board.NewStartPosition()
	ttMove := board.NewDoublePush(board.E2, board.E4)
	mp := NewMovePicker(&pos, &History{}, ttMove, board.NoMove)

	m, ok := mp.Next()
	if !ok || m != ttMove {
		t.Fatalf("expected tt move first, got %v ok=%v", m, ok)
	}
}

func TestMovePickerEmitsEveryLegalMoveExactlyOnce(t *testing.T) {
	pos := board.NewStartPosition()
	mp := NewMovePicker(&pos, &History{}, board.NoMove, board.NoMove)

	seen := map[board.Move]bool{}
	for {
		m, ok := mp.Next()
		if !ok {
			break
		}
		if seen[m] {
			t.Fatalf("move %v emitted twice", m)
		}
		seen[m] = true
	}

	want := board.GenerateLegalMoves(&pos)
	if len(seen) != want.Len() {
		t.Fatalf("emitted %d moves, want %d", len(seen), want.Len())
	}
}

func TestMovePickerSkipQuietsOnlyEmitsNoisy(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/3n4/8/8/8/3RK3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	mp := NewMovePicker(&pos, &History{}, board.NoMove, board.NoMove)
	mp.SkipQuiets()

	for {
		m, ok := mp.Next()
		if !ok {
			break
		}
		if m.IsQuiet() {
			t.Fatalf("quiet move %v emitted despite SkipQuiets", m)
		}
	}
}
