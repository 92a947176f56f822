package engine

import (
	"testing"

	"github.com/kestrelchess/rosecore/internal/board"
	"github.com/kestrelchess/rosecore/internal/game"
)

// materialEvaluator is a trivial Evaluator stand-in for search tests:
// plain material count from the side to move's perspective, with no
// positional knowledge, so tests can assert on tactical correctness
// without depending on a trained network.
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

func newTestSearch(g *game.Game) (*Search, *RecordingOutput) {
	out := &RecordingOutput{}
	s := NewSearch(g, NewTable(1), materialEvaluator{}, out)
	return s, out
}

func TestSearchFindsMateInOne(t *testing.T) {
	pos, err := board.ParseFEN("6k1/8/6K1/8/8/8/8/R7 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	g := game.New()
	g.SetPosition(pos)

	s, out := newTestSearch(g)
	best := s.Run(AllControl{Depth: 3})

	if !out.GotBest {
		t.Fatalf("expected a reported best move")
	}
	if best != board.NewMove(board.A1, board.A8) {
		t.Fatalf("expected Ra8#, got %s", best)
	}
}

func TestSearchWinsFreeKnight(t *testing.T) {
	// The knight on d6 is undefended; the queen on d1 can win it outright.
	pos, err := board.ParseFEN("4k3/8/3n4/8/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	g := game.New()
	g.SetPosition(pos)

	s, _ := newTestSearch(g)
	best := s.Run(AllControl{Depth: 4})

	if best.From() != board.D1 || best.To() != board.D6 {
		t.Fatalf("expected Qxd6, got %s", best)
	}
}

func TestSearchReportsIncreasingDepth(t *testing.T) {
	g := game.New()
	s, out := newTestSearch(g)
	s.Run(AllControl{Depth: 3})

	if len(out.Infos) == 0 {
		t.Fatalf("expected at least one Info report")
	}
	for i, info := range out.Infos {
		if int(info.Depth) != i+1 {
			t.Fatalf("info[%d]: depth=%d, want %d", i, info.Depth, i+1)
		}
	}
}

func TestSearchDetectsStalemateAsDraw(t *testing.T) {
	// Classic stalemate: black king a8 has no legal move and is not in check.
	pos, err := board.ParseFEN("k7/8/1Q6/8/8/8/8/1K6 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	ml := board.GenerateLegalMoves(&pos)
	if ml.Len() != 0 {
		t.Fatalf("expected stalemate position to have no legal moves, got %d", ml.Len())
	}
	if pos.InCheck() {
		t.Fatalf("expected stalemate position not to be in check")
	}

	g := game.New()
	g.SetPosition(pos)
	s, out := newTestSearch(g)
	s.Run(AllControl{Depth: 1})
	if len(out.Infos) == 0 || out.Infos[0].Score != 0 {
		t.Fatalf("expected search to score stalemate as 0, got %+v", out.Infos)
	}
}
