package see_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelchess/rosecore/internal/board"
	"github.com/kestrelchess/rosecore/internal/see"
)

func TestEvaluateSimpleWinningCapture(t *testing.T) {
	// White rook takes an undefended black knight: clearly >= 0.
	pos, err := board.ParseFEN("4k3/8/8/3n4/8/8/8/3RK3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	m := board.NewCapture(board.D1, board.D5)
	if !see.Evaluate(&pos, m, 0) {
		t.Fatalf("expected winning capture to pass threshold 0")
	}
}

func TestEvaluateLosingCapture(t *testing.T) {
	// White queen takes a pawn defended by a rook behind it: losing the
	// queen for a pawn is a net loss, should fail threshold 0.
	pos, err := board.ParseFEN("3r2k1/8/8/3p4/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	m := board.NewCapture(board.D1, board.D5)
	if see.Evaluate(&pos, m, 0) {
		t.Fatalf("expected queen-takes-defended-pawn to fail threshold 0")
	}
}

func TestEvaluateRookTakesPawnBehindBatteries(t *testing.T) {
	// The canonical boundary case: White's d-file rook takes the pawn on
	// d4, backed by a queen/bishop battery behind it and opposed by a
	// black rook/knight battery in front. The full exchange nets exactly
	// -100 for White (a pawn down once the dust settles), so it clears a
	// threshold of -100 but not -99.
	pos, err := board.ParseFEN("3r3k/3r4/2n1n3/8/3p4/2PR4/1B1Q4/3R3K w - - 0 1")
	require.NoError(t, err)
	m := board.NewCapture(board.D3, board.D4)
	require.True(t, see.Evaluate(&pos, m, -100), "expected threshold -100 to pass")
	require.False(t, see.Evaluate(&pos, m, -99), "expected threshold -99 to fail")
}

func TestEvaluateEqualTradeMeetsZeroThreshold(t *testing.T) {
	// Rook takes rook, recaptured by the other rook: net material change
	// is zero (d8's rook recaptures on d5 once it is vacant).
	pos, err := board.ParseFEN("3rk3/8/8/3r4/8/8/8/3RK3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	m := board.NewCapture(board.D1, board.D5)
	if !see.Evaluate(&pos, m, 0) {
		t.Fatalf("expected an even rook trade to meet threshold 0")
	}
}
