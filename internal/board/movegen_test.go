package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func perft(pos Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	ml := GenerateLegalMoves(&pos)
	if depth == 1 {
		return uint64(ml.Len())
	}
	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		nodes += perft(pos.Move(ml.Get(i)), depth-1)
	}
	return nodes
}

func TestPerftStartPosition(t *testing.T) {
	cases := []struct {
		depth int
		want  uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}
	pos := NewStartPosition()
	for _, tc := range cases {
		require.Equalf(t, tc.want, perft(pos, tc.depth), "perft(%d)", tc.depth)
	}
}

// TestPerftKiwipete exercises castling, en passant and promotions, the
// classic second perft position.
func TestPerftKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	cases := []struct {
		depth int
		want  uint64
	}{
		{1, 48},
		{2, 2039},
	}
	for _, tc := range cases {
		require.Equalf(t, tc.want, perft(pos, tc.depth), "perft(%d)", tc.depth)
	}
}

func TestPerftEnPassantPin(t *testing.T) {
	// White's pawn has just double-pushed to b4; black's a4 pawn may take
	// it en passant on b3. Neither king shares the pawns' rank, so no
	// clearance pin applies and the capture must be generated.
	pos, err := ParseFEN("4k3/8/8/8/pP6/8/8/4K3 b - b3 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	ml := GenerateLegalMoves(&pos)
	found := false
	for i := 0; i < ml.Len(); i++ {
		if ml.Get(i).IsEnPassant() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected en passant capture to be generated, moves=%v", ml.Slice())
	}
}

func TestPerftEnPassantClearancePin(t *testing.T) {
	// White king and black rook share the 5th rank with the en passant
	// pawns sandwiched between them: capturing must be illegal because it
	// would expose the king to the rook along the rank.
	pos, err := ParseFEN("4k3/8/8/1K1pP2r/8/8/8/8 w - d6 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	ml := GenerateLegalMoves(&pos)
	for i := 0; i < ml.Len(); i++ {
		if ml.Get(i).IsEnPassant() {
			t.Fatalf("en passant capture should be illegal (clearance pin), got %v", ml.Get(i))
		}
	}
}

func TestCheckEvasionOnlyLegalResponses(t *testing.T) {
	pos, err := ParseFEN("rnb1kbnr/pppp1ppp/8/4p3/7q/5P2/PPPPP1PP/RNBQKBNR w KQkq - 1 3")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if !pos.InCheck() {
		t.Fatalf("expected side to move in check")
	}
	ml := GenerateLegalMoves(&pos)
	if ml.Len() == 0 {
		t.Fatalf("expected at least one legal evasion")
	}
	for i := 0; i < ml.Len(); i++ {
		np := pos.Move(ml.Get(i))
		if np.Attacks.CheckersMask(&np, pos.SideToMove) != 0 {
			t.Errorf("move %v leaves king in check", ml.Get(i))
		}
	}
}
