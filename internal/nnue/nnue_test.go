package nnue

import (
	"testing"

	"github.com/kestrelchess/rosecore/internal/board"
)

func TestFeatureIndexRangeAndDistinctness(t *testing.T) {
	seen := map[int]bool{}
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.Queen; pt++ {
			if pt == board.NoPieceType {
				continue
			}
			for sq := board.Square(0); sq < 64; sq++ {
				idx := FeatureIndex(board.White, c, pt, sq)
				if idx < 0 || idx >= InputSize {
					t.Fatalf("feature index %d out of range", idx)
				}
				if seen[idx] {
					t.Fatalf("duplicate feature index %d", idx)
				}
				seen[idx] = true
			}
		}
	}
	if len(seen) != InputSize {
		t.Fatalf("got %d distinct features, want %d", len(seen), InputSize)
	}
}

func TestIncrementalAccumulatorMatchesFullRecompute(t *testing.T) {
	net := NewNetwork()
	net.InitRandom(7)

	pos := board.NewStartPosition()
	var full, incremental Accumulator
	full.ComputeFull(&pos, net)
	incremental.ComputeFull(&pos, net)

	m := board.NewDoublePush(board.E2, board.E4)
	next := pos.Move(m)

	incremental.ApplyMove(net, &pos, m)
	full.ComputeFull(&next, net)

	for p := board.White; p <= board.Black; p++ {
		for i := 0; i < L1Size; i++ {
			if full.Values[p][i] != incremental.Values[p][i] {
				t.Fatalf("perspective %v slot %d: full=%d incremental=%d", p, i, full.Values[p][i], incremental.Values[p][i])
			}
		}
	}
}
