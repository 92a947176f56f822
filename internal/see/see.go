// Package see implements Static Exchange Evaluation: a cheap,
// search-free estimate of the material outcome of a capture sequence
// on one square, used by move ordering and pruning to discard captures
// that lose material without running a full search on them.
//
// The algorithm is a scalar "swap list" walk: repeatedly remove the
// least valuable attacker of the side to move on the target square,
// alternating sides, accumulating a running score, until one side has
// no attacker left or the running score makes the outcome certain.
// This is the same exchange walk as the vectorised original
// (original_source/src/rose/see.cpp); the ray-geometry permute/gf2p8
// tricks it uses to find the "nearest attacker per direction" are
// replaced here with a plain per-square attack-mask scan, since the
// byte-mailbox board already makes that scan cheap and branch-light.
package see

import (
	"math/bits"

	"github.com/kestrelchess/rosecore/internal/board"
)

// value mirrors board.PieceValue but is duplicated locally since SEE's
// accounting must stay stable even if callers retune search-time piece
// values independently of the exchange evaluator.
var value = [7]int{0, 100, 300, 10000, 300, 500, 900}

// Evaluate reports whether the material result of playing m in pos,
// then continuing the capture sequence on m.To() to its conclusion, is
// at least threshold centipawns for the side to move (spec §4.7).
func Evaluate(pos *board.Position, m board.Move, threshold int) bool {
	if m.IsCastle() {
		return 0 >= threshold
	}

	from, to := m.From(), m.To()
	us := pos.SideToMove

	var victimType board.PieceType
	if m.IsEnPassant() {
		victimType = board.Pawn
	} else {
		victimType = pos.Board[to].Type()
	}
	score := value[victimType]
	if m.IsPromotion() {
		score += value[m.PromotionPiece()] - value[board.Pawn]
	}
	score -= threshold
	if score < 0 {
		return false
	}

	movingType := pos.Board[from].Type()
	if m.IsPromotion() {
		movingType = m.PromotionPiece()
	}
	score -= value[movingType]
	if score >= 0 {
		return true
	}

	// Scratch board with the moving piece gone from `from`, landed at
	// `to` is irrelevant to the exchange walk (only occupancy of `to`
	// as the battle square matters, and it is always treated as
	// occupied by the walk below regardless of its real contents).
	bb := pos.Board
	bb[from] = board.EmptyPlace
	if m.IsEnPassant() {
		victimSq := board.NewSquare(to.File(), from.Rank())
		bb[victimSq] = board.EmptyPlace
	}

	side := us.Other()
	for {
		attackers := attackersTo(&bb, to) & bb.ColorBitboard(side)
		if attackers == 0 {
			break
		}
		sq, pt := leastValuableAttacker(&bb, attackers)
		bb[sq] = board.EmptyPlace

		score = -score - 1 - value[pt]
		side = side.Other()

		if pt == board.King {
			if attackersTo(&bb, to)&bb.ColorBitboard(side) != 0 {
				// The king capture would walk into check; the exchange
				// cannot actually be completed this way, so the side
				// that tried it does not get credit for it.
				side = side.Other()
			}
			break
		}

		if score >= 0 {
			break
		}
	}

	return side != us
}

// attackersTo returns the bitboard of every square, either colour,
// holding a piece that currently attacks sq on board bb.
func attackersTo(bb *board.Byteboard, sq board.Square) uint64 {
	var out uint64
	for i := 0; i < 64; i++ {
		p := bb[i]
		if p.IsEmpty() {
			continue
		}
		if board.AttacksFromSquare(bb, board.Square(i), p.Type(), p.Color())&(1<<uint(sq)) != 0 {
			out |= 1 << uint(i)
		}
	}
	return out
}

// leastValuableAttacker picks, among the attacker squares in mask, the
// one holding the cheapest piece type (pawn first, king last).
func leastValuableAttacker(bb *board.Byteboard, mask uint64) (board.Square, board.PieceType) {
	bestSq := board.NoSquare
	bestVal := 1 << 30
	var bestType board.PieceType
	for mask != 0 {
		i := bits.TrailingZeros64(mask)
		mask &= mask - 1
		sq := board.Square(i)
		pt := bb[sq].Type()
		if value[pt] < bestVal {
			bestVal = value[pt]
			bestSq = sq
			bestType = pt
		}
	}
	return bestSq, bestType
}
