package engine

import "github.com/kestrelchess/rosecore/internal/board"

// History tuning constants (grounded on original_source/src/rose's
// tunable:: constants referenced by history.cpp; this core picks
// concrete values since the original's tunable parameter system is out
// of scope).
const (
	historyBonusScale = 300
	historyBonusConst = 0
	historyBonusMax   = 2500
	historyMax        = 16384
)

// History is the quiet-move "butterfly" history table (spec §4.11),
// indexed by side to move, origin square and destination square. It
// never clears to exactly zero on a malus update: the gravity term
// `h * bonus / historyMax` pulls every entry back toward zero a little
// on every update, in either direction, so a move that was once good
// and is now consistently bad decays instead of requiring a hard
// reset (original_source/src/rose/history.cpp).
type History struct {
	table [2][64][64]int16
}

// Clear zeroes the whole table (new game / "ucinewgame").
func (h *History) Clear() {
	h.table = [2][64][64]int16{}
}

// Update applies a gravity-style bonus or malus to the (from, to) cell
// for colour us's move m, scaled by depth. good selects a bonus
// (raised a beta cutoff) or a malus (quiet move tried and failed).
func (h *History) Update(us board.Color, m board.Move, depth Depth, good bool) {
	bonus := clamp(int(depth)*historyBonusScale+historyBonusConst, 0, historyBonusMax)
	sign := 1
	if !good {
		sign = -1
	}

	cell := &h.table[us][m.From()][m.To()]
	v := int(*cell)
	v += sign*bonus - v*bonus/historyMax
	*cell = int16(v)
}

// Get returns the current history score for colour us's move m.
func (h *History) Get(us board.Color, m board.Move) int {
	return int(h.table[us][m.From()][m.To()])
}
