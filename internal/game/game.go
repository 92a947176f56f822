// Package game keeps the stack of positions and moves played from a
// starting position, and answers the draw-detection questions that
// need the whole history rather than a single position (repetition,
// the 50-move rule), grounded on original_source/src/rose/game.h's
// position-stack-plus-move-stack shape.
package game

import "github.com/kestrelchess/rosecore/internal/board"

// Game is a stack of immutable board.Position values; unlike the
// original's push_back/pop_back on a mutable board, each entry here is
// a complete value produced by board.Position.Move, consistent with
// this core's immutable-position design (spec §3/§5).
type Game struct {
	positions []board.Position
	moves     []board.Move
}

// New returns a Game starting from the standard initial position.
func New() *Game {
	g := &Game{}
	g.SetStartpos()
	return g
}

// SetStartpos resets the game to the standard initial position.
func (g *Game) SetStartpos() {
	g.SetPosition(board.NewStartPosition())
}

// SetPosition discards all history and starts a fresh game from pos.
func (g *Game) SetPosition(pos board.Position) {
	g.positions = append(g.positions[:0], pos)
	g.moves = g.moves[:0]
}

// Position returns the current (most recently reached) position.
func (g *Game) Position() *board.Position {
	return &g.positions[len(g.positions)-1]
}

// Ply returns the number of moves played since SetPosition.
func (g *Game) Ply() int { return len(g.moves) }

// Move plays m from the current position, pushing the resulting
// position and the move onto their respective stacks.
func (g *Game) Move(m board.Move) {
	next := g.Position().Move(m)
	g.positions = append(g.positions, next)
	g.moves = append(g.moves, m)
}

// Unmove pops the most recently played move, returning to the prior
// position. A no-op at the root.
func (g *Game) Unmove() {
	if len(g.positions) <= 1 {
		return
	}
	g.positions = g.positions[:len(g.positions)-1]
	g.moves = g.moves[:len(g.moves)-1]
}

// Clone returns an independent copy of g, for handing a worker pool
// its own position stack to search and mutate concurrently with the
// original.
func (g *Game) Clone() *Game {
	c := &Game{
		positions: make([]board.Position, len(g.positions)),
		moves:     make([]board.Move, len(g.moves)),
	}
	copy(c.positions, g.positions)
	copy(c.moves, g.moves)
	return c
}

// LastMove returns the most recently played move and true, or
// (board.NoMove, false) if no move has been played yet.
func (g *Game) LastMove() (board.Move, bool) {
	if len(g.moves) == 0 {
		return board.NoMove, false
	}
	return g.moves[len(g.moves)-1], true
}

// IsRepetition reports whether the current position has occurred at
// least threshold times (including itself) since the most recent
// pawn move or capture, found via the position's own HalfMoveClock as a "how far back can a
// repeating position possibly be" waterline: a repetition can never
// reach past the last halfmove-clock reset, so the search walks no
// further than that.
func (g *Game) IsRepetition(threshold int) bool {
	cur := g.Position()
	n := len(g.positions)
	waterline := n - 1 - cur.HalfMoveClock
	if waterline < 0 {
		waterline = 0
	}

	count := 0
	for i := n - 1; i >= waterline; i -= 2 {
		if g.positions[i].Hash == cur.Hash {
			count++
			if count >= threshold {
				return true
			}
		}
	}
	return false
}

// IsDraw reports whether the current position is drawn by the
// 50-move rule, threefold repetition, or insufficient material.
func (g *Game) IsDraw() bool {
	cur := g.Position()
	if cur.HalfMoveClock >= 100 {
		return true
	}
	if cur.IsInsufficientMaterial() {
		return true
	}
	return g.IsRepetition(3)
}
