// Package engine implements the search core: iterative deepening
// negamax with alpha-beta pruning, quiescence search, a transposition
// table, staged move ordering and gravity history, grounded on
// hailam-chessplay's internal/engine/search.go structure (triangular
// PV table, TT-bound-tightening probe, beta-cutoff killer/history
// update) and spec §4.12.
package engine

import (
	"time"

	"github.com/kestrelchess/rosecore/internal/board"
	"github.com/kestrelchess/rosecore/internal/game"
)

// Evaluator is the leaf-position scoring function the search core
// needs; *nnue.Evaluator satisfies it. Declaring the narrow interface
// here (rather than importing internal/nnue's concrete type) keeps
// engine testable with a trivial material-counting stand-in.
type Evaluator interface {
	Evaluate(pos *board.Position) int
}

// pvTable is the triangular principal-variation table: pv.moves[ply]
// holds the best line found so far starting at ply, length pv.length[ply].
type pvTable struct {
	length [int(MaxPly) + 1]int
	moves  [int(MaxPly) + 1][int(MaxPly) + 1]board.Move
}

// Search owns everything one search needs beyond the position stack
// itself: the transposition table and history are long-lived and
// survive across searches (a hash hit from three moves ago is still
// useful), while the PV table, killers and node counts are reset per
// Run.
type Search struct {
	game    *game.Game
	tt      *Table
	history History
	eval    Evaluator
	output  EngineOutput

	stats    SearchStats
	stopped  bool
	killers  [int(MaxPly) + 1]board.Move
	pv       pvTable
	lastInfo SearchInfo

	excluded []board.Move

	start time.Time
}

// SetExcludedMoves restricts the root move loop to skip every move in
// excluded, letting a caller find the Nth-best root move by excluding
// the (N-1) moves already found — the MultiPV technique
// hailam-chessplay's Engine.SearchMultiPV/searchWithExclusions uses. A
// nil or empty slice searches normally. Excluding every legal root
// move makes Run return board.NoMove rather than a false mate/stalemate
// score; the caller (the UCI layer's MultiPV loop) treats that as "no
// further PV lines".
func (s *Search) SetExcludedMoves(excluded []board.Move) { s.excluded = excluded }

func containsMove(moves []board.Move, m board.Move) bool {
	for _, x := range moves {
		if x == m {
			return true
		}
	}
	return false
}

// LastInfo returns the most recent iteration's SearchInfo, for a
// caller (such as internal/pool) that wants the depth/score/nodes of
// a finished Run without re-deriving them.
func (s *Search) LastInfo() SearchInfo { return s.lastInfo }

// NewSearch builds a Search over g, sharing tt and eval across
// searches; output receives per-iteration progress and the final
// choice.
func NewSearch(g *game.Game, tt *Table, eval Evaluator, output EngineOutput) *Search {
	return &Search{game: g, tt: tt, eval: eval, output: output}
}

// ClearForNewGame wipes the history table and killers; the
// transposition table is left alone ("ucinewgame" clears it
// separately via s.TT().Clear(), matching the original treating TT
// size and TT contents as independently resettable).
func (s *Search) ClearForNewGame() {
	s.history.Clear()
}

// TT exposes the shared transposition table, for the UCI layer's
// "ucinewgame"/"setoption Hash" handlers.
func (s *Search) TT() *Table { return s.tt }

// SetGame points this Search at a different game, letting a worker
// pool reuse one Search value across searches instead of allocating a
// fresh one per position.
func (s *Search) SetGame(g *game.Game) { s.game = g }

// Run performs iterative deepening from the game's current position
// until control signals a stop, reporting each completed iteration
// through output and returning the best move found. Depth 1 is always
// completed even if control's soft limit would otherwise fire
// immediately, so Run never returns NoMove from a legal position.
func (s *Search) Run(control SearchControl) board.Move {
	s.stats = SearchStats{}
	s.stopped = false
	s.start = time.Now()
	for i := range s.killers {
		s.killers[i] = board.NoMove
	}

	var best board.Move
	for depth := Depth(1); depth > 0 && int(depth) <= int(MaxPly); depth++ {
		score := s.negamax(depth, 0, -MateScore, MateScore, control)
		if s.stopped && depth > 1 {
			break
		}

		if s.pv.length[0] > 0 {
			best = s.pv.moves[0][0]
		}
		s.lastInfo = SearchInfo{
			Depth: depth,
			Score: score,
			Time:  time.Since(s.start),
			Nodes: s.stats.Nodes,
			PV:    s.currentPV(),
		}
		s.output.Info(s.lastInfo)

		if control.CheckSoftTermination(s.stats, depth) {
			break
		}
	}

	s.output.BestMove(best)
	return best
}

// currentPV copies the root principal variation out of the triangular
// table into a caller-owned slice.
func (s *Search) currentPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	copy(pv, s.pv.moves[0][:s.pv.length[0]])
	return pv
}

const checkEvery = 1024

// negamax searches the current game position to depth, returning a
// score from the side-to-move's perspective. ply is the distance from
// the search root, used for mate-score rebasing and killer/PV
// indexing.
func (s *Search) negamax(depth Depth, ply Ply, alpha, beta int, control SearchControl) int {
	s.stats.Nodes++
	if s.stats.Nodes%checkEvery == 0 && control.CheckHardTermination(s.stats, depth) {
		s.stopped = true
	}
	if s.stopped {
		return 0
	}

	s.pv.length[ply] = int(ply)

	if ply > 0 && s.game.IsDraw() {
		return 0
	}

	pos := s.game.Position()

	ttMove := board.NoMove
	lr := s.tt.Load(pos.Hash, ply)
	if lr.Bound != BoundNone {
		ttMove = lr.Move
		if (ply > 0 || len(s.excluded) == 0) && int(lr.Depth) >= int(depth) {
			switch lr.Bound {
			case BoundLower:
				if lr.Score > alpha {
					alpha = lr.Score
				}
			case BoundUpper:
				if lr.Score < beta {
					beta = lr.Score
				}
			}
			if lr.Bound == BoundExact || alpha >= beta {
				if lr.Move != board.NoMove {
					s.pv.moves[ply][ply] = lr.Move
					s.pv.length[ply] = int(ply) + 1
				}
				return lr.Score
			}
		}
	}

	inCheck := pos.InCheck()
	if depth <= 0 {
		if !inCheck {
			return s.quiescence(ply, alpha, beta, control)
		}
		depth = 1 // check extension: resolve checks with full moves, not captures only
	}

	us := pos.SideToMove

	killer := board.NoMove
	if int(ply) < len(s.killers) {
		killer = s.killers[ply]
	}
	mp := NewMovePicker(pos, &s.history, ttMove, killer)

	bestScore := -MateScore - 1
	bestMove := board.NoMove
	bound := BoundUpper
	moveCount := 0
	anyLegal := false

	for {
		m, ok := mp.Next()
		if !ok {
			break
		}
		anyLegal = true
		if ply == 0 && containsMove(s.excluded, m) {
			continue
		}
		moveCount++

		s.game.Move(m)
		score := -s.negamax(depth-1, ply+1, -beta, -alpha, control)
		s.game.Unmove()

		if s.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m

			if score > alpha {
				alpha = score
				bound = BoundExact

				s.pv.moves[ply][ply] = m
				for j := ply + 1; int(j) < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}

		if score >= beta {
			s.tt.Store(pos.Hash, ply, LookupResult{Depth: depth, Bound: BoundLower, Score: score, Move: bestMove})
			if m.IsQuiet() {
				s.history.Update(us, m, depth, true)
				for _, prev := range mp.MarkedQuiets() {
					if prev != m {
						s.history.Update(us, prev, depth, false)
					}
				}
				if int(ply) < len(s.killers) {
					s.killers[ply] = m
				}
			}
			return score
		}
	}

	if moveCount == 0 {
		if anyLegal {
			// Every legal root move was excluded by SetExcludedMoves: the
			// caller has asked for more MultiPV lines than distinct root
			// moves exist, not an actual mate or stalemate.
			return 0
		}
		if inCheck {
			return -MateScore + int(ply)
		}
		return 0
	}

	s.tt.Store(pos.Hash, ply, LookupResult{Depth: depth, Bound: bound, Score: bestScore, Move: bestMove})
	return bestScore
}

// quiescence resolves captures and promotions until the position is
// "quiet", using a stand-pat bound so a side that is ahead need not
// play a bad capture to prove it.
func (s *Search) quiescence(ply Ply, alpha, beta int, control SearchControl) int {
	s.stats.Nodes++
	if s.stats.Nodes%checkEvery == 0 && control.CheckHardTermination(s.stats, 0) {
		s.stopped = true
		return 0
	}
	if ply >= MaxPly {
		return s.eval.Evaluate(s.game.Position())
	}

	pos := s.game.Position()
	standPat := s.eval.Evaluate(pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	mp := NewMovePicker(pos, &s.history, board.NoMove, board.NoMove)
	mp.SkipQuiets()

	for {
		m, ok := mp.Next()
		if !ok {
			break
		}
		s.game.Move(m)
		score := -s.quiescence(ply+1, -beta, -alpha, control)
		s.game.Unmove()

		if s.stopped {
			return 0
		}
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}
