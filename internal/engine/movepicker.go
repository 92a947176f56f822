package engine

import (
	"sort"

	"github.com/kestrelchess/rosecore/internal/board"
	"github.com/kestrelchess/rosecore/internal/see"
)

// pickerStage is the staged emission order the original's MovePicker
// documents (original_source/src/rose/move_picker.h's Stage enum):
// the hash move first, then winning captures/promotions, then quiets,
// then losing captures last, each bucket sorted once it is entered.
type pickerStage int

const (
	stageTTMove pickerStage = iota
	stageGenerate
	stageGoodNoisy
	stageQuiet
	stageBadNoisy
	stageDone
)

// scoredMove pairs a move with the ordering key used to sort its bucket.
type scoredMove struct {
	move  board.Move
	score int
}

// MovePicker yields the legal moves of a position one at a time, in
// the priority order the search core wants to try them (spec's move
// picker component, C10). It is constructed fresh per node.
type MovePicker struct {
	pos     *board.Position
	history *History
	ttMove  board.Move
	killer  board.Move

	stage pickerStage

	goodNoisy []scoredMove
	quiet     []scoredMove
	badNoisy  []scoredMove

	goodIdx, quietIdx, badIdx int
	skipQuiets                bool

	markedQuiets []board.Move
}

// MarkedQuiets returns every quiet move this picker has emitted via
// Next so far (spec §4.10's marked_quiets()), in emission order. The
// search core walks this list on a beta cutoff to decay the history
// score of every quiet that was tried and failed to cause the cutoff
// itself (spec §4.11), alongside rewarding the move that did.
func (mp *MovePicker) MarkedQuiets() []board.Move { return mp.markedQuiets }

// NewMovePicker constructs a picker for pos. ttMove (possibly NoMove)
// is tried first; killer (possibly NoMove) is promoted to the front of
// the quiet bucket if it appears there.
func NewMovePicker(pos *board.Position, history *History, ttMove, killer board.Move) *MovePicker {
	return &MovePicker{pos: pos, history: history, ttMove: ttMove, killer: killer}
}

// SkipQuiets suppresses the quiet and bad-noisy buckets, used by
// quiescence search to only ever emit captures and promotions.
func (mp *MovePicker) SkipQuiets() { mp.skipQuiets = true }

// Next returns the next move to try, or (NoMove, false) once every
// legal move has been emitted.
func (mp *MovePicker) Next() (board.Move, bool) {
	for {
		switch mp.stage {
		case stageTTMove:
			mp.stage = stageGenerate
			if mp.ttMove != board.NoMove {
				return mp.ttMove, true
			}
		case stageGenerate:
			mp.generate()
			mp.stage = stageGoodNoisy
		case stageGoodNoisy:
			if mp.goodIdx < len(mp.goodNoisy) {
				m := mp.goodNoisy[mp.goodIdx].move
				mp.goodIdx++
				return m, true
			}
			mp.stage = stageQuiet
		case stageQuiet:
			if mp.skipQuiets {
				mp.stage = stageBadNoisy
				continue
			}
			if mp.quietIdx < len(mp.quiet) {
				m := mp.quiet[mp.quietIdx].move
				mp.quietIdx++
				mp.markedQuiets = append(mp.markedQuiets, m)
				return m, true
			}
			mp.stage = stageBadNoisy
		case stageBadNoisy:
			if mp.skipQuiets {
				mp.stage = stageDone
				continue
			}
			if mp.badIdx < len(mp.badNoisy) {
				m := mp.badNoisy[mp.badIdx].move
				mp.badIdx++
				return m, true
			}
			mp.stage = stageDone
		case stageDone:
			return board.NoMove, false
		}
	}
}

func (mp *MovePicker) generate() {
	ml := board.GenerateLegalMoves(mp.pos)
	us := mp.pos.SideToMove

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if m == mp.ttMove {
			continue
		}
		if m.IsCapture() || m.IsPromotion() {
			victim := mp.pos.Board[m.To()].Type()
			if m.IsEnPassant() {
				victim = board.Pawn
			}
			attacker := mp.pos.Board[m.From()].Type()
			score := board.PieceValue[victim]*16 - board.PieceValue[attacker]
			if m.IsPromotion() {
				score += board.PieceValue[m.PromotionPiece()]
			}
			if see.Evaluate(mp.pos, m, 0) {
				mp.goodNoisy = append(mp.goodNoisy, scoredMove{m, score})
			} else {
				mp.badNoisy = append(mp.badNoisy, scoredMove{m, score})
			}
			continue
		}

		score := mp.history.Get(us, m)
		if m == mp.killer {
			score = 1 << 30
		}
		mp.quiet = append(mp.quiet, scoredMove{m, score})
	}

	sort.Slice(mp.goodNoisy, func(i, j int) bool { return mp.goodNoisy[i].score > mp.goodNoisy[j].score })
	sort.Slice(mp.badNoisy, func(i, j int) bool { return mp.badNoisy[i].score > mp.badNoisy[j].score })
	sort.Slice(mp.quiet, func(i, j int) bool { return mp.quiet[i].score > mp.quiet[j].score })
}
