package board

import "fmt"

// Move packs a chess move into 16 bits (spec §3):
//
//	bits 0-5:   from square
//	bits 6-11:  to square
//	bits 12-15: flag
//
// In Chess960 mode (and always, internally) castling is encoded as
// king-moves-to-rook's-square, so From/To alone disambiguate a-side
// from h-side castling without a separate flag bit collision.
type Move uint16

// Move flags. Promotion flags are split by target piece so the flag
// field alone determines the promotion piece without a second field.
const (
	FlagNormal uint16 = iota
	FlagDoublePush
	FlagCastleASide
	FlagCastleHSide
	FlagPromoQ
	FlagPromoN
	FlagPromoR
	FlagPromoB
	FlagCapture
	FlagEnPassant
	FlagCapturePromoQ
	FlagCapturePromoN
	FlagCapturePromoR
	FlagCapturePromoB
)

// NoMove is the null-move / "no move found" sentinel.
const NoMove Move = 0

func newMove(from, to Square, flag uint16) Move {
	return Move(from) | Move(to)<<6 | Move(flag)<<12
}

// NewMove builds a normal, non-capturing, non-special move.
func NewMove(from, to Square) Move { return newMove(from, to, FlagNormal) }

// NewCapture builds a normal capturing move.
func NewCapture(from, to Square) Move { return newMove(from, to, FlagCapture) }

// NewDoublePush builds a pawn double-step move.
func NewDoublePush(from, to Square) Move { return newMove(from, to, FlagDoublePush) }

// NewEnPassant builds an en passant capture.
func NewEnPassant(from, to Square) Move { return newMove(from, to, FlagEnPassant) }

// NewCastle builds a castling move; kingSide selects the h-side rook.
func NewCastle(from, rookSq Square, kingSide bool) Move {
	if kingSide {
		return newMove(from, rookSq, FlagCastleHSide)
	}
	return newMove(from, rookSq, FlagCastleASide)
}

var promoFlagByPiece = map[PieceType]uint16{Queen: FlagPromoQ, Knight: FlagPromoN, Rook: FlagPromoR, Bishop: FlagPromoB}
var capturePromoFlagByPiece = map[PieceType]uint16{Queen: FlagCapturePromoQ, Knight: FlagCapturePromoN, Rook: FlagCapturePromoR, Bishop: FlagCapturePromoB}

// NewPromotion builds a (non-capturing) promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return newMove(from, to, promoFlagByPiece[promo])
}

// NewCapturePromotion builds a capturing promotion move.
func NewCapturePromotion(from, to Square, promo PieceType) Move {
	return newMove(from, to, capturePromoFlagByPiece[promo])
}

func (m Move) From() Square { return Square(m & 0x3F) }
func (m Move) To() Square   { return Square((m >> 6) & 0x3F) }
func (m Move) Flag() uint16 { return uint16(m >> 12) }

// IsCapture reports whether the flag marks a capture (including en
// passant and capture-promotions).
func (m Move) IsCapture() bool {
	f := m.Flag()
	return f == FlagCapture || f == FlagEnPassant || f >= FlagCapturePromoQ
}

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool {
	f := m.Flag()
	return (f >= FlagPromoQ && f <= FlagPromoB) || f >= FlagCapturePromoQ
}

// PromotionPiece returns the promotion target; only valid if IsPromotion.
func (m Move) PromotionPiece() PieceType {
	switch m.Flag() {
	case FlagPromoQ, FlagCapturePromoQ:
		return Queen
	case FlagPromoN, FlagCapturePromoN:
		return Knight
	case FlagPromoR, FlagCapturePromoR:
		return Rook
	case FlagPromoB, FlagCapturePromoB:
		return Bishop
	default:
		return NoPieceType
	}
}

// IsCastle reports whether the move is a castle (either side).
func (m Move) IsCastle() bool {
	f := m.Flag()
	return f == FlagCastleASide || f == FlagCastleHSide
}

// IsCastleKingSide reports whether a castle move is toward the h-side rook.
func (m Move) IsCastleKingSide() bool { return m.Flag() == FlagCastleHSide }

// IsEnPassant reports whether the move is an en passant capture.
func (m Move) IsEnPassant() bool { return m.Flag() == FlagEnPassant }

// IsDoublePush reports whether the move is a pawn double-step.
func (m Move) IsDoublePush() bool { return m.Flag() == FlagDoublePush }

// IsQuiet reports whether the move is neither a capture nor a promotion.
func (m Move) IsQuiet() bool { return !m.IsCapture() && !m.IsPromotion() }

func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.PromotionPiece().Char())
	}
	return s
}

// ParseMove parses a long-algebraic move string against pos, inferring
// special flags (castle, en passant, double push) from context, as
// spec §6 "Move text" requires for both classical and Chess960 input.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	place := pos.Board[from]
	if place.IsEmpty() {
		return NoMove, fmt.Errorf("no piece on %s", from)
	}
	pt := place.Type()
	c := place.Color()

	if len(s) == 5 {
		promo := PieceTypeFromChar(s[4])
		if promo == NoPieceType {
			return NoMove, fmt.Errorf("invalid promotion piece %q", s[4:5])
		}
		if pos.Board[to].IsEmpty() {
			return NewPromotion(from, to, promo), nil
		}
		return NewCapturePromotion(from, to, promo), nil
	}

	if pt == King {
		// Accept both classical (e1g1) and Chess960 (king-to-rook) input
		// regardless of the position's own castling-notation mode.
		if to == pos.Rooks.HSide[c] || (to.File()-from.File() == 2 && to.Rank() == from.Rank()) {
			if pos.Rooks.HSide[c] != NoSquare {
				return NewCastle(from, pos.Rooks.HSide[c], true), nil
			}
		}
		if to == pos.Rooks.ASide[c] || (from.File()-to.File() == 2 && to.Rank() == from.Rank()) {
			if pos.Rooks.ASide[c] != NoSquare {
				return NewCastle(from, pos.Rooks.ASide[c], false), nil
			}
		}
	}

	if pt == Pawn {
		if to == pos.EnPassant && pos.EnPassant != NoSquare {
			return NewEnPassant(from, to), nil
		}
		if abs(from.Rank()-to.Rank()) == 2 {
			return NewDoublePush(from, to), nil
		}
	}

	if !pos.Board[to].IsEmpty() {
		return NewCapture(from, to), nil
	}
	return NewMove(from, to), nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// MoveList is a fixed-capacity (256) list of moves, avoiding
// allocation during move generation (spec §3/§4.4).
type MoveList struct {
	moves [256]Move
	count int
}

func (ml *MoveList) Add(m Move)        { ml.moves[ml.count] = m; ml.count++ }
func (ml *MoveList) Len() int          { return ml.count }
func (ml *MoveList) Get(i int) Move    { return ml.moves[i] }
func (ml *MoveList) Set(i int, m Move) { ml.moves[i] = m }
func (ml *MoveList) Swap(i, j int)     { ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i] }
func (ml *MoveList) Clear()            { ml.count = 0 }

func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

func (ml *MoveList) Slice() []Move { return ml.moves[:ml.count] }
