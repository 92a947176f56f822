package board

import (
	"fmt"
	"strings"
)

// Position is an immutable chess position value (spec §3). It is never
// mutated in place once constructed: Position.Move returns a fresh
// value, and Game (internal/game) keeps a stack of these values rather
// than a single mutable board with undo information.
type Position struct {
	Board Byteboard

	PieceSq [2]PieceList[Square]   // current location of each ID, NoSquare if dead
	Kind    [2]PieceList[PieceType] // current type of each ID

	Rooks RookInfo

	SideToMove    Color
	EnPassant     Square
	HalfMoveClock int
	Ply           int

	Hash uint64

	KingSq [2]Square

	Attacks AttackTable
}

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// NewStartPosition returns the standard initial position.
func NewStartPosition() Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(fmt.Sprintf("board: start FEN failed to parse: %v", err))
	}
	return pos
}

// PieceAt returns the Place at sq (EmptyPlace if empty).
func (p *Position) PieceAt(sq Square) Place { return p.Board[sq] }

// IsEmpty reports whether sq holds no piece.
func (p *Position) IsEmpty(sq Square) bool { return p.Board[sq].IsEmpty() }

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Attacks.CheckersMask(p, p.SideToMove) != 0
}

// CheckersMask returns the bitboard of squares holding a piece that
// currently checks the side to move's king.
func (p *Position) CheckersMask() uint64 {
	ids := uint64(p.Attacks.CheckersMask(p, p.SideToMove))
	var out uint64
	enemy := p.SideToMove.Other()
	for ids != 0 {
		id := PopLSB(&ids)
		out |= 1 << uint(p.PieceSq[enemy][id])
	}
	return out
}

func (p *Position) enPassantIsLegal() bool {
	if p.EnPassant == NoSquare {
		return false
	}
	them := p.SideToMove
	victimRank := p.EnPassant.Rank()
	if them == White {
		victimRank--
	} else {
		victimRank++
	}
	for _, df := range []int{-1, 1} {
		f := p.EnPassant.File() + df
		if f < 0 || f > 7 {
			continue
		}
		sq := NewSquare(f, victimRank)
		place := p.Board[sq]
		if place.Type() == Pawn && place.Color() == them {
			return true
		}
	}
	return false
}

// setPiece places a piece, updating the mailbox, piece list and hash.
func (p *Position) setPiece(c Color, pt PieceType, id int, sq Square) {
	p.Board[sq] = NewPlace(c, pt, id)
	p.PieceSq[c][id] = sq
	p.Kind[c][id] = pt
	p.Hash ^= zobristFor(c, pt, sq)
	if pt == King {
		p.KingSq[c] = sq
	}
}

// removePiece clears a square, updating the mailbox, piece list and hash.
// Returns the ID that was removed.
func (p *Position) removePiece(sq Square) int {
	place := p.Board[sq]
	c, pt, id := place.Color(), place.Type(), place.ID()
	p.Hash ^= zobristFor(c, pt, sq)
	p.Board[sq] = EmptyPlace
	p.PieceSq[c][id] = NoSquare
	return id
}

// Move returns a fresh Position reflecting m applied to p. m is assumed
// to be legal in p (the caller, normally MovePicker fed by MoveGen,
// guarantees this); an illegal move produces an inconsistent but
// non-panicking result, matching spec §7's "IllegalMove: reported;
// position left unchanged" being the protocol layer's responsibility,
// not this layer's.
func (p Position) Move(m Move) Position {
	np := p
	np.Hash ^= zobristCastle[p.Rooks.rightsIndex()]
	if p.EnPassant != NoSquare && p.enPassantIsLegal() {
		np.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}

	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	movingPlace := p.Board[from]
	movingType := movingPlace.Type()
	movingID := movingPlace.ID()

	np.EnPassant = NoSquare
	np.HalfMoveClock++
	if movingType == Pawn || m.IsCapture() {
		np.HalfMoveClock = 0
	}

	var moved, removed []pieceRef
	var changed []Square

	switch {
	case m.IsCastle():
		rookSq := to
		kingTo := Square(NewSquare(fileFor(m.IsCastleKingSide()), us.BackRank()))
		rookTo := Square(NewSquare(rookFileFor(m.IsCastleKingSide()), us.BackRank()))
		rookPlace := p.Board[rookSq]
		rookID := rookPlace.ID()
		np.removePiece(from)
		np.removePiece(rookSq)
		np.setPiece(us, King, movingID, kingTo)
		np.setPiece(us, Rook, rookID, rookTo)
		np.Rooks.ClearColor(us)
		moved = []pieceRef{{us, movingID}, {us, rookID}}
		changed = []Square{from, rookSq, kingTo, rookTo}
	case m.IsEnPassant():
		capSq := NewSquare(to.File(), from.Rank())
		capID := np.removePiece(capSq)
		np.removePiece(from)
		np.setPiece(us, Pawn, movingID, to)
		removed = []pieceRef{{them, capID}}
		moved = []pieceRef{{us, movingID}}
		changed = []Square{from, to, capSq}
	default:
		if !p.Board[to].IsEmpty() {
			capID := np.removePiece(to)
			removed = []pieceRef{{them, capID}}
		}
		np.removePiece(from)
		finalType := movingType
		if m.IsPromotion() {
			finalType = m.PromotionPiece()
		}
		np.setPiece(us, finalType, movingID, to)
		if m.IsDoublePush() {
			np.EnPassant = NewSquare(from.File(), (from.Rank()+to.Rank())/2)
		}
		moved = []pieceRef{{us, movingID}}
		changed = []Square{from, to}
	}

	if movingType == King {
		np.Rooks.ClearColor(us)
	}
	np.Rooks.ClearRookSquare(us, from)
	np.Rooks.ClearRookSquare(them, to)

	np.Hash ^= zobristCastle[np.Rooks.rightsIndex()]

	np.SideToMove = them
	np.Hash ^= zobristSideToMove
	np.Ply = p.Ply + 1

	if np.EnPassant != NoSquare && np.enPassantIsLegal() {
		np.Hash ^= zobristEnPassant[np.EnPassant.File()]
	}

	np.updateAttacks(&p.Board, moved, removed, changed)

	return np
}

func fileFor(kingSide bool) int {
	if kingSide {
		return 6
	}
	return 2
}

func rookFileFor(kingSide bool) int {
	if kingSide {
		return 5
	}
	return 3
}

// recomputeAttackTable rebuilds the whole attack table from scratch
// given the current mailbox. Move never calls this: it is the
// parse-time path (ParseFEN has no "previous position" to diff
// against) and the reference result the incremental path must match.
func (p *Position) recomputeAttackTable() {
	p.Attacks = AttackTable{}
	for c := White; c <= Black; c++ {
		for id := 0; id < MaxPieceID; id++ {
			sq := p.PieceSq[c][id]
			if sq == NoSquare {
				continue
			}
			pt := p.Kind[c][id]
			mask := AttacksFromSquare(&p.Board, sq, pt, c)
			p.Attacks.setSquares(c, id, mask)
		}
	}
}

// pieceRef names one piece by colour and stable ID, the unit
// updateAttacks tracks while diffing a move against the attack table.
type pieceRef struct {
	c  Color
	id int
}

func containsRef(refs []pieceRef, r pieceRef) bool {
	for _, s := range refs {
		if s == r {
			return true
		}
	}
	return false
}

// updateAttacks applies spec §4.3's incremental maintenance procedure.
// np.Attacks starts as a copy of the pre-move table (Move copies p by
// value before np's mailbox is mutated), so only what the move actually
// touched needs updating:
//
//  1. clear the row of every piece that left the board this move
//     (captures, en-passant victims) — it attacks nothing any more;
//  2. clear and recompute the row of every piece that moved, at its new
//     square and (for a promotion) its new type;
//  3. recompute every sliding piece, either colour, whose line of sight
//     crosses one of the squares whose occupancy changed — vacating a
//     square can extend another slider's ray past it, occupying one can
//     cut a ray short, so both the pre- and post-move mailbox are
//     walked from each changed square to find the sliders affected
//     either way.
//
// oldBoard is p.Board before any of np's mutations; changed lists every
// square whose occupancy the move altered (the moving piece's origin
// and destination, plus a capture's or en passant's victim square, plus
// castling's rook origin/destination).
func (np *Position) updateAttacks(oldBoard *Byteboard, moved, removed []pieceRef, changed []Square) {
	var touched []pieceRef

	for _, r := range removed {
		np.Attacks.clearPiece(r.c, r.id)
		touched = append(touched, r)
	}
	for _, mv := range moved {
		np.Attacks.clearPiece(mv.c, mv.id)
	}
	for _, mv := range moved {
		sq := np.PieceSq[mv.c][mv.id]
		pt := np.Kind[mv.c][mv.id]
		np.Attacks.setSquares(mv.c, mv.id, AttacksFromSquare(&np.Board, sq, pt, mv.c))
		touched = append(touched, mv)
	}

	recompute := func(place Place) {
		r := pieceRef{place.Color(), place.ID()}
		if containsRef(touched, r) {
			return
		}
		touched = append(touched, r)
		sq := np.PieceSq[r.c][r.id]
		if sq == NoSquare {
			return
		}
		pt := np.Kind[r.c][r.id]
		np.Attacks.clearPiece(r.c, r.id)
		np.Attacks.setSquares(r.c, r.id, AttacksFromSquare(&np.Board, sq, pt, r.c))
	}

	for _, sq := range changed {
		for _, place := range SlidingObserversThrough(oldBoard, sq) {
			recompute(place)
		}
		for _, place := range SlidingObserversThrough(&np.Board, sq) {
			recompute(place)
		}
	}
}

// ComputePinned returns the bitboard of pieces of colour us pinned to
// us's king (spec §4.3 "pinned pieces"), found by x-raying through the
// king along each of the 4 lines from candidate enemy sliders.
func (p *Position) ComputePinned(us Color) uint64 {
	them := us.Other()
	ksq := p.KingSq[us]
	var pinned uint64

	rookLike := p.Board.BitboardForType(Rook, them) | p.Board.BitboardForType(Queen, them)
	bishopLike := p.Board.BitboardForType(Bishop, them) | p.Board.BitboardForType(Queen, them)

	var empty Byteboard
	candidates := (AttacksFromSquare(&empty, ksq, Rook, us) & rookLike) |
		(AttacksFromSquare(&empty, ksq, Bishop, us) & bishopLike)

	for candidates != 0 {
		sq := Square(PopLSB(&candidates))
		between := Between(sq, ksq) & p.Board.OccupiedBitboard()
		if PopCount(between) == 1 && between&p.Board.ColorBitboard(us) != 0 {
			pinned |= between
		}
	}
	return pinned
}

// IsInsufficientMaterial reports a known drawn-by-material configuration
// (K vs K, K+minor vs K, K+B vs K+B with same-colour bishops is NOT
// special-cased here — only the trivially insufficient cases are, which
// matches the conservative set most engines treat as automatic draws).
func (p *Position) IsInsufficientMaterial() bool {
	var minorCount, otherCount int
	for c := White; c <= Black; c++ {
		for id := 0; id < MaxPieceID; id++ {
			if p.PieceSq[c][id] == NoSquare || id == 0 {
				continue
			}
			switch p.Kind[c][id] {
			case Knight, Bishop:
				minorCount++
			default:
				otherCount++
			}
		}
	}
	return otherCount == 0 && minorCount <= 1
}

func (p *Position) String() string {
	var b strings.Builder
	b.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&b, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			place := p.Board[NewSquare(file, rank)]
			if place.IsEmpty() {
				b.WriteString(". ")
			} else {
				b.WriteByte(place.Char())
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&b, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&b, "Castling: %s\n", p.Rooks.FEN())
	fmt.Fprintf(&b, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&b, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&b, "Hash: %016x\n", p.Hash)
	b.WriteString(FormatFEN(p))
	b.WriteByte('\n')
	return b.String()
}
