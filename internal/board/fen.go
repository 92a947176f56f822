package board

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFEN parses a standard six-field FEN, with Chess960-style
// castling letters (file letters A-H/a-h instead of KQkq) accepted in
// the castling field regardless of whether the position turns out to
// need them (spec §6).
func ParseFEN(fenStr string) (Position, error) {
	fields := strings.Fields(fenStr)
	if len(fields) < 4 {
		return Position{}, fmt.Errorf("%w: FEN needs at least 4 fields, got %d", ErrInvalidLength, len(fields))
	}

	var p Position
	p.EnPassant = NoSquare
	p.KingSq[White] = NoSquare
	p.KingSq[Black] = NoSquare
	p.Rooks = NoRookInfo
	for c := White; c <= Black; c++ {
		for id := 0; id < MaxPieceID; id++ {
			p.PieceSq[c][id] = NoSquare
		}
	}

	if err := parsePlacement(&p, fields[0]); err != nil {
		return Position{}, err
	}

	switch fields[1] {
	case "w":
		p.SideToMove = White
	case "b":
		p.SideToMove = Black
	default:
		return Position{}, fmt.Errorf("%w: side to move %q", ErrInvalidChar, fields[1])
	}

	if err := parseCastling(&p, fields[2]); err != nil {
		return Position{}, err
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return Position{}, fmt.Errorf("%w: en passant square %q", ErrInvalidChar, fields[3])
		}
		p.EnPassant = sq
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 || n > 200 {
			return Position{}, fmt.Errorf("%w: half-move clock %q", ErrOutOfRange, fields[4])
		}
		p.HalfMoveClock = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return Position{}, fmt.Errorf("%w: full-move number %q", ErrOutOfRange, fields[5])
		}
		p.Ply = (n - 1) * 2
		if p.SideToMove == Black {
			p.Ply++
		}
	}

	if p.PieceSq[White][0] == NoSquare || p.PieceSq[Black][0] == NoSquare {
		return Position{}, fmt.Errorf("%w: missing king", ErrInvalidBoard)
	}

	p.Hash = p.ComputeHash()
	p.recomputeAttackTable()

	return p, nil
}

func parsePlacement(p *Position, field string) error {
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: board needs 8 ranks, got %d", ErrInvalidLength, len(ranks))
	}

	var nextID [2]int
	nextID[White] = 1
	nextID[Black] = 1

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range []byte(rankStr) {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file > 7 {
				return fmt.Errorf("%w: rank %d overflows", ErrInvalidBoard, rank+1)
			}
			pt := PieceTypeFromChar(ch)
			if pt == NoPieceType {
				return fmt.Errorf("%w: piece char %q", ErrInvalidChar, string(ch))
			}
			c := White
			if ch >= 'a' && ch <= 'z' {
				c = Black
			}
			sq := NewSquare(file, rank)

			var id int
			if pt == King {
				if p.PieceSq[c][0] != NoSquare {
					return fmt.Errorf("%w: colour %s", ErrTooManyKings, c)
				}
				id = 0
			} else {
				if nextID[c] >= MaxPieceID {
					return fmt.Errorf("%w: colour %s", ErrTooManyPieces, c)
				}
				id = nextID[c]
				nextID[c]++
			}
			p.setPieceNoHash(c, pt, id, sq)
			file++
		}
		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d files", ErrInvalidBoard, rank+1, file)
		}
	}
	return nil
}

// setPieceNoHash is used only during parsing, before p.Hash exists.
func (p *Position) setPieceNoHash(c Color, pt PieceType, id int, sq Square) {
	p.Board[sq] = NewPlace(c, pt, id)
	p.PieceSq[c][id] = sq
	p.Kind[c][id] = pt
	if pt == King {
		p.KingSq[c] = sq
	}
}

func parseCastling(p *Position, field string) error {
	if field == "-" {
		return nil
	}
	for _, ch := range []byte(field) {
		switch ch {
		case 'K':
			p.Rooks.HSide[White] = findBackRankRook(p, White, true)
		case 'Q':
			p.Rooks.ASide[White] = findBackRankRook(p, White, false)
		case 'k':
			p.Rooks.HSide[Black] = findBackRankRook(p, Black, true)
		case 'q':
			p.Rooks.ASide[Black] = findBackRankRook(p, Black, false)
		default:
			c := White
			letter := ch
			if ch >= 'a' && ch <= 'z' {
				c = Black
				letter -= 'a' - 'A'
			}
			if letter < 'A' || letter > 'H' {
				return fmt.Errorf("%w: castling char %q", ErrInvalidChar, string(ch))
			}
			file := int(letter - 'A')
			sq := NewSquare(file, c.BackRank())
			kingSq := p.PieceSq[c][0]
			if kingSq == NoSquare {
				return fmt.Errorf("%w: castling rook without king", ErrInvalidBoard)
			}
			if file > kingSq.File() {
				p.Rooks.HSide[c] = sq
			} else {
				p.Rooks.ASide[c] = sq
			}
		}
	}
	return nil
}

// findBackRankRook locates the classical corner rook for KQkq notation.
func findBackRankRook(p *Position, c Color, kingSide bool) Square {
	file := 0
	if kingSide {
		file = 7
	}
	return NewSquare(file, c.BackRank())
}

// FormatFEN renders pos as a FEN string, using Chess960 rook-file
// letters in the castling field whenever the rooks are not on their
// classical corners.
func FormatFEN(pos *Position) string {
	var b strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			place := pos.Board[NewSquare(file, rank)]
			if place.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				fmt.Fprintf(&b, "%d", empty)
				empty = 0
			}
			b.WriteByte(place.Char())
		}
		if empty > 0 {
			fmt.Fprintf(&b, "%d", empty)
		}
		if rank > 0 {
			b.WriteByte('/')
		}
	}

	b.WriteByte(' ')
	if pos.SideToMove == White {
		b.WriteByte('w')
	} else {
		b.WriteByte('b')
	}

	b.WriteByte(' ')
	b.WriteString(pos.Rooks.FEN())

	b.WriteByte(' ')
	b.WriteString(pos.EnPassant.String())

	fmt.Fprintf(&b, " %d %d", pos.HalfMoveClock, pos.Ply/2+1)
	return b.String()
}
