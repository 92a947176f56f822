package board

// GenerateLegalMoves produces every legal move for the side to move
// (spec §4.4), branching on the number of checkers. Unlike the
// original engine's documented shortcut (spec §9 "open questions"),
// this generator never emits a pseudo-legal candidate that needs a
// make/unmake round-trip to reject: every move it returns is legal.
func GenerateLegalMoves(pos *Position) MoveList {
	var ml MoveList
	us := pos.SideToMove
	checkers := pos.CheckersMask()
	checkerCount := PopCount(checkers)

	generateKingMoves(pos, us, &ml)

	switch checkerCount {
	case 0:
		generateNonKingMoves(pos, us, ^uint64(0), &ml)
		generateCastling(pos, us, &ml)
		generateEnPassant(pos, us, 0, &ml)
	case 1:
		checkerSq := Square(PopLSB(&checkers))
		checkerPlace := pos.Board[checkerSq]
		evasion := uint64(1) << uint(checkerSq)
		if checkerPlace.Type().IsSliding() {
			evasion |= Between(checkerSq, pos.KingSq[us])
		}
		generateNonKingMoves(pos, us, evasion, &ml)
		generateEnPassantImpl(pos, us, checkerSq, true, &ml)
	default:
		// Two checkers: only king moves are legal.
	}

	return ml
}

// pinRayMask returns the full line through sq and ksq (both directions,
// edge to edge) if sq lies on a rank/file/diagonal with ksq, or 0
// otherwise. Intersecting a pinned piece's destinations with this mask
// is spec §4.4's "a pinned piece may only move along the pin ray".
func pinRayMask(sq, ksq Square) uint64 {
	df := sq.File() - ksq.File()
	dr := sq.Rank() - ksq.Rank()
	var dir int
	switch {
	case df == 0 && dr > 0:
		dir = DirN
	case df == 0 && dr < 0:
		dir = DirS
	case dr == 0 && df > 0:
		dir = DirE
	case dr == 0 && df < 0:
		dir = DirW
	case df == dr && df > 0:
		dir = DirNE
	case df == dr && df < 0:
		dir = DirSW
	case df == -dr && df > 0:
		dir = DirSE
	case df == -dr && df < 0:
		dir = DirNW
	default:
		return 0
	}
	opposite := (dir + 4) % numDirections
	var mask uint64
	for _, d := range [2]int{dir, opposite} {
		df, dr := directionDelta[d][0], directionDelta[d][1]
		f, r := ksq.File(), ksq.Rank()
		for {
			f, r = f+df, r+dr
			if f < 0 || f > 7 || r < 0 || r > 7 {
				break
			}
			mask |= 1 << uint(NewSquare(f, r))
		}
	}
	return mask
}

func generateNonKingMoves(pos *Position, us Color, evasionMask uint64, ml *MoveList) {
	ksq := pos.KingSq[us]
	pinned := pos.ComputePinned(us)
	ownOcc := pos.Board.ColorBitboard(us)
	enemyOcc := pos.Board.ColorBitboard(us.Other())

	for id := 1; id < MaxPieceID; id++ {
		sq := pos.PieceSq[us][id]
		if sq == NoSquare {
			continue
		}
		pt := pos.Kind[us][id]

		allowed := evasionMask
		if pinned&(1<<uint(sq)) != 0 {
			allowed &= pinRayMask(sq, ksq)
		}

		if pt == Pawn {
			generatePawnMoves(pos, us, sq, allowed, ml)
			continue
		}

		destMask := pos.Attacks.AttacksOf(us, id) &^ ownOcc & allowed
		for destMask != 0 {
			to := Square(PopLSB(&destMask))
			if enemyOcc&(1<<uint(to)) != 0 {
				ml.Add(NewCapture(sq, to))
			} else {
				ml.Add(NewMove(sq, to))
			}
		}
	}
}

func generatePawnMoves(pos *Position, us Color, sq Square, allowed uint64, ml *MoveList) {
	enemyOcc := pos.Board.ColorBitboard(us.Other())
	occ := pos.Board.OccupiedBitboard()

	forward := 1
	startRank := 1
	promoRank := 7
	if us == Black {
		forward = -1
		startRank = 6
		promoRank = 0
	}

	file, rank := sq.File(), sq.Rank()

	// Single and double pushes: blocked by occupancy, filtered by the
	// evasion/pin mask like every other move.
	if r1 := rank + forward; r1 >= 0 && r1 <= 7 {
		push1 := NewSquare(file, r1)
		if occ&(1<<uint(push1)) == 0 {
			if allowed&(1<<uint(push1)) != 0 {
				addPawnMove(ml, sq, push1, r1 == promoRank, false)
			}
			if rank == startRank {
				push2 := NewSquare(file, rank+2*forward)
				if occ&(1<<uint(push2)) == 0 && allowed&(1<<uint(push2)) != 0 {
					ml.Add(NewDoublePush(sq, push2))
				}
			}
		}
	}

	// Diagonal captures, sourced from the attack table's pawn bits.
	attackMask := AttacksFromSquare(&pos.Board, sq, Pawn, us) & enemyOcc & allowed
	for attackMask != 0 {
		to := Square(PopLSB(&attackMask))
		addPawnMove(ml, sq, to, to.Rank() == promoRank, true)
	}
}

func addPawnMove(ml *MoveList, from, to Square, promotion, capture bool) {
	if !promotion {
		if capture {
			ml.Add(NewCapture(from, to))
		} else {
			ml.Add(NewMove(from, to))
		}
		return
	}
	for _, pt := range [4]PieceType{Queen, Knight, Rook, Bishop} {
		if capture {
			ml.Add(NewCapturePromotion(from, to, pt))
		} else {
			ml.Add(NewPromotion(from, to, pt))
		}
	}
}

func generateKingMoves(pos *Position, us Color, ml *MoveList) {
	sq := pos.KingSq[us]
	ownOcc := pos.Board.ColorBitboard(us)
	enemyOcc := pos.Board.ColorBitboard(us.Other())
	destMask := AttacksFromSquare(&pos.Board, sq, King, us) &^ ownOcc

	for destMask != 0 {
		to := Square(PopLSB(&destMask))
		if !kingMoveIsSafe(pos, sq, to, us) {
			continue
		}
		if enemyOcc&(1<<uint(to)) != 0 {
			ml.Add(NewCapture(sq, to))
		} else {
			ml.Add(NewMove(sq, to))
		}
	}
}

// kingMoveIsSafe reports whether the king could legally stand on `to`,
// recomputing attacks on a board with the king removed from `from` (and
// `to` vacated) so that a slider's ray through the king's old square is
// correctly detected (spec §4.4 "King-move safety").
func kingMoveIsSafe(pos *Position, from, to Square, us Color) bool {
	them := us.Other()
	tmp := pos.Board
	tmp[from] = EmptyPlace
	tmp[to] = EmptyPlace

	for id := 0; id < MaxPieceID; id++ {
		sq := pos.PieceSq[them][id]
		if sq == NoSquare || sq == to {
			continue
		}
		pt := pos.Kind[them][id]
		if AttacksFromSquare(&tmp, sq, pt, them)&(1<<uint(to)) != 0 {
			return false
		}
	}
	return true
}

func generateCastling(pos *Position, us Color, ml *MoveList) {
	ksq := pos.KingSq[us]
	them := us.Other()
	occ := pos.Board.OccupiedBitboard()

	tryCastle := func(rookSq Square, kingSide bool) {
		if rookSq == NoSquare {
			return
		}
		kingTo := NewSquare(fileFor(kingSide), us.BackRank())
		rookTo := NewSquare(rookFileFor(kingSide), us.BackRank())

		required := Between(ksq, kingTo) | (1 << uint(kingTo)) | Between(rookSq, rookTo) | (1 << uint(rookTo))
		required &^= (1 << uint(ksq)) | (1 << uint(rookSq))
		if occ&required != 0 {
			return
		}

		path := Between(ksq, kingTo) | (1 << uint(ksq)) | (1 << uint(kingTo))
		for path != 0 {
			s := Square(PopLSB(&path))
			if pos.Attacks.Table[them][s] != 0 {
				return
			}
		}
		ml.Add(NewCastle(ksq, rookSq, kingSide))
	}

	tryCastle(pos.Rooks.HSide[us], true)
	tryCastle(pos.Rooks.ASide[us], false)
}

// generateEnPassant emits the en passant capture if available, for a
// side not in check (checkerSq is ignored). generateEnPassantImpl's
// inCheck flag restricts it to captures that remove the checking pawn.
// Both apply
// the "clearance pin" check (spec §4.4): with both the capturing and
// captured pawns hypothetically removed, a rook/queen must not newly
// attack the king along the vacated rank.
func generateEnPassant(pos *Position, us Color, checkerSq Square, ml *MoveList) {
	generateEnPassantImpl(pos, us, checkerSq, false, ml)
}

func generateEnPassantImpl(pos *Position, us Color, checkerSq Square, inCheck bool, ml *MoveList) {
	if pos.EnPassant == NoSquare {
		return
	}
	to := pos.EnPassant
	var victimSq Square
	if us == White {
		victimSq = NewSquare(to.File(), to.Rank()-1)
	} else {
		victimSq = NewSquare(to.File(), to.Rank()+1)
	}
	if inCheck && victimSq != checkerSq {
		return
	}

	attackerIDs := pos.Attacks.Table[us][to]
	pinned := pos.ComputePinned(us)
	for attackerIDs != 0 {
		id := PopLSB64From16(&attackerIDs)
		sq := pos.PieceSq[us][id]
		if pos.Kind[us][id] != Pawn {
			continue
		}
		if !enPassantClearanceOK(pos, sq, victimSq, us) {
			continue
		}
		if pinned&(1<<uint(sq)) != 0 && pinRayMask(sq, pos.KingSq[us])&(1<<uint(to)) == 0 {
			continue
		}
		ml.Add(NewEnPassant(sq, to))
	}
}

// PopLSB64From16 returns the index of, and clears, the lowest set bit of
// a 16-bit mask (an attack table row), going through PopLSB's uint64
// form.
func PopLSB64From16(m *uint16) int {
	v := uint64(*m)
	i := PopLSB(&v)
	*m = uint16(v)
	return i
}

func enPassantClearanceOK(pos *Position, from, victim Square, us Color) bool {
	ksq := pos.KingSq[us]
	if ksq.Rank() != from.Rank() {
		return true
	}
	them := us.Other()
	tmp := pos.Board
	tmp[from] = EmptyPlace
	tmp[victim] = EmptyPlace

	rank := ksq.Rank()
	// Walk both directions along the rank from the king; only a rook or
	// queen reachable via this rank is relevant.
	for _, dir := range [2]int{DirE, DirW} {
		f, r := ksq.File(), rank
		dfx := directionDelta[dir][0]
		for {
			f += dfx
			if f < 0 || f > 7 {
				break
			}
			s := NewSquare(f, r)
			p := tmp[s]
			if p.IsEmpty() {
				continue
			}
			if p.Color() == them && (p.Type() == Rook || p.Type() == Queen) {
				return false
			}
			break
		}
	}
	return true
}

// GenerateCaptures produces noisy moves only (captures and promotions),
// used by quiescence search.
func GenerateCaptures(pos *Position) MoveList {
	full := GenerateLegalMoves(pos)
	var ml MoveList
	for i := 0; i < full.Len(); i++ {
		m := full.Get(i)
		if m.IsCapture() || m.IsPromotion() {
			ml.Add(m)
		}
	}
	return ml
}
