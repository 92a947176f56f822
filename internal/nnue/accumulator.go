package nnue

import "github.com/kestrelchess/rosecore/internal/board"

// Accumulator holds the two perspectives' hidden-layer activations
// (spec §4.6 "dual accumulator"): Values[White] is the feature sum as
// seen from White's perspective, Values[Black] from Black's. Indexing
// by board.Color directly (rather than by "stm"/"nstm") keeps the
// accumulator meaningful independent of whose turn it is, which is
// what makes incremental updates valid across a move that flips side
// to move.
type Accumulator struct {
	Values   [2][L1Size]int16
	Computed bool
}

// ComputeFull rebuilds both perspectives' accumulators from scratch.
func (acc *Accumulator) ComputeFull(pos *board.Position, net *Network) {
	for p := board.White; p <= board.Black; p++ {
		copy(acc.Values[p][:], net.FeatureBias[:])
		for _, idx := range activeFeatures(pos, p) {
			row := &net.FeatureWeights[idx]
			for i := 0; i < L1Size; i++ {
				acc.Values[p][i] += row[i]
			}
		}
	}
	acc.Computed = true
}

// addFeature adds one feature's weight row into both perspectives'
// accumulators (a piece appearing on the board).
func (acc *Accumulator) addFeature(net *Network, c board.Color, pt board.PieceType, sq board.Square) {
	for p := board.White; p <= board.Black; p++ {
		idx := FeatureIndex(p, c, pt, sq)
		row := &net.FeatureWeights[idx]
		for i := 0; i < L1Size; i++ {
			acc.Values[p][i] += row[i]
		}
	}
}

// removeFeature is addFeature's inverse (a piece disappearing).
func (acc *Accumulator) removeFeature(net *Network, c board.Color, pt board.PieceType, sq board.Square) {
	for p := board.White; p <= board.Black; p++ {
		idx := FeatureIndex(p, c, pt, sq)
		row := &net.FeatureWeights[idx]
		for i := 0; i < L1Size; i++ {
			acc.Values[p][i] -= row[i]
		}
	}
}

// ApplyMove incrementally updates acc for m having been played in
// before (the position prior to the move) reaching after. King moves
// change the mirrored-square mapping for every one of that king's
// colour's own-plane features only through the perspective flip, which
// FeatureIndex already derives from the square, not from king
// location, so no special-cased full recompute is required here —
// unlike a HalfKP net, this plain 768-feature net has no king-bucket
// dependency to invalidate.
func (acc *Accumulator) ApplyMove(net *Network, before *board.Position, m board.Move) {
	if !acc.Computed {
		return
	}
	us := before.SideToMove
	from, to := m.From(), m.To()
	movingPlace := before.PieceAt(from)
	movingType := movingPlace.Type()

	switch {
	case m.IsCastle():
		rookSq := to
		kingSide := m.IsCastleKingSide()
		kingTo := board.NewSquare(fileForCastle(kingSide), us.BackRank())
		rookTo := board.NewSquare(rookFileForCastle(kingSide), us.BackRank())
		rookPlace := before.PieceAt(rookSq)
		acc.removeFeature(net, us, board.King, from)
		acc.removeFeature(net, us, board.Rook, rookSq)
		acc.addFeature(net, us, board.King, kingTo)
		acc.addFeature(net, us, board.Rook, rookTo)
		_ = rookPlace
	case m.IsEnPassant():
		capSq := board.NewSquare(to.File(), from.Rank())
		acc.removeFeature(net, us.Other(), board.Pawn, capSq)
		acc.removeFeature(net, us, board.Pawn, from)
		acc.addFeature(net, us, board.Pawn, to)
	default:
		if !before.PieceAt(to).IsEmpty() {
			captured := before.PieceAt(to)
			acc.removeFeature(net, captured.Color(), captured.Type(), to)
		}
		acc.removeFeature(net, us, movingType, from)
		finalType := movingType
		if m.IsPromotion() {
			finalType = m.PromotionPiece()
		}
		acc.addFeature(net, us, finalType, to)
	}
}

func fileForCastle(kingSide bool) int {
	if kingSide {
		return 6
	}
	return 2
}

func rookFileForCastle(kingSide bool) int {
	if kingSide {
		return 5
	}
	return 3
}

// AccumulatorStack mirrors the teacher's ply-indexed accumulator
// stack, letting the search core push before making a move and pop
// after unmaking it without recomputing from scratch at every node.
type AccumulatorStack struct {
	stack [256]Accumulator // generously sized: one slot per possible ply
	top   int
}

// NewAccumulatorStack returns an empty stack positioned at depth 0.
func NewAccumulatorStack() *AccumulatorStack { return &AccumulatorStack{} }

// Current returns the accumulator for the current ply.
func (s *AccumulatorStack) Current() *Accumulator { return &s.stack[s.top] }

// Push copies the current accumulator forward one ply, ready for
// incremental update in place.
func (s *AccumulatorStack) Push() {
	if s.top+1 < len(s.stack) {
		s.stack[s.top+1] = s.stack[s.top]
		s.top++
	}
}

// Pop discards the current ply's accumulator, returning to the parent.
func (s *AccumulatorStack) Pop() {
	if s.top > 0 {
		s.top--
	}
}

// Reset returns the stack to ply 0 with an empty (uncomputed) accumulator.
func (s *AccumulatorStack) Reset() {
	s.top = 0
	s.stack[0] = Accumulator{}
}
