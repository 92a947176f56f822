package nnue

import "github.com/kestrelchess/rosecore/internal/board"

// FeatureIndex maps a (perspective, piece colour, piece type, square)
// tuple to its slot in the 768-wide input layer: the own/enemy plane
// (0 = piece belongs to the perspective colour, 1 = belongs to the
// other side) times 6 piece types times 64 squares, with the square
// mirrored vertically when the perspective is Black so that both
// accumulators are trained on a "my king faces up the board" layout
// (spec §4.6).
func FeatureIndex(perspective, pieceColor board.Color, pt board.PieceType, sq board.Square) int {
	relSq := sq
	if perspective == board.Black {
		relSq = sq.Mirror()
	}
	plane := 0
	if pieceColor != perspective {
		plane = 1
	}
	typeIndex := int(pt) - 1 // PieceType values run 1..6; shift to 0..5
	return (plane*6+typeIndex)*64 + int(relSq)
}

// activeFeatures lists the feature indices active for perspective p in
// position pos.
func activeFeatures(pos *board.Position, p board.Color) []int {
	var out []int
	for c := board.White; c <= board.Black; c++ {
		for id := 0; id < board.MaxPieceID; id++ {
			sq := pos.PieceSq[c][id]
			if sq == board.NoSquare {
				continue
			}
			out = append(out, FeatureIndex(p, c, pos.Kind[c][id], sq))
		}
	}
	return out
}
