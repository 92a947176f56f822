package board

import "math/bits"

// Byteboard is the 64-byte mailbox (spec §3): one Place per square,
// simultaneously readable as a byte-addressed array and, conceptually,
// as a 512-bit vector for the geometry kernel's permute operations. Go
// cannot pin struct alignment the way the C++ original does, but the
// array's layout is otherwise identical: byte i is square i.
type Byteboard [64]Place

// OccupiedBitboard returns the set of non-empty squares. Because every
// occupied Place byte is non-zero and every empty square is the
// all-zero byte, this is exactly the nonzero-byte mask of the mailbox.
func (bb *Byteboard) OccupiedBitboard() uint64 {
	var occ uint64
	for i := 0; i < 64; i++ {
		if bb[i] != EmptyPlace {
			occ |= 1 << uint(i)
		}
	}
	return occ
}

// ColorBitboard returns the occupancy of one colour: the mailbox's
// per-byte sign bit XORed with c's sign mask, intersected with overall
// occupancy (spec §3 Place).
func (bb *Byteboard) ColorBitboard(c Color) uint64 {
	occ := bb.OccupiedBitboard()
	var colorBits uint64
	for i := 0; i < 64; i++ {
		if occ&(1<<uint(i)) == 0 {
			continue
		}
		if bb[i].Color() == c {
			colorBits |= 1 << uint(i)
		}
	}
	return colorBits
}

// BitboardForType returns the set of squares holding a piece of type pt
// and colour c: a byte-equality test of (board & type-mask) against the
// target Place's type/colour bits (spec §4.2).
func (bb *Byteboard) BitboardForType(pt PieceType, c Color) uint64 {
	var out uint64
	for i := 0; i < 64; i++ {
		p := bb[i]
		if p.IsEmpty() {
			continue
		}
		if p.Type() == pt && p.Color() == c {
			out |= 1 << uint(i)
		}
	}
	return out
}

// PopLSB returns the index of, and clears, the lowest set bit of bb.
func PopLSB(bb *uint64) int {
	i := bits.TrailingZeros64(*bb)
	*bb &= *bb - 1
	return i
}

// PopCount returns the number of set bits.
func PopCount(bb uint64) int { return bits.OnesCount64(bb) }
