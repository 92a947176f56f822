package board

// PieceList is the generic per-colour, 16-entry attribute table (spec
// §3): for a given colour, the i-th entry holds the attribute T of the
// piece whose stable ID is i. Two instantiations exist per colour, one
// of Square (current location, NoSquare if the piece is dead) and one
// of PieceType (current type, mutated in place on promotion).
//
// ID 0 is reserved for the king in every PieceList, so king lookups
// never need a special case.
type PieceList[T any] [16]T

// MaxPieceID is the exclusive upper bound on piece IDs within one side.
const MaxPieceID = 16
