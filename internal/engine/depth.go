package engine

// Depth and Ply are distinct integer newtypes (spec §4, grounded on
// original_source/src/rose/depth.h) so that, unlike the original's
// compile-time-checked C++ strong typedefs, mixing a search depth with
// a ply count at least produces a type mismatch a reviewer (and `go
// vet` on an explicit conversion audit) can catch, instead of silently
// compiling as plain ints would.
type Depth int8

// Ply is a distance from the search root, in half-moves.
type Ply int16

// MaxPly bounds every ply-indexed array (killer table, PV table, ply
// stack) in the search core.
const MaxPly Ply = 246

// MateScore is the evaluation returned for "checkmate delivered right
// now"; scores within MaxPly of it encode a forced mate in the
// remaining distance.
const MateScore = 32000

// MateInMax is the threshold above which a score is treated as an
// encoded mate distance rather than a material/positional evaluation.
const MateInMax = MateScore - int(MaxPly)

// ScoreToTT re-expresses a mate score, which the search reports as a
// distance from the root, as a distance from the current node (ply
// plies below the root), so that a cached score
// remains meaningful when reloaded at a different ply (spec §4.8 /
// original_source/src/rose/eval: adjustPlysToMate).
func ScoreToTT(score int, ply Ply) int {
	switch {
	case score >= MateInMax:
		return score + int(ply)
	case score <= -MateInMax:
		return score - int(ply)
	default:
		return score
	}
}

// ScoreFromTT is ScoreToTT's inverse, applied when a stored score is
// read back out at the current ply.
func ScoreFromTT(score int, ply Ply) int {
	switch {
	case score >= MateInMax:
		return score - int(ply)
	case score <= -MateInMax:
		return score + int(ply)
	default:
		return score
	}
}
