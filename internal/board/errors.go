package board

import "errors"

// Parse-time error sentinels implementing spec §7's taxonomy. Callers
// use errors.Is against these to classify a failure without parsing
// the message text.
var (
	ErrInvalidChar   = errors.New("invalid character")
	ErrInvalidLength = errors.New("invalid length")
	ErrOutOfRange    = errors.New("value out of range")
	ErrInvalidBoard  = errors.New("invalid board")
	ErrTooManyKings  = errors.New("too many kings")
	ErrTooManyPieces = errors.New("too many pieces")
	ErrIllegalMove   = errors.New("illegal move")
)

// debugAsserts is a package-level switch for internal invariant checks
// (mirrors the teacher's board.DebugMoveValidation switch). No code in
// this package reads it, and no test sets it.
var debugAsserts = false
