package engine

import "time"

// Options bundles the configuration surface a library caller (as
// opposed to a UCI session, which negotiates these one at a time via
// "setoption") would set up front: hash table size, worker count, the
// NNUE weights file, how many principal variations to report, and the
// clock safety margin. internal/uciproto's Handler keeps its own copy
// of these as individual fields, updated incrementally by "setoption";
// Options exists for callers that want to configure a search in one
// shot instead, e.g. a data-generation driver that never speaks UCI.
type Options struct {
	HashMB       int
	Threads      int
	EvalFile     string
	MultiPV      int
	MoveOverhead time.Duration
}

// DefaultOptions returns the options a fresh engine starts with, before
// any "setoption" (or direct field assignment) changes them.
func DefaultOptions() Options {
	return Options{
		HashMB:       defaultHashMB,
		Threads:      1,
		MultiPV:      1,
		MoveOverhead: defaultMoveOverhead,
	}
}

const (
	defaultHashMB       = 64
	defaultMoveOverhead = 10 * time.Millisecond
)
