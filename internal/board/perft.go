package board

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Perft counts the leaf nodes of the legal move tree rooted at pos at
// the given depth, the standard move-generator correctness and speed
// benchmark, grounded on hailam-chessplay/internal/uci/uci.go's
// handlePerft (engine.Perft) and the perft helper already used by this
// package's own movegen tests.
func Perft(pos Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	ml := GenerateLegalMoves(&pos)
	if depth == 1 {
		return uint64(ml.Len())
	}
	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		nodes += Perft(pos.Move(ml.Get(i)), depth-1)
	}
	return nodes
}

// DivideEntry is one root move's perft count, as reported by the UCI
// "perft" command's divide output (one line per legal root move).
type DivideEntry struct {
	Move  Move
	Nodes uint64
}

// PerftDivide computes, for every legal move at pos, the perft count
// of the position reached by playing it, fanning the per-move subtrees
// out across maxConcurrent goroutines. A root move is independent of
// every other once played, so unlike the search core's shared-state
// tree walk this has no need for a transposition table or locking: it
// is the one place in this core where "more CPUs, same answer faster"
// is simply true.
func PerftDivide(pos Position, depth int, maxConcurrent int) []DivideEntry {
	ml := GenerateLegalMoves(&pos)
	entries := make([]DivideEntry, ml.Len())

	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	sem := semaphore.NewWeighted(int64(maxConcurrent))
	var wg sync.WaitGroup
	ctx := context.Background()

	for i := 0; i < ml.Len(); i++ {
		i := i
		m := ml.Get(i)
		wg.Add(1)
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Done()
			continue
		}
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			var nodes uint64
			if depth <= 1 {
				nodes = 1
			} else {
				nodes = Perft(pos.Move(m), depth-1)
			}
			entries[i] = DivideEntry{Move: m, Nodes: nodes}
		}()
	}
	wg.Wait()
	return entries
}
