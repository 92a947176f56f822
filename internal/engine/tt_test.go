package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelchess/rosecore/internal/board"
)

func TestTableStoreLoadRoundTrip(t *testing.T) {
	tt := NewTable(1)
	hash := uint64(0x0123456789abcdef)
	want := LookupResult{Depth: 12, Bound: BoundExact, Score: 57, Move: board.NewMove(board.E2, board.E4)}

	tt.Store(hash, 3, want)
	got := tt.Load(hash, 3)

	require.Equal(t, want, got)
}

func TestTableMissReturnsBoundNone(t *testing.T) {
	tt := NewTable(1)
	got := tt.Load(0xdeadbeef, 0)
	require.Equal(t, BoundNone, got.Bound)
}

func TestTableMateScoreSurvivesPlyShift(t *testing.T) {
	tt := NewTable(1)
	hash := uint64(42)
	stored := LookupResult{Depth: 5, Bound: BoundExact, Score: MateScore - 3, Move: board.NoMove}

	tt.Store(hash, 10, stored)
	got := tt.Load(hash, 4)

	// Storing re-bases the root-relative mate score to the storing node
	// (+storePly); loading re-bases it to the loading node's root
	// distance (-loadPly).
	want := (MateScore - 3) + (10 - 4)
	require.Equal(t, want, got.Score)
}

func TestTableClear(t *testing.T) {
	tt := NewTable(1)
	hash := uint64(7)
	tt.Store(hash, 0, LookupResult{Depth: 1, Bound: BoundExact, Score: 10})
	tt.Clear()
	got := tt.Load(hash, 0)
	require.Equal(t, BoundNone, got.Bound)
}

// TestTableFragmentCollisionMiss stores a real entry, then corrupts
// only its verification fragment (leaving the ctrl byte that routed
// the lookup to this exact slot untouched) and checks Load now reports
// a miss instead of handing back a stale score for a different
// position that happened to share a bucket and ctrl byte.
func TestTableFragmentCollisionMiss(t *testing.T) {
	tt := NewTable(1)
	hash := uint64(0xfeed)
	tt.Store(hash, 0, LookupResult{Depth: 9, Bound: BoundExact, Score: 123})

	if got := tt.Load(hash, 0); got.Bound == BoundNone {
		t.Fatal("sanity: the entry we just wrote should read back non-empty")
	}

	index, ctrl, _ := splitHash(len(tt.buckets), hash)
	b := &tt.buckets[index]
	i, ok := findEntryIndex(b, ctrl)
	if !ok {
		t.Fatal("sanity: stored entry's ctrl byte should still be present")
	}
	b.entries[i] = entry{raw: b.entries[i].raw ^ 1} // flip the fragment's low bit

	if got := tt.Load(hash, 0); got.Bound != BoundNone {
		t.Fatalf("expected a fragment mismatch to report a miss, got %+v", got)
	}
}

// TestTableRoundRobinEviction fills a bucket beyond its fixed capacity
// and checks that the earliest-written entries are the ones evicted,
// matching the cursor-based round-robin replacement Store documents.
func TestTableRoundRobinEviction(t *testing.T) {
	tt := NewTable(1)
	index, _, _ := splitHash(len(tt.buckets), 0)
	b := &tt.buckets[index]

	// Write bucketEntryCount+2 distinct ctrl bytes directly; the first
	// two should be evicted once the cursor wraps around.
	for i := 0; i < bucketEntryCount+2; i++ {
		ctrl := byte(i + 1) // avoid 0, not load-bearing but keeps ctrls visibly distinct
		entryIndex, ok := findEntryIndex(b, ctrl)
		if !ok {
			entryIndex = int(b.ctrls[bucketEntryCount])
			b.ctrls[bucketEntryCount] = byte((int(b.ctrls[bucketEntryCount]) + 1) % bucketEntryCount)
		}
		b.ctrls[entryIndex] = ctrl
		b.entries[entryIndex] = newEntry(uint64(i), 0, LookupResult{Depth: Depth(i), Bound: BoundExact, Score: i})
	}

	if _, ok := findEntryIndex(b, 1); ok {
		t.Fatal("expected the first ctrl byte to have been evicted by the round-robin cursor")
	}
	if _, ok := findEntryIndex(b, byte(bucketEntryCount+2)); !ok {
		t.Fatal("expected the most recently written ctrl byte to still be present")
	}
}
