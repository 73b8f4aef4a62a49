package svindex

import "sort"

// indexedInterval pairs an Interval with the index of its owning record in
// the per-chromosome record slice: tree nodes carry an index rather than
// owning the record.
type indexedInterval struct {
	Interval
	idx int
}

// Tree is a read-only, array-backed interval index: built once from a
// sorted slice of (interval, record-index) pairs, queried many times.
// Immutable after Build, so it may be shared freely across goroutines.
type Tree struct {
	sorted []indexedInterval // sorted by Begin
	maxEnd []int32           // maxEnd[i] = max(End) over sorted[i:]
}

// Build constructs a Tree over n records, where interval(i) returns the
// range for record index i. Records that overlap even a single query are
// found via Find; the ordering of equal-Begin entries is stable.
func Build(n int, interval func(i int) Interval) *Tree {
	t := &Tree{sorted: make([]indexedInterval, n)}
	for i := 0; i < n; i++ {
		t.sorted[i] = indexedInterval{Interval: interval(i), idx: i}
	}
	sort.SliceStable(t.sorted, func(i, j int) bool {
		return t.sorted[i].Begin < t.sorted[j].Begin
	})
	t.maxEnd = make([]int32, n)
	var running int32
	for i := n - 1; i >= 0; i-- {
		if t.sorted[i].End > running {
			running = t.sorted[i].End
		}
		t.maxEnd[i] = running
	}
	return t
}

// Find returns the record indexes whose interval overlaps the half-open
// query range [begin, end). Records are scanned in ascending Begin order
// starting from index 0: entries before the query's Begin can still
// overlap it (a wide interval starting earlier), so only the upper bound
// (Begin >= end) lets the scan stop early; maxEnd is kept for potential
// future skip-ahead pruning but is not required for correctness here.
func (t *Tree) Find(begin, end int32) []int {
	var out []int
	for i := 0; i < len(t.sorted); i++ {
		iv := t.sorted[i]
		if iv.Begin >= end {
			break
		}
		if iv.End > begin {
			out = append(out, iv.idx)
		}
	}
	return out
}
