// Package svindex implements in-memory interval indexes over background
// SVs and ClinVar SVs, with reciprocal-overlap queries, backed by a
// simple array-backed interval tree per chromosome rather than a
// balanced tree structure. See DESIGN.md for why a hand-rolled tree is
// used here instead of a third-party interval-tree package.
package svindex

// Interval is a half-open [Begin, End) range, 0-based.
type Interval struct {
	Begin int32
	End   int32
}

// ReciprocalOverlap computes min(ovl/len(a), ovl/len(b)) for two
// half-open intervals, or 0 if they don't overlap. Symmetric by
// construction: swapping a and b yields the same value.
func ReciprocalOverlap(a, b Interval) float32 {
	ovlBegin := a.Begin
	if b.Begin > ovlBegin {
		ovlBegin = b.Begin
	}
	ovlEnd := a.End
	if b.End < ovlEnd {
		ovlEnd = b.End
	}
	if ovlBegin >= ovlEnd {
		return 0
	}
	ovlLen := float32(ovlEnd - ovlBegin)
	lenA := float32(a.End - a.Begin)
	lenB := float32(b.End - b.Begin)
	x1 := ovlLen / lenA
	x2 := ovlLen / lenB
	if x1 < x2 {
		return x1
	}
	return x2
}
