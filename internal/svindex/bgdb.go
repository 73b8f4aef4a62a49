package svindex

import "github.com/varfish-org/varfish-worker-go/internal/model"

// BgDbParams are the per-database query parameters.
type BgDbParams struct {
	Enabled    bool
	MinOverlap *float32
}

// BgDb is one background SV database's in-memory layout: records and an
// interval tree per chromosome, loaded once at startup and read-only
// thereafter (safe to share across goroutines).
type BgDb struct {
	records [][]model.BackgroundSvRecord // per chromosome
	trees   []*Tree                      // per chromosome
}

// NewBgDb builds a BgDb from records already bucketed by chromosome
// index. Each inner slice should already be associated with its own
// chromosome; index i of records corresponds to chromosome index i.
func NewBgDb(recordsByChrom [][]model.BackgroundSvRecord) *BgDb {
	db := &BgDb{
		records: recordsByChrom,
		trees:   make([]*Tree, len(recordsByChrom)),
	}
	for c, recs := range recordsByChrom {
		recs := recs
		db.trees[c] = Build(len(recs), func(i int) Interval {
			return Interval{Begin: recs[i].Start - 1, End: recs[i].Stop}
		})
	}
	return db
}

// IsEmpty reports whether this database slot was never loaded (missing
// optional database): queries against it short-circuit to zero matches.
func (db *BgDb) IsEmpty() bool { return db == nil || len(db.records) == 0 }

// CountOverlaps implements the overlap query contract:
// sum of Count over matching records, using type-compatible +
// reciprocal-overlap matching, or a fixed slack window for INS/BND.
func (db *BgDb) CountOverlaps(params BgDbParams, chromIdx int, sv *model.StructuralVariant, slackIns, slackBnd int32) uint32 {
	if !params.Enabled || db.IsEmpty() || chromIdx < 0 || chromIdx >= len(db.records) {
		return 0
	}
	q := queryRange(sv, slackIns, slackBnd)
	tree := db.trees[chromIdx]
	recs := db.records[chromIdx]

	var sum uint32
	for _, idx := range tree.Find(q.Begin, q.End) {
		rec := recs[idx]
		if !rec.SvType.IsCompatible(sv.SvType) {
			continue
		}
		if sv.SvType.IsSlackType() {
			sum += rec.Count
			continue
		}
		if params.MinOverlap == nil || ReciprocalOverlap(Interval{Begin: rec.Start - 1, End: rec.Stop}, q) >= *params.MinOverlap {
			sum += rec.Count
		}
	}
	return sum
}

// queryRange builds the half-open query interval for an SV: INS/BND use
// a fixed slack window around Pos, others use [pos-1, end).
func queryRange(sv *model.StructuralVariant, slackIns, slackBnd int32) Interval {
	switch sv.SvType {
	case model.SvTypeIns:
		return Interval{Begin: sv.Pos - slackIns, End: sv.Pos + slackIns}
	case model.SvTypeBnd:
		return Interval{Begin: sv.Pos - slackBnd, End: sv.Pos + slackBnd}
	default:
		return Interval{Begin: sv.Pos - 1, End: sv.End}
	}
}

// FetchRecords returns the background records overlapping the given
// 0-based half-open range on chromIdx, without any count aggregation --
// used by diagnostics/debugging paths, not the filter predicate.
func (db *BgDb) FetchRecords(chromIdx int, begin, end int32) []model.BackgroundSvRecord {
	if db.IsEmpty() || chromIdx < 0 || chromIdx >= len(db.records) {
		return nil
	}
	var out []model.BackgroundSvRecord
	for _, idx := range db.trees[chromIdx].Find(begin, end) {
		out = append(out, db.records[chromIdx][idx])
	}
	return out
}
