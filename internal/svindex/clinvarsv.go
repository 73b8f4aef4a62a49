package svindex

import "github.com/varfish-org/varfish-worker-go/internal/model"

// ClinVarSvDb is the in-memory ClinVar-SV overlap index, laid out the
// same way as BgDb: records and a tree per chromosome.
type ClinVarSvDb struct {
	records [][]model.ClinVarSvRecord
	trees   []*Tree
}

func NewClinVarSvDb(recordsByChrom [][]model.ClinVarSvRecord) *ClinVarSvDb {
	db := &ClinVarSvDb{
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

func (db *ClinVarSvDb) IsEmpty() bool { return db == nil || len(db.records) == 0 }

// QueryOverlap returns the VCV identifiers of ClinVar SV records whose
// range reciprocally overlaps the query SV by at least minOverlap,
// optionally filtered to at least minPathogenicity. Insertions and
// break-ends never match.
func (db *ClinVarSvDb) QueryOverlap(chromIdx int, sv *model.StructuralVariant, minOverlap float32, minPathogenicity model.Pathogenicity) []uint32 {
	if db.IsEmpty() || chromIdx < 0 || chromIdx >= len(db.records) {
		return nil
	}
	if sv.SvType == model.SvTypeIns || sv.SvType == model.SvTypeBnd {
		return nil
	}
	q := Interval{Begin: sv.Pos - 1, End: sv.End}
	tree := db.trees[chromIdx]
	recs := db.records[chromIdx]

	var out []uint32
	for _, idx := range tree.Find(q.Begin, q.End) {
		rec := recs[idx]
		if rec.Pathogenicity < minPathogenicity {
			continue
		}
		if ReciprocalOverlap(Interval{Begin: rec.Start - 1, End: rec.Stop}, q) >= minOverlap {
			out = append(out, rec.Vcv)
		}
	}
	return out
}
