package seqingest

import (
	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/kvstore"
	"github.com/varfish-org/varfish-worker-go/internal/model"
)

// AnnotationClients bundles the lookup clients a sequence-variant record
// is annotated against. Any client may be nil, meaning that source was not
// configured for this run; a missing store behaves as if empty.
type AnnotationClients struct {
	GnomadExomes  *kvstore.FrequencyStore
	GnomadGenomes *kvstore.FrequencyStore
	GnomadMt      *kvstore.FrequencyStore
	HelixMt       *kvstore.FrequencyStore
	InHouse       *kvstore.FrequencyStore
	ClinVar       *kvstore.ClinVarStore

	// ConsequencePredictor is the external transcript-effect predictor,
	// treated as a pure function: (chrom, pos, ref, alt) -> []AnnField.
	// Nil means no predictor configured; Ann stays empty, same as any
	// other unconfigured annotation source.
	ConsequencePredictor func(chrom string, pos int32, ref, alt string) ([]model.AnnField, error)
}

// isGonosomal reports whether idx refers to chrX or chrY, which carry a
// separate column family in the frequency stores because hemizygous
// calls are only meaningful there.
func isGonosomal(idx int) bool {
	return chrom.Name(idx) == "X" || chrom.Name(idx) == "Y"
}

func nuclearFamily(chromIdx int) kvstore.ColumnFamily {
	if isGonosomal(chromIdx) {
		return kvstore.FamilyGonosomal
	}
	return kvstore.FamilyAutosomal
}

// Annotate looks up rec's frequency and ClinVar records and writes them
// back into rec in place. A nil client annotates with the zero value
// rather than failing.
func Annotate(clients AnnotationClients, cm *chrom.Map, rec *model.VariantRecord) error {
	chromIdx, err := cm.Index(rec.Variant.Chrom)
	if err != nil {
		return err
	}
	v := rec.Variant

	if chrom.IsMT(chromIdx) {
		if clients.GnomadMt != nil {
			triple, err := clients.GnomadMt.LookupMt(chromIdx, v.Pos, v.Ref, v.Alt)
			if err != nil {
				return err
			}
			rec.Freq.GnomadMt = triple
		}
		if clients.HelixMt != nil {
			triple, err := clients.HelixMt.LookupMt(chromIdx, v.Pos, v.Ref, v.Alt)
			if err != nil {
				return err
			}
			rec.Freq.HelixMt = triple
		}
	} else {
		fam := nuclearFamily(chromIdx)
		if clients.GnomadExomes != nil {
			triple, err := clients.GnomadExomes.LookupNuclear(fam, chromIdx, v.Pos, v.Ref, v.Alt)
			if err != nil {
				return err
			}
			rec.Freq.GnomadExomes = triple
		}
		if clients.GnomadGenomes != nil {
			triple, err := clients.GnomadGenomes.LookupNuclear(fam, chromIdx, v.Pos, v.Ref, v.Alt)
			if err != nil {
				return err
			}
			rec.Freq.GnomadGenomes = triple
		}
		if clients.InHouse != nil {
			triple, err := clients.InHouse.LookupNuclear(fam, chromIdx, v.Pos, v.Ref, v.Alt)
			if err != nil {
				return err
			}
			rec.Freq.InHouse = triple
		}
	}

	if clients.ClinVar != nil {
		info, err := clients.ClinVar.Lookup(chromIdx, v.Pos, v.Ref, v.Alt)
		if err != nil {
			return err
		}
		rec.ClinVar = info
	}

	if clients.ConsequencePredictor != nil {
		ann, err := clients.ConsequencePredictor(v.Chrom, v.Pos, v.Ref, v.Alt)
		if err != nil {
			return err
		}
		rec.Ann = ann
	}
	return nil
}
