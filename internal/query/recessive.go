package query

import "github.com/varfish-org/varfish-worker-go/internal/model"

// GeneGroup is a set of sequence-variant records sharing a primary HGNC
// gene ID, as produced by the external sort's first pass keyed by
// hgnc_id.
type GeneGroup struct {
	HgncID  string
	Records []*model.VariantRecord
}

// PassesForGene applies the recessive-mode group predicate. Groups
// failing the rule are discarded in full -- this function reports
// pass/fail for the whole group, not per-record.
//
// Homozygous mode: at least one member has the index sample Hom.
// Compound-heterozygous mode: at least two members are each Het in the
// index, and every non-nil parent is Het for at least one of those
// members, with no single member heterozygous in both parents at once
// (the variant can't simultaneously be the paternal- and maternal-origin
// allele).
// Any: either of the above.
func PassesForGene(mode RecessiveMode, index string, parents []string, group []*model.VariantRecord) bool {
	if mode == RecessiveModeNone {
		return true
	}

	indexGT := func(r *model.VariantRecord) string {
		ci, ok := r.CallInfo[index]
		if !ok || ci.Genotype == nil {
			return ""
		}
		return *ci.Genotype
	}

	hom := func() bool {
		for _, r := range group {
			if GenotypeHom.Matches(indexGT(r)) {
				return true
			}
		}
		return false
	}

	comphet := func() bool {
		hets := make([]*model.VariantRecord, 0, len(group))
		for _, r := range group {
			if GenotypeHet.Matches(indexGT(r)) {
				hets = append(hets, r)
			}
		}
		if len(hets) < 2 {
			return false
		}
		if len(parents) == 0 {
			// No parents genotyped: any two distinct het variants
			// in the index satisfy a compound-het hypothesis.
			return true
		}
		parentGT := func(r *model.VariantRecord, parent string) string {
			ci, ok := r.CallInfo[parent]
			if !ok || ci.Genotype == nil {
				return ""
			}
			return *ci.Genotype
		}
		// For every non-absent parent, it must be Het in at least
		// one hit record, and no hit record may be Het in more than
		// one parent (that would make the variant bi-parental,
		// ruling out compound heterozygosity).
		for _, parent := range parents {
			satisfied := false
			for _, r := range hets {
				if GenotypeHet.Matches(parentGT(r, parent)) {
					satisfied = true
					break
				}
			}
			if !satisfied {
				return false
			}
		}
		for _, r := range hets {
			hetParents := 0
			for _, parent := range parents {
				if GenotypeHet.Matches(parentGT(r, parent)) {
					hetParents++
				}
			}
			if hetParents > 1 {
				return false
			}
		}
		return true
	}

	switch mode {
	case RecessiveModeHomozygous:
		return hom()
	case RecessiveModeCompoundHet:
		return comphet()
	case RecessiveModeAny:
		return hom() || comphet()
	default:
		return true
	}
}

// GroupByPrimaryGene partitions already gene-sorted records (sorted by
// primary HGNC ID, as produced by the first external-sort pass) into
// contiguous GeneGroups. Records with no primary annotation are skipped:
// they cannot participate in gene-level recessive grouping.
func GroupByPrimaryGene(sorted []*model.VariantRecord) []GeneGroup {
	var groups []GeneGroup
	var cur *GeneGroup
	for _, r := range sorted {
		ann, ok := r.PrimaryAnn()
		if !ok || ann.GeneID == "" {
			continue
		}
		if cur == nil || cur.HgncID != ann.GeneID {
			if cur != nil {
				groups = append(groups, *cur)
			}
			cur = &GeneGroup{HgncID: ann.GeneID}
		}
		cur.Records = append(cur.Records, r)
	}
	if cur != nil {
		groups = append(groups, *cur)
	}
	return groups
}
