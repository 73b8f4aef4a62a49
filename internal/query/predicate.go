// Package query implements the filter pipeline that evaluates a
// CaseQuery against a stream of annotated variants.
package query

import (
	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/model"
)

// Passes implements the single-variant predicate for
// sequence variants: frequency, genotype, consequence, locus and ClinVar,
// all ANDed together. Every enabled sub-filter must pass.
func Passes(q *CaseQuery, r *model.VariantRecord) bool {
	return passesFrequency(&q.Frequency, r) &&
		passesGenotype(&q.Genotype, r) &&
		passesConsequence(&q.Consequence, r) &&
		passesLocus(&q.Locus, r) &&
		passesClinVar(&q.ClinVar, r)
}

func isMitochondrial(chromName string) bool {
	return chromName == "MT" || chromName == "M" || chromName == "chrMT" || chromName == "chrM"
}

// passesFrequencyTriple checks one nuclear source's limits against a
// FrequencyTriple. Raising any Max* bound can only turn a fail into a
// pass, never the reverse.
func passesFrequencyTriple(lim FrequencyLimits, f model.FrequencyTriple) bool {
	if !lim.Enabled {
		return true
	}
	if lim.MaxAN != nil && f.AN > *lim.MaxAN {
		return false
	}
	if lim.MaxHet != nil && f.Het > *lim.MaxHet {
		return false
	}
	if lim.MaxHom != nil && f.Hom > *lim.MaxHom {
		return false
	}
	if lim.MaxHemi != nil && f.Hemi > *lim.MaxHemi {
		return false
	}
	if lim.MaxAF != nil && f.AF() > *lim.MaxAF {
		return false
	}
	return true
}

func passesMtFrequencyTriple(lim FrequencyLimits, f model.MtFrequencyTriple) bool {
	if !lim.Enabled {
		return true
	}
	if lim.MaxAN != nil && f.AN > *lim.MaxAN {
		return false
	}
	if lim.MaxHet != nil && f.Het > *lim.MaxHet {
		return false
	}
	if lim.MaxHom != nil && f.Hom > *lim.MaxHom {
		return false
	}
	if lim.MaxAF != nil && f.AF() > *lim.MaxAF {
		return false
	}
	return true
}

// passesFrequency evaluates the frequency section. Mitochondrial variants
// are evaluated only against mt sources; nuclear variants ignore mt
// sources.
func passesFrequency(fs *FrequencySection, r *model.VariantRecord) bool {
	if isMitochondrial(r.Variant.Chrom) {
		return passesMtFrequencyTriple(fs.GnomadMt, r.Freq.GnomadMt) &&
			passesMtFrequencyTriple(fs.HelixMt, r.Freq.HelixMt)
	}
	return passesFrequencyTriple(fs.GnomadExomes, r.Freq.GnomadExomes) &&
		passesFrequencyTriple(fs.GnomadGenomes, r.Freq.GnomadGenomes) &&
		passesFrequencyTriple(fs.InHouse, r.Freq.InHouse)
}

func passesGenotype(gs *GenotypeSection, r *model.VariantRecord) bool {
	for sample, choice := range gs.PerSample {
		ci, ok := r.CallInfo[sample]
		gt := ""
		if ok && ci.Genotype != nil {
			gt = *ci.Genotype
		}
		if !choice.Matches(gt) {
			return false
		}
	}
	return true
}

func passesConsequence(cs *ConsequenceSection, r *model.VariantRecord) bool {
	ann, ok := r.PrimaryAnn()
	if len(cs.Consequences) > 0 {
		if !ok {
			return false
		}
		matched := false
		for _, want := range cs.Consequences {
			if ann.HasConsequence(want) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if len(cs.TranscriptTypes) > 0 {
		if !ok || !contains(cs.TranscriptTypes, ann.Biotype) {
			return false
		}
	}
	if cs.MaxDistToExon != nil {
		if !ok || ann.DistanceToFeature == nil || *ann.DistanceToFeature > *cs.MaxDistToExon {
			return false
		}
	}
	return true
}

func passesLocus(ls *LocusSection, r *model.VariantRecord) bool {
	if len(ls.HgncAllowlist) > 0 {
		found := false
		for _, ann := range r.Ann {
			if contains(ls.HgncAllowlist, ann.GeneID) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(ls.Regions) > 0 {
		found := false
		for _, reg := range ls.Regions {
			if reg.Chrom == r.Variant.Chrom && r.Variant.Pos-1 >= reg.Begin && r.Variant.Pos-1 < reg.End {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func passesClinVar(cs *ClinVarSection, r *model.VariantRecord) bool {
	info := r.ClinVar
	if cs.PresenceRequired && !info.Present {
		return false
	}
	if !info.Present {
		return true
	}
	if len(cs.Pathogenicities) > 0 {
		matched := false
		for _, p := range info.Pathogenicities {
			if containsPathogenicity(cs.Pathogenicities, p) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if info.HasConflictingInterpretations && !cs.AllowConflictingInterpretations {
		return false
	}
	return true
}

func containsPathogenicity(set []model.Pathogenicity, p model.Pathogenicity) bool {
	for _, x := range set {
		if x == p {
			return true
		}
	}
	return false
}

// ChromNo returns the canonical chromosome index for sorting/output.
func ChromNo(m *chrom.Map, chromName string) int {
	idx, err := m.Index(chromName)
	if err != nil {
		return -1
	}
	return idx
}
