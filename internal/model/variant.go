// Package model holds the canonical intermediate representation shared by
// ingest, annotation, cohort aggregation and query: VcfVariant, CallInfo,
// the frequency types, AnnField, VariantRecord and the structural-variant
// types.
package model

import (
	"fmt"
	"strings"
)

// VcfVariant is a normalized, biallelic site key: (chrom, pos, ref, alt).
// pos is 1-based. Multi-allelic input is split upstream of this type.
type VcfVariant struct {
	Chrom string
	Pos   int32
	Ref   string
	Alt   string
}

const dnaAlphabet = "ACGTNacgtn"

// Validate enforces the VcfVariant invariants: pos >= 1, ref/alt non-empty
// and over the DNA alphabet. A lone "*" alt (spanning deletion) is valid as
// a value but callers performing ingest must skip such records explicitly.
func (v VcfVariant) Validate() error {
	if v.Pos < 1 {
		return fmt.Errorf("variant %s: pos %d is not 1-based", v.Chrom, v.Pos)
	}
	if v.Ref == "" {
		return fmt.Errorf("variant %s:%d: empty ref", v.Chrom, v.Pos)
	}
	if v.Alt == "" {
		return fmt.Errorf("variant %s:%d: empty alt", v.Chrom, v.Pos)
	}
	if v.Alt == "*" {
		return nil
	}
	if strings.IndexFunc(v.Ref, func(r rune) bool { return !strings.ContainsRune(dnaAlphabet, r) }) >= 0 {
		return fmt.Errorf("variant %s:%d: ref %q not over DNA alphabet", v.Chrom, v.Pos, v.Ref)
	}
	if strings.IndexFunc(v.Alt, func(r rune) bool { return !strings.ContainsRune(dnaAlphabet, r) }) >= 0 {
		return fmt.Errorf("variant %s:%d: alt %q not over DNA alphabet", v.Chrom, v.Pos, v.Alt)
	}
	return nil
}

// IsSpanningDeletion reports whether this record is the "*" placeholder
// alt that ingest must skip.
func (v VcfVariant) IsSpanningDeletion() bool { return v.Alt == "*" }

func (v VcfVariant) String() string {
	return fmt.Sprintf("%s:%d%s>%s", v.Chrom, v.Pos, v.Ref, v.Alt)
}

// CallInfo holds per-sample call data. Every field is a pointer (or uses an
// explicit "set" flag for value types that have no natural zero-as-unset
// spelling) so that "not given" is distinguishable from "zero" for filter
// semantics.
type CallInfo struct {
	Genotype     *string
	GenotypeQual *int32
	Depth        *int32   // DP
	AlleleDepth  []int32  // AD, ref then alt(s)
	PhaseSet     *int32   // PS

	// SV-only fields.
	PairedEndCov *int32   // pec
	PairedEndVar *int32   // pev
	SplitReadCov *int32   // src
	SplitReadVar *int32   // srv
	CopyNumber   *int32   // cn
	NormCoverage *float64 // anc
	PointCount   *int32   // pc
	AvgMappingQ  *float64 // amq
}

// Clone returns a deep copy so merge logic can safely retain a reference
// without aliasing caller-owned slices.
func (c *CallInfo) Clone() *CallInfo {
	if c == nil {
		return nil
	}
	cp := *c
	if c.AlleleDepth != nil {
		cp.AlleleDepth = append([]int32(nil), c.AlleleDepth...)
	}
	return &cp
}

// FrequencyTriple is the nuclear-chromosome allele-count record:
// AN/hom/het/hemi with derived AC and AF.
type FrequencyTriple struct {
	AN   int32
	Hom  int32
	Het  int32
	Hemi int32
}

// AC returns 2*hom + het + hemi.
func (f FrequencyTriple) AC() int32 { return 2*f.Hom + f.Het + f.Hemi }

// AF returns AC/AN, or 0 when AN is 0.
func (f FrequencyTriple) AF() float64 {
	if f.AN == 0 {
		return 0
	}
	return float64(f.AC()) / float64(f.AN)
}

// Carriers returns hom+het+hemi, the number of individuals carrying at
// least one alt allele.
func (f FrequencyTriple) Carriers() int32 { return f.Hom + f.Het + f.Hemi }

// MtFrequencyTriple is the mitochondrial-chromosome allele-count record:
// AN/hom/het, no hemizygous concept. AC = hom+het.
type MtFrequencyTriple struct {
	AN  int32
	Hom int32
	Het int32
}

func (f MtFrequencyTriple) AC() int32 { return f.Hom + f.Het }

func (f MtFrequencyTriple) AF() float64 {
	if f.AN == 0 {
		return 0
	}
	return float64(f.AC()) / float64(f.AN)
}

func (f MtFrequencyTriple) Carriers() int32 { return f.Hom + f.Het }

// PopulationFrequencies aggregates the frequency sources the engine
// carries for every small variant. Populated from the ingested VCF's INFO
// fields; never mutated after construction.
type PopulationFrequencies struct {
	GnomadExomes  FrequencyTriple
	GnomadGenomes FrequencyTriple
	GnomadMt      MtFrequencyTriple
	HelixMt       MtFrequencyTriple
	InHouse       FrequencyTriple
}

// Consequence is one SnpEff/VEP-style predicted molecular consequence
// (e.g. "missense_variant"). Kept as a plain string type rather than a
// closed enum because the transcript-effect predictor is an external,
// versioned vocabulary the worker does not own.
type Consequence string

// Impact is the coarse SnpEff impact bucket.
type Impact string

const (
	ImpactHigh     Impact = "HIGH"
	ImpactModerate Impact = "MODERATE"
	ImpactLow      Impact = "LOW"
	ImpactModifier Impact = "MODIFIER"
)

var impactRank = map[Impact]int{
	ImpactHigh:     3,
	ImpactModerate: 2,
	ImpactLow:      1,
	ImpactModifier: 0,
}

// Rank returns an ordinal for "decreasing impact" sorting; unknown impacts
// sort as lowest.
func (i Impact) Rank() int { return impactRank[i] }

// AnnField is one predicted consequence record for a variant, mirroring
// the pipe-delimited SnpEff ANN format the transcript predictor emits.
type AnnField struct {
	Allele            string
	Consequences      []Consequence
	Impact            Impact
	GeneSymbol        string
	GeneID            string // HGNC ID
	FeatureType       string
	FeatureID         string
	Biotype           string
	Rank              string
	HgvsC             string
	HgvsP             string
	TxPos             string
	CdsPos            string
	ProteinPos        string
	DistanceToFeature *int32
	Messages          []string
}

// HasConsequence reports whether c is among the field's consequences.
func (a AnnField) HasConsequence(c Consequence) bool {
	for _, x := range a.Consequences {
		if x == c {
			return true
		}
	}
	return false
}

// ClinVarInfo is the per-record ClinVar small-variant annotation attached
// during frequency/ClinVar lookup.
type ClinVarInfo struct {
	Present                       bool
	Pathogenicities               []Pathogenicity
	HasConflictingInterpretations bool
}

// VariantRecord is a sequence (SNV/indel) variant with its calls and
// annotations attached: VcfVariant x {sample -> CallInfo} x []AnnField x
// PopulationFrequencies.
type VariantRecord struct {
	Variant  VcfVariant
	CallInfo map[string]*CallInfo
	Ann      []AnnField // ordered by decreasing impact; Ann[0] is primary
	Freq     PopulationFrequencies
	ClinVar  ClinVarInfo
	CaseUUID string
}

// PrimaryAnn returns the first (highest-impact) annotation, or the zero
// value and false if there are none.
func (v *VariantRecord) PrimaryAnn() (AnnField, bool) {
	if len(v.Ann) == 0 {
		return AnnField{}, false
	}
	return v.Ann[0], true
}

// SampleNames returns the sample names this record has calls for.
func (v *VariantRecord) SampleNames() []string {
	names := make([]string, 0, len(v.CallInfo))
	for name := range v.CallInfo {
		names = append(names, name)
	}
	return names
}
