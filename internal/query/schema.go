package query

import "github.com/varfish-org/varfish-worker-go/internal/model"

// CaseQuery is the structured filter query: six orthogonal sections
// plus the recessive-mode wiring that genotype choices imply.
type CaseQuery struct {
	Genotype    GenotypeSection
	Quality     QualitySection
	Frequency   FrequencySection
	Consequence ConsequenceSection
	Locus       LocusSection
	ClinVar     ClinVarSection

	// SV-only; zero value means "no SV-specific constraints".
	StrucVar StrucVarSection
}

// GenotypeSection maps sample name to the requested GenotypeChoice, plus
// the recessive sub-mode to apply when any sample is marked
// RecessiveIndex/RecessiveParent. RecessiveMode is independent of the
// per-sample choice: the choice alone only affects the single-variant
// genotype predicate (where it is evaluated exactly like Het, per the
// truth table), while RecessiveMode selects which grouped rule
// (homozygous / compound-het / either) the external-sort stage applies.
type GenotypeSection struct {
	PerSample     map[string]GenotypeChoice
	RecessiveMode RecessiveMode
}

// QualitySection holds per-sample minimum-quality thresholds. Nil fields
// mean "no constraint", distinguishing "not given" from "zero".
type QualitySection struct {
	PerSample map[string]SampleQuality
}

type SampleQuality struct {
	MinGQ    *int32
	MinDP    *int32
	MinAD    *int32
	MaxADRef *int32
}

// FrequencyLimits bounds one frequency source. Nil fields mean
// "unconstrained".
type FrequencyLimits struct {
	Enabled bool
	MaxAN   *int32
	MaxHet  *int32
	MaxHom  *int32
	MaxHemi *int32
	MaxAF   *float64
}

// FrequencySection has one FrequencyLimits per named source.
type FrequencySection struct {
	GnomadExomes  FrequencyLimits
	GnomadGenomes FrequencyLimits
	GnomadMt      FrequencyLimits
	HelixMt       FrequencyLimits
	InHouse       FrequencyLimits
}

// ConsequenceSection constrains transcript type, predicted consequence
// set, and max distance to the nearest exon. VariantTypes is carried in
// the query but Passes does not evaluate it; no variant-type check is made.
type ConsequenceSection struct {
	VariantTypes    []string // e.g. "snv", "indel"; not evaluated by Passes
	TranscriptTypes []string // e.g. "coding", "noncoding" -- empty means "any"
	Consequences    []model.Consequence
	MaxDistToExon   *int32
}

// GenomeRegion is a half-open [Begin, End) locus constraint, 0-based to
// match the binning/interval math used elsewhere.
type GenomeRegion struct {
	Chrom string
	Begin int32
	End   int32
}

// LocusSection constrains the variant's gene or genomic position.
type LocusSection struct {
	HgncAllowlist []string
	Regions       []GenomeRegion
}

// ClinVarSection constrains small-variant ClinVar membership.
type ClinVarSection struct {
	PresenceRequired                bool
	Pathogenicities                 []model.Pathogenicity
	AllowConflictingInterpretations bool
}

// DatabaseOverlapLimits bounds SV overlap-count against one background
// database.
type DatabaseOverlapLimits struct {
	Enabled    bool
	MinOverlap *float32
	MaxCount   *uint32
}

// ClinVarSvLimits bounds SV overlap against the ClinVar-SV database.
type ClinVarSvLimits struct {
	Enabled          bool
	MinOverlap       float32
	MinPathogenicity model.Pathogenicity
}

// StrucVarSection holds the SV-specific predicate inputs.
type StrucVarSection struct {
	SvTypes []model.SvType
	MinSize *int32
	MaxSize *int32

	DgvGs       DatabaseOverlapLimits
	Dgv         DatabaseOverlapLimits
	DbVar       DatabaseOverlapLimits
	G1000       DatabaseOverlapLimits
	GnomadSvV2  DatabaseOverlapLimits
	GnomadSvV4  DatabaseOverlapLimits
	GnomadCnvV4 DatabaseOverlapLimits
	InHouse     DatabaseOverlapLimits

	ClinVarSv ClinVarSvLimits

	SlackIns int32
	SlackBnd int32
}

// RecessiveMode is the grouped recessive rule derived from the Genotype
// section's choices.
type RecessiveMode int

const (
	RecessiveModeNone RecessiveMode = iota
	RecessiveModeHomozygous
	RecessiveModeCompoundHet
	RecessiveModeAny
)

// RecessiveRoles extracts the index sample and parent samples marked in
// the genotype section's per-sample choices, and the configured mode. If
// no sample is marked RecessiveIndex, mode is RecessiveModeNone regardless
// of GenotypeSection.RecessiveMode -- recessive grouping never runs
// without a declared index.
func (q *CaseQuery) RecessiveRoles() (mode RecessiveMode, index string, parents []string) {
	found := false
	for sample, choice := range q.Genotype.PerSample {
		switch choice {
		case GenotypeRecessiveIndex:
			index = sample
			found = true
		case GenotypeRecessiveParent:
			parents = append(parents, sample)
		}
	}
	if !found {
		return RecessiveModeNone, "", nil
	}
	mode = q.Genotype.RecessiveMode
	if mode == RecessiveModeNone {
		mode = RecessiveModeAny
	}
	return mode, index, parents
}
