package model

import "fmt"

// SvType is the closed structural-variant type enum. Its numeric value is
// also the on-disk encoding used by the packed binary formats, so the iota
// order must never change without a format-version bump.
type SvType int32

const (
	SvTypeDel SvType = iota
	SvTypeDup
	SvTypeInv
	SvTypeIns
	SvTypeBnd
	SvTypeCnv
)

func (t SvType) String() string {
	switch t {
	case SvTypeDel:
		return "DEL"
	case SvTypeDup:
		return "DUP"
	case SvTypeInv:
		return "INV"
	case SvTypeIns:
		return "INS"
	case SvTypeBnd:
		return "BND"
	case SvTypeCnv:
		return "CNV"
	default:
		return fmt.Sprintf("SvType(%d)", int32(t))
	}
}

// ParseSvType parses the ALT-allele/INFO SVTYPE spelling.
func ParseSvType(s string) (SvType, error) {
	switch s {
	case "DEL":
		return SvTypeDel, nil
	case "DUP":
		return SvTypeDup, nil
	case "INV":
		return SvTypeInv, nil
	case "INS":
		return SvTypeIns, nil
	case "BND":
		return SvTypeBnd, nil
	case "CNV":
		return SvTypeCnv, nil
	default:
		return 0, fmt.Errorf("unknown SV type %q", s)
	}
}

// IsCompatible implements the overlap-matching compatibility table:
// DEL<->CNV, DUP<->CNV, identity; everything else only matches itself.
func (t SvType) IsCompatible(other SvType) bool {
	if t == other {
		return true
	}
	isDelOrCnv := func(x SvType) bool { return x == SvTypeDel || x == SvTypeCnv }
	isDupOrCnv := func(x SvType) bool { return x == SvTypeDup || x == SvTypeCnv }
	return (isDelOrCnv(t) && isDelOrCnv(other)) || (isDupOrCnv(t) && isDupOrCnv(other))
}

// IsSlackType reports whether overlap matching for this type uses the
// fixed-slack anchor rule (INS, BND) rather than reciprocal overlap.
func (t SvType) IsSlackType() bool { return t == SvTypeIns || t == SvTypeBnd }

// StructuralVariant is the canonical in-memory SV record.
type StructuralVariant struct {
	Chrom             string
	Pos               int32
	End               int32
	Chrom2            string // only set for break-ends, where End is on Chrom2
	SvType            SvType
	SvSubType         string
	StrandOrientation string
	Callers           []string // set semantics; order is insertion order
	CallInfo          map[string]*CallInfo

	// Populated only after a cohort/ClinVar overlap lookup; zero value
	// means "not yet annotated", not "zero carriers".
	Carriers *CarrierCounts
}

// CarrierCounts is the aggregated carrier-count annotation attached to a
// StructuralVariant after a background-database lookup.
type CarrierCounts struct {
	Count     uint32
	CountHet  uint32
	CountHom  uint32
	CountHemi uint32
}

// Size returns end-pos+1 for linear SVs, or (0, false) for insertions and
// break-ends, which have no linear size.
func (s *StructuralVariant) Size() (int32, bool) {
	if s.SvType == SvTypeIns || s.SvType == SvTypeBnd {
		return 0, false
	}
	return s.End - s.Pos + 1, true
}

// HasCaller reports whether name is already recorded in Callers.
func (s *StructuralVariant) HasCaller(name string) bool {
	for _, c := range s.Callers {
		if c == name {
			return true
		}
	}
	return false
}

// AddCaller appends name to Callers if not already present, preserving set
// semantics while keeping deterministic insertion order.
func (s *StructuralVariant) AddCaller(name string) {
	if !s.HasCaller(name) {
		s.Callers = append(s.Callers, name)
	}
}

// Validate checks the cross-field invariants.
func (s *StructuralVariant) Validate() error {
	if s.Chrom2 == "" || s.Chrom2 == s.Chrom {
		if s.Pos > s.End {
			return fmt.Errorf("sv %s:%d-%d: pos > end on same contig", s.Chrom, s.Pos, s.End)
		}
	}
	return nil
}

// BackgroundSvRecord is one row of the cohort background SV table,
// persisted in the packed binary on-disk form.
type BackgroundSvRecord struct {
	ChromNo   int32
	ChromNo2  int32
	SvType    SvType
	Start     int32 // 1-based
	Stop      int32
	Count     uint32
	CountHet  uint32
	CountHom  uint32
	CountHemi uint32
}

// Validate enforces count >= count_het+count_hom+count_hemi. Some source
// databases use "count" to mean allele count rather than carrier count;
// ingest records which semantics a given source used rather than
// normalizing.
func (r BackgroundSvRecord) Validate() error {
	if r.Count < r.CountHet+r.CountHom+r.CountHemi {
		return fmt.Errorf("background sv record %d:%d-%d: count %d < sum of het/hom/hemi %d",
			r.ChromNo, r.Start, r.Stop, r.Count, r.CountHet+r.CountHom+r.CountHemi)
	}
	return nil
}

// Pathogenicity is the closed ClinVar clinical-significance enum, ordered
// from benign to pathogenic so min-pathogenicity filters can compare by
// rank.
type Pathogenicity int32

const (
	PathogenicityBenign Pathogenicity = iota
	PathogenicityLikelyBenign
	PathogenicityUncertain
	PathogenicityLikelyPathogenic
	PathogenicityPathogenic
)

func (p Pathogenicity) String() string {
	switch p {
	case PathogenicityBenign:
		return "Benign"
	case PathogenicityLikelyBenign:
		return "LikelyBenign"
	case PathogenicityUncertain:
		return "Uncertain"
	case PathogenicityLikelyPathogenic:
		return "LikelyPathogenic"
	case PathogenicityPathogenic:
		return "Pathogenic"
	default:
		return "Uncertain"
	}
}

// ParsePathogenicity maps a ClinVar clinical-significance summary string
// to the closed enum. Unrecognized strings downgrade to Uncertain and the
// caller is expected to log a warning.
func ParsePathogenicity(s string) Pathogenicity {
	switch s {
	case "Benign":
		return PathogenicityBenign
	case "Likely benign":
		return PathogenicityLikelyBenign
	case "Uncertain significance":
		return PathogenicityUncertain
	case "Likely pathogenic":
		return PathogenicityLikelyPathogenic
	case "Pathogenic":
		return PathogenicityPathogenic
	default:
		return PathogenicityUncertain
	}
}

// ClinVarSvRecord is one ClinVar structural-variant record used by the
// background/overlap index.
type ClinVarSvRecord struct {
	ChromNo       int32
	Start         int32
	Stop          int32
	VariationType string
	Pathogenicity Pathogenicity
	Vcv           uint32
}
