// Package cohort builds the in-house background SV table from many
// previously ingested per-case VCFs, using the same bucket-and-reduce
// shape as internal/svingest but merging by additive carrier-count
// instead of first-non-None field preference.
package cohort

import (
	"strings"

	"github.com/varfish-org/varfish-worker-go/internal/model"
)

// BgCandidate is one case's per-record carrier-count contribution to the
// background database.
type BgCandidate struct {
	Chrom         string
	Pos           int32
	End           int32
	Chrom2        string
	PeOrientation string
	SvType        model.SvType
	NumHet        uint32
	NumHom        uint32
	NumHemi       uint32
	NumCarriers   uint32
}

// classifyGenotype reports whether a reshaped GT string (allele 1 is the
// variant allele) is heterozygous, homozygous, or hemizygous (a
// single-allele haploid call, as seen on chrX/chrY/MT).
func classifyGenotype(gt string) (het, hom, hemi bool) {
	if gt == "" {
		return false, false, false
	}
	sep := "/"
	if strings.Contains(gt, "|") {
		sep = "|"
	}
	alleles := strings.Split(strings.TrimPrefix(strings.TrimPrefix(gt, "/"), "|"), sep)
	switch len(alleles) {
	case 1:
		return false, false, alleles[0] == "1"
	case 2:
		a, b := alleles[0], alleles[1]
		if a == "." || b == "." {
			return false, false, false
		}
		if a == "1" && b == "1" {
			return false, true, false
		}
		if a == "1" || b == "1" {
			return true, false, false
		}
		return false, false, false
	default:
		return false, false, false
	}
}

// AggregateCase counts het/hom/hemi carriers of sv across every sample in
// its CallInfo, producing the per-case candidate row.
func AggregateCase(sv *model.StructuralVariant) BgCandidate {
	c := BgCandidate{
		Chrom:         sv.Chrom,
		Pos:           sv.Pos,
		End:           sv.End,
		Chrom2:        sv.Chrom2,
		PeOrientation: sv.StrandOrientation,
		SvType:        sv.SvType,
	}
	for _, ci := range sv.CallInfo {
		if ci == nil || ci.Genotype == nil {
			continue
		}
		het, hom, hemi := classifyGenotype(*ci.Genotype)
		switch {
		case het:
			c.NumHet++
			c.NumCarriers++
		case hom:
			c.NumHom++
			c.NumCarriers++
		case hemi:
			c.NumHemi++
			c.NumCarriers++
		}
	}
	return c
}
