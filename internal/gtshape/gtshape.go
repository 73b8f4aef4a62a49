// Package gtshape reshapes VCF genotype strings for biallelic splitting,
// shared by internal/svingest (per-caller SV normalization) and
// internal/seqingest (per-ALT sequence variant splitting).
package gtshape

import (
	"strconv"
	"strings"
)

// CanonicalAlt reshapes gt so that altIndex becomes allele "1" and every
// other called allele becomes "0", preserving the original separator
// style and no-calls ("." stays ".").
func CanonicalAlt(gt string, altIndex int) string {
	if gt == "" {
		return gt
	}
	sep := "/"
	if strings.Contains(gt, "|") {
		sep = "|"
	}
	target := strconv.Itoa(altIndex)
	parts := strings.Split(gt, sep)
	for i, p := range parts {
		switch p {
		case ".":
			continue
		case target:
			parts[i] = "1"
		default:
			parts[i] = "0"
		}
	}
	return strings.Join(parts, sep)
}

// CompressAD compresses a multi-allelic AD slice to [dp-adThis, adThis] for
// the biallelic output record. dp is the record's total
// depth; adThis is the allele depth of the ALT being emitted.
func CompressAD(dp int32, adThis int32) []int32 {
	ref := dp - adThis
	if ref < 0 {
		ref = 0
	}
	return []int32{ref, adThis}
}

// ParseOptInt32 parses an optional VCF integer field, treating "" and "."
// as absent.
func ParseOptInt32(s string) *int32 {
	if s == "" || s == "." {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil
	}
	i := int32(v)
	return &i
}

// ParseAD parses a comma-separated AD field into its per-allele values,
// returning nil if any component fails to parse.
func ParseAD(s string) []int32 {
	if s == "" || s == "." {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		v := ParseOptInt32(p)
		if v == nil {
			return nil
		}
		out = append(out, *v)
	}
	return out
}
