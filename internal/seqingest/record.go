package seqingest

import (
	"github.com/varfish-org/varfish-worker-go/internal/gtshape"
	"github.com/varfish-org/varfish-worker-go/internal/model"
)

// SeqCaller is the small set of sequence-variant callers whose FORMAT
// keys need caller-specific mapping before they fit the canonical set
// (GT, GQ, DP, AD, PS).
type SeqCaller int

const (
	SeqCallerOther SeqCaller = iota
	SeqCallerGATK
	SeqCallerDeepVariant
	SeqCallerDragen
)

// formatKeyAlias maps a caller-specific FORMAT key onto its canonical
// spelling; Dragen's SQ (phred-scaled quality) becomes GQ.
func formatKeyAlias(caller SeqCaller, key string) string {
	if caller == SeqCallerDragen && key == "SQ" {
		return "GQ"
	}
	return key
}

// RawRecord is one input VCF data line, already split into its multi-allelic
// ALTs but not yet biallelic-split; vcfio owns turning an actual VCF
// record into this shape.
type RawRecord struct {
	Chrom     string
	Pos       int32
	Ref       string
	Alts      []string
	Samples   []string
	RawFields []map[string]string // index-aligned with Samples
}

// SplitBiallelic constructs one model.VariantRecord per non-"*" ALT
// allele, rewriting GT/AD. altIndex in the source GT is
// 1-based across all ALTs (VCF convention), so the i-th output record
// targets allele i+1.
func SplitBiallelic(caller SeqCaller, r RawRecord, caseUUID string) []*model.VariantRecord {
	var out []*model.VariantRecord
	for i, alt := range r.Alts {
		if alt == "*" {
			continue
		}
		altIndex := i + 1
		rec := &model.VariantRecord{
			Variant: model.VcfVariant{Chrom: r.Chrom, Pos: r.Pos, Ref: r.Ref, Alt: alt},
			CallInfo: make(map[string]*model.CallInfo, len(r.Samples)),
			CaseUUID: caseUUID,
		}
		for j, sample := range r.Samples {
			rec.CallInfo[sample] = splitCallInfo(caller, r.RawFields[j], altIndex)
		}
		out = append(out, rec)
	}
	return out
}

func splitCallInfo(caller SeqCaller, raw map[string]string, altIndex int) *model.CallInfo {
	get := func(key string) (string, bool) {
		for k, v := range raw {
			if formatKeyAlias(caller, k) == key {
				return v, true
			}
		}
		return "", false
	}

	ci := &model.CallInfo{}
	if gt, ok := get("GT"); ok {
		g := gtshape.CanonicalAlt(gt, altIndex)
		ci.Genotype = &g
	}
	if v, ok := get("GQ"); ok {
		ci.GenotypeQual = gtshape.ParseOptInt32(v)
	}
	dp, hasDP := get("DP")
	if hasDP {
		ci.Depth = gtshape.ParseOptInt32(dp)
	}
	if v, ok := get("PS"); ok {
		ci.PhaseSet = gtshape.ParseOptInt32(v)
	}
	if ad, ok := get("AD"); ok && hasDP {
		adValues := gtshape.ParseAD(ad)
		if len(adValues) > altIndex {
			dpVal := int32(0)
			if ci.Depth != nil {
				dpVal = *ci.Depth
			}
			ci.AlleleDepth = gtshape.CompressAD(dpVal, adValues[altIndex])
		}
	}
	return ci
}
