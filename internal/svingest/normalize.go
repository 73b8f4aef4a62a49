package svingest

import (
	"strconv"

	"github.com/varfish-org/varfish-worker-go/internal/gtshape"
	"github.com/varfish-org/varfish-worker-go/internal/model"
	"github.com/varfish-org/varfish-worker-go/internal/workererr"
)

// RawField is one input record's genotype/quality fields for one sample,
// keyed by the caller's own FORMAT key spelling -- normalizeCallInfo maps
// these onto the canonical model.CallInfo field set.
type RawField map[string]string

// RawRecord is a caller's SV record after coordinate/type extraction but
// before FORMAT-key unification; NormalizeRecord turns it into a
// model.StructuralVariant with a single caller in Callers.
type RawRecord struct {
	Chrom             string
	Pos               int32
	End               int32
	Chrom2            string
	SvType            model.SvType
	SvSubType         string
	StrandOrientation string
	Samples           []string // ordered, matching RawFields index
	RawFields         []RawField
}

// formatKeyAliases maps a caller's own FORMAT key spellings onto the
// canonical set (GT, GQ, DP, AD, PS, pec, pev, src, srv, cn, anc, pc, amq).
// Callers not listed here (Manta, Delly, ...) already emit the canonical
// spellings and need no aliasing.
func formatKeyAliases(caller Caller) map[string]string {
	switch caller {
	case CallerDragenSv, CallerDragenCnv:
		return map[string]string{"SQ": "GQ"}
	case CallerPopdel:
		return map[string]string{"DP": "DP", "NR": "pec"}
	default:
		return nil
	}
}

func parseOptFloat64(s string) *float64 {
	if s == "" || s == "." {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// normalizeCallInfo unifies one sample's RawField into a canonical
// model.CallInfo, reshaping GT per gtshape.CanonicalAlt and applying the caller's
// FORMAT key aliases.
func normalizeCallInfo(raw RawField, aliases map[string]string, altIndex int) *model.CallInfo {
	get := func(key string) (string, bool) {
		if v, ok := raw[key]; ok {
			return v, true
		}
		for alias, canon := range aliases {
			if canon == key {
				if v, ok := raw[alias]; ok {
					return v, true
				}
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
	if v, ok := get("DP"); ok {
		ci.Depth = gtshape.ParseOptInt32(v)
	}
	if v, ok := get("AD"); ok {
		ci.AlleleDepth = gtshape.ParseAD(v)
	}
	if v, ok := get("PS"); ok {
		ci.PhaseSet = gtshape.ParseOptInt32(v)
	}
	if v, ok := get("pec"); ok {
		ci.PairedEndCov = gtshape.ParseOptInt32(v)
	}
	if v, ok := get("pev"); ok {
		ci.PairedEndVar = gtshape.ParseOptInt32(v)
	}
	if v, ok := get("src"); ok {
		ci.SplitReadCov = gtshape.ParseOptInt32(v)
	}
	if v, ok := get("srv"); ok {
		ci.SplitReadVar = gtshape.ParseOptInt32(v)
	}
	if v, ok := get("cn"); ok {
		ci.CopyNumber = gtshape.ParseOptInt32(v)
	}
	if v, ok := get("anc"); ok {
		ci.NormCoverage = parseOptFloat64(v)
	}
	if v, ok := get("pc"); ok {
		ci.PointCount = gtshape.ParseOptInt32(v)
	}
	if v, ok := get("amq"); ok {
		ci.AvgMappingQ = parseOptFloat64(v)
	}
	return ci
}

// NormalizeRecord turns one caller's RawRecord into a model.StructuralVariant
// carrying exactly one caller in Callers, ready for bucketing and merge.
func NormalizeRecord(caller Caller, callerName string, r RawRecord) (*model.StructuralVariant, error) {
	if r.Chrom == "" {
		return nil, workererr.New(workererr.KindIngest, "sv record missing chromosome")
	}
	if r.SvType != model.SvTypeIns && r.SvType != model.SvTypeBnd && r.Pos > r.End {
		return nil, workererr.New(workererr.KindIngest, "sv record: pos > end")
	}

	aliases := formatKeyAliases(caller)
	sv := &model.StructuralVariant{
		Chrom:             r.Chrom,
		Pos:               r.Pos,
		End:               r.End,
		Chrom2:            r.Chrom2,
		SvType:            r.SvType,
		SvSubType:         r.SvSubType,
		StrandOrientation: r.StrandOrientation,
		Callers:           []string{callerName},
		CallInfo:          make(map[string]*model.CallInfo, len(r.Samples)),
	}
	for i, sample := range r.Samples {
		sv.CallInfo[sample] = normalizeCallInfo(r.RawFields[i], aliases, 1)
	}
	return sv, nil
}
