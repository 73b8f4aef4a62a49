package svingest

import (
	"regexp"

	"github.com/varfish-org/varfish-worker-go/internal/model"
)

// symbolicAlt matches the VCF symbolic-allele form <DEL>, <DUP:TANDEM>,...
var symbolicAlt = regexp.MustCompile(`^<([A-Z]+)(:[A-Za-z0-9]+)?>$`)

// breakendAlt matches one of the four breakend ALT spellings, e.g.
// "N[chr2:12345[" or "]chr2:12345]N".
var breakendAlt = regexp.MustCompile(`^([A-Za-z.]*)([\[\]])([^:\[\]]+):(\d+)([\[\]])([A-Za-z.]*)$`)

// ParseAlt extracts the SV type and, for break-ends, the partner contig
// and strand orientation from one ALT-allele spelling.
func ParseAlt(alt string) (svType model.SvType, chrom2 string, partnerPos int32, orientation string, ok bool) {
	if m := breakendAlt.FindStringSubmatch(alt); m != nil {
		bracket1, partnerChrom, posStr, bracket2 := m[2], m[3], m[4], m[5]
		orientation = bracket1 + bracket2
		var pos int64
		for _, c := range posStr {
			pos = pos*10 + int64(c-'0')
		}
		return model.SvTypeBnd, partnerChrom, int32(pos), orientation, true
	}
	if m := symbolicAlt.FindStringSubmatch(alt); m != nil {
		t, err := model.ParseSvType(m[1])
		if err != nil {
			return 0, "", 0, "", false
		}
		return t, "", 0, "", true
	}
	return 0, "", 0, "", false
}
