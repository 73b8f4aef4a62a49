package vcfio

import (
	"github.com/brentp/vcfgo"
	"github.com/varfish-org/varfish-worker-go/internal/model"
	"github.com/varfish-org/varfish-worker-go/internal/svingest"
)

// ReadCallerFile reads one caller's SV VCF in full and returns it as a
// svingest.CallerFile, caller identity detected from the header. callerName
// overrides the detected Caller's default string form when non-empty, so a
// run can distinguish two Delly VCFs from different batches in
// Callers/output provenance.
func ReadCallerFile(path, callerName string) (svingest.CallerFile, error) {
	r, err := Open(path)
	if err != nil {
		return svingest.CallerFile{}, err
	}
	defer r.Close()

	caller := svingest.DetectCaller(r.HeaderLines())
	name := callerName
	if name == "" {
		name = caller.String()
	}

	cf := svingest.CallerFile{
		Caller:     caller,
		CallerName: name,
		Samples:    r.SampleNames(),
	}
	for {
		v, err := r.next()
		if err != nil {
			return svingest.CallerFile{}, err
		}
		if v == nil {
			break
		}
		rec, ok := svRecordFromVariant(v, cf.Samples)
		if !ok {
			continue
		}
		cf.Records = append(cf.Records, rec)
	}
	return cf, nil
}

// svRecordFromVariant maps one VCF data line onto svingest.RawRecord. A
// record whose ALT does not parse as a symbolic or break-end SV allele is
// skipped rather than failing the whole file, since SV callers sometimes
// emit a handful of small-variant leftovers alongside their SV calls.
func svRecordFromVariant(v *vcfgo.Variant, samples []string) (svingest.RawRecord, bool) {
	alts := v.Alt()
	if len(alts) == 0 {
		return svingest.RawRecord{}, false
	}
	svType, chrom2, partnerPos, orientation, ok := svingest.ParseAlt(alts[0])
	if !ok {
		return svingest.RawRecord{}, false
	}

	pos := int32(v.Pos)
	end := pos
	if svType == model.SvTypeBnd {
		end = partnerPos
	} else if e := infoInt(v, "END"); e != 0 {
		end = int32(e)
	} else if l := infoInt(v, "SVLEN"); l != 0 {
		d := int32(l)
		if d < 0 {
			d = -d
		}
		end = pos + d - 1
	}
	if chrom2 == "" {
		chrom2 = infoString(v, "CHR2")
	}

	rec := svingest.RawRecord{
		Chrom:             v.Chromosome,
		Pos:               pos,
		End:               end,
		Chrom2:            chrom2,
		SvType:            svType,
		SvSubType:         infoString(v, "SVTYPE"),
		StrandOrientation: orientation,
		Samples:           samples,
		RawFields:         make([]svingest.RawField, len(samples)),
	}
	for i := range samples {
		rec.RawFields[i] = rawFields(v, i)
	}
	return rec, true
}
