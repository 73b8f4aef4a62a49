package vcfio

import (
	"strings"

	"github.com/brentp/vcfgo"
	"github.com/varfish-org/varfish-worker-go/internal/seqingest"
)

// DetectSeqCaller scans a sequence-VCF's header for the three callers
// seqingest's FORMAT-key aliasing knows about.
func DetectSeqCaller(headerLines []string) seqingest.SeqCaller {
	for _, line := range headerLines {
		switch {
		case strings.Contains(line, "##DRAGENCommandLine"):
			return seqingest.SeqCallerDragen
		case strings.Contains(line, "##DeepVariant_version"), strings.Contains(line, "##source=DeepVariant"):
			return seqingest.SeqCallerDeepVariant
		case strings.Contains(line, "##GATKCommandLine"):
			return seqingest.SeqCallerGATK
		}
	}
	return seqingest.SeqCallerOther
}

// SeqReader streams one sequence VCF's records as seqingest.RawRecord,
// one VCF data line at a time (not yet biallelic-split).
type SeqReader struct {
	r      *Reader
	Caller seqingest.SeqCaller
}

// OpenSeq opens a sequence VCF and detects its caller from the header.
func OpenSeq(path string) (*SeqReader, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &SeqReader{r: r, Caller: DetectSeqCaller(r.HeaderLines())}, nil
}

func (s *SeqReader) Close() error { return s.r.Close() }

func (s *SeqReader) SampleNames() []string { return s.r.SampleNames() }

// Next returns the next data line, or ok=false at end of stream.
func (s *SeqReader) Next() (seqingest.RawRecord, bool, error) {
	v, err := s.r.next()
	if err != nil {
		return seqingest.RawRecord{}, false, err
	}
	if v == nil {
		return seqingest.RawRecord{}, false, nil
	}
	return seqRecordFromVariant(v, s.r.SampleNames()), true, nil
}

func seqRecordFromVariant(v *vcfgo.Variant, samples []string) seqingest.RawRecord {
	rec := seqingest.RawRecord{
		Chrom:     v.Chromosome,
		Pos:       int32(v.Pos),
		Ref:       v.Ref(),
		Alts:      v.Alt(),
		Samples:   samples,
		RawFields: make([]map[string]string, len(samples)),
	}
	for i := range samples {
		rec.RawFields[i] = rawFields(v, i)
	}
	return rec
}
