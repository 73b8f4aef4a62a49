package seqingest

import "testing"

func TestSplitBiallelicSkipsSpanningDeletion(t *testing.T) {
	r := RawRecord{
		Chrom:   "1",
		Pos:     100,
		Ref:     "A",
		Alts:    []string{"C", "*"},
		Samples: []string{"NA12878"},
		RawFields: []map[string]string{
			{"GT": "1/2", "DP": "20", "AD": "5,10,5"},
		},
	}
	out := SplitBiallelic(SeqCallerOther, r, "case-uuid")
	if len(out) != 1 {
		t.Fatalf("expected spanning deletion allele to be skipped, got %d records", len(out))
	}
	if out[0].Variant.Alt != "C" {
		t.Fatalf("expected ALT C, got %q", out[0].Variant.Alt)
	}
	gt := out[0].CallInfo["NA12878"].Genotype
	if gt == nil || *gt != "1/0" {
		t.Fatalf("expected reshaped GT 1/0 (allele 1 is this ALT), got %v", gt)
	}
}

func TestSplitBiallelicCompressesAD(t *testing.T) {
	r := RawRecord{
		Chrom:   "1",
		Pos:     100,
		Ref:     "A",
		Alts:    []string{"C"},
		Samples: []string{"NA12878"},
		RawFields: []map[string]string{
			{"GT": "0/1", "DP": "20", "AD": "12,8"},
		},
	}
	out := SplitBiallelic(SeqCallerOther, r, "case-uuid")
	ad := out[0].CallInfo["NA12878"].AlleleDepth
	if len(ad) != 2 || ad[0] != 12 || ad[1] != 8 {
		t.Fatalf("expected AD [12,8], got %v", ad)
	}
}

func TestDragenSQMapsToGQ(t *testing.T) {
	r := RawRecord{
		Chrom:   "1",
		Pos:     100,
		Ref:     "A",
		Alts:    []string{"C"},
		Samples: []string{"NA12878"},
		RawFields: []map[string]string{
			{"GT": "0/1", "SQ": "42"},
		},
	}
	out := SplitBiallelic(SeqCallerDragen, r, "case-uuid")
	gq := out[0].CallInfo["NA12878"].GenotypeQual
	if gq == nil || *gq != 42 {
		t.Fatalf("expected Dragen SQ to map to GQ 42, got %v", gq)
	}
}
