package kvstore

import "github.com/varfish-org/varfish-worker-go/internal/model"

// FreqRow is one source row for building a frequency store: a site's
// allele counts in a given column family, keyed by (chrom, pos, ref, alt).
type FreqRow struct {
	Family             ColumnFamily
	ChromIdx           int
	Pos                int32
	Ref, Alt           string
	AN, Hom, Het, Hemi int32
}

// BuildFrequencyStore writes a frequency store file from rows, the build
// step for gnomAD/HelixMtDb dumps.
func BuildFrequencyStore(path string, rows []FreqRow) error {
	records := make(map[string][]byte, len(rows))
	for _, r := range rows {
		key := append([]byte{familyPrefix(r.Family)}, EncodeKey(r.ChromIdx, r.Pos, r.Ref, r.Alt)...)
		records[string(key)] = encodeFreqRecord(freqRecord{AN: r.AN, Hom: r.Hom, Het: r.Het, Hemi: r.Hemi})
	}
	return WriteStore(path, nil, records)
}

// ClinVarRow is one source row for building the ClinVar small-variant
// store.
type ClinVarRow struct {
	ChromIdx                      int
	Pos                           int32
	Ref, Alt                      string
	Pathogenicities               []model.Pathogenicity
	HasConflictingInterpretations bool
}

// BuildClinVarStore writes a ClinVar small-variant store file from rows.
func BuildClinVarStore(path string, rows []ClinVarRow) error {
	records := make(map[string][]byte, len(rows))
	for _, r := range rows {
		paths := make([]int32, len(r.Pathogenicities))
		for i, p := range r.Pathogenicities {
			paths[i] = int32(p)
		}
		key := EncodeKey(r.ChromIdx, r.Pos, r.Ref, r.Alt)
		records[string(key)] = encodeClinVarRecord(clinVarRecord{
			Pathogenicities: paths,
			HasConflictingInterpretations: r.HasConflictingInterpretations,
		})
	}
	return WriteStore(path, nil, records)
}

// BuildGeneMetadataStore writes a gene-metadata store file from a
// by-HGNC-ID map.
func BuildGeneMetadataStore(path string, rows map[uint32]GeneMetadata) error {
	records := make(map[string][]byte, len(rows))
	for hgncID, meta := range rows {
		records[string(hgncKey(hgncID))] = encodeGeneMetadata(meta)
	}
	return WriteStore(path, nil, records)
}
