package query

import (
	"encoding/json"
	"fmt"

	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/model"
)

// GeneRelated is the gene-level section of the output payload: the
// surviving record's primary annotation's gene identity.
type GeneRelated struct {
	GeneSymbol string `json:"gene_symbol"`
	HgncID     string `json:"hgnc_id"`
}

// VariantRelated is the variant-level section of the output payload:
// frequencies, ClinVar status, and the full annotation list.
type VariantRelated struct {
	Frequencies model.PopulationFrequencies `json:"frequencies"`
	ClinVar     model.ClinVarInfo           `json:"clinvar"`
	Ann         []model.AnnField            `json:"ann"`
}

// CallRelated is one sample's genotype/quality section of the payload.
type CallRelated struct {
	Genotype     *string `json:"genotype"`
	GenotypeQual *int32  `json:"genotype_qual"`
	Depth        *int32  `json:"depth"`
	AlleleDepth  []int32 `json:"allele_depth"`
}

// Payload is the JSON object written into the TSV output's payload
// column.
type Payload struct {
	CaseUUID       string                 `json:"case_uuid"`
	GeneRelated    GeneRelated            `json:"gene_related"`
	VariantRelated VariantRelated         `json:"variant_related"`
	CallRelated    map[string]CallRelated `json:"call_related"`
}

// BuildPayload assembles the JSON payload for one surviving record.
func BuildPayload(r *model.VariantRecord) Payload {
	p := Payload{
		CaseUUID: r.CaseUUID,
		VariantRelated: VariantRelated{
			Frequencies: r.Freq,
			ClinVar:     r.ClinVar,
			Ann:         r.Ann,
		},
		CallRelated: make(map[string]CallRelated, len(r.CallInfo)),
	}
	if ann, ok := r.PrimaryAnn(); ok {
		p.GeneRelated = GeneRelated{GeneSymbol: ann.GeneSymbol, HgncID: ann.GeneID}
	}
	for sample, ci := range r.CallInfo {
		if ci == nil {
			continue
		}
		p.CallRelated[sample] = CallRelated{
			Genotype:     ci.Genotype,
			GenotypeQual: ci.GenotypeQual,
			Depth:        ci.Depth,
			AlleleDepth:  ci.AlleleDepth,
		}
	}
	return p
}

// TsvRow is one output row, matching the fixed column order:
// smallvariantqueryresultset_id, sodar_uuid, release, chromosome_no,
// chromosome, start, end, bin, reference, alternative, payload.
type TsvRow struct {
	ResultSetID string
	SodarUUID   string
	Release     chrom.Release
	ChromNo     int
	Chrom       string
	Start       int32
	End         int32
	Bin         int32
	Ref         string
	Alt         string
	Payload     Payload
}

// WriteTsvRow renders row as one tab-separated line, unquoted.
func WriteTsvRow(row TsvRow) (string, error) {
	payload, err := json.Marshal(row.Payload)
	if err != nil {
		return "", fmt.Errorf("query: marshaling payload: %w", err)
	}
	return fmt.Sprintf("%s\t%s\t%s\t%d\t%s\t%d\t%d\t%d\t%s\t%s\t%s",
		row.ResultSetID, row.SodarUUID, row.Release, row.ChromNo, row.Chrom,
		row.Start, row.End, row.Bin, row.Ref, row.Alt, string(payload)), nil
}

// BuildTsvRow constructs the output row for one surviving sequence
// variant record. start is the 1-based VCF position and end (inclusive)
// is the last reference base, pos + len(ref) - 1, so a SNV has
// start == end. bin covers [start-1, end).
func BuildTsvRow(cm *chrom.Map, release chrom.Release, resultSetID, sodarUUID string, r *model.VariantRecord) (TsvRow, error) {
	chromIdx, err := cm.Index(r.Variant.Chrom)
	if err != nil {
		return TsvRow{}, err
	}
	start := r.Variant.Pos
	end := r.Variant.Pos + int32(len(r.Variant.Ref)) - 1
	return TsvRow{
		ResultSetID: resultSetID,
		SodarUUID:   sodarUUID,
		Release:     release,
		ChromNo:     chromIdx,
		Chrom:       r.Variant.Chrom,
		Start:       start,
		End:         end,
		Bin:         UcscBin(start-1, end),
		Ref:         r.Variant.Ref,
		Alt:         r.Variant.Alt,
		Payload:     BuildPayload(r),
	}, nil
}
