package vcfio

import (
	"strconv"
	"strings"

	"github.com/brentp/vcfgo"
	"github.com/varfish-org/varfish-worker-go/internal/model"
)

// AnnotatedReader re-reads a VCF written by Writer back into
// model.VariantRecord, for the CLI stages that run downstream of ingest
// (prefilter, query, in-house aggregation) against an already-annotated
// per-case file rather than a raw caller VCF.
type AnnotatedReader struct {
	r *Reader
}

func OpenAnnotated(path string) (*AnnotatedReader, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &AnnotatedReader{r: r}, nil
}

func (a *AnnotatedReader) Close() error { return a.r.Close() }

func (a *AnnotatedReader) SampleNames() []string { return a.r.SampleNames() }

// Next returns the next record, reconstructing the annotation fields
// Writer.WriteVariantRecord wrote into INFO/FORMAT.
func (a *AnnotatedReader) Next() (*model.VariantRecord, bool, error) {
	v, err := a.r.next()
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		return nil, false, nil
	}
	samples := a.r.SampleNames()
	alts := v.Alt()
	alt := ""
	if len(alts) > 0 {
		alt = alts[0]
	}
	rec := &model.VariantRecord{
		Variant:  model.VcfVariant{Chrom: v.Chromosome, Pos: int32(v.Pos), Ref: v.Ref(), Alt: alt},
		CallInfo: make(map[string]*model.CallInfo, len(samples)),
		Freq: model.PopulationFrequencies{
			GnomadExomes:  readTriple(v, "gnomad_exomes"),
			GnomadGenomes: readTriple(v, "gnomad_genomes"),
			HelixMt:       readMtTriple(v, "helix"),
		},
		ClinVar: readClinVar(v),
		Ann:     readAnn(v),
	}
	for i, sample := range samples {
		rec.CallInfo[sample] = callInfoFromFields(rawFields(v, i))
	}
	return rec, true, nil
}

func readTriple(v *vcfgo.Variant, prefix string) model.FrequencyTriple {
	return model.FrequencyTriple{
		AN:   int32(infoInt(v, prefix+"_an")),
		Hom:  int32(infoInt(v, prefix+"_hom")),
		Het:  int32(infoInt(v, prefix+"_het")),
		Hemi: int32(infoInt(v, prefix+"_hemi")),
	}
}

func readMtTriple(v *vcfgo.Variant, prefix string) model.MtFrequencyTriple {
	return model.MtFrequencyTriple{
		AN:  int32(infoInt(v, prefix+"_an")),
		Hom: int32(infoInt(v, prefix+"_hom")),
		Het: int32(infoInt(v, prefix+"_het")),
	}
}

func readClinVar(v *vcfgo.Variant) model.ClinVarInfo {
	raw := infoString(v, "clinvar_pathogenicity")
	if raw == "" {
		return model.ClinVarInfo{}
	}
	var paths []model.Pathogenicity
	for _, s := range strings.Split(raw, ",") {
		paths = append(paths, parsePathogenicityLabel(s))
	}
	_, conflicting := v.Info().Get("clinvar_conflicting")
	return model.ClinVarInfo{Present: true, Pathogenicities: paths, HasConflictingInterpretations: conflicting == nil}
}

func parsePathogenicityLabel(s string) model.Pathogenicity {
	switch s {
	case "Benign":
		return model.PathogenicityBenign
	case "LikelyBenign":
		return model.PathogenicityLikelyBenign
	case "LikelyPathogenic":
		return model.PathogenicityLikelyPathogenic
	case "Pathogenic":
		return model.PathogenicityPathogenic
	default:
		return model.PathogenicityUncertain
	}
}

func readAnn(v *vcfgo.Variant) []model.AnnField {
	raw := infoString(v, "ANN")
	if raw == "" {
		return nil
	}
	var out []model.AnnField
	for _, entry := range strings.Split(raw, ",") {
		fields := strings.Split(entry, "|")
		for len(fields) < 16 {
			fields = append(fields, "")
		}
		var consequences []model.Consequence
		if fields[1] != "" {
			for _, c := range strings.Split(fields[1], "&") {
				consequences = append(consequences, model.Consequence(c))
			}
		}
		var dist *int32
		if fields[14] != "" {
			if d, err := strconv.Atoi(fields[14]); err == nil {
				d32 := int32(d)
				dist = &d32
			}
		}
		var messages []string
		if fields[15] != "" {
			messages = strings.Split(fields[15], "&")
		}
		out = append(out, model.AnnField{
			Allele:            fields[0],
			Consequences:      consequences,
			Impact:            model.Impact(fields[2]),
			GeneSymbol:        fields[3],
			GeneID:            fields[4],
			FeatureType:       fields[5],
			FeatureID:         fields[6],
			Biotype:           fields[7],
			Rank:              fields[8],
			HgvsC:             fields[9],
			HgvsP:             fields[10],
			TxPos:             fields[11],
			CdsPos:            fields[12],
			ProteinPos:        fields[13],
			DistanceToFeature: dist,
			Messages:          messages,
		})
	}
	return out
}

func callInfoFromFields(raw map[string]string) *model.CallInfo {
	ci := &model.CallInfo{}
	if gt, ok := raw["GT"]; ok && gt != "./." {
		ci.Genotype = &gt
	}
	if v, ok := raw["GQ"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			n32 := int32(n)
			ci.GenotypeQual = &n32
		}
	}
	if v, ok := raw["DP"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			n32 := int32(n)
			ci.Depth = &n32
		}
	}
	if v, ok := raw["AD"]; ok {
		for _, part := range strings.Split(v, ",") {
			if n, err := strconv.Atoi(part); err == nil {
				ci.AlleleDepth = append(ci.AlleleDepth, int32(n))
			}
		}
	}
	if v, ok := raw["PS"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			n32 := int32(n)
			ci.PhaseSet = &n32
		}
	}
	return ci
}
