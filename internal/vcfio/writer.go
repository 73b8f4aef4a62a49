package vcfio

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/varfish-org/varfish-worker-go/internal/model"
	"github.com/varfish-org/varfish-worker-go/internal/workererr"
)

// Writer emits the annotated output VCF. Output lines are composed
// directly with fmt, hand-formatted rather than through vcfgo's object
// model: vcfgo's Writer builds each Info value against the Header that
// parsed it, but every field written here (frequencies,
// ClinVar, ANN) is synthesized during annotation and has no such parsed
// origin.
type Writer struct {
	w       *bufio.Writer
	samples []string
}

// NewWriter wraps w and writes headerLines followed by the #CHROM line.
func NewWriter(w io.Writer, headerLines []string, samples []string) (*Writer, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("##fileformat=VCFv4.2\n"); err != nil {
		return nil, workererr.Wrap(workererr.KindDecode, "writing vcf header", err)
	}
	for _, line := range headerLines {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return nil, workererr.Wrap(workererr.KindDecode, "writing vcf header", err)
		}
	}
	cols := append([]string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT"}, samples...)
	if _, err := bw.WriteString(strings.Join(cols, "\t") + "\n"); err != nil {
		return nil, workererr.Wrap(workererr.KindDecode, "writing vcf column header", err)
	}
	return &Writer{w: bw, samples: samples}, nil
}

// Flush flushes buffered output.
func (w *Writer) Flush() error { return w.w.Flush() }

// WriteVariantRecord writes one annotated sequence-variant record, per
// INFO/FORMAT contract.
func (w *Writer) WriteVariantRecord(r *model.VariantRecord) error {
	info := infoFieldsFromRecord(r)
	format := "GT:GQ:DP:AD:PS"
	fields := []string{
		r.Variant.Chrom,
		strconv.Itoa(int(r.Variant.Pos)),
		".",
		r.Variant.Ref,
		r.Variant.Alt,
		".",
		".",
		info,
		format,
	}
	for _, sample := range w.samples {
		fields = append(fields, formatCallInfo(r.CallInfo[sample]))
	}
	_, err := w.w.WriteString(strings.Join(fields, "\t") + "\n")
	if err != nil {
		return workererr.Wrap(workererr.KindDecode, "writing vcf data line", err)
	}
	return nil
}

func infoFieldsFromRecord(r *model.VariantRecord) string {
	var parts []string
	addTriple := func(prefix string, t model.FrequencyTriple) {
		if t.AN == 0 {
			return
		}
		parts = append(parts,
			fmt.Sprintf("%s_an=%d", prefix, t.AN),
			fmt.Sprintf("%s_hom=%d", prefix, t.Hom),
			fmt.Sprintf("%s_het=%d", prefix, t.Het),
			fmt.Sprintf("%s_hemi=%d", prefix, t.Hemi),
		)
	}
	addMtTriple := func(prefix string, t model.MtFrequencyTriple) {
		if t.AN == 0 {
			return
		}
		parts = append(parts,
			fmt.Sprintf("%s_an=%d", prefix, t.AN),
			fmt.Sprintf("%s_hom=%d", prefix, t.Hom),
			fmt.Sprintf("%s_het=%d", prefix, t.Het),
		)
	}
	addTriple("gnomad_exomes", r.Freq.GnomadExomes)
	addTriple("gnomad_genomes", r.Freq.GnomadGenomes)
	addMtTriple("helix", r.Freq.HelixMt)

	if len(r.Ann) > 0 {
		anns := make([]string, len(r.Ann))
		for i, a := range r.Ann {
			anns[i] = formatAnn(a)
		}
		parts = append(parts, "ANN="+strings.Join(anns, ","))
	}
	if r.ClinVar.Present {
		strs := make([]string, len(r.ClinVar.Pathogenicities))
		for i, p := range r.ClinVar.Pathogenicities {
			strs[i] = p.String()
		}
		sort.Strings(strs)
		parts = append(parts, "clinvar_pathogenicity="+strings.Join(strs, ","))
		if r.ClinVar.HasConflictingInterpretations {
			parts = append(parts, "clinvar_conflicting")
		}
	}
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, ";")
}

func formatAnn(a model.AnnField) string {
	consequences := make([]string, len(a.Consequences))
	for i, c := range a.Consequences {
		consequences[i] = string(c)
	}
	dist := ""
	if a.DistanceToFeature != nil {
		dist = strconv.Itoa(int(*a.DistanceToFeature))
	}
	fields := []string{
		a.Allele,
		strings.Join(consequences, "&"),
		string(a.Impact),
		a.GeneSymbol,
		a.GeneID,
		a.FeatureType,
		a.FeatureID,
		a.Biotype,
		a.Rank,
		a.HgvsC,
		a.HgvsP,
		a.TxPos,
		a.CdsPos,
		a.ProteinPos,
		dist,
		strings.Join(a.Messages, "&"),
	}
	return strings.Join(fields, "|")
}

func formatCallInfo(ci *model.CallInfo) string {
	if ci == nil {
		return "./.:.:.:.:."
	}
	gt := optStr(ci.Genotype)
	gq := optInt32(ci.GenotypeQual)
	dp := optInt32(ci.Depth)
	ad := "."
	if len(ci.AlleleDepth) > 0 {
		strs := make([]string, len(ci.AlleleDepth))
		for i, v := range ci.AlleleDepth {
			strs[i] = strconv.Itoa(int(v))
		}
		ad = strings.Join(strs, ",")
	}
	ps := optInt32(ci.PhaseSet)
	return strings.Join([]string{gt, gq, dp, ad, ps}, ":")
}

func optStr(s *string) string {
	if s == nil {
		return "."
	}
	return *s
}

func optInt32(v *int32) string {
	if v == nil {
		return "."
	}
	return strconv.Itoa(int(*v))
}
