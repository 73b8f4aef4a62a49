// Package seqingest implements sequence-VCF ingest, output header
// transform and per-ALT biallelic record construction. The output
// header's ##contig, ##INFO and ##FORMAT lines are generated from fixed
// tables; none of the source header's lines are copied over.
package seqingest

import (
	"fmt"

	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/pkg/pedigree"
)

// HeaderParams carries the case-specific metadata recorded into the
// output VCF header.
type HeaderParams struct {
	Release       chrom.Release
	CaseUUID      string
	WorkerVersion string
	CallerName    string
	CallerVersion string
	CallerConfig  string
	FileDate      string // YYYYMMDD
}

// fixedInfoFields are the population-frequency and annotation INFO
// fields every output record carries.
var fixedInfoFields = []string{
	`##INFO=<ID=gnomad_exomes_an,Number=1,Type=Integer,Description="gnomAD exomes allele number">`,
	`##INFO=<ID=gnomad_exomes_hom,Number=1,Type=Integer,Description="gnomAD exomes homozygous carrier count">`,
	`##INFO=<ID=gnomad_exomes_het,Number=1,Type=Integer,Description="gnomAD exomes heterozygous carrier count">`,
	`##INFO=<ID=gnomad_exomes_hemi,Number=1,Type=Integer,Description="gnomAD exomes hemizygous carrier count">`,
	`##INFO=<ID=gnomad_genomes_an,Number=1,Type=Integer,Description="gnomAD genomes allele number">`,
	`##INFO=<ID=gnomad_genomes_hom,Number=1,Type=Integer,Description="gnomAD genomes homozygous carrier count">`,
	`##INFO=<ID=gnomad_genomes_het,Number=1,Type=Integer,Description="gnomAD genomes heterozygous carrier count">`,
	`##INFO=<ID=gnomad_genomes_hemi,Number=1,Type=Integer,Description="gnomAD genomes hemizygous carrier count">`,
	`##INFO=<ID=helix_an,Number=1,Type=Integer,Description="HelixMtDb allele number">`,
	`##INFO=<ID=helix_hom,Number=1,Type=Integer,Description="HelixMtDb homozygous carrier count">`,
	`##INFO=<ID=helix_het,Number=1,Type=Integer,Description="HelixMtDb heterozygous carrier count">`,
	`##INFO=<ID=ANN,Number=.,Type=String,Description="Functional annotation: allele|consequence|impact|gene_symbol|gene_id|feature_type|feature_id|biotype|rank|hgvs.c|hgvs.p|tx_pos|cds_pos|protein_pos|distance_to_feature|messages">`,
	`##INFO=<ID=clinvar_pathogenicity,Number=.,Type=String,Description="ClinVar clinical significance">`,
	`##INFO=<ID=clinvar_conflicting,Number=0,Type=Flag,Description="ClinVar conflicting interpretations of pathogenicity">`,
}

// canonicalFormatFields are the only FORMAT keys the output carries.
var canonicalFormatFields = []string{
	`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
	`##FORMAT=<ID=GQ,Number=1,Type=Integer,Description="Genotype quality">`,
	`##FORMAT=<ID=DP,Number=1,Type=Integer,Description="Total depth">`,
	`##FORMAT=<ID=AD,Number=R,Type=Integer,Description="Allele depth">`,
	`##FORMAT=<ID=PS,Number=1,Type=Integer,Description="Phase set">`,
}

// contigLines declares the build's contigs, in chrom.Names order.
func contigLines(release chrom.Release) []string {
	out := make([]string, 0, chrom.Count)
	for _, name := range chrom.Names {
		out = append(out, fmt.Sprintf(`##contig=<ID=%s,assembly=%s>`, name, release))
	}
	return out
}

// pedigreeLines re-emits ##SAMPLE and ##PEDIGREE meta lines from the case
// pedigree. Callers must have already validated the
// sample set against the input VCF (pedigree.ValidateSampleSet) before
// calling this -- a mismatch here is a programming error, not user input.
func pedigreeLines(ped *pedigree.Pedigree) []string {
	out := make([]string, 0, len(ped.Members)*2)
	for _, m := range ped.Members {
		out = append(out, fmt.Sprintf(`##SAMPLE=<ID=%s>`, m.Sample))
		out = append(out, fmt.Sprintf(`##PEDIGREE=<ID=%s,Father=%s,Mother=%s>`, m.Sample, m.Father, m.Mother))
	}
	return out
}

// BuildOutputHeaderLines assembles the full set of meta lines the output
// VCF header carries beyond the caller-supplied #CHROM line.
func BuildOutputHeaderLines(params HeaderParams, ped *pedigree.Pedigree) []string {
	var out []string
	out = append(out, fmt.Sprintf(`##fileDate=%s`, params.FileDate))
	out = append(out, contigLines(params.Release)...)
	out = append(out, fixedInfoFields...)
	out = append(out, canonicalFormatFields...)
	out = append(out, pedigreeLines(ped)...)
	out = append(out, fmt.Sprintf(`##x-varfish-case-uuid=%s`, params.CaseUUID))
	out = append(out, fmt.Sprintf(`##x-varfish-version=%s`, params.WorkerVersion))
	callerLine := params.CallerName + "," + params.CallerVersion
	if params.CallerConfig != "" {
		callerLine += "," + params.CallerConfig
	}
	out = append(out, fmt.Sprintf(`##x-varfish-version=%s`, callerLine))
	return out
}
