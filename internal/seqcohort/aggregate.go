// Package seqcohort implements the sequence-variant counterpart of the
// structural-variant cohort aggregator: it builds the in-house frequency
// table that model.PopulationFrequencies.InHouse / query.FrequencySection.InHouse
// are filled from. Unlike SV aggregation, sequence variants merge on exact
// (chrom, pos, ref, alt) identity rather than reciprocal overlap, so no
// clustering pass is needed -- a single additive accumulation by key
// suffices.
package seqcohort

import (
	"sort"
	"strings"

	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/kvstore"
	"github.com/varfish-org/varfish-worker-go/internal/model"
	"github.com/varfish-org/varfish-worker-go/internal/workererr"
)

type siteKey struct {
	chromIdx int
	pos      int32
	ref, alt string
}

// Aggregator accumulates carrier counts across many per-case sequence
// VCFs into a single in-house frequency table.
type Aggregator struct {
	cm     *chrom.Map
	counts map[siteKey]*kvstore.FreqRow
	order  []siteKey
}

func NewAggregator(cm *chrom.Map) *Aggregator {
	return &Aggregator{cm: cm, counts: make(map[siteKey]*kvstore.FreqRow)}
}

// classifyGenotype mirrors cohort.classifyGenotype's reshaped-GT
// classification (allele 1 is always the variant allele post-ingest).
func classifyGenotype(gt string) (het, hom, hemi bool) {
	sep := "/"
	if strings.Contains(gt, "|") {
		sep = "|"
	}
	alleles := strings.Split(strings.TrimPrefix(strings.TrimPrefix(gt, "/"), "|"), sep)
	switch len(alleles) {
	case 1:
		return false, false, alleles[0] == "1"
	case 2:
		a, b := alleles[0], alleles[1]
		if a == "." || b == "." {
			return false, false, false
		}
		if a == "1" && b == "1" {
			return false, true, false
		}
		return a == "1" || b == "1", false, false
	default:
		return false, false, false
	}
}

// AddCase folds one case's already-annotated records into the running
// totals. An unknown contig aborts the whole aggregation, matching C4's
// "never partially ingest" error discipline.
func (a *Aggregator) AddCase(records []*model.VariantRecord) error {
	for _, r := range records {
		chromIdx, err := a.cm.Index(r.Variant.Chrom)
		if err != nil {
			return workererr.Wrap(workererr.KindIngest, "in-house aggregation: unknown contig", err)
		}
		key := siteKey{chromIdx: chromIdx, pos: r.Variant.Pos, ref: r.Variant.Ref, alt: r.Variant.Alt}
		row, ok := a.counts[key]
		if !ok {
			fam := kvstore.FamilyAutosomal
			if chrom.Name(chromIdx) == "X" || chrom.Name(chromIdx) == "Y" {
				fam = kvstore.FamilyGonosomal
			}
			row = &kvstore.FreqRow{Family: fam, ChromIdx: chromIdx, Pos: r.Variant.Pos, Ref: r.Variant.Ref, Alt: r.Variant.Alt}
			a.counts[key] = row
			a.order = append(a.order, key)
		}
		for _, ci := range r.CallInfo {
			if ci == nil || ci.Genotype == nil {
				continue
			}
			row.AN += 2
			het, hom, hemi := classifyGenotype(*ci.Genotype)
			switch {
			case het:
				row.Het++
			case hom:
				row.Hom++
			case hemi:
				row.Hemi++
				row.AN--
			}
		}
	}
	return nil
}

// Finish returns the accumulated rows, sorted by (chrom, pos, ref, alt)
// for deterministic output.
func (a *Aggregator) Finish() []kvstore.FreqRow {
	sort.Slice(a.order, func(i, j int) bool {
		x, y := a.order[i], a.order[j]
		if x.chromIdx != y.chromIdx {
			return x.chromIdx < y.chromIdx
		}
		if x.pos != y.pos {
			return x.pos < y.pos
		}
		if x.ref != y.ref {
			return x.ref < y.ref
		}
		return x.alt < y.alt
	})
	out := make([]kvstore.FreqRow, len(a.order))
	for i, key := range a.order {
		out[i] = *a.counts[key]
	}
	return out
}
