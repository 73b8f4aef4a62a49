package query

import (
	"fmt"

	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/extsort"
	"github.com/varfish-org/varfish-worker-go/internal/model"
	"github.com/varfish-org/varfish-worker-go/internal/workererr"
)

// NextFunc streams already-annotated records one at a time, per the
// cooperative single-record-at-a-time scheduling model.
type NextFunc func() (*model.VariantRecord, bool, error)

// RunQuery implements the evaluation pipeline: filter, optional recessive
// grouping via an external sort keyed by primary HGNC ID, then a final
// external sort by (chrom_no, pos, end, ref, alt) before emission.
func RunQuery(q *CaseQuery, cm *chrom.Map, release chrom.Release, resultSetID, sodarUUID string, next NextFunc, tempDir string) ([]TsvRow, error) {
	mode, index, parents := q.RecessiveRoles()

	surviving, err := filterStream(q, next)
	if err != nil {
		return nil, err
	}

	if mode != RecessiveModeNone {
		surviving, err = applyRecessiveGrouping(mode, index, parents, surviving, tempDir)
		if err != nil {
			return nil, err
		}
	}

	final, err := sortForEmission(cm, surviving, tempDir)
	if err != nil {
		return nil, err
	}

	rows := make([]TsvRow, 0, len(final))
	for _, r := range final {
		row, err := BuildTsvRow(cm, release, resultSetID, sodarUUID, r)
		if err != nil {
			return nil, workererr.Wrap(workererr.KindDecode, "building output row", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func filterStream(q *CaseQuery, next NextFunc) ([]*model.VariantRecord, error) {
	var out []*model.VariantRecord
	for {
		r, ok, err := next()
		if err != nil {
			return nil, workererr.Wrap(workererr.KindDecode, "reading annotated variant stream", err)
		}
		if !ok {
			return out, nil
		}
		if Passes(q, r) {
			out = append(out, r)
		}
	}
}

// applyRecessiveGrouping runs the first external-sort pass (keyed by
// primary HGNC ID), groups the sorted stream, applies the recessive rule
// per gene, and returns the union of surviving groups' records. Records
// with no primary gene annotation never enter a group and are dropped,
// matching GroupByPrimaryGene's contract.
func applyRecessiveGrouping(mode RecessiveMode, index string, parents []string, records []*model.VariantRecord, tempDir string) ([]*model.VariantRecord, error) {
	sorter := extsort.NewSorter(tempDir, func(a, b *model.VariantRecord) bool {
		ai, aok := a.PrimaryAnn()
		bi, bok := b.PrimaryAnn()
		if !aok {
			return false
		}
		if !bok {
			return true
		}
		return ai.GeneID < bi.GeneID
	})
	for _, r := range records {
		if err := sorter.Add(r); err != nil {
			return nil, fmt.Errorf("query: gene-sort add: %w", err)
		}
	}
	iter, err := sorter.Finish()
	if err != nil {
		return nil, fmt.Errorf("query: gene-sort finish: %w", err)
	}
	defer sorter.Cleanup()
	defer iter.Close()

	var sorted []*model.VariantRecord
	for {
		r, ok, err := iter.Next()
		if err != nil {
			return nil, fmt.Errorf("query: gene-sort read: %w", err)
		}
		if !ok {
			break
		}
		sorted = append(sorted, r)
	}

	groups := GroupByPrimaryGene(sorted)
	var out []*model.VariantRecord
	for _, g := range groups {
		if PassesForGene(mode, index, parents, g.Records) {
			out = append(out, g.Records...)
		}
	}
	return out, nil
}

// sortForEmission runs the final external-sort pass: orders by
// (chrom_no, pos, end), ties broken by (ref, alt), for a total order.
func sortForEmission(cm *chrom.Map, records []*model.VariantRecord, tempDir string) ([]*model.VariantRecord, error) {
	sorter := extsort.NewSorter(tempDir, func(a, b *model.VariantRecord) bool {
		ca, cb := ChromNo(cm, a.Variant.Chrom), ChromNo(cm, b.Variant.Chrom)
		if ca != cb {
			return ca < cb
		}
		if a.Variant.Pos != b.Variant.Pos {
			return a.Variant.Pos < b.Variant.Pos
		}
		endA := a.Variant.Pos + int32(len(a.Variant.Ref)) - 1
		endB := b.Variant.Pos + int32(len(b.Variant.Ref)) - 1
		if endA != endB {
			return endA < endB
		}
		if a.Variant.Ref != b.Variant.Ref {
			return a.Variant.Ref < b.Variant.Ref
		}
		return a.Variant.Alt < b.Variant.Alt
	})
	for _, r := range records {
		if err := sorter.Add(r); err != nil {
			return nil, fmt.Errorf("query: emission-sort add: %w", err)
		}
	}
	iter, err := sorter.Finish()
	if err != nil {
		return nil, fmt.Errorf("query: emission-sort finish: %w", err)
	}
	defer sorter.Cleanup()
	defer iter.Close()

	var out []*model.VariantRecord
	for {
		r, ok, err := iter.Next()
		if err != nil {
			return nil, fmt.Errorf("query: emission-sort read: %w", err)
		}
		if !ok {
			break
		}
		out = append(out, r)
	}
	return out, nil
}
