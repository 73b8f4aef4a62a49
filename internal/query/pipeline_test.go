package query

import (
	"testing"

	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/model"
)

func streamOf(records ...*model.VariantRecord) NextFunc {
	i := 0
	return func() (*model.VariantRecord, bool, error) {
		if i >= len(records) {
			return nil, false, nil
		}
		r := records[i]
		i++
		return r, true, nil
	}
}

func TestRunQueryTrivialPassThrough(t *testing.T) {
	cm := chrom.NewMap(chrom.GRCh38)
	rec := &model.VariantRecord{
		Variant:  model.VcfVariant{Chrom: "1", Pos: 100, Ref: "A", Alt: "G"},
		CallInfo: map[string]*model.CallInfo{},
	}
	q := &CaseQuery{}
	rows, err := RunQuery(q, cm, chrom.GRCh38, "rs1", "uuid1", streamOf(rec), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
}

func TestRunQueryFrequencyFilterExcludesCommonVariant(t *testing.T) {
	cm := chrom.NewMap(chrom.GRCh38)
	rec := &model.VariantRecord{
		Variant:  model.VcfVariant{Chrom: "1", Pos: 100, Ref: "A", Alt: "G"},
		CallInfo: map[string]*model.CallInfo{},
		Freq:     model.PopulationFrequencies{GnomadExomes: model.FrequencyTriple{AN: 1000, Hom: 100}},
	}
	maxAF := 0.01
	q := &CaseQuery{Frequency: FrequencySection{GnomadExomes: FrequencyLimits{Enabled: true, MaxAF: &maxAF}}}
	rows, err := RunQuery(q, cm, chrom.GRCh38, "rs1", "uuid1", streamOf(rec), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected common variant to be filtered out, got %d rows", len(rows))
	}
}

func TestRunQueryFinalSortIsCoordinateOrdered(t *testing.T) {
	cm := chrom.NewMap(chrom.GRCh38)
	r1 := &model.VariantRecord{Variant: model.VcfVariant{Chrom: "2", Pos: 50, Ref: "A", Alt: "G"}, CallInfo: map[string]*model.CallInfo{}}
	r2 := &model.VariantRecord{Variant: model.VcfVariant{Chrom: "1", Pos: 200, Ref: "A", Alt: "G"}, CallInfo: map[string]*model.CallInfo{}}
	r3 := &model.VariantRecord{Variant: model.VcfVariant{Chrom: "1", Pos: 100, Ref: "A", Alt: "G"}, CallInfo: map[string]*model.CallInfo{}}

	q := &CaseQuery{}
	rows, err := RunQuery(q, cm, chrom.GRCh38, "rs1", "uuid1", streamOf(r1, r2, r3), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Chrom != "1" || rows[0].Start != 100 {
		t.Fatalf("expected first row to be chr1:100, got %s:%d", rows[0].Chrom, rows[0].Start)
	}
	if rows[1].Start != 200 || rows[2].Chrom != "2" {
		t.Fatalf("unexpected emission order: %+v", rows)
	}
}
