package cohort

import (
	"testing"

	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/model"
)

func TestAggregatorMergesCarrierCountsAdditively(t *testing.T) {
	dir := t.TempDir()
	cm := chrom.NewMap(chrom.GRCh38)
	a := NewAggregator(cm, dir)
	defer a.Cleanup()

	if err := a.Add(BgCandidate{Chrom: "1", Pos: 1000, End: 2000, SvType: model.SvTypeDel, NumHet: 1, NumCarriers: 1}); err != nil {
		t.Fatal(err)
	}
	if err := a.Add(BgCandidate{Chrom: "1", Pos: 1005, End: 2005, SvType: model.SvTypeDel, NumHom: 2, NumCarriers: 2}); err != nil {
		t.Fatal(err)
	}

	out, err := a.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one merged record, got %d: %+v", len(out), out)
	}
	if out[0].Count != 3 || out[0].CountHet != 1 || out[0].CountHom != 2 {
		t.Fatalf("unexpected merged counts: %+v", out[0])
	}
}

func TestClassifyGenotype(t *testing.T) {
	cases := []struct {
		gt               string
		het, hom, hemi   bool
	}{
		{"0/1", true, false, false},
		{"1|0", true, false, false},
		{"1/1", false, true, false},
		{"0/0", false, false, false},
		{"1", false, false, true},
		{"./.", false, false, false},
	}
	for _, c := range cases {
		het, hom, hemi := classifyGenotype(c.gt)
		if het != c.het || hom != c.hom || hemi != c.hemi {
			t.Errorf("classifyGenotype(%q) = (%v,%v,%v), want (%v,%v,%v)", c.gt, het, hom, hemi, c.het, c.hom, c.hemi)
		}
	}
}
