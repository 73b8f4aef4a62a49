package svingest

import (
	"testing"

	"github.com/varfish-org/varfish-worker-go/internal/model"
)

func del(pos, end int32, caller string) *model.StructuralVariant {
	return &model.StructuralVariant{
		Chrom: "1", Pos: pos, End: end, SvType: model.SvTypeDel,
		Callers:  []string{caller},
		CallInfo: map[string]*model.CallInfo{},
	}
}

func TestClusterBucketMergesOverlappingDeletions(t *testing.T) {
	records := []*model.StructuralVariant{
		del(1000, 2000, "delly"),
		del(1010, 2010, "manta"),
	}
	out := clusterBucket(DefaultCohortMergeParams(), records)
	if len(out) != 1 {
		t.Fatalf("expected 1 merged cluster, got %d", len(out))
	}
	if len(out[0].Callers) != 2 {
		t.Fatalf("expected both callers recorded, got %v", out[0].Callers)
	}
}

func TestClusterBucketKeepsDistantDeletionsSeparate(t *testing.T) {
	records := []*model.StructuralVariant{
		del(1000, 1100, "delly"),
		del(50000, 50100, "manta"),
	}
	out := clusterBucket(DefaultCohortMergeParams(), records)
	if len(out) != 2 {
		t.Fatalf("expected 2 distinct clusters, got %d", len(out))
	}
}

func TestClusterBucketCallInfoFirstNonNoneWins(t *testing.T) {
	gq1 := int32(30)
	a := del(1000, 2000, "delly")
	a.CallInfo["NA12878"] = &model.CallInfo{GenotypeQual: &gq1}

	gq2 := int32(99)
	b := del(1005, 2005, "manta")
	b.CallInfo["NA12878"] = &model.CallInfo{GenotypeQual: &gq2}

	out := clusterBucket(DefaultCohortMergeParams(), []*model.StructuralVariant{a, b})
	if len(out) != 1 {
		t.Fatalf("expected a single cluster, got %d", len(out))
	}
	got := out[0].CallInfo["NA12878"].GenotypeQual
	if got == nil || *got != 30 {
		t.Fatalf("expected first member's GQ (30) to win, got %v", got)
	}
}

func TestReciprocalOverlapBelowThresholdDoesNotMerge(t *testing.T) {
	records := []*model.StructuralVariant{
		del(1000, 2000, "delly"), // length 1001 (1-based, inclusive)
		del(1900, 2900, "manta"), // overlap 1900..2000 = 101bp, ratio ~0.1
	}
	out := clusterBucket(DefaultCohortMergeParams(), records)
	if len(out) != 2 {
		t.Fatalf("expected no merge below min_overlap, got %d clusters", len(out))
	}
}

func TestBndSlackMatch(t *testing.T) {
	a := &model.StructuralVariant{Chrom: "1", Pos: 1000, End: 1000, SvType: model.SvTypeBnd, Callers: []string{"manta"}, CallInfo: map[string]*model.CallInfo{}}
	b := &model.StructuralVariant{Chrom: "1", Pos: 1030, End: 1030, SvType: model.SvTypeBnd, Callers: []string{"delly"}, CallInfo: map[string]*model.CallInfo{}}
	out := clusterBucket(DefaultCohortMergeParams(), []*model.StructuralVariant{a, b})
	if len(out) != 1 {
		t.Fatalf("expected breakends within 50bp slack to merge, got %d clusters", len(out))
	}
}
