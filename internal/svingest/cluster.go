package svingest

import (
	"sort"

	"github.com/varfish-org/varfish-worker-go/internal/model"
	"github.com/varfish-org/varfish-worker-go/internal/svindex"
)

// MergeParams controls the cross-caller cluster-merge.
type MergeParams struct {
	MinOverlap float32
	SlackIns   int32
	SlackBnd   int32
}

// DefaultQueryMergeParams are the query-time defaults: 0.75 min overlap,
// 50bp slack for INS/BND.
func DefaultQueryMergeParams() MergeParams {
	return MergeParams{MinOverlap: 0.75, SlackIns: 50, SlackBnd: 50}
}

// DefaultCohortMergeParams are the cohort-aggregation defaults: a
// stricter 0.8 min overlap so a 0.75 query still matches cluster members.
func DefaultCohortMergeParams() MergeParams {
	return MergeParams{MinOverlap: 0.8, SlackIns: 50, SlackBnd: 50}
}

// openCluster accumulates members that all mutually match, following a
// complete-linkage rule: a record joins only if it matches every
// existing member.
type openCluster struct {
	members []*model.StructuralVariant
	maxEnd  int32
	anchor  int32 // Pos of the first member, used for slack-type closing
}

func (c *openCluster) interval() svindex.Interval {
	return svindex.Interval{Begin: c.members[0].Pos - 1, End: c.maxEnd}
}

func matches(params MergeParams, cluster *openCluster, sv *model.StructuralVariant) bool {
	for _, m := range cluster.members {
		if !m.SvType.IsCompatible(sv.SvType) {
			return false
		}
		if sv.SvType.IsSlackType() {
			slack := params.SlackIns
			if sv.SvType == model.SvTypeBnd {
				slack = params.SlackBnd
			}
			d := sv.Pos - m.Pos
			if d < 0 {
				d = -d
			}
			if d > slack {
				return false
			}
			continue
		}
		a := svindex.Interval{Begin: m.Pos - 1, End: m.End}
		b := svindex.Interval{Begin: sv.Pos - 1, End: sv.End}
		if svindex.ReciprocalOverlap(a, b) < params.MinOverlap {
			return false
		}
	}
	return true
}

// canStillMatch reports whether cluster could ever accept a future record,
// given records arrive in ascending Pos order within a bucket: once the
// incoming Pos has moved far enough past the cluster's reachable range, no
// later (higher-Pos) record can satisfy the overlap or slack test.
func canStillMatch(params MergeParams, cluster *openCluster, incomingPos int32) bool {
	svType := cluster.members[0].SvType
	if svType.IsSlackType() {
		slack := params.SlackIns
		if svType == model.SvTypeBnd {
			slack = params.SlackBnd
		}
		return incomingPos-cluster.anchor <= slack
	}
	return incomingPos-1 < cluster.maxEnd
}

// mergeCallInfo merges two samples' CallInfo field-wise, keeping the
// first non-nil value for each field. representative applies it over the
// cluster's members in member order, which is ascending Pos (members at
// equal Pos keep input-file order); the input files' caller order is not
// otherwise taken into account.
func mergeCallInfo(into, from *model.CallInfo) *model.CallInfo {
	if into == nil {
		return from.Clone()
	}
	if from == nil {
		return into
	}
	if into.Genotype == nil {
		into.Genotype = from.Genotype
	}
	if into.GenotypeQual == nil {
		into.GenotypeQual = from.GenotypeQual
	}
	if into.Depth == nil {
		into.Depth = from.Depth
	}
	if into.AlleleDepth == nil {
		into.AlleleDepth = from.AlleleDepth
	}
	if into.PhaseSet == nil {
		into.PhaseSet = from.PhaseSet
	}
	if into.PairedEndCov == nil {
		into.PairedEndCov = from.PairedEndCov
	}
	if into.PairedEndVar == nil {
		into.PairedEndVar = from.PairedEndVar
	}
	if into.SplitReadCov == nil {
		into.SplitReadCov = from.SplitReadCov
	}
	if into.SplitReadVar == nil {
		into.SplitReadVar = from.SplitReadVar
	}
	if into.CopyNumber == nil {
		into.CopyNumber = from.CopyNumber
	}
	if into.NormCoverage == nil {
		into.NormCoverage = from.NormCoverage
	}
	if into.PointCount == nil {
		into.PointCount = from.PointCount
	}
	if into.AvgMappingQ == nil {
		into.AvgMappingQ = from.AvgMappingQ
	}
	return into
}

// representative builds the single emitted record for a closed cluster:
// union of callers, sample-wise first-non-None CallInfo merge, Pos and the
// other geometry fields taken from the first member and End from the
// largest End among members (ties across clusters are broken later by the
// global (pos, end) sort).
func representative(cluster *openCluster) *model.StructuralVariant {
	first := cluster.members[0]
	out := &model.StructuralVariant{
		Chrom:             first.Chrom,
		Pos:               first.Pos,
		End:               cluster.maxEnd,
		Chrom2:            first.Chrom2,
		SvType:            first.SvType,
		SvSubType:         first.SvSubType,
		StrandOrientation: first.StrandOrientation,
		CallInfo:          make(map[string]*model.CallInfo),
	}
	for _, m := range cluster.members {
		for _, caller := range m.Callers {
			out.AddCaller(caller)
		}
		for sample, ci := range m.CallInfo {
			out.CallInfo[sample] = mergeCallInfo(out.CallInfo[sample], ci)
		}
	}
	return out
}

// clusterBucket runs the streaming cluster-merge over one
// (chrom, sv_type) bucket's records, already sorted by ascending Pos.
func clusterBucket(params MergeParams, records []*model.StructuralVariant) []*model.StructuralVariant {
	var open []*openCluster
	var done []*model.StructuralVariant

	flushClosed := func(incomingPos int32, force bool) {
		kept := open[:0]
		for _, c := range open {
			if force || !canStillMatch(params, c, incomingPos) {
				done = append(done, representative(c))
			} else {
				kept = append(kept, c)
			}
		}
		open = kept
	}

	for _, sv := range records {
		flushClosed(sv.Pos, false)

		joined := false
		for _, c := range open {
			if matches(params, c, sv) {
				c.members = append(c.members, sv)
				if sv.End > c.maxEnd {
					c.maxEnd = sv.End
				}
				joined = true
				break
			}
		}
		if !joined {
			open = append(open, &openCluster{members: []*model.StructuralVariant{sv}, maxEnd: sv.End, anchor: sv.Pos})
		}
	}
	flushClosed(0, true)

	sort.SliceStable(done, func(i, j int) bool {
		if done[i].Pos != done[j].Pos {
			return done[i].Pos < done[j].Pos
		}
		return done[i].End < done[j].End
	})
	return done
}
