package query

import (
	"github.com/varfish-org/varfish-worker-go/internal/model"
	"github.com/varfish-org/varfish-worker-go/internal/svindex"
)

// Databases bundles the overlap indexes the SV predicate consults.
// Missing (nil) slots behave as empty databases.
type Databases struct {
	DbVar       *svindex.BgDb
	Dgv         *svindex.BgDb
	DgvGs       *svindex.BgDb
	G1000       *svindex.BgDb
	GnomadSvV2  *svindex.BgDb
	GnomadSvV4  *svindex.BgDb
	GnomadCnvV4 *svindex.BgDb
	InHouse     *svindex.BgDb
	ClinVarSv   *svindex.ClinVarSvDb
}

func toParams(l DatabaseOverlapLimits) svindex.BgDbParams {
	return svindex.BgDbParams{Enabled: l.Enabled, MinOverlap: l.MinOverlap}
}

func overlapPasses(count uint32, limit *uint32) bool {
	return limit == nil || count <= *limit
}

// PassesSv implements the SV single-record predicate:
// type allowlist, min/max size, per-database overlap counts and ClinVar-SV
// overlap. No locus, gene-region, transcript-effect or TAD-boundary
// constraint is evaluated for SVs.
func PassesSv(q *CaseQuery, dbs *Databases, chromIdx int, sv *model.StructuralVariant) bool {
	sc := &q.StrucVar

	if len(sc.SvTypes) > 0 {
		found := false
		for _, t := range sc.SvTypes {
			if t == sv.SvType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if size, ok := sv.Size(); ok {
		if sc.MinSize != nil && size < *sc.MinSize {
			return false
		}
		if sc.MaxSize != nil && size > *sc.MaxSize {
			return false
		}
	}

	checks := []struct {
		db     *svindex.BgDb
		limits DatabaseOverlapLimits
	}{
		{dbs.DbVar, sc.DbVar},
		{dbs.Dgv, sc.Dgv},
		{dbs.DgvGs, sc.DgvGs},
		{dbs.G1000, sc.G1000},
		{dbs.GnomadSvV2, sc.GnomadSvV2},
		{dbs.GnomadSvV4, sc.GnomadSvV4},
		{dbs.GnomadCnvV4, sc.GnomadCnvV4},
		{dbs.InHouse, sc.InHouse},
	}
	for _, chk := range checks {
		if !chk.limits.Enabled {
			continue
		}
		count := chk.db.CountOverlaps(toParams(chk.limits), chromIdx, sv, sc.SlackIns, sc.SlackBnd)
		if !overlapPasses(count, chk.limits.MaxCount) {
			return false
		}
	}

	if sc.ClinVarSv.Enabled {
		vcvs := dbs.ClinVarSv.QueryOverlap(chromIdx, sv, sc.ClinVarSv.MinOverlap, sc.ClinVarSv.MinPathogenicity)
		if len(vcvs) == 0 {
			return false
		}
	}

	return true
}
