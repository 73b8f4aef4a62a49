package svingest

import (
	"fmt"
	"sort"

	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/model"
	"github.com/varfish-org/varfish-worker-go/internal/workererr"
	"github.com/varfish-org/varfish-worker-go/pkg/pedigree"
)

// CallerFile is one input VCF's caller identity and already-parsed, not
// yet normalized records; vcfio owns turning an actual VCF stream into
// this shape so that svingest itself stays decoupled from the VCF wire
// format and is unit-testable without it.
type CallerFile struct {
	Caller     Caller
	CallerName string // provenance string recorded in Callers/output header
	Samples    []string
	Records    []RawRecord
}

// IDMapping renames VCF sample names to pedigree-canonical ones before the
// sample contract is checked.
type IDMapping map[string]string

func (m IDMapping) apply(name string) string {
	if dst, ok := m[name]; ok {
		return dst
	}
	return name
}

// Ingest validates the sample-name contract across every input file, then
// normalizes and cluster-merges every record into a single
// coordinate-sorted stream. Any malformed record aborts the whole ingest
// (no partial case loads), wrapped as a KindIngest error.
func Ingest(cm *chrom.Map, ped *pedigree.Pedigree, mapping IDMapping, files []CallerFile, params MergeParams, tempDir string) ([]*model.StructuralVariant, error) {
	if len(files) == 0 {
		return nil, workererr.New(workererr.KindIngest, "no input VCFs given")
	}

	var canonicalSamples []string
	for i, f := range files {
		mapped := make([]string, len(f.Samples))
		for j, s := range f.Samples {
			mapped[j] = mapping.apply(s)
		}
		if i == 0 {
			canonicalSamples = mapped
		} else if !sameOrder(canonicalSamples, mapped) {
			return nil, workererr.Wrap(workererr.KindIngest, "sample name/order mismatch across input VCFs",
				fmt.Errorf("file %d: %v vs %v", i, mapped, canonicalSamples))
		}
		files[i].Samples = mapped
	}
	if ped != nil {
		if err := ped.ValidateSampleSet(canonicalSamples); err != nil {
			return nil, workererr.Wrap(workererr.KindIngest, "sample set does not match pedigree", err)
		}
	}

	b := newBucketer(tempDir)
	defer b.cleanup()

	for _, f := range files {
		for _, raw := range f.Records {
			if raw.SvType != model.SvTypeIns && raw.SvType != model.SvTypeBnd && raw.Pos > raw.End {
				return nil, workererr.New(workererr.KindIngest, fmt.Sprintf("sv record %s:%d-%d: pos > end", raw.Chrom, raw.Pos, raw.End))
			}
			chromIdx, err := cm.Index(raw.Chrom)
			if err != nil {
				return nil, workererr.Wrap(workererr.KindIngest, "sv record references unknown contig", err)
			}
			canon, err := cm.Canonicalize(raw.Chrom)
			if err != nil {
				return nil, workererr.Wrap(workererr.KindIngest, "sv record references unknown contig", err)
			}
			raw.Chrom = canon

			sv, err := NormalizeRecord(f.Caller, f.CallerName, raw)
			if err != nil {
				return nil, workererr.Wrap(workererr.KindIngest, "normalizing sv record", err)
			}
			if err := sv.Validate(); err != nil {
				return nil, workererr.Wrap(workererr.KindIngest, "sv record failed validation", err)
			}
			if err := b.add(chromIdx, sv); err != nil {
				return nil, workererr.Wrap(workererr.KindIngest, "bucketing sv record", err)
			}
		}
	}

	keys, paths, err := b.close()
	if err != nil {
		return nil, workererr.Wrap(workererr.KindIngest, "finalizing sv buckets", err)
	}

	var out []*model.StructuralVariant
	for _, key := range keys {
		records, err := readBucket(paths[key])
		if err != nil {
			return nil, workererr.Wrap(workererr.KindIngest, "reading sv bucket", err)
		}
		merged := clusterBucket(params, records)
		out = append(out, merged...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ci, _ := cm.Index(out[i].Chrom)
		cj, _ := cm.Index(out[j].Chrom)
		if ci != cj {
			return ci < cj
		}
		if out[i].Pos != out[j].Pos {
			return out[i].Pos < out[j].Pos
		}
		return out[i].End < out[j].End
	})
	return out, nil
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
