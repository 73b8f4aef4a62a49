package cohort

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/model"
	"github.com/varfish-org/varfish-worker-go/internal/svindex"
	"github.com/varfish-org/varfish-worker-go/internal/workererr"
)

// MinOverlap is the cohort-level reciprocal-overlap threshold, deliberately
// stricter than the query-time default so a 0.75 query still matches
// cluster members.
const MinOverlap = 0.8

// Slack is the fixed ±50bp window used for BND/INS anchor matching.
const Slack = 50

type bucketKey struct {
	chromIdx int
	svType   model.SvType
}

// Aggregator spills per-case BgCandidate rows to per-(chrom, sv_type)
// bucket files, then clusters and additively merges them into the final
// background table.
type Aggregator struct {
	cm      *chrom.Map
	tempDir string
	files   map[bucketKey]*os.File
	writers map[bucketKey]*bufio.Writer
	encs    map[bucketKey]*json.Encoder
	order   []bucketKey
}

func NewAggregator(cm *chrom.Map, tempDir string) *Aggregator {
	return &Aggregator{
		cm:      cm,
		tempDir: tempDir,
		files:   make(map[bucketKey]*os.File),
		writers: make(map[bucketKey]*bufio.Writer),
		encs:    make(map[bucketKey]*json.Encoder),
	}
}

// Add bucket-spills one case's candidate row.
func (a *Aggregator) Add(c BgCandidate) error {
	canon, err := a.cm.Canonicalize(c.Chrom)
	if err != nil {
		return workererr.Wrap(workererr.KindIngest, "background candidate references unknown contig", err)
	}
	c.Chrom = canon
	chromIdx, _ := a.cm.Index(c.Chrom)

	key := bucketKey{chromIdx: chromIdx, svType: c.SvType}
	enc, ok := a.encs[key]
	if !ok {
		f, err := os.CreateTemp(a.tempDir, fmt.Sprintf("cohort-bucket-%d-%d-*.jsonl", chromIdx, c.SvType))
		if err != nil {
			return fmt.Errorf("cohort: creating bucket file: %w", err)
		}
		w := bufio.NewWriter(f)
		enc = json.NewEncoder(w)
		a.files[key] = f
		a.writers[key] = w
		a.encs[key] = enc
		a.order = append(a.order, key)
	}
	return enc.Encode(c)
}

func (a *Aggregator) Cleanup() {
	for _, f := range a.files {
		_ = os.Remove(f.Name())
	}
}

// Finish flushes every bucket, clusters and merges each, and returns the
// final background table sorted by (chrom_no, pos, end).
func (a *Aggregator) Finish() ([]model.BackgroundSvRecord, error) {
	sort.Slice(a.order, func(i, j int) bool {
		x, y := a.order[i], a.order[j]
		if x.chromIdx != y.chromIdx {
			return x.chromIdx < y.chromIdx
		}
		return x.svType < y.svType
	})

	var out []model.BackgroundSvRecord
	for _, key := range a.order {
		w := a.writers[key]
		if err := w.Flush(); err != nil {
			return nil, fmt.Errorf("cohort: flushing bucket file: %w", err)
		}
		path := a.files[key].Name()
		if err := a.files[key].Close(); err != nil {
			return nil, fmt.Errorf("cohort: closing bucket file: %w", err)
		}

		candidates, err := readBucket(path)
		if err != nil {
			return nil, err
		}
		merged := clusterAndMerge(key.chromIdx, candidates)
		out = append(out, merged...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ChromNo != out[j].ChromNo {
			return out[i].ChromNo < out[j].ChromNo
		}
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Stop < out[j].Stop
	})
	return out, nil
}

func readBucket(path string) ([]BgCandidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cohort: opening bucket file: %w", err)
	}
	defer f.Close()

	var out []BgCandidate
	dec := json.NewDecoder(bufio.NewReader(f))
	for {
		var c BgCandidate
		if err := dec.Decode(&c); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("cohort: decoding bucket record: %w", err)
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out, nil
}

type openCluster struct {
	members []BgCandidate
	maxEnd  int32
	anchor  int32
}

func (c *openCluster) canStillMatch(incomingPos int32) bool {
	if c.members[0].SvType.IsSlackType() {
		return incomingPos-c.anchor <= Slack
	}
	return incomingPos-1 < c.maxEnd
}

func matchesCluster(c *openCluster, cand BgCandidate) bool {
	for _, m := range c.members {
		if !m.SvType.IsCompatible(cand.SvType) {
			return false
		}
		if cand.SvType.IsSlackType() {
			d := cand.Pos - m.Pos
			if d < 0 {
				d = -d
			}
			if d > Slack {
				return false
			}
			continue
		}
		a := svindex.Interval{Begin: m.Pos - 1, End: m.End}
		b := svindex.Interval{Begin: cand.Pos - 1, End: cand.End}
		if svindex.ReciprocalOverlap(a, b) < MinOverlap {
			return false
		}
	}
	return true
}

func mergeCandidates(cluster []BgCandidate) model.BackgroundSvRecord {
	first := cluster[0]
	rec := model.BackgroundSvRecord{SvType: first.SvType, Start: first.Pos}
	var maxEnd int32
	for _, c := range cluster {
		if c.End > maxEnd {
			maxEnd = c.End
		}
		rec.CountHet += c.NumHet
		rec.CountHom += c.NumHom
		rec.CountHemi += c.NumHemi
		rec.Count += c.NumCarriers
	}
	rec.Stop = maxEnd
	return rec
}

// clusterAndMerge runs the same streaming complete-linkage clustering
// algorithm as internal/svingest, specialized to additive count-merging,
// over one chromosome's worth of one SV type's candidates.
func clusterAndMerge(chromIdx int, candidates []BgCandidate) []model.BackgroundSvRecord {
	var open []*openCluster
	var done []model.BackgroundSvRecord

	flushClosed := func(incomingPos int32, force bool) {
		kept := open[:0]
		for _, c := range open {
			if force || !c.canStillMatch(incomingPos) {
				rec := mergeCandidates(c.members)
				rec.ChromNo = int32(chromIdx)
				rec.ChromNo2 = int32(chromIdx)
				done = append(done, rec)
			} else {
				kept = append(kept, c)
			}
		}
		open = kept
	}

	for _, cand := range candidates {
		flushClosed(cand.Pos, false)
		joined := false
		for _, c := range open {
			if matchesCluster(c, cand) {
				c.members = append(c.members, cand)
				if cand.End > c.maxEnd {
					c.maxEnd = cand.End
				}
				joined = true
				break
			}
		}
		if !joined {
			open = append(open, &openCluster{members: []BgCandidate{cand}, maxEnd: cand.End, anchor: cand.Pos})
		}
	}
	flushClosed(0, true)
	return done
}
