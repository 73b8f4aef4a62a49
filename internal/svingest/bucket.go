package svingest

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/varfish-org/varfish-worker-go/internal/model"
)

// bucketKey groups records the way clustering requires: by chromosome
// and SV type, so each cluster-merge pass only ever compares records
// that could possibly match.
type bucketKey struct {
	chromIdx int
	svType   model.SvType
}

// bucketer spills normalized records to one temp JSONL file per
// (chrom, sv_type) bucket, bounding the clustering pass's memory to one
// bucket at a time regardless of total case size.
type bucketer struct {
	dir     string
	files   map[bucketKey]*os.File
	writers map[bucketKey]*bufio.Writer
	encs    map[bucketKey]*json.Encoder
	order   []bucketKey
}

func newBucketer(dir string) *bucketer {
	return &bucketer{
		dir:     dir,
		files:   make(map[bucketKey]*os.File),
		writers: make(map[bucketKey]*bufio.Writer),
		encs:    make(map[bucketKey]*json.Encoder),
	}
}

func (b *bucketer) add(chromIdx int, sv *model.StructuralVariant) error {
	key := bucketKey{chromIdx: chromIdx, svType: sv.SvType}
	enc, ok := b.encs[key]
	if !ok {
		f, err := os.CreateTemp(b.dir, fmt.Sprintf("svingest-bucket-%d-%d-*.jsonl", chromIdx, sv.SvType))
		if err != nil {
			return fmt.Errorf("svingest: creating bucket file: %w", err)
		}
		w := bufio.NewWriter(f)
		enc = json.NewEncoder(w)
		b.files[key] = f
		b.writers[key] = w
		b.encs[key] = enc
		b.order = append(b.order, key)
	}
	return enc.Encode(sv)
}

// close flushes and closes every open bucket file, returning their paths
// in a deterministic (chrom, sv_type) order.
func (b *bucketer) close() ([]bucketKey, map[bucketKey]string, error) {
	paths := make(map[bucketKey]string, len(b.order))
	sort.Slice(b.order, func(i, j int) bool {
		a, c := b.order[i], b.order[j]
		if a.chromIdx != c.chromIdx {
			return a.chromIdx < c.chromIdx
		}
		return a.svType < c.svType
	})
	for _, key := range b.order {
		w := b.writers[key]
		if err := w.Flush(); err != nil {
			return nil, nil, fmt.Errorf("svingest: flushing bucket file: %w", err)
		}
		f := b.files[key]
		paths[key] = f.Name()
		if err := f.Close(); err != nil {
			return nil, nil, fmt.Errorf("svingest: closing bucket file: %w", err)
		}
	}
	return b.order, paths, nil
}

func (b *bucketer) cleanup() {
	for _, f := range b.files {
		_ = os.Remove(f.Name())
	}
}

// readBucket loads every record from a bucket file, sorted by ascending
// Pos so the streaming clustering pass in cluster.go can close clusters
// eagerly.
func readBucket(path string) ([]*model.StructuralVariant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("svingest: opening bucket file: %w", err)
	}
	defer f.Close()

	var out []*model.StructuralVariant
	dec := json.NewDecoder(bufio.NewReader(f))
	for {
		var sv model.StructuralVariant
		if err := dec.Decode(&sv); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("svingest: decoding bucket record: %w", err)
		}
		out = append(out, &sv)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out, nil
}
