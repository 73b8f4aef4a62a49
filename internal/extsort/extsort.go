// Package extsort implements a bounded-memory, deterministic, k-way merge
// sort over JSONL files. The query pipeline uses it twice per case --
// first keyed by primary HGNC ID for recessive grouping, then by
// (chrom_no, pos, end[, ref, alt]) for final emission.
package extsort

import (
	"bufio"
	"container/heap"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// DefaultBufferSize is the default in-memory record budget per run.
const DefaultBufferSize = 10_000

// Sorter performs an external sort of T, bucketed into in-memory chunks of
// at most BufferSize records, spilled to TempDir and merged back with a
// k-way merge. Less defines the total order the sort produces; ties are
// the caller's responsibility to break (the pipeline breaks ties on
// (ref, alt) for the final emission sort).
type Sorter[T any] struct {
	BufferSize int
	TempDir    string
	Less       func(a, b T) bool

	buf      []T
	runFiles []string
}

// NewSorter constructs a Sorter with the default buffer size; set
// BufferSize directly on the returned value to override.
func NewSorter[T any](tempDir string, less func(a, b T) bool) *Sorter[T] {
	return &Sorter[T]{BufferSize: DefaultBufferSize, TempDir: tempDir, Less: less}
}

// Add appends one record, spilling the current buffer to a sorted run
// file once BufferSize is reached.
func (s *Sorter[T]) Add(item T) error {
	s.buf = append(s.buf, item)
	if len(s.buf) >= s.BufferSize {
		return s.spill()
	}
	return nil
}

func (s *Sorter[T]) spill() error {
	if len(s.buf) == 0 {
		return nil
	}
	sort.SliceStable(s.buf, func(i, j int) bool { return s.Less(s.buf[i], s.buf[j]) })

	f, err := os.CreateTemp(s.TempDir, "extsort-run-*.jsonl")
	if err != nil {
		return fmt.Errorf("extsort: creating run file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, item := range s.buf {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("extsort: encoding run record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("extsort: flushing run file: %w", err)
	}
	s.runFiles = append(s.runFiles, f.Name())
	s.buf = s.buf[:0]
	return nil
}

// Finish flushes the remaining buffer and returns an iterator over the
// fully sorted stream: a k-way merge of every spilled run (or a single
// in-memory sort if the whole input fit in one buffer, which keeps the
// common case of a small case VCF allocation-free beyond the one slice).
// Sort stability holds because SliceStable is used for both the in-memory
// sort and per-run pre-sort, and the merge below breaks ties by run order,
// which is itself input order.
func (s *Sorter[T]) Finish() (*MergeIter[T], error) {
	if len(s.runFiles) == 0 {
		sort.SliceStable(s.buf, func(i, j int) bool { return s.Less(s.buf[i], s.buf[j]) })
		return newSliceIter(s.buf, s.Less), nil
	}
	if err := s.spill(); err != nil {
		return nil, err
	}
	return newMergeIter(s.runFiles, s.Less)
}

// Cleanup removes any spilled run files. Call after the iterator returned
// by Finish has been fully consumed.
func (s *Sorter[T]) Cleanup() {
	for _, f := range s.runFiles {
		_ = os.Remove(f)
	}
	s.runFiles = nil
}

// MergeIter is a forward-only iterator over the merged sorted stream.
type MergeIter[T any] struct {
	less    func(a, b T) bool
	sources []*runReader[T]
	h       *mergeHeap[T]
	useHeap bool

	sliceItems []T
	sliceIdx   int
}

func newSliceIter[T any](items []T, less func(a, b T) bool) *MergeIter[T] {
	return &MergeIter[T]{less: less, sliceItems: items}
}

func newMergeIter[T any](runFiles []string, less func(a, b T) bool) (*MergeIter[T], error) {
	mi := &MergeIter[T]{less: less, useHeap: true}
	h := &mergeHeap[T]{less: less}
	for i, path := range runFiles {
		rr, err := newRunReader[T](path, i)
		if err != nil {
			return nil, err
		}
		if rr.valid {
			mi.sources = append(mi.sources, rr)
		}
	}
	for _, rr := range mi.sources {
		h.items = append(h.items, rr)
	}
	heap.Init(h)
	mi.h = h
	return mi, nil
}

// Next returns the next record in sorted order, or (zero, false) at EOF.
func (m *MergeIter[T]) Next() (T, bool, error) {
	if !m.useHeap {
		if m.sliceIdx >= len(m.sliceItems) {
			var zero T
			return zero, false, nil
		}
		v := m.sliceItems[m.sliceIdx]
		m.sliceIdx++
		return v, true, nil
	}

	if m.h.Len() == 0 {
		var zero T
		return zero, false, nil
	}
	top := heap.Pop(m.h).(*runReader[T])
	out := top.cur
	if err := top.advance(); err != nil {
		return out, false, err
	}
	if top.valid {
		heap.Push(m.h, top)
	}
	return out, true, nil
}

// Close releases the underlying run-file handles.
func (m *MergeIter[T]) Close() {
	for _, rr := range m.sources {
		rr.close()
	}
}

type runReader[T any] struct {
	path   string
	runIdx int
	f      *os.File
	dec    *json.Decoder
	cur    T
	valid  bool
}

func newRunReader[T any](path string, runIdx int) (*runReader[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extsort: opening run file %s: %w", filepath.Base(path), err)
	}
	rr := &runReader[T]{path: path, runIdx: runIdx, f: f, dec: json.NewDecoder(bufio.NewReader(f))}
	if err := rr.advance(); err != nil {
		return nil, err
	}
	return rr, nil
}

func (r *runReader[T]) advance() error {
	var v T
	err := r.dec.Decode(&v)
	if err == io.EOF {
		r.valid = false
		return nil
	}
	if err != nil {
		return fmt.Errorf("extsort: decoding run record from %s: %w", filepath.Base(r.path), err)
	}
	r.cur = v
	r.valid = true
	return nil
}

func (r *runReader[T]) close() {
	_ = r.f.Close()
}

// mergeHeap is a min-heap of runReaders ordered by their current record,
// with ties broken by run index to preserve input order (stability).
type mergeHeap[T any] struct {
	items []*runReader[T]
	less  func(a, b T) bool
}

func (h *mergeHeap[T]) Len() int { return len(h.items) }
func (h *mergeHeap[T]) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if h.less(a.cur, b.cur) {
		return true
	}
	if h.less(b.cur, a.cur) {
		return false
	}
	return a.runIdx < b.runIdx
}
func (h *mergeHeap[T]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *mergeHeap[T]) Push(x any)    { h.items = append(h.items, x.(*runReader[T])) }
func (h *mergeHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
