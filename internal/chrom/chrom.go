// Package chrom implements the fixed, ordered contig map shared by every
// other component: 25 canonical contigs (1..22, X, Y, MT), indexed 0..24.
package chrom

import (
	"fmt"
	"strings"
)

// Release is a closed set of supported genome builds.
type Release int

const (
	GRCh37 Release = iota
	GRCh38
)

func (r Release) String() string {
	switch r {
	case GRCh37:
		return "GRCh37"
	case GRCh38:
		return "GRCh38"
	default:
		return "unknown"
	}
}

// ParseRelease parses a case-insensitive genome build label.
func ParseRelease(s string) (Release, error) {
	switch strings.ToLower(s) {
	case "grch37", "hg19":
		return GRCh37, nil
	case "grch38", "hg38":
		return GRCh38, nil
	default:
		return 0, fmt.Errorf("unknown genome release %q", s)
	}
}

// Names lists the 25 canonical contigs in index order. Index 24 is the
// mitochondrial contig; callers test IsMT for that case rather
// than hard-coding the index.
var Names = []string{
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
	"11", "12", "13", "14", "15", "16", "17", "18", "19", "20",
	"21", "22", "X", "Y", "MT",
}

const mtIndex = 24

// Map canonicalizes contig names (stripping a leading "chr") to their
// 0..24 index. It is initialized once per genome build and is otherwise
// read-only, shared process-wide.
type Map struct {
	release Release
	byName  map[string]int
}

// NewMap builds the chromosome map for the given genome release. Contig
// lengths/assembly labels differ between releases but the index space does
// not; callers that need lengths should consult a release-specific table,
// which is out of scope for the core query engine.
func NewMap(release Release) *Map {
	m := &Map{release: release, byName: make(map[string]int, len(Names)*2)}
	for i, name := range Names {
		m.byName[name] = i
		m.byName["chr"+name] = i
	}
	// MT is commonly spelled "M" in some callers' headers.
	m.byName["M"] = mtIndex
	m.byName["chrM"] = mtIndex
	return m
}

func (m *Map) Release() Release { return m.release }

// Canonicalize strips a "chr" prefix and validates the contig is one of the
// 25 known names, returning the canonical (no-prefix) spelling.
func (m *Map) Canonicalize(name string) (string, error) {
	idx, err := m.Index(name)
	if err != nil {
		return "", err
	}
	return Names[idx], nil
}

// Index returns the 0..24 index for a contig name, canonicalizing first.
// An unknown contig is always an ingest-time failure.
func (m *Map) Index(name string) (int, error) {
	if idx, ok := m.byName[name]; ok {
		return idx, nil
	}
	return 0, fmt.Errorf("unknown contig %q", name)
}

// Name returns the canonical spelling for an index, panicking on an
// out-of-range index since that indicates an internal invariant violation,
// not bad input.
func Name(idx int) string {
	return Names[idx]
}

// IsMT reports whether idx refers to the mitochondrial contig.
func IsMT(idx int) bool { return idx == mtIndex }

// Count is the fixed number of canonical contigs.
const Count = 25
