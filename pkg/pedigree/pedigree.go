// Package pedigree reads PLINK-style PED files: family, sample, father,
// mother, sex, disease. Shared by the sequence and SV ingest paths, which
// both need to validate that a VCF's sample set matches the case
// pedigree.
package pedigree

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type Sex int

const (
	SexUnknown Sex = 0
	SexMale    Sex = 1
	SexFemale  Sex = 2
)

type Disease int

const (
	DiseaseUnknown    Disease = 0
	DiseaseUnaffected Disease = 1
	DiseaseAffected   Disease = 2
)

// Member is one row of a PED file.
type Member struct {
	Family  string
	Sample  string
	Father  string // "0" means unknown/founder
	Mother  string
	Sex     Sex
	Disease Disease
}

// Pedigree is the parsed set of Members for one case, indexed by sample
// name for fast lookup.
type Pedigree struct {
	Members []Member
	byName  map[string]*Member
}

// Parse reads a PED file from r.
func Parse(r io.Reader) (*Pedigree, error) {
	p := &Pedigree{byName: make(map[string]*Member)}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, fmt.Errorf("pedigree line %d: expected >= 6 columns, got %d", lineNo, len(fields))
		}
		sex, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("pedigree line %d: invalid sex %q: %w", lineNo, fields[4], err)
		}
		disease, err := strconv.Atoi(fields[5])
		if err != nil {
			return nil, fmt.Errorf("pedigree line %d: invalid disease status %q: %w", lineNo, fields[5], err)
		}
		m := Member{
			Family:  fields[0],
			Sample:  fields[1],
			Father:  fields[2],
			Mother:  fields[3],
			Sex:     Sex(sex),
			Disease: Disease(disease),
		}
		p.Members = append(p.Members, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pedigree: %w", err)
	}
	for i := range p.Members {
		p.byName[p.Members[i].Sample] = &p.Members[i]
	}
	return p, nil
}

// SampleNames returns sample names in file order.
func (p *Pedigree) SampleNames() []string {
	names := make([]string, len(p.Members))
	for i, m := range p.Members {
		names[i] = m.Sample
	}
	return names
}

// Has reports whether sample is a pedigree member.
func (p *Pedigree) Has(sample string) bool {
	_, ok := p.byName[sample]
	return ok
}

// Get returns the Member for sample, or nil if absent.
func (p *Pedigree) Get(sample string) *Member {
	return p.byName[sample]
}

// ValidateSampleSet checks the bijective-match invariant required by C2/C8
// ingest: every VCF sample must be a pedigree member and vice versa
// (modulo an optional ID-mapping table, which the caller applies before
// calling this).
func (p *Pedigree) ValidateSampleSet(vcfSamples []string) error {
	vcfSet := make(map[string]bool, len(vcfSamples))
	for _, s := range vcfSamples {
		vcfSet[s] = true
		if !p.Has(s) {
			return fmt.Errorf("sample %q present in VCF but not in pedigree", s)
		}
	}
	for _, m := range p.Members {
		if !vcfSet[m.Sample] {
			return fmt.Errorf("sample %q present in pedigree but not in VCF", m.Sample)
		}
	}
	return nil
}
