package kvstore

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/varfish-org/varfish-worker-go/internal/model"
)

// freqRecord is the on-disk record for one source's allele counts at one
// site; ColumnFamily selects which of the three families (autosomal,
// gonosomal, mitochondrial) a lookup targets, since gnomAD/HelixMtDb are
// one physical store with three column families.
type freqRecord struct {
	AN   int32
	Hom  int32
	Het  int32
	Hemi int32 // unused for mitochondrial family
}

func decodeFreqRecord(raw []byte) (freqRecord, error) {
	var r freqRecord
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&r); err != nil {
		return freqRecord{}, fmt.Errorf("decoding frequency record: %w", err)
	}
	return r, nil
}

func encodeFreqRecord(r freqRecord) []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(r)
	return buf.Bytes()
}

// ColumnFamily selects one of the three frequency-store families.
type ColumnFamily int

const (
	FamilyAutosomal ColumnFamily = iota
	FamilyGonosomal
	FamilyMitochondrial
)

// FrequencyStore is the gnomAD-exomes/gnomAD-genomes/gnomAD-mtDNA/
// HelixMtDb store: one physical Store per source, each carrying the three
// column families as key prefixes.
type FrequencyStore struct {
	store *Store[freqRecord]
}

// OpenFrequencyStore opens a frequency store at path.
func OpenFrequencyStore(path string) (*FrequencyStore, error) {
	s, err := Open(path, decodeFreqRecord)
	if err != nil {
		return nil, err
	}
	return &FrequencyStore{store: s}, nil
}

func familyPrefix(fam ColumnFamily) byte {
	return byte(fam)
}

func (fs *FrequencyStore) key(fam ColumnFamily, chromIdx int, pos int32, ref, alt string) []byte {
	k := EncodeKey(chromIdx, pos, ref, alt)
	return append([]byte{familyPrefix(fam)}, k...)
}

// LookupNuclear returns the nuclear FrequencyTriple for a site in the
// given family, or the zero triple on a miss.
func (fs *FrequencyStore) LookupNuclear(fam ColumnFamily, chromIdx int, pos int32, ref, alt string) (model.FrequencyTriple, error) {
	raw, ok, err := fs.store.Get(fs.key(fam, chromIdx, pos, ref, alt))
	if err != nil {
		return model.FrequencyTriple{}, err
	}
	if !ok {
		return model.FrequencyTriple{}, nil
	}
	return model.FrequencyTriple{AN: raw.AN, Hom: raw.Hom, Het: raw.Het, Hemi: raw.Hemi}, nil
}

// LookupMt returns the mitochondrial MtFrequencyTriple for a site, or the
// zero triple on a miss.
func (fs *FrequencyStore) LookupMt(chromIdx int, pos int32, ref, alt string) (model.MtFrequencyTriple, error) {
	raw, ok, err := fs.store.Get(fs.key(FamilyMitochondrial, chromIdx, pos, ref, alt))
	if err != nil {
		return model.MtFrequencyTriple{}, err
	}
	if !ok {
		return model.MtFrequencyTriple{}, nil
	}
	return model.MtFrequencyTriple{AN: raw.AN, Hom: raw.Hom, Het: raw.Het}, nil
}

// IsMissing reports whether the backing file was absent at open time.
func (fs *FrequencyStore) IsMissing() bool { return fs.store.IsMissing() }
