package kvstore

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/varfish-org/varfish-worker-go/internal/model"
)

// clinVarRecord is the on-disk ClinVar small-variant record: a single
// column family.
type clinVarRecord struct {
	Pathogenicities               []int32
	HasConflictingInterpretations bool
}

func decodeClinVarRecord(raw []byte) (clinVarRecord, error) {
	var r clinVarRecord
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&r); err != nil {
		return clinVarRecord{}, fmt.Errorf("decoding ClinVar record: %w", err)
	}
	return r, nil
}

func encodeClinVarRecord(r clinVarRecord) []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(r)
	return buf.Bytes()
}

// ClinVarStore is the small-variant ClinVar annotation store.
type ClinVarStore struct {
	store *Store[clinVarRecord]
}

func OpenClinVarStore(path string) (*ClinVarStore, error) {
	s, err := Open(path, decodeClinVarRecord)
	if err != nil {
		return nil, err
	}
	return &ClinVarStore{store: s}, nil
}

// Lookup returns the ClinVar annotation for a site, with Present=false on
// a miss.
func (cs *ClinVarStore) Lookup(chromIdx int, pos int32, ref, alt string) (model.ClinVarInfo, error) {
	raw, ok, err := cs.store.Get(EncodeKey(chromIdx, pos, ref, alt))
	if err != nil {
		return model.ClinVarInfo{}, err
	}
	if !ok {
		return model.ClinVarInfo{}, nil
	}
	paths := make([]model.Pathogenicity, len(raw.Pathogenicities))
	for i, p := range raw.Pathogenicities {
		paths[i] = model.Pathogenicity(p)
	}
	return model.ClinVarInfo{
		Present:                       true,
		Pathogenicities:               paths,
		HasConflictingInterpretations: raw.HasConflictingInterpretations,
	}, nil
}

func (cs *ClinVarStore) IsMissing() bool { return cs.store.IsMissing() }
