package kvstore

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
)

// GeneMetadata is the gene-metadata-by-HGNC-ID record: symbol and a
// handful of cross-references, enough for C6's locus filter and the
// query output's gene_related payload section.
type GeneMetadata struct {
	Symbol    string
	EnsemblID string
	EntrezID  string
	Omim      []string
}

func decodeGeneMetadata(raw []byte) (GeneMetadata, error) {
	var r GeneMetadata
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&r); err != nil {
		return GeneMetadata{}, fmt.Errorf("decoding gene metadata record: %w", err)
	}
	return r, nil
}

func encodeGeneMetadata(r GeneMetadata) []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(r)
	return buf.Bytes()
}

// GeneMetadataStore is the by-HGNC-ID gene metadata store.
type GeneMetadataStore struct {
	store *Store[GeneMetadata]
}

func OpenGeneMetadataStore(path string) (*GeneMetadataStore, error) {
	s, err := Open(path, decodeGeneMetadata)
	if err != nil {
		return nil, err
	}
	return &GeneMetadataStore{store: s}, nil
}

// hgncKey packs a bare HGNC numeric ID, since gene metadata is keyed by
// gene rather than by variant coordinate.
func hgncKey(hgncID uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, hgncID)
	return buf
}

func (gs *GeneMetadataStore) Lookup(hgncID uint32) (GeneMetadata, bool, error) {
	return gs.store.Get(hgncKey(hgncID))
}

func (gs *GeneMetadataStore) IsMissing() bool { return gs.store.IsMissing() }
