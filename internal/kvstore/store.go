package kvstore

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// metaKey is the reserved key under which a TSV-schema-backed store
// persists its column schema.
const metaKey = "\x00schema"

// Schema describes the column names and types of a TSV-schema-backed
// store, decoded once at Open time from the reserved meta key.
type Schema struct {
	Columns []SchemaColumn
}

type SchemaColumn struct {
	Name string
	Type string // "int", "float", "string", "bool"
}

// fileFormat is the on-disk gob envelope for a store: a flat map from the
// packed byte key to the record's gob-encoded bytes, plus the optional
// schema. Using a generic container keeps every database's on-disk
// representation uniform even though the decoded record type differs per
// database (frequency triples, ClinVar records, gene metadata, ...).
type fileFormat struct {
	Schema  *Schema
	Records map[string][]byte
}

// Store is a uniform, read-only, in-memory-resident key/value store for
// one annotation database. It decodes each requested record lazily using
// the RecordDecoder supplied at Open time, so callers needing only a
// handful of keys don't pay to decode the whole database up front.
type Store[V any] struct {
	path    string
	schema  *Schema
	raw     map[string][]byte
	decode  func([]byte) (V, error)
	missing bool // true if the backing file did not exist at Open time

	mu    sync.Mutex
	cache map[string]V
}

// Open loads a store from path, decoding records on demand with decode.
// If the file does not exist, Open returns a Store that behaves as if
// empty (every Get is a miss) and logs once -- it is not an error to query
// an unconfigured annotation source.
func Open[V any](path string, decode func([]byte) (V, error)) (*Store[V], error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logrus.WithField("path", path).Warn("annotation store missing; treating as empty")
			return &Store[V]{path: path, decode: decode, missing: true, raw: map[string][]byte{}}, nil
		}
		return nil, fmt.Errorf("kvstore: opening %s: %w", path, err)
	}
	defer f.Close()

	var ff fileFormat
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&ff); err != nil {
		return nil, fmt.Errorf("kvstore: decoding %s: %w", path, err)
	}
	return &Store[V]{
		path:   path,
		schema: ff.Schema,
		raw:    ff.Records,
		decode: decode,
		cache:  make(map[string]V, len(ff.Records)),
	}, nil
}

// Schema returns the store's column schema, or nil if it has none (only
// TSV-schema-backed databases carry one).
func (s *Store[V]) Schema() *Schema { return s.schema }

// IsMissing reports whether the backing file was absent at Open time.
func (s *Store[V]) IsMissing() bool { return s.missing }

// Get decodes and returns the record for key, or (zero, false) on a miss.
// A decode failure is an annotation-store I/O error and is returned, not
// silently swallowed -- the caller decides whether to annotate-empty.
func (s *Store[V]) Get(key []byte) (V, bool, error) {
	var zero V
	raw, ok := s.raw[string(key)]
	if !ok {
		return zero, false, nil
	}

	s.mu.Lock()
	if v, ok := s.cache[string(key)]; ok {
		s.mu.Unlock()
		return v, true, nil
	}
	s.mu.Unlock()

	v, err := s.decode(raw)
	if err != nil {
		return zero, false, fmt.Errorf("kvstore: decoding record in %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.cache[string(key)] = v
	s.mu.Unlock()
	return v, true, nil
}

// WriteStore persists records (already gob-encoded per record) and an
// optional schema to path, used by the build tooling that prepares
// annotation stores from upstream dumps.
func WriteStore(path string, schema *Schema, records map[string][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("kvstore: creating %s: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	ff := fileFormat{Schema: schema, Records: records}
	if err := gob.NewEncoder(w).Encode(&ff); err != nil {
		return fmt.Errorf("kvstore: encoding %s: %w", path, err)
	}
	return w.Flush()
}
