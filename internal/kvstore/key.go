// Package kvstore implements C3: uniform lookup over on-disk key/value
// stores for population frequencies, ClinVar, dbSNP, CADD, conservation
// and gene metadata, keyed by (chrom, pos, ref, alt).
//
// Each store's key is the packed byte string: a 1-byte
// chromosome index, 4-byte big-endian position, then length-prefixed ref
// and alt. Conservation data (position-only) omits ref/alt.
package kvstore

import (
	"encoding/binary"
	"fmt"
)

// EncodeKey packs (chromIdx, pos, ref, alt) into the fixed on-disk key
// layout shared by every variant-keyed store.
func EncodeKey(chromIdx int, pos int32, ref, alt string) []byte {
	buf := make([]byte, 0, 1+4+1+len(ref)+1+len(alt))
	buf = append(buf, byte(chromIdx))
	var posBuf [4]byte
	binary.BigEndian.PutUint32(posBuf[:], uint32(pos))
	buf = append(buf, posBuf[:]...)
	buf = append(buf, byte(len(ref)))
	buf = append(buf, ref...)
	buf = append(buf, byte(len(alt)))
	buf = append(buf, alt...)
	return buf
}

// EncodePositionKey packs a position-only key for conservation stores.
func EncodePositionKey(chromIdx int, pos int32) []byte {
	buf := make([]byte, 5)
	buf[0] = byte(chromIdx)
	binary.BigEndian.PutUint32(buf[1:], uint32(pos))
	return buf
}

// DecodeKey is the inverse of EncodeKey, used by store-building tools and
// diagnostics rather than the hot lookup path.
func DecodeKey(key []byte) (chromIdx int, pos int32, ref, alt string, err error) {
	if len(key) < 6 {
		return 0, 0, "", "", fmt.Errorf("kvstore: key too short (%d bytes)", len(key))
	}
	chromIdx = int(key[0])
	pos = int32(binary.BigEndian.Uint32(key[1:5]))
	rest := key[5:]
	if len(rest) < 1 {
		return 0, 0, "", "", fmt.Errorf("kvstore: key missing ref length")
	}
	refLen := int(rest[0])
	rest = rest[1:]
	if len(rest) < refLen+1 {
		return 0, 0, "", "", fmt.Errorf("kvstore: key truncated in ref/alt")
	}
	ref = string(rest[:refLen])
	rest = rest[refLen:]
	altLen := int(rest[0])
	rest = rest[1:]
	if len(rest) < altLen {
		return 0, 0, "", "", fmt.Errorf("kvstore: key truncated in alt")
	}
	alt = string(rest[:altLen])
	return chromIdx, pos, ref, alt, nil
}
