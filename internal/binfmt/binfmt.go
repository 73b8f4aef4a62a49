// Package binfmt implements the packed binary record formats for the
// background SV and ClinVar SV tables. Each format is a sequence of
// fixed-width records with no header and no index -- the interval tree is
// rebuilt on load by internal/svindex.
package binfmt

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/varfish-org/varfish-worker-go/internal/model"
)

// bgSvRecordSize is the on-disk size of one BackgroundSvRecord: five
// int32 fields (chrom_no, chrom_no2, sv_type, start, stop) plus four
// uint32 counts.
const bgSvRecordSize = 5*4 + 4*4

// WriteBackgroundSvRecords writes records to w in the packed format,
// sorted by the caller beforehand (the cohort aggregator sorts by
// (chrom_no, pos, end) before serializing).
func WriteBackgroundSvRecords(w io.Writer, records []model.BackgroundSvRecord) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, bgSvRecordSize)
	for _, r := range records {
		binary.BigEndian.PutUint32(buf[0:4], uint32(r.ChromNo))
		binary.BigEndian.PutUint32(buf[4:8], uint32(r.ChromNo2))
		binary.BigEndian.PutUint32(buf[8:12], uint32(r.SvType))
		binary.BigEndian.PutUint32(buf[12:16], uint32(r.Start))
		binary.BigEndian.PutUint32(buf[16:20], uint32(r.Stop))
		binary.BigEndian.PutUint32(buf[20:24], r.Count)
		binary.BigEndian.PutUint32(buf[24:28], r.CountHet)
		binary.BigEndian.PutUint32(buf[28:32], r.CountHom)
		binary.BigEndian.PutUint32(buf[32:36], r.CountHemi)
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("binfmt: writing background sv record: %w", err)
		}
	}
	return bw.Flush()
}

// ReadBackgroundSvRecords reads every record from r until EOF.
func ReadBackgroundSvRecords(r io.Reader) ([]model.BackgroundSvRecord, error) {
	br := bufio.NewReader(r)
	buf := make([]byte, bgSvRecordSize)
	var out []model.BackgroundSvRecord
	for {
		_, err := io.ReadFull(br, buf)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("binfmt: reading background sv record: %w", err)
		}
		out = append(out, model.BackgroundSvRecord{
			ChromNo:   int32(binary.BigEndian.Uint32(buf[0:4])),
			ChromNo2:  int32(binary.BigEndian.Uint32(buf[4:8])),
			SvType:    model.SvType(binary.BigEndian.Uint32(buf[8:12])),
			Start:     int32(binary.BigEndian.Uint32(buf[12:16])),
			Stop:      int32(binary.BigEndian.Uint32(buf[16:20])),
			Count:     binary.BigEndian.Uint32(buf[20:24]),
			CountHet:  binary.BigEndian.Uint32(buf[24:28]),
			CountHom:  binary.BigEndian.Uint32(buf[28:32]),
			CountHemi: binary.BigEndian.Uint32(buf[32:36]),
		})
	}
}

// clinVarSvRecordSize is the on-disk size of one ClinVarSvRecord: five
// int32 fields (chrom_no, start, stop, variation_type, pathogenicity)
// plus one uint32 (rcv/vcv).
const clinVarSvRecordSize = 5*4 + 4

// WriteClinVarSvRecords writes records to w in the packed format.
// variation_type is stored as its index into a small fixed vocabulary
// (see variationtype.go) since the wire format reserves an int32,
// not a string, for it.
func WriteClinVarSvRecords(w io.Writer, records []model.ClinVarSvRecord) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, clinVarSvRecordSize)
	for _, r := range records {
		binary.BigEndian.PutUint32(buf[0:4], uint32(r.ChromNo))
		binary.BigEndian.PutUint32(buf[4:8], uint32(r.Start))
		binary.BigEndian.PutUint32(buf[8:12], uint32(r.Stop))
		binary.BigEndian.PutUint32(buf[12:16], uint32(encodeVariationType(r.VariationType)))
		binary.BigEndian.PutUint32(buf[16:20], uint32(r.Pathogenicity))
		binary.BigEndian.PutUint32(buf[20:24], r.Vcv)
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("binfmt: writing clinvar sv record: %w", err)
		}
	}
	return bw.Flush()
}

// ReadClinVarSvRecords reads every record from r until EOF.
func ReadClinVarSvRecords(r io.Reader) ([]model.ClinVarSvRecord, error) {
	br := bufio.NewReader(r)
	buf := make([]byte, clinVarSvRecordSize)
	var out []model.ClinVarSvRecord
	for {
		_, err := io.ReadFull(br, buf)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("binfmt: reading clinvar sv record: %w", err)
		}
		out = append(out, model.ClinVarSvRecord{
			ChromNo:       int32(binary.BigEndian.Uint32(buf[0:4])),
			Start:         int32(binary.BigEndian.Uint32(buf[4:8])),
			Stop:          int32(binary.BigEndian.Uint32(buf[8:12])),
			VariationType: decodeVariationType(int32(binary.BigEndian.Uint32(buf[12:16]))),
			Pathogenicity: model.Pathogenicity(binary.BigEndian.Uint32(buf[16:20])),
			Vcv:           binary.BigEndian.Uint32(buf[20:24]),
		})
	}
}
