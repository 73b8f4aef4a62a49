// Package vcfio bridges real VCF files (optionally bgzip/gzip compressed)
// into the plain RawRecord shapes svingest and seqingest operate on, so
// those packages stay unit-testable without a VCF parser in the loop.
// Input files are opened through pgzip when their name ends in ".gz",
// and vcfgo's Reader parses them; output VCF lines are hand-formatted by
// Writer (writer.go) rather than written through vcfgo.
package vcfio

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/brentp/vcfgo"
	"github.com/klauspost/pgzip"
	"github.com/varfish-org/varfish-worker-go/internal/workererr"
)

// Reader wraps a vcfgo.Reader with the header metadata that
// svingest.DetectCaller and DetectSeqCaller need.
type Reader struct {
	vr     *vcfgo.Reader
	closer io.Closer
}

// Open opens path (optionally ".gz"-compressed) and parses its VCF header.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, workererr.Wrap(workererr.KindIngest, "opening vcf file "+path, err)
	}
	var r io.Reader = bufio.NewReader(f)
	closer := io.Closer(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(r)
		if err != nil {
			f.Close()
			return nil, workererr.Wrap(workererr.KindIngest, "opening gzip vcf file "+path, err)
		}
		r = gz
		closer = multiCloser{gz, f}
	}
	vr, err := vcfgo.NewReader(r, false)
	if err != nil {
		closer.Close()
		return nil, workererr.Wrap(workererr.KindIngest, "parsing vcf header in "+path, err)
	}
	return &Reader{vr: vr, closer: closer}, nil
}

type multiCloser struct {
	inner io.Closer
	outer io.Closer
}

func (m multiCloser) Close() error {
	err1 := m.inner.Close()
	err2 := m.outer.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func (r *Reader) Close() error { return r.closer.Close() }

// SampleNames returns the #CHROM line's sample columns, in file order.
func (r *Reader) SampleNames() []string { return r.vr.Header.SampleNames }

// HeaderLines returns the raw "##..." meta lines, for svingest.DetectCaller
// and DetectSeqCaller to scan.
func (r *Reader) HeaderLines() []string {
	var out []string
	for _, line := range strings.Split(r.vr.Header.String(), "\n") {
		if strings.HasPrefix(line, "##") {
			out = append(out, line)
		}
	}
	return out
}

// next returns the next variant, or nil at end of stream. Parse errors
// recorded on the vcfgo reader are checked only once Read reports the end
// of the stream, and are returned from that call.
func (r *Reader) next() (*vcfgo.Variant, error) {
	v := r.vr.Read()
	if v == nil {
		if err := r.vr.Error(); err != nil && err != io.EOF {
			return nil, workererr.Wrap(workererr.KindDecode, "reading vcf record", err)
		}
		return nil, nil
	}
	return v, nil
}

// rawFields flattens one sample's FORMAT values to the map[string]string
// shape RawField/seqingest.RawRecord expect, skipping the "." placeholder.
func rawFields(v *vcfgo.Variant, sampleIdx int) map[string]string {
	out := make(map[string]string, len(v.Format))
	if sampleIdx >= len(v.Samples) {
		return out
	}
	sg := v.Samples[sampleIdx]
	if sg == nil {
		return out
	}
	for key, val := range sg.Fields {
		if val == "" || val == "." {
			continue
		}
		out[key] = val
	}
	return out
}

// infoString returns a string-typed INFO value, or "" if absent or of a
// different underlying type.
func infoString(v *vcfgo.Variant, key string) string {
	val, err := v.Info().Get(key)
	if err != nil {
		return ""
	}
	switch t := val.(type) {
	case string:
		return t
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	}
	return ""
}

// infoInt returns an int-typed INFO value, or 0 if absent.
func infoInt(v *vcfgo.Variant, key string) int64 {
	val, err := v.Info().Get(key)
	if err != nil {
		return 0
	}
	switch t := val.(type) {
	case int:
		return int64(t)
	case int64:
		return t
	case []int:
		if len(t) > 0 {
			return int64(t[0])
		}
	}
	return 0
}
