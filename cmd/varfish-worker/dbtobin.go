package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/varfish-org/varfish-worker-go/internal/binfmt"
	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/cmdutil"
	"github.com/varfish-org/varfish-worker-go/internal/model"
)

func newDbCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Build the worker's packed on-disk database files from TSV dumps",
	}
	cmd.AddCommand(newDbToBinCommand())
	return cmd
}

func newDbToBinCommand() *cobra.Command {
	var (
		kind    string
		inPath  string
		outPath string
		release string
	)
	cmd := &cobra.Command{
		Use:   "to-bin",
		Short: "Convert a background-SV or ClinVar-SV TSV dump to the packed binary format",
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := parseRelease(release)
			if err != nil {
				return err
			}
			cm := chrom.NewMap(rel)

			f, err := os.Open(inPath)
			if err != nil {
				return fmt.Errorf("db to-bin: opening %s: %w", inPath, err)
			}
			defer f.Close()

			switch kind {
			case "bg-sv":
				records, err := readBgSvTsv(cm, f)
				if err != nil {
					return err
				}
				return cmdutil.WithAtomicFile(outPath, func(out *os.File) error {
					return binfmt.WriteBackgroundSvRecords(out, records)
				})
			case "clinvar-sv":
				records, err := readClinVarSvTsv(cm, f)
				if err != nil {
					return err
				}
				return cmdutil.WithAtomicFile(outPath, func(out *os.File) error {
					return binfmt.WriteClinVarSvRecords(out, records)
				})
			default:
				return fmt.Errorf("db to-bin: unknown --kind %q, want bg-sv or clinvar-sv", kind)
			}
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "dump kind: bg-sv or clinvar-sv (required)")
	cmd.Flags().StringVar(&inPath, "in", "", "input TSV dump path (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output packed binary file path (required)")
	cmd.Flags().StringVar(&release, "release", "grch38", "genome release (grch37, grch38)")
	cmd.MarkFlagRequired("kind")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

// readBgSvTsv reads a header-free TSV with columns:
// chrom, chrom2, sv_type, start, stop, count, count_het, count_hom, count_hemi.
func readBgSvTsv(cm *chrom.Map, r io.Reader) ([]model.BackgroundSvRecord, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comma = '\t'
	cr.FieldsPerRecord = 9

	var out []model.BackgroundSvRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("db to-bin: reading bg-sv row: %w", err)
		}
		chromNo, err := cm.Index(row[0])
		if err != nil {
			return nil, fmt.Errorf("db to-bin: bg-sv row: %w", err)
		}
		chromNo2, err := cm.Index(row[1])
		if err != nil {
			return nil, fmt.Errorf("db to-bin: bg-sv row: %w", err)
		}
		svType, err := model.ParseSvType(row[2])
		if err != nil {
			return nil, fmt.Errorf("db to-bin: bg-sv row: %w", err)
		}
		start, err := strconv.ParseInt(row[3], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("db to-bin: bg-sv row: parsing start: %w", err)
		}
		stop, err := strconv.ParseInt(row[4], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("db to-bin: bg-sv row: parsing stop: %w", err)
		}
		count, err := strconv.ParseUint(row[5], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("db to-bin: bg-sv row: parsing count: %w", err)
		}
		countHet, err := strconv.ParseUint(row[6], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("db to-bin: bg-sv row: parsing count_het: %w", err)
		}
		countHom, err := strconv.ParseUint(row[7], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("db to-bin: bg-sv row: parsing count_hom: %w", err)
		}
		countHemi, err := strconv.ParseUint(row[8], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("db to-bin: bg-sv row: parsing count_hemi: %w", err)
		}
		rec := model.BackgroundSvRecord{
			ChromNo:   int32(chromNo),
			ChromNo2:  int32(chromNo2),
			SvType:    svType,
			Start:     int32(start),
			Stop:      int32(stop),
			Count:     uint32(count),
			CountHet:  uint32(countHet),
			CountHom:  uint32(countHom),
			CountHemi: uint32(countHemi),
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("db to-bin: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// readClinVarSvTsv reads a header-free TSV with columns:
// chrom, start, stop, variation_type, clinical_significance, vcv.
func readClinVarSvTsv(cm *chrom.Map, r io.Reader) ([]model.ClinVarSvRecord, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comma = '\t'
	cr.FieldsPerRecord = 6

	var out []model.ClinVarSvRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("db to-bin: reading clinvar-sv row: %w", err)
		}
		chromNo, err := cm.Index(row[0])
		if err != nil {
			return nil, fmt.Errorf("db to-bin: clinvar-sv row: %w", err)
		}
		start, err := strconv.ParseInt(row[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("db to-bin: clinvar-sv row: parsing start: %w", err)
		}
		stop, err := strconv.ParseInt(row[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("db to-bin: clinvar-sv row: parsing stop: %w", err)
		}
		vcv, err := strconv.ParseUint(row[5], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("db to-bin: clinvar-sv row: parsing vcv: %w", err)
		}
		out = append(out, model.ClinVarSvRecord{
			ChromNo:       int32(chromNo),
			Start:         int32(start),
			Stop:          int32(stop),
			VariationType: row[3],
			Pathogenicity: model.ParsePathogenicity(row[4]),
			Vcv:           uint32(vcv),
		})
	}
	return out, nil
}
