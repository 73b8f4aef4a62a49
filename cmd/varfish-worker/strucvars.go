package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/varfish-org/varfish-worker-go/internal/binfmt"
	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/cmdutil"
	"github.com/varfish-org/varfish-worker-go/internal/cohort"
	"github.com/varfish-org/varfish-worker-go/internal/model"
	"github.com/varfish-org/varfish-worker-go/internal/query"
	"github.com/varfish-org/varfish-worker-go/internal/svingest"
	"github.com/varfish-org/varfish-worker-go/internal/vcfio"
)

func newStrucvarsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strucvars",
		Short: "Structural-variant ingest, background aggregation and query",
	}
	cmd.AddCommand(newStrucvarsIngestCommand())
	cmd.AddCommand(newStrucvarsAggregateCommand())
	cmd.AddCommand(newStrucvarsQueryCommand())
	return cmd
}

// writeSvJsonl writes one model.StructuralVariant per line, the same JSONL
// shape internal/cohort reads back via ParseCaseFile -- ingest's output is
// this file, not a VCF, since callers merge across SV types that have no
// single-ALT VCF spelling in common (BND pairs, CNV copy-number calls).
func writeSvJsonl(f *os.File, svs []*model.StructuralVariant) error {
	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	for _, sv := range svs {
		if err := enc.Encode(sv); err != nil {
			return fmt.Errorf("strucvars: encoding sv record: %w", err)
		}
	}
	return bw.Flush()
}

func readSvJsonl(path string) ([]*model.StructuralVariant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("strucvars: opening %s: %w", path, err)
	}
	defer f.Close()
	dec := json.NewDecoder(bufio.NewReader(f))
	var out []*model.StructuralVariant
	for {
		var sv model.StructuralVariant
		if err := dec.Decode(&sv); err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, fmt.Errorf("strucvars: decoding sv record from %s: %w", path, err)
		}
		out = append(out, &sv)
	}
	return out, nil
}

func newStrucvarsIngestCommand() *cobra.Command {
	var (
		vcfPaths []string
		pedPath  string
		outPath  string
		release  string
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Merge one case's multi-caller SV VCFs into the canonical SV record set",
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := parseRelease(release)
			if err != nil {
				return err
			}
			ped, err := openPedigree(pedPath)
			if err != nil {
				return err
			}

			files := make([]svingest.CallerFile, 0, len(vcfPaths))
			for _, path := range vcfPaths {
				cf, err := vcfio.ReadCallerFile(path, "")
				if err != nil {
					return err
				}
				files = append(files, cf)
			}

			cm := chrom.NewMap(rel)
			tempDir := os.TempDir()
			svs, err := svingest.Ingest(cm, ped, nil, files, svingest.DefaultQueryMergeParams(), tempDir)
			if err != nil {
				return err
			}

			return cmdutil.WithAtomicFile(outPath, func(f *os.File) error {
				return writeSvJsonl(f, svs)
			})
		},
	}
	cmd.Flags().StringSliceVar(&vcfPaths, "vcf", nil, "one caller's SV VCF; repeatable (required, at least one)")
	cmd.Flags().StringVar(&pedPath, "ped", "", "pedigree PED file (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output SV record file path (required)")
	cmd.Flags().StringVar(&release, "release", "grch38", "genome release (grch37, grch38)")
	cmd.MarkFlagRequired("vcf")
	cmd.MarkFlagRequired("ped")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newStrucvarsAggregateCommand() *cobra.Command {
	var (
		inPaths     []string
		outPath     string
		release     string
		maxParallel int
	)
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Build the in-house background SV table from many ingested cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := parseRelease(release)
			if err != nil {
				return err
			}
			cm := chrom.NewMap(rel)
			tempDir := os.TempDir()

			parse := func(path string) ([]cohort.BgCandidate, error) {
				svs, err := readSvJsonl(path)
				if err != nil {
					return nil, err
				}
				out := make([]cohort.BgCandidate, len(svs))
				for i, sv := range svs {
					out[i] = cohort.AggregateCase(sv)
				}
				return out, nil
			}

			perCase, err := cohort.ParseCasesParallel(inPaths, maxParallel, parse)
			if err != nil {
				return err
			}

			agg := cohort.NewAggregator(cm, tempDir)
			defer agg.Cleanup()
			for _, rows := range perCase {
				for _, row := range rows {
					if err := agg.Add(row); err != nil {
						return err
					}
				}
			}
			records, err := agg.Finish()
			if err != nil {
				return err
			}

			return cmdutil.WithAtomicFile(outPath, func(f *os.File) error {
				return binfmt.WriteBackgroundSvRecords(f, records)
			})
		},
	}
	cmd.Flags().StringSliceVar(&inPaths, "case", nil, "one already-ingested per-case SV file; repeatable (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output background SV store path (required)")
	cmd.Flags().StringVar(&release, "release", "grch38", "genome release (grch37, grch38)")
	cmd.Flags().IntVar(&maxParallel, "max-parallel", 4, "maximum concurrent per-case file parses")
	cmd.MarkFlagRequired("case")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newStrucvarsQueryCommand() *cobra.Command {
	var (
		inPath    string
		queryPath string
		outPath   string
		release   string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Evaluate a structured query against one case's ingested structural variants",
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := parseRelease(release)
			if err != nil {
				return err
			}
			qf, err := os.Open(queryPath)
			if err != nil {
				return fmt.Errorf("opening query file: %w", err)
			}
			defer qf.Close()
			var q query.CaseQuery
			if err := json.NewDecoder(qf).Decode(&q); err != nil {
				return fmt.Errorf("decoding query file: %w", err)
			}

			cfg, err := loadStoreConfig()
			if err != nil {
				return err
			}
			dbs, err := cmdutil.OpenSvDatabases(cfg)
			if err != nil {
				return err
			}

			svs, err := readSvJsonl(inPath)
			if err != nil {
				return err
			}
			cm := chrom.NewMap(rel)

			var surviving []*model.StructuralVariant
			for _, sv := range svs {
				chromIdx, err := cm.Index(sv.Chrom)
				if err != nil {
					return err
				}
				if query.PassesSv(&q, dbs, chromIdx, sv) {
					surviving = append(surviving, sv)
				}
			}

			return cmdutil.WithAtomicFile(outPath, func(f *os.File) error {
				return writeSvJsonl(f, surviving)
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "ingested input SV record file (required)")
	cmd.Flags().StringVar(&queryPath, "query", "", "JSON query file (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output SV record file path (required)")
	cmd.Flags().StringVar(&release, "release", "grch38", "genome release (grch37, grch38)")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("query")
	cmd.MarkFlagRequired("out")
	return cmd
}
