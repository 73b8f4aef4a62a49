package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/varfish-org/varfish-worker-go/internal/chrom"
	"github.com/varfish-org/varfish-worker-go/internal/cmdutil"
	"github.com/varfish-org/varfish-worker-go/internal/kvstore"
	"github.com/varfish-org/varfish-worker-go/internal/model"
	"github.com/varfish-org/varfish-worker-go/internal/query"
	"github.com/varfish-org/varfish-worker-go/internal/seqcohort"
	"github.com/varfish-org/varfish-worker-go/internal/seqingest"
	"github.com/varfish-org/varfish-worker-go/internal/vcfio"
	"github.com/varfish-org/varfish-worker-go/pkg/pedigree"
)

func newSeqvarsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seqvars",
		Short: "Sequence-variant (SNV/indel) ingest, prefilter, aggregation and query",
	}
	cmd.AddCommand(newSeqvarsIngestCommand())
	cmd.AddCommand(newSeqvarsPrefilterCommand())
	cmd.AddCommand(newSeqvarsAggregateCommand())
	cmd.AddCommand(newSeqvarsQueryCommand())
	return cmd
}

func parseRelease(s string) (chrom.Release, error) {
	if s == "" {
		s = "grch38"
	}
	return chrom.ParseRelease(s)
}

func openPedigree(path string) (*pedigree.Pedigree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pedigree file: %w", err)
	}
	defer f.Close()
	return pedigree.Parse(f)
}

func newSeqvarsIngestCommand() *cobra.Command {
	var (
		vcfPath      string
		pedPath      string
		outPath      string
		caseUUID     string
		release      string
		callerName   string
		callerVer    string
		callerConfig string
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Annotate one case's sequence VCF and write the canonical output VCF",
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := parseRelease(release)
			if err != nil {
				return err
			}
			ped, err := openPedigree(pedPath)
			if err != nil {
				return err
			}

			reader, err := vcfio.OpenSeq(vcfPath)
			if err != nil {
				return err
			}
			defer reader.Close()

			if err := ped.ValidateSampleSet(reader.SampleNames()); err != nil {
				return err
			}

			cfg, err := loadStoreConfig()
			if err != nil {
				return err
			}
			clients, err := cmdutil.OpenAnnotationClients(cfg)
			if err != nil {
				return err
			}

			cm := chrom.NewMap(rel)
			headerLines := seqingest.BuildOutputHeaderLines(seqingest.HeaderParams{
				Release:       rel,
				CaseUUID:      caseUUID,
				WorkerVersion: workerVersion,
				CallerName:    callerName,
				CallerVersion: callerVer,
				CallerConfig:  callerConfig,
				FileDate:      time.Now().UTC().Format("20060102"),
			}, ped)

			return cmdutil.WithAtomicFile(outPath, func(f *os.File) error {
				writer, err := vcfio.NewWriter(f, headerLines, reader.SampleNames())
				if err != nil {
					return err
				}
				for {
					raw, ok, err := reader.Next()
					if err != nil {
						return err
					}
					if !ok {
						break
					}
					for _, rec := range seqingest.SplitBiallelic(reader.Caller, raw, caseUUID) {
						if err := seqingest.Annotate(clients, cm, rec); err != nil {
							return err
						}
						if err := writer.WriteVariantRecord(rec); err != nil {
							return err
						}
					}
				}
				return writer.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&vcfPath, "vcf", "", "input sequence VCF (required)")
	cmd.Flags().StringVar(&pedPath, "ped", "", "pedigree PED file (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output VCF path (required)")
	cmd.Flags().StringVar(&caseUUID, "case-uuid", "", "case UUID recorded in the output header")
	cmd.Flags().StringVar(&release, "release", "grch38", "genome release (grch37, grch38)")
	cmd.Flags().StringVar(&callerName, "caller-name", "unknown", "sequence caller name recorded in the output header")
	cmd.Flags().StringVar(&callerVer, "caller-version", "", "sequence caller version")
	cmd.Flags().StringVar(&callerConfig, "caller-config", "", "sequence caller configuration label")
	cmd.MarkFlagRequired("vcf")
	cmd.MarkFlagRequired("ped")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newSeqvarsPrefilterCommand() *cobra.Command {
	var (
		inPath  string
		outPath string
		maxAF   float64
	)
	cmd := &cobra.Command{
		Use:   "prefilter",
		Short: "Drop records above a coarse frequency threshold before the full query pipeline",
		Long: "Applies the C6 frequency/ClinVar predicate alone (no recessive grouping, no sort) " +
			"against an already-annotated VCF, to shrink a case before seqvars query runs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := vcfio.OpenAnnotated(inPath)
			if err != nil {
				return err
			}
			defer reader.Close()

			q := &query.CaseQuery{
				Frequency: query.FrequencySection{
					GnomadExomes:  query.FrequencyLimits{Enabled: true, MaxAF: &maxAF},
					GnomadGenomes: query.FrequencyLimits{Enabled: true, MaxAF: &maxAF},
				},
				ClinVar: query.ClinVarSection{AllowConflictingInterpretations: true},
			}

			return cmdutil.WithAtomicFile(outPath, func(f *os.File) error {
				writer, err := vcfio.NewWriter(f, nil, reader.SampleNames())
				if err != nil {
					return err
				}
				for {
					rec, ok, err := reader.Next()
					if err != nil {
						return err
					}
					if !ok {
						break
					}
					if !query.Passes(q, rec) && !rec.ClinVar.Present {
						continue
					}
					if err := writer.WriteVariantRecord(rec); err != nil {
						return err
					}
				}
				return writer.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "annotated input VCF (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "filtered output VCF (required)")
	cmd.Flags().Float64Var(&maxAF, "max-af", 0.01, "maximum gnomAD allele frequency to keep a record")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newSeqvarsAggregateCommand() *cobra.Command {
	var (
		inPaths []string
		outPath string
		release string
	)
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Build the in-house sequence-variant background frequency table from many cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := parseRelease(release)
			if err != nil {
				return err
			}
			cm := chrom.NewMap(rel)
			agg := seqcohort.NewAggregator(cm)

			for _, path := range inPaths {
				reader, err := vcfio.OpenAnnotated(path)
				if err != nil {
					return err
				}
				var records []*model.VariantRecord
				for {
					rec, ok, err := reader.Next()
					if err != nil {
						reader.Close()
						return err
					}
					if !ok {
						break
					}
					records = append(records, rec)
				}
				reader.Close()
				if err := agg.AddCase(records); err != nil {
					return err
				}
			}

			rows := agg.Finish()
			tmpPath := outPath + ".tmp"
			if err := kvstore.BuildFrequencyStore(tmpPath, rows); err != nil {
				os.Remove(tmpPath)
				return err
			}
			return os.Rename(tmpPath, outPath)
		},
	}
	cmd.Flags().StringSliceVar(&inPaths, "case", nil, "one already-ingested per-case VCF; repeatable (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output in-house frequency store path (required)")
	cmd.Flags().StringVar(&release, "release", "grch38", "genome release (grch37, grch38)")
	cmd.MarkFlagRequired("case")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newSeqvarsQueryCommand() *cobra.Command {
	var (
		inPath      string
		queryPath   string
		outPath     string
		release     string
		resultSetID string
		sodarUUID   string
		tempDir     string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Evaluate a structured query against one case's annotated sequence variants",
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

			reader, err := vcfio.OpenAnnotated(inPath)
			if err != nil {
				return err
			}
			defer reader.Close()

			cm := chrom.NewMap(rel)
			if tempDir == "" {
				tempDir = os.TempDir()
			}
			rows, err := query.RunQuery(&q, cm, rel, resultSetID, sodarUUID, reader.Next, tempDir)
			if err != nil {
				return err
			}

			return cmdutil.WithAtomicFile(outPath, func(f *os.File) error {
				bw := bufio.NewWriter(f)
				for _, row := range rows {
					line, err := query.WriteTsvRow(row)
					if err != nil {
						return err
					}
					if _, err := bw.WriteString(line + "\n"); err != nil {
						return err
					}
				}
				return bw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "annotated input VCF (required)")
	cmd.Flags().StringVar(&queryPath, "query", "", "JSON query file (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output TSV path (required)")
	cmd.Flags().StringVar(&release, "release", "grch38", "genome release (grch37, grch38)")
	cmd.Flags().StringVar(&resultSetID, "result-set-id", "", "smallvariantqueryresultset_id column value")
	cmd.Flags().StringVar(&sodarUUID, "sodar-uuid", "", "sodar_uuid column value")
	cmd.Flags().StringVar(&tempDir, "temp-dir", "", "scratch directory for the external sort passes")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("query")
	cmd.MarkFlagRequired("out")
	return cmd
}
