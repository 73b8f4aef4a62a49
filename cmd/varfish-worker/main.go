// Command varfish-worker implements the clinical variant-prioritization
// worker: sequence- and structural-variant ingest/annotation/query over
// per-case VCFs, plus the `db to-bin` build step that turns upstream
// annotation-source dumps into the worker's packed on-disk formats.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/varfish-org/varfish-worker-go/internal/cmdutil"
)

// workerVersion is recorded into the ##x-varfish-version meta line of the
// VCF that seqvars ingest writes; overridden at build time via -ldflags.
var workerVersion = "dev"

var (
	flagLogLevel string
	flagConfig   string
	flagSeed     int64
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(cmdutil.Fail(err))
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "varfish-worker",
		Short:         "Clinical variant-prioritization worker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.SetupLogging(flagLogLevel); err != nil {
				return err
			}
			cmdutil.SeedUUIDSource(flagSeed)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "logging threshold (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "store-location config `file` (TOML/YAML/JSON)")
	root.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "seed the UUID source for deterministic output (0 leaves the default random source in place)")

	root.AddCommand(newVersionCommand())
	root.AddCommand(newSeqvarsCommand())
	root.AddCommand(newStrucvarsCommand())
	root.AddCommand(newDbCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the worker version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "varfish-worker %s\n", workerVersion)
			return nil
		},
	}
}

func loadStoreConfig() (*cmdutil.StoreConfig, error) {
	cfg, err := cmdutil.LoadStoreConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	logrus.WithField("config", flagConfig).Debug("store config loaded")
	return cfg, nil
}
