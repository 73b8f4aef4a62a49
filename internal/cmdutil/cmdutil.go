// Package cmdutil holds the small pieces of command-line scaffolding
// shared by every varfish-worker subcommand: logging setup and the
// ERROR-prefixed failure line, following the idiom of a terminal-aware
// logrus formatter plus a single top-level error print.
package cmdutil

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// SetupLogging configures the package-level logrus logger. level falls
// back to the VARFISH_LOG environment variable (this worker's RUST_LOG
// equivalent) when empty, then to "info".
func SetupLogging(level string) error {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	if level == "" {
		level = os.Getenv("VARFISH_LOG")
	}
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(lvl)
	return nil
}

// Fail prints the single-line "ERROR: ..." diagnostic and returns the
// process exit code every subcommand should return it as.
func Fail(err error) int {
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
	return 1
}
