package cmdutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// WithAtomicFile creates a temp file alongside path, lets fn write to it,
// and renames it onto path only once fn returns without error. On any
// failure the temp file is removed instead, so a killed run never leaves a
// partially written output in place.
func WithAtomicFile(path string, fn func(f *os.File) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".varfish-worker-tmp-*")
	if err != nil {
		return fmt.Errorf("cmdutil: creating temp output file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err = fn(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("cmdutil: closing temp output file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("cmdutil: renaming temp output file onto %s: %w", path, err)
	}
	return nil
}
