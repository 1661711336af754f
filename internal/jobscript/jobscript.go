// Package jobscript ships the batch script that starts RStudio Server inside
// a scheduler allocation.
package jobscript

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed jobscript.sh
var script []byte

const fileName = "jobscript.sh"

// Content returns the embedded script.
func Content() []byte {
	return bytes.Clone(script)
}

// DefaultDir is <user cache dir>/rstudio.
func DefaultDir() (string, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cache, "rstudio"), nil
}

// Materialize writes the embedded script into dir and returns its path. An
// existing file with the same content is left untouched.
func Materialize(dir string) (string, error) {
	path := filepath.Join(dir, fileName)
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, script) {
		return path, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating script dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, fileName+".*")
	if err != nil {
		return "", fmt.Errorf("writing job script: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(script); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing job script: %w", err)
	}
	if err := tmp.Chmod(0755); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing job script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing job script: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("installing job script: %w", err)
	}
	return path, nil
}

// Resolve returns configured when set, after checking it exists, and the
// materialized embedded script otherwise.
func Resolve(configured string) (string, error) {
	if configured != "" {
		abs, err := filepath.Abs(configured)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("job script: %w", err)
		}
		return abs, nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return Materialize(dir)
}
