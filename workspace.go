package pgimport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nao1215/pgimport/domain/model"
)

// Directories used by the import workflow, relative to the working directory.
const (
	// UnprocessedDir receives the discovered data files before they are imported.
	UnprocessedDir = "unprocessed_data"
	// ProcessedDir receives the normalized exports of loaded tables.
	ProcessedDir = "processed_data"
)

// configFileNames are never treated as data files.
var configFileNames = []string{
	"config.json",
	"config.template.json",
	"config.yaml",
	"config.yml",
}

// isConfigFile reports whether the base name of path is a configuration file.
func isConfigFile(path string) bool {
	return slices.Contains(configFileNames, strings.ToLower(filepath.Base(path)))
}

// FindDataFiles returns the supported data files directly inside dir in
// lexical order. Subdirectories and configuration files are skipped.
func FindDataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || isConfigFile(entry.Name()) || !model.IsSupportedFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// MoveFiles moves files into dstDir, creating it if needed, and returns the
// new paths of the files that were moved. A file that cannot be moved is
// reported in the joined error and the rest are still moved.
func MoveFiles(files []string, dstDir string) ([]string, error) {
	if err := os.MkdirAll(dstDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dstDir, err)
	}

	moved := make([]string, 0, len(files))
	var errs []error
	for _, src := range files {
		dst := filepath.Join(dstDir, filepath.Base(src))
		if err := os.Rename(src, dst); err != nil {
			errs = append(errs, fmt.Errorf("failed to move %s: %w", src, err))
			continue
		}
		moved = append(moved, dst)
	}
	return moved, errors.Join(errs...)
}

// collectFiles expands paths into the list of data files to import.
// Directories contribute their direct data files.
func collectFiles(paths []string) ([]string, error) {
	var collected []string
	seen := make(map[string]bool)

	add := func(path string) error {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for %s: %w", path, err)
		}
		if !seen[absPath] {
			seen[absPath] = true
			collected = append(collected, path)
		}
		return nil
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}

		if !info.IsDir() {
			if isConfigFile(path) {
				continue
			}
			if err := add(path); err != nil {
				return nil, err
			}
			continue
		}

		dirFiles, err := FindDataFiles(path)
		if err != nil {
			return nil, err
		}
		for _, f := range dirFiles {
			if err := add(f); err != nil {
				return nil, err
			}
		}
	}

	return deduplicateCompressedFiles(collected), nil
}

// deduplicateCompressedFiles drops a compressed file when the same directory
// holds its uncompressed version ("data.csv.gz" next to "data.csv").
func deduplicateCompressedFiles(files []string) []string {
	uncompressed := make(map[string]bool)
	for _, f := range files {
		if model.DetectCompression(f) == model.CompressionNone {
			uncompressed[strings.ToLower(f)] = true
		}
	}

	result := make([]string, 0, len(files))
	for _, f := range files {
		c := model.DetectCompression(f)
		if c != model.CompressionNone {
			base := strings.ToLower(f[:len(f)-len(c.Extension())])
			if uncompressed[base] {
				continue
			}
		}
		result = append(result, f)
	}
	return result
}
