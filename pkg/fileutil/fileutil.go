package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rohmanhakim/richtext-converter/pkg/failure"
)

// GetFileExtension extracts the file extension from a path, or empty string if none
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	// Remove the leading dot
	return strings.TrimPrefix(ext, ".")
}

// StemName returns the file name without directory or extension.
// Output artifacts (document JSON, report JSON, preview markdown)
// derive their names from the input stem.
func StemName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// EnsureDir check if a given directory plus the following path exist, then create one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	outDir := filepath.Join(targetPath...)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	return nil
}

// WriteFile writes data to dir/name, creating dir if needed.
// Reruns overwrite the previous artifact, writes are idempotent
// for identical input.
func WriteFile(dir, name string, data []byte) failure.ClassifiedError {
	if err := EnsureDir(dir); err != nil {
		return err
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, data, 0644); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCauseWriteError,
		}
	}
	return nil
}
