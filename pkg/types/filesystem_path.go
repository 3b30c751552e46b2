// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath represents an absolute or relative filesystem path.
	// It is used both as the primary key for executables (their source file)
	// and as the output location of build artifacts.
	// The zero value ("") is invalid — a path must always point somewhere.
	FilesystemPath string

	// InvalidFilesystemPathError is returned when a FilesystemPath value is
	// empty or whitespace-only.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
	}
)

// String returns the string representation of the FilesystemPath.
func (p FilesystemPath) String() string { return string(p) }

// IsValid returns whether the FilesystemPath is valid.
// A valid path must be non-empty and not whitespace-only.
func (p FilesystemPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilesystemPathError{Value: p}}
	}
	return true, nil
}

// Validate returns nil if the FilesystemPath is valid, or an
// InvalidFilesystemPathError describing the failure.
func (p FilesystemPath) Validate() error {
	if ok, _ := p.IsValid(); !ok {
		return &InvalidFilesystemPathError{Value: p}
	}
	return nil
}

// IsAbs reports whether the path is absolute.
func (p FilesystemPath) IsAbs() bool { return filepath.IsAbs(string(p)) }

// Join appends path segments to the path using the OS path separator.
func (p FilesystemPath) Join(elem ...string) FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(p)
	parts = append(parts, elem...)
	return FilesystemPath(filepath.Join(parts...))
}

// Rel returns the path made relative to root. It fails when the path does
// not live under root.
func (p FilesystemPath) Rel(root FilesystemPath) (FilesystemPath, error) {
	rel, err := filepath.Rel(string(root), string(p))
	if err != nil {
		return "", fmt.Errorf("resolving %q relative to %q: %w", p, root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is not under %q: %w", p, root, ErrInvalidFilesystemPath)
	}
	return FilesystemPath(rel), nil
}

// IsUnder reports whether the path is located under root (or equals it).
func (p FilesystemPath) IsUnder(root FilesystemPath) bool {
	_, err := p.Rel(root)
	return err == nil
}

// Error implements the error interface for InvalidFilesystemPathError.
func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is() compatibility.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
