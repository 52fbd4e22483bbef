// Package store defines the storage backend interface for reading scenario
// documents.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when a scenario does not exist in the store.
	ErrNotFound = errors.New("store: scenario not found")

	// ErrInvalidName is returned for scenario names that could escape the
	// scenarios directory or prefix.
	ErrInvalidName = errors.New("store: invalid scenario name")
)

// Store defines the interface for storage backends.
// Implementations handle path formats and storage details internally.
type Store interface {
	// ReadScenario returns the decompressed document for the named scenario.
	ReadScenario(ctx context.Context, name string) ([]byte, error)

	// List returns the names of all scenarios, sorted.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// Dir is the directory (or key prefix) scenario documents live under.
const Dir = "scenarios"

// docExt is the extension of an uncompressed scenario document.
const docExt = ".yaml"

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateName reports whether name can be used as a scenario name.
func ValidateName(name string) error {
	if !validName.MatchString(name) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// FileName returns the file name of a scenario document compressed with a
// codec whose extension is ext ("" for none).
func FileName(name, ext string) string {
	file := name + docExt
	if ext != "" {
		file += "." + ext
	}
	return file
}

// NameFromFile is the inverse of FileName. It reports false for files that
// are not scenario documents with the given extension.
func NameFromFile(file, ext string) (string, bool) {
	suffix := docExt
	if ext != "" {
		suffix += "." + ext
	}
	name, ok := strings.CutSuffix(file, suffix)
	if !ok || ValidateName(name) != nil {
		return "", false
	}
	return name, true
}

// NormalizePrefix turns a user-supplied key prefix into "" or "a/b/".
func NormalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
