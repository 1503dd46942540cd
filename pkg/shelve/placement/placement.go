// Package placement maps a file record to its relative destination folder.
package placement

import (
	"errors"
	"path/filepath"
	"strconv"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// NoExtensionDir is the type folder used for files without an extension.
const NoExtensionDir = "no_extension"

// ErrNoClassifier is returned when neither type nor year classification is enabled.
var ErrNoClassifier = errors.New("no classifier enabled: enable sorting by type, year, or both")

// Resolve returns the destination folder for rec relative to the output root.
// The result depends only on cfg and rec.
func Resolve(cfg types.SortConfig, rec types.FileRecord) (string, error) {
	switch {
	case cfg.ByType && cfg.ByYear:
		return filepath.Join(typeDir(rec), yearDir(rec)), nil
	case cfg.ByType:
		return typeDir(rec), nil
	case cfg.ByYear:
		return yearDir(rec), nil
	default:
		return "", ErrNoClassifier
	}
}

// Destination returns the absolute destination folder for rec.
func Destination(cfg types.SortConfig, rec types.FileRecord) (string, error) {
	rel, err := Resolve(cfg, rec)
	if err != nil {
		return "", err
	}
	return filepath.Join(OutputDir(cfg), rel), nil
}

// OutputDir returns the output root inside the source directory.
func OutputDir(cfg types.SortConfig) string {
	return filepath.Join(cfg.Source, cfg.OutputRoot)
}

func typeDir(rec types.FileRecord) string {
	if rec.Ext == "" {
		return NoExtensionDir
	}
	return rec.Ext
}

func yearDir(rec types.FileRecord) string {
	return strconv.Itoa(rec.Year())
}
