// Package types provides core data types for the shelve file organizer.
// It includes the per-file record produced by enumeration, the sort
// configuration, and the aggregate run report, along with utility functions
// for parsing and formatting byte sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// FileRecord references one file on disk plus its derived metadata.
// Records are created per enumeration pass and never persisted.
type FileRecord struct {
	// Path is the full path to the file.
	Path string `json:"path" yaml:"path"`

	// Name is the base name of the file.
	Name string `json:"name" yaml:"name"`

	// Ext is the extension without the leading dot, empty if none.
	Ext string `json:"ext" yaml:"ext"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`

	// Created is the creation time, or ModTime where the platform
	// does not expose a birth time.
	Created time.Time `json:"created" yaml:"created"`
}

// Year returns the creation year of the file in local time.
func (f FileRecord) Year() int {
	return f.Created.Local().Year()
}

// HumanSize returns the file size formatted as a human-readable string.
func (f FileRecord) HumanSize() string {
	return FormatSize(f.Size)
}

// SortConfig holds the immutable parameters of one organize run.
type SortConfig struct {
	// Source is the directory whose direct children are organized.
	Source string `json:"source" yaml:"source"`

	// OutputRoot is the folder name created inside Source.
	OutputRoot string `json:"output_root" yaml:"output_root"`

	// ByType classifies by file extension.
	ByType bool `json:"by_type" yaml:"by_type"`

	// ByYear classifies by creation year.
	ByYear bool `json:"by_year" yaml:"by_year"`

	// Move removes files from Source instead of copying them.
	Move bool `json:"move" yaml:"move"`
}

// Classifies reports whether at least one classifier is enabled.
func (c SortConfig) Classifies() bool {
	return c.ByType || c.ByYear
}

// Mode returns "move" or "copy".
func (c SortConfig) Mode() string {
	if c.Move {
		return "move"
	}
	return "copy"
}

// FailureKind classifies why a single transfer failed.
type FailureKind string

const (
	// FailureNotFound means the source vanished before it could be transferred.
	FailureNotFound FailureKind = "not_found"
	// FailurePermission means the OS refused access to the source or destination.
	FailurePermission FailureKind = "permission_denied"
	// FailureIO covers every other I/O failure.
	FailureIO FailureKind = "io"
)

// TransferFailure records a file that was skipped during a run.
type TransferFailure struct {
	Path  string      `json:"path" yaml:"path"`
	Kind  FailureKind `json:"kind" yaml:"kind"`
	Error string      `json:"error" yaml:"error"`
}

// StatError records an entry whose size could not be read during auditing.
type StatError struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// Analysis is the outcome of summarizing one selected PDF.
type Analysis struct {
	// Which is "oldest" or "newest".
	Which string `json:"which" yaml:"which"`

	// File is the selected PDF, nil when no candidate was found.
	File *FileRecord `json:"file,omitempty" yaml:"file,omitempty"`

	// Summary is the generated text, verbatim.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Error explains why no summary was produced.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunReport is the aggregate outcome of one organize run.
type RunReport struct {
	// ID identifies the run in logs.
	ID string `json:"id" yaml:"id"`

	// Config is the sort configuration the run used.
	Config SortConfig `json:"config" yaml:"config"`

	// OutputDir is the absolute path of the output root.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// SourceBytes is the total size of the enumerated files before the run.
	SourceBytes int64 `json:"source_bytes" yaml:"source_bytes"`

	// OrganizedBytes is the total size of the output root after the run.
	OrganizedBytes int64 `json:"organized_bytes" yaml:"organized_bytes"`

	// Files is the number of files enumerated.
	Files int `json:"files" yaml:"files"`

	// Transferred is the number of files copied or moved successfully.
	Transferred int `json:"transferred" yaml:"transferred"`

	// Failures lists files skipped because their transfer failed.
	Failures []TransferFailure `json:"failures,omitempty" yaml:"failures,omitempty"`

	// StatErrors lists entries whose size could not be read.
	StatErrors []StatError `json:"stat_errors,omitempty" yaml:"stat_errors,omitempty"`

	// Elapsed is the wall-clock duration of stages one to four.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`

	// Skipped is true when no classifier was enabled and nothing ran.
	Skipped bool `json:"skipped" yaml:"skipped"`

	// Interrupted is true when the context was cancelled mid-run.
	Interrupted bool `json:"interrupted" yaml:"interrupted"`

	// Analyses holds the optional PDF summaries.
	Analyses []Analysis `json:"analyses,omitempty" yaml:"analyses,omitempty"`
}

// SizeMatch reports whether the organized tree holds exactly the bytes
// that were enumerated before the run.
func (r *RunReport) SizeMatch() bool {
	return r.SourceBytes == r.OrganizedBytes
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string such as "10MB" or "1.5G"
// and returns the size in bytes. Units are binary (1K = 1024).
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units, e.g. FormatSize(1536) returns "1.5 KiB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}
