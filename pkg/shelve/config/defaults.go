// Package config provides configuration management for the shelve file organizer.
package config

// Default configuration values for shelve.
const (
	// DefaultOutputRoot is the folder created inside the source directory.
	DefaultOutputRoot = "organized"

	// DefaultOutputFormat is the report formatter used by the CLI.
	DefaultOutputFormat = "pretty"

	// DefaultLogMaxSize is the log size that triggers rotation.
	DefaultLogMaxSize = "10MB"

	// DefaultLogMaxBackups is the number of rotated logs kept.
	DefaultLogMaxBackups = 5

	// EnvPrefix prefixes every environment override, e.g. SHELVE_MOVE=true.
	EnvPrefix = "SHELVE"

	// APIKeyEnv is the conventional credential variable for the completion API.
	APIKeyEnv = "OPENAI_API_KEY"
)

// DefaultSkipDirs are cache directories ignored when summing tree sizes.
var DefaultSkipDirs = []string{
	"__pycache__",
	".cache",
}
