package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/shelve/pkg/shelve/summarize"
)

// isolate points config discovery at an empty directory and clears
// the environment variables shelve reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(APIKeyEnv, "")
	t.Setenv("SHELVE_LLM_API_KEY", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultOutputRoot, cfg.OutputRoot)
	assert.True(t, cfg.Sort.ByType)
	assert.True(t, cfg.Sort.ByYear)
	assert.False(t, cfg.Move)
	assert.True(t, cfg.Analyze.Oldest)
	assert.True(t, cfg.Analyze.Newest)
	assert.Equal(t, DefaultSkipDirs, cfg.SkipDirs)
	assert.Equal(t, summarize.DefaultModel, cfg.LLM.Model)
	assert.Equal(t, summarize.DefaultMaxTokens, cfg.LLM.MaxTokens)
	assert.Equal(t, summarize.DefaultTimeout, cfg.LLM.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shelve"), 0o755))
	content := `output_root: sorted
sort:
  by_type: false
  by_year: true
move: true
llm:
  model: gpt-4o-mini
  timeout: 5s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shelve", "config.yaml"), []byte(content), 0o644))

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "sorted", cfg.OutputRoot)
	assert.False(t, cfg.Sort.ByType)
	assert.True(t, cfg.Sort.ByYear)
	assert.True(t, cfg.Move)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(NewViper(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SHELVE_MOVE", "true")
	t.Setenv("SHELVE_OUTPUT_ROOT", "by-date")
	t.Setenv(APIKeyEnv, "sk-test")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.True(t, cfg.Move)
	assert.Equal(t, "by-date", cfg.OutputRoot)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestPrefixedAPIKeyWins(t *testing.T) {
	isolate(t)
	t.Setenv(APIKeyEnv, "sk-generic")
	t.Setenv("SHELVE_LLM_API_KEY", "sk-specific")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "sk-specific", cfg.LLM.APIKey)
}

func TestValidateOutputRoot(t *testing.T) {
	tests := []struct {
		root    string
		wantErr bool
	}{
		{root: "organized"},
		{root: "  padded  "},
		{root: "", wantErr: true},
		{root: ".", wantErr: true},
		{root: "..", wantErr: true},
		{root: "a/b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			cfg := &Config{OutputRoot: tt.root}
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyOutputRoot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, summarize.DefaultMaxTokens, cfg.LLM.MaxTokens)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SHELVE_DOTENV_PROBE=from-file\n"), 0o600))
	t.Setenv("SHELVE_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("SHELVE_DOTENV_PROBE"))

	loaded, err := LoadDotEnv(filepath.Join(dir, "absent.env"), envFile)
	require.NoError(t, err)
	assert.Equal(t, []string{envFile}, loaded)
	assert.Equal(t, "from-file", os.Getenv("SHELVE_DOTENV_PROBE"))
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SHELVE_DOTENV_KEEP=from-file\n"), 0o600))
	t.Setenv("SHELVE_DOTENV_KEEP", "from-env")

	_, err := LoadDotEnv(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-env", os.Getenv("SHELVE_DOTENV_KEEP"))
}

func TestWriteDefault(t *testing.T) {
	dir := isolate(t)

	path, err := WriteDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shelve", "config.yaml"), path)

	// The written file must load back to the defaults.
	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputRoot, cfg.OutputRoot)
	assert.Equal(t, summarize.DefaultTimeout, cfg.LLM.Timeout)

	// A second call leaves the file alone.
	require.NoError(t, os.WriteFile(path, []byte("output_root: custom\n"), 0o644))
	_, err = WriteDefault()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "output_root: custom\n", string(data))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/Downloads")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Downloads"), got)

	got, err = ExpandPath("/tmp/x")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", got)
}
