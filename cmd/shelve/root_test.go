package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/shelve/pkg/shelve/config"
	"github.com/jamesainslie/shelve/pkg/shelve/logging"
	"github.com/jamesainslie/shelve/pkg/shelve/organizer"
	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// isolate points config lookups at a temp dir and clears credentials.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv(config.APIKeyEnv, "")
	t.Setenv("SHELVE_LLM_API_KEY", "")
	t.Cleanup(func() { _ = logging.Close() })
	return home
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSource(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), make([]byte, 100), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), make([]byte, 50), 0o644))
}

func decodeReport(t *testing.T, out string) map[string]any {
	t.Helper()
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	return report
}

func TestOrganizeCopyJSON(t *testing.T) {
	home := isolate(t)
	src := t.TempDir()
	writeSource(t, src)

	out, err := execute(t, "", src, "--no-analyze", "-o", "json", "-q", "--log-file", filepath.Join(home, "shelve.log"))
	require.NoError(t, err)

	report := decodeReport(t, out)
	assert.Equal(t, true, report["size_match"])
	assert.Equal(t, float64(150), report["source_bytes"])
	assert.Equal(t, "copy", report["mode"])
	assert.Nil(t, report["analyses"])

	year := strconv.Itoa(time.Now().Year())
	assert.FileExists(t, filepath.Join(src, "organized", "pdf", year, "a.pdf"))
	assert.FileExists(t, filepath.Join(src, "organized", "txt", year, "b.txt"))
	assert.FileExists(t, filepath.Join(src, "b.txt"))
	assert.FileExists(t, filepath.Join(home, "shelve.log"))
}

func TestOrganizeMoveTypeOnly(t *testing.T) {
	home := isolate(t)
	src := t.TempDir()
	writeSource(t, src)

	_, err := execute(t, "", src, "-m", "--by-year=false", "-r", "sorted", "--no-analyze", "-o", "plain", "-q",
		"--log-file", filepath.Join(home, "shelve.log"))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(src, "sorted", "txt", "b.txt"))
	assert.NoFileExists(t, filepath.Join(src, "b.txt"))
}

func TestOrganizeReadsPathFromStdin(t *testing.T) {
	home := isolate(t)
	src := t.TempDir()
	writeSource(t, src)

	out, err := execute(t, src+"\n", "--no-analyze", "-o", "plain", "-q", "--log-file", filepath.Join(home, "shelve.log"))
	require.NoError(t, err)
	assert.Contains(t, out, promptQuestion)
	assert.Contains(t, out, "sizes match")
}

func TestOrganizeNoClassifier(t *testing.T) {
	home := isolate(t)
	src := t.TempDir()
	writeSource(t, src)

	out, err := execute(t, "", src, "--by-type=false", "--by-year=false", "-o", "json", "-q",
		"--log-file", filepath.Join(home, "shelve.log"))
	require.NoError(t, err)

	assert.Equal(t, true, decodeReport(t, out)["skipped"])
	assert.NoDirExists(t, filepath.Join(src, "organized"))
}

func TestOrganizeAnalysisFailureKeepsExitCode(t *testing.T) {
	home := isolate(t)
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("no pdf here"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("completion endpoint must not be called without a PDF")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	t.Setenv(config.APIKeyEnv, "sk-test")
	t.Setenv("SHELVE_LLM_BASE_URL", srv.URL+"/v1")

	out, err := execute(t, "", src, "-o", "json", "-q", "--log-file", filepath.Join(home, "shelve.log"))
	require.NoError(t, err)

	analyses, ok := decodeReport(t, out)["analyses"].([]any)
	require.True(t, ok)
	require.Len(t, analyses, 2)
	for _, a := range analyses {
		assert.Contains(t, a.(map[string]any)["error"], "no pdf files found")
	}
}

func TestOrganizeSetupErrors(t *testing.T) {
	home := isolate(t)
	logFile := filepath.Join(home, "shelve.log")

	_, err := execute(t, "", filepath.Join(home, "missing"), "-q", "--log-file", logFile)
	assert.Error(t, err)

	_, err = execute(t, "", home, "-o", "xml", "-q", "--log-file", logFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown formatter")

	_, err = execute(t, "", home, "-r", "a/b", "-q", "--log-file", logFile)
	assert.ErrorIs(t, err, config.ErrEmptyOutputRoot)

	_, err = execute(t, "", home, "--config", filepath.Join(home, "nope.yaml"), "-q", "--log-file", logFile)
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	home := isolate(t)
	t.Setenv(config.APIKeyEnv, "sk-abcdef123456")

	out, err := execute(t, "", "config", "path")
	require.NoError(t, err)
	wantPath := filepath.Join(home, "config", "shelve", "config.yaml")
	assert.Equal(t, wantPath+"\n", out)

	out, err = execute(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created config file")
	assert.FileExists(t, wantPath)

	out, err = execute(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	out, err = execute(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, wantPath)
	assert.Contains(t, out, "output_root: organized")
	assert.Contains(t, out, "********3456")
	assert.NotContains(t, out, "sk-abcdef123456")
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "shelve dev")
	assert.Contains(t, out, "os/arch:")
}

func TestOrganizeVerboseProgress(t *testing.T) {
	home := isolate(t)
	src := t.TempDir()
	writeSource(t, src)

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{src, "--no-analyze", "-o", "json", "-v", "--log-file", filepath.Join(home, "shelve.log")})
	require.NoError(t, cmd.Execute())

	year := strconv.Itoa(time.Now().Year())
	stderr := errOut.String()
	assert.Contains(t, stderr, "[1/2] a.pdf (100 B) -> "+filepath.Join(src, "organized", "pdf", year))
	assert.Contains(t, stderr, "[2/2] b.txt (50 B) -> "+filepath.Join(src, "organized", "txt", year))
	decodeReport(t, out.String())
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	printer := progressPrinter(&buf)

	printer(organizer.Progress{Index: 1, Total: 2, Record: types.FileRecord{Name: "a.pdf", Size: 1536}, Dest: "/out/pdf"})
	printer(organizer.Progress{Index: 2, Total: 2, Record: types.FileRecord{Name: "b.txt"}, Err: errors.New("permission denied")})

	assert.Equal(t, "[1/2] a.pdf (1.5 KiB) -> /out/pdf\n[2/2] b.txt: permission denied\n", buf.String())
}

func TestBuildOptions(t *testing.T) {
	cfg := &config.Config{
		OutputRoot: "organized",
		Sort:       config.SortConfig{ByType: true, ByYear: false},
		Move:       true,
		Analyze:    config.AnalyzeConfig{Oldest: true, Context: "receipts"},
		SkipDirs:   []string{".cache"},
	}

	opts := buildOptions(cfg, "/data")
	assert.Equal(t, "/data", opts.Sort.Source)
	assert.Equal(t, "organized", opts.Sort.OutputRoot)
	assert.True(t, opts.Sort.ByType)
	assert.False(t, opts.Sort.ByYear)
	assert.True(t, opts.Sort.Move)
	assert.True(t, opts.AnalyzeOldest)
	assert.False(t, opts.AnalyzeNewest)
	assert.Equal(t, "receipts", opts.AnalysisContext)
	assert.Equal(t, []string{".cache"}, opts.SkipDirs)
	assert.Nil(t, opts.Summarizer)
}

func TestResolveSource(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := resolveSource("~/docs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "docs"), got)

	got, err = resolveSource("relative")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestReadPathLine(t *testing.T) {
	var out bytes.Buffer
	got, err := readPathLine(strings.NewReader("  /tmp/stuff \n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/stuff", got)
	assert.Contains(t, out.String(), promptQuestion)

	_, err = readPathLine(strings.NewReader("\n"), &out)
	assert.ErrorIs(t, err, ErrPromptCancelled)

	got, err = readPathLine(strings.NewReader("/no/newline"), &out)
	require.NoError(t, err)
	assert.Equal(t, "/no/newline", got)
}

func TestPromptModel(t *testing.T) {
	m := newPromptModel()
	m.input.Placeholder = "/placeholder"

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/data/inbox")})
	next, cmd := next.(promptModel).Update(tea.KeyMsg{Type: tea.KeyEnter})
	final := next.(promptModel)
	assert.Equal(t, "/data/inbox", final.value)
	assert.NotNil(t, cmd)
	assert.Empty(t, final.View())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "/placeholder", next.(promptModel).value)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, next.(promptModel).cancelled)

	assert.Contains(t, m.View(), promptQuestion)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret("abcd"))
	assert.Equal(t, "****5678", maskSecret("12345678"))
	assert.Equal(t, "", maskSecret(""))
}
