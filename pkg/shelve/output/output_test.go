package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

func sampleReport() *types.RunReport {
	created := time.Date(2019, time.March, 7, 12, 0, 0, 0, time.Local)
	return &types.RunReport{
		ID: "run-42",
		Config: types.SortConfig{
			Source:     "/home/user/Downloads",
			OutputRoot: "organized",
			ByType:     true,
			ByYear:     true,
		},
		OutputDir:      "/home/user/Downloads/organized",
		SourceBytes:    150,
		OrganizedBytes: 150,
		Files:          3,
		Transferred:    2,
		Failures: []types.TransferFailure{
			{Path: "/home/user/Downloads/gone.txt", Kind: types.FailureNotFound, Error: "file does not exist"},
		},
		Elapsed: 1500 * time.Millisecond,
		Analyses: []types.Analysis{
			{
				Which:   "oldest",
				File:    &types.FileRecord{Name: "old.pdf", Path: "/home/user/Downloads/old.pdf", Ext: "pdf", Created: created},
				Summary: strings.Repeat("insightful words ", 20),
			},
			{Which: "newest", Error: "no pdf files found"},
		},
	}
}

func format(t *testing.T, name string, r *types.RunReport) string {
	t.Helper()
	f, err := Get(name)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, r))
	return buf.String()
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"json", "plain", "pretty", "table", "yaml"}, Available())

	_, err := Get("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown formatter: xml")

	r := NewRegistry()
	r.Register("plain", func() Formatter { return &PlainFormatter{} })
	assert.Equal(t, []string{"plain"}, r.Available())
}

func TestPrettyFormatter(t *testing.T) {
	out := format(t, "pretty", sampleReport())

	assert.Contains(t, out, "/home/user/Downloads")
	assert.Contains(t, out, "ALL GOOD")
	assert.Contains(t, out, "gone.txt")
	assert.Contains(t, out, "The oldest file in this folder is: old.pdf.")
	assert.Contains(t, out, "7.3.2019")
	assert.Contains(t, out, "No newest summary: no pdf files found")

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "insightful") {
			assert.LessOrEqual(t, len(strings.TrimSpace(stripANSI(line))), SummaryWidth)
		}
	}
}

func TestPrettyFormatterMismatchAndSkip(t *testing.T) {
	r := sampleReport()
	r.OrganizedBytes = 100
	assert.Contains(t, format(t, "pretty", r), "WARNING")

	skipped := &types.RunReport{Config: types.SortConfig{Source: "/src"}, Skipped: true}
	assert.Contains(t, format(t, "pretty", skipped), "nothing to sort")
}

func TestPlainFormatter(t *testing.T) {
	out := format(t, "plain", sampleReport())

	assert.Contains(t, out, "run            run-42")
	assert.Contains(t, out, "status")
	assert.Contains(t, out, "sizes match")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "not_found")
	assert.Contains(t, out, "oldest: /home/user/Downloads/old.pdf (created 7.3.2019)")
	assert.Contains(t, out, "newest: none")
	assert.Contains(t, out, "error: no pdf files found")
	assert.NotContains(t, out, "\x1b[", "plain output has no escape codes")
}

func TestTableFormatter(t *testing.T) {
	out := format(t, "table", sampleReport())

	assert.Contains(t, out, "Transferred")
	assert.Contains(t, out, "Skipped file")
	assert.Contains(t, out, "Summary")
	assert.NotContains(t, out, "SKIPPED FILE", "headers keep their case")
	assert.Contains(t, out, "not_found")
	assert.Contains(t, out, "old.pdf")
	assert.Contains(t, out, "error: no pdf files found")
	assert.Contains(t, out, "╭")
}

func TestJSONFormatter(t *testing.T) {
	out := format(t, "json", sampleReport())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "run-42", decoded["id"])
	assert.Equal(t, "copy", decoded["mode"])
	assert.Equal(t, true, decoded["size_match"])
	assert.Equal(t, float64(150), decoded["source_bytes"])
	assert.Len(t, decoded["analyses"], 2)
	assert.Len(t, decoded["failures"], 1)
}

func TestYAMLFormatter(t *testing.T) {
	out := format(t, "yaml", sampleReport())

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "run-42", decoded["id"])
	assert.Equal(t, "copy", decoded["mode"])
	assert.Equal(t, true, decoded["size_match"])
	assert.Equal(t, "1.5s", decoded["elapsed_human"])
	assert.Len(t, decoded["analyses"], 2)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}

// stripANSI removes SGR escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
