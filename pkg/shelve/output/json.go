package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// jsonOutput adds derived fields to the report for JSON consumers.
type jsonOutput struct {
	*types.RunReport
	Mode          string `json:"mode"`
	SizeMatch     bool   `json:"size_match"`
	ElapsedHuman  string `json:"elapsed_human"`
	OriginalHuman string `json:"original_human"`
	SortedHuman   string `json:"sorted_human"`
}

// JSONFormatter formats the report as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *types.RunReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonOutput{
		RunReport:     r,
		Mode:          r.Config.Mode(),
		SizeMatch:     r.SizeMatch(),
		ElapsedHuman:  formatDuration(r.Elapsed),
		OriginalHuman: types.FormatSize(r.SourceBytes),
		SortedHuman:   types.FormatSize(r.OrganizedBytes),
	})
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
