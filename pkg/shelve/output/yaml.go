package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// yamlOutput adds derived fields to the report for YAML consumers.
type yamlOutput struct {
	Report    types.RunReport `yaml:",inline"`
	Mode      string          `yaml:"mode"`
	SizeMatch bool            `yaml:"size_match"`
	Elapsed   string          `yaml:"elapsed_human"`
}

// YAMLFormatter formats the report as a YAML document.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *types.RunReport) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(yamlOutput{
		Report:    *r,
		Mode:      r.Config.Mode(),
		SizeMatch: r.SizeMatch(),
		Elapsed:   formatDuration(r.Elapsed),
	}); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
