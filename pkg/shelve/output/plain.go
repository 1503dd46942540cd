package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/muesli/reflow/wordwrap"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// PlainFormatter writes aligned key/value lines with no styling,
// suitable for scripting and piping.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *types.RunReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	rows := [][2]string{
		{"run", r.ID},
		{"source", r.Config.Source},
		{"mode", r.Config.Mode()},
	}
	if r.Skipped {
		rows = append(rows, [2]string{"status", "skipped: no classifier enabled"})
	} else {
		rows = append(rows,
			[2]string{"output", r.OutputDir},
			[2]string{"files", fmt.Sprintf("%d", r.Files)},
			[2]string{"transferred", fmt.Sprintf("%d", r.Transferred)},
			[2]string{"original_bytes", fmt.Sprintf("%d", r.SourceBytes)},
			[2]string{"sorted_bytes", fmt.Sprintf("%d", r.OrganizedBytes)},
			[2]string{"status", sizeVerdict(r)},
			[2]string{"elapsed", formatDuration(r.Elapsed)},
		)
	}
	if r.Interrupted {
		rows = append(rows, [2]string{"interrupted", "true"})
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	for _, fail := range r.Failures {
		if _, err := fmt.Fprintf(tw, "failed\t%s\t%s\n", fail.Kind, fail.Path); err != nil {
			return err
		}
	}
	for _, se := range r.StatErrors {
		if _, err := fmt.Fprintf(tw, "unreadable\t%s\n", se.Path); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, a := range r.Analyses {
		w.WriteString("\n")
		f.formatAnalysis(w, a)
	}
	return nil
}

func (f *PlainFormatter) formatAnalysis(w *bytes.Buffer, a types.Analysis) {
	if a.File != nil {
		fmt.Fprintf(w, "%s: %s (created %s)\n", a.Which, a.File.Path, createdDate(a.File))
	} else {
		fmt.Fprintf(w, "%s: none\n", a.Which)
	}
	if a.Error != "" {
		fmt.Fprintf(w, "error: %s\n", a.Error)
		return
	}
	w.WriteString(strings.TrimRight(wordwrap.String(a.Summary, SummaryWidth), "\n"))
	w.WriteString("\n")
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
