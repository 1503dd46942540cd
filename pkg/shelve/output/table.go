package output

import (
	"bytes"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// TableFormatter renders the report as bordered tables: run totals,
// then skipped files, then analyses.
type TableFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TableFormatter) Format(w *bytes.Buffer, r *types.RunReport) error {
	w.WriteString(f.summaryTable(r))
	w.WriteString("\n")

	if len(r.Failures) > 0 {
		rows := make([]table.Row, 0, len(r.Failures))
		for _, fail := range r.Failures {
			rows = append(rows, table.Row{fail.Path, string(fail.Kind), fail.Error})
		}
		w.WriteString("\n")
		w.WriteString(render(table.Row{"Skipped file", "Kind", "Error"}, rows))
		w.WriteString("\n")
	}

	if len(r.Analyses) > 0 {
		rows := make([]table.Row, 0, len(r.Analyses))
		for _, a := range r.Analyses {
			file, created, result := "-", "-", a.Summary
			if a.File != nil {
				file = a.File.Name
				created = createdDate(a.File)
			}
			if a.Error != "" {
				result = "error: " + a.Error
			}
			rows = append(rows, table.Row{a.Which, file, created, result})
		}
		w.WriteString("\n")
		w.WriteString(render(table.Row{"Analysis", "File", "Created", "Summary"}, rows, table.ColumnConfig{
			Number:           4,
			WidthMax:         SummaryWidth,
			WidthMaxEnforcer: text.WrapSoft,
		}))
		w.WriteString("\n")
	}
	return nil
}

func (f *TableFormatter) summaryTable(r *types.RunReport) string {
	status := sizeVerdict(r)
	if r.Skipped {
		status = "skipped: no classifier enabled"
	} else if r.Interrupted {
		status += " (interrupted)"
	}

	rows := []table.Row{
		{"Source", r.Config.Source},
		{"Output", r.OutputDir},
		{"Mode", r.Config.Mode()},
		{"Files", fmt.Sprintf("%d", r.Files)},
		{"Transferred", fmt.Sprintf("%d", r.Transferred)},
		{"Original", types.FormatSize(r.SourceBytes)},
		{"Sorted", types.FormatSize(r.OrganizedBytes)},
		{"Elapsed", formatDuration(r.Elapsed)},
		{"Status", status},
	}
	return render(table.Row{"Field", "Value"}, rows)
}

func render(header table.Row, rows []table.Row, configs ...table.ColumnConfig) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	if len(configs) > 0 {
		tw.SetColumnConfigs(configs)
	}
	return tw.Render()
}

func init() {
	Register("table", func() Formatter {
		return &TableFormatter{}
	})
}

// Ensure TableFormatter implements Formatter.
var _ Formatter = (*TableFormatter)(nil)
