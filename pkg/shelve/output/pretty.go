package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// PrettyFormatter renders a styled report for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *types.RunReport) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	if r.Skipped {
		w.WriteString(MutedStyle.Render(fmt.Sprintf(
			"Sort by type is %t, sort by year is %t, therefore nothing to sort.",
			r.Config.ByType, r.Config.ByYear)))
		w.WriteString("\n")
		return nil
	}

	if len(r.Failures) > 0 {
		w.WriteString(f.formatFailures(r.Failures))
	}
	if len(r.StatErrors) > 0 {
		w.WriteString(f.formatStatErrors(r.StatErrors))
	}

	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")

	for _, a := range r.Analyses {
		w.WriteString("\n")
		w.WriteString(f.formatAnalysis(a))
	}
	return nil
}

func (f *PrettyFormatter) formatHeader(r *types.RunReport) string {
	lines := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Source:"), ValueStyle.Render(r.Config.Source)),
	}
	if r.OutputDir != "" {
		lines = append(lines, fmt.Sprintf("%s %s", LabelStyle.Render("Output:"), ValueStyle.Render(r.OutputDir)))
	}
	lines = append(lines, fmt.Sprintf("%s %s  %s %s",
		LabelStyle.Render("Mode:"), ValueStyle.Render(r.Config.Mode()),
		LabelStyle.Render("Sorted:"), ValueStyle.Render(fmt.Sprintf("%d of %d files in %s", r.Transferred, r.Files, formatDuration(r.Elapsed)))))
	if r.Interrupted {
		lines = append(lines, WarningStyle.Bold(true).Render("Run interrupted"))
	}
	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatFailures(failures []types.TransferFailure) string {
	var sb strings.Builder
	sb.WriteString(ErrorStyle.Bold(true).Render("Skipped files:"))
	sb.WriteString("\n")
	for _, fail := range failures {
		sb.WriteString(ErrorStyle.Render(fmt.Sprintf("  %s (%s)", fail.Path, fail.Kind)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (f *PrettyFormatter) formatStatErrors(errs []types.StatError) string {
	var sb strings.Builder
	sb.WriteString(WarningStyle.Bold(true).Render("Unreadable entries:"))
	sb.WriteString("\n")
	for _, se := range errs {
		sb.WriteString(WarningStyle.Render("  " + se.Path))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFooter(r *types.RunReport) string {
	verdict := SuccessStyle.Render("ALL GOOD")
	if !r.SizeMatch() {
		verdict = WarningStyle.Bold(true).Render("WARNING")
	}
	return FooterBox.Render(fmt.Sprintf("%s  %s %s  %s %s",
		verdict,
		LabelStyle.Render("Original:"), SizeStyle.Render(types.FormatSize(r.SourceBytes)),
		LabelStyle.Render("Sorted:"), SizeStyle.Render(types.FormatSize(r.OrganizedBytes))))
}

func (f *PrettyFormatter) formatAnalysis(a types.Analysis) string {
	var sb strings.Builder
	if a.File != nil {
		sb.WriteString(WarningStyle.Render(wordwrap.String(fmt.Sprintf(
			"The %s file in this folder is: %s. It was created on %s.",
			a.Which, a.File.Name, createdDate(a.File)), SummaryWidth)))
		sb.WriteString("\n\n")
	}
	if a.Error != "" {
		sb.WriteString(WarningStyle.Render(wordwrap.String(fmt.Sprintf("No %s summary: %s", a.Which, a.Error), SummaryWidth)))
		sb.WriteString("\n")
		return sb.String()
	}
	sb.WriteString(TitleStyle.Render("Here is the summary of this file:"))
	sb.WriteString("\n\n")
	sb.WriteString(SummaryStyle.Render(wordwrap.String(a.Summary, SummaryWidth)))
	sb.WriteString("\n")
	return sb.String()
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
