// Package organizer runs one organize pass over a directory: it classifies
// every direct-child file, copies or moves it into the output tree, audits
// the byte totals, and optionally summarizes the oldest and newest PDF.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/jamesainslie/shelve/pkg/shelve/audit"
	"github.com/jamesainslie/shelve/pkg/shelve/logging"
	"github.com/jamesainslie/shelve/pkg/shelve/pdf"
	"github.com/jamesainslie/shelve/pkg/shelve/placement"
	"github.com/jamesainslie/shelve/pkg/shelve/probe"
	"github.com/jamesainslie/shelve/pkg/shelve/transfer"
	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// Analysis targets.
const (
	Oldest = "oldest"
	Newest = "newest"
)

// ErrNoSummarizer is recorded on an analysis when no summarization client
// was configured.
var ErrNoSummarizer = errors.New("no summarizer configured")

// Summarizer produces a summary of document text.
type Summarizer interface {
	Summarize(ctx context.Context, text, docContext string) (string, error)
}

// Logger is the subset of *logging.Logger the organizer writes to.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Options configures a run.
type Options struct {
	// Sort holds the source directory, output root and classifiers.
	Sort types.SortConfig

	// AnalyzeOldest summarizes the PDF with the earliest creation time.
	AnalyzeOldest bool

	// AnalyzeNewest summarizes the PDF with the latest creation time.
	AnalyzeNewest bool

	// AnalysisContext is passed to the summarizer alongside the text.
	AnalysisContext string

	// SkipDirs are directory names ignored when auditing the output tree.
	SkipDirs []string

	// Summarizer is optional. Analyses fail softly without one.
	Summarizer Summarizer

	// Logger defaults to the "organizer" component logger tagged with the
	// run ID. An injected Logger is used as is.
	Logger Logger

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Progress describes one finished file, successful or not.
type Progress struct {
	Index  int
	Total  int
	Record types.FileRecord
	Dest   string
	Err    error
}

// Option customizes an Organizer.
type Option func(*Organizer)

// WithRunID sets the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(o *Organizer) {
		o.runID = id
	}
}

// WithProgress registers a callback invoked after each file is processed.
func WithProgress(fn func(Progress)) Option {
	return func(o *Organizer) {
		o.progress = fn
	}
}

// Organizer executes organize runs against a filesystem.
type Organizer struct {
	fs       afero.Fs
	exec     *transfer.Executor
	opts     Options
	log      Logger
	now      func() time.Time
	runID    string
	progress func(Progress)
}

// New returns an Organizer for fsys.
func New(fsys afero.Fs, opts Options, options ...Option) *Organizer {
	o := &Organizer{
		fs:   fsys,
		exec: transfer.NewExecutor(fsys),
		opts: opts,
		log:  opts.Logger,
		now:  opts.Clock,
	}
	if o.now == nil {
		o.now = time.Now
	}
	for _, opt := range options {
		opt(o)
	}
	if o.runID == "" {
		o.runID = uuid.New().String()
	}
	if o.log == nil {
		o.log = logging.Get("organizer").With("run", o.runID)
	}
	return o
}

// Run performs the organize pass. It returns an error only when the run
// cannot start: the source is missing, is not a directory, or the output
// root cannot be created. Per-file failures, audit mismatches and analysis
// failures are reported in the returned RunReport.
func (o *Organizer) Run(ctx context.Context) (*types.RunReport, error) {
	cfg := o.opts.Sort
	cfg.Source = filepath.Clean(cfg.Source)
	report := &types.RunReport{ID: o.runID, Config: cfg}

	o.log.Info("starting to sort", "source", cfg.Source, "mode", cfg.Mode())
	start := o.now()

	if !cfg.Classifies() {
		report.Skipped = true
		o.log.Info("nothing to sort", "by_type", cfg.ByType, "by_year", cfg.ByYear)
		return report, nil
	}

	records, err := o.prepare(cfg, report)
	if err != nil {
		return nil, err
	}

	o.transferAll(ctx, cfg, records, report)

	o.audit(report)
	report.Elapsed = o.now().Sub(start)
	o.logAudit(report)

	if ctx.Err() == nil {
		o.analyzeAll(ctx, cfg.Source, report)
	}

	return report, nil
}

// prepare verifies the source, creates the output root and enumerates files.
func (o *Organizer) prepare(cfg types.SortConfig, report *types.RunReport) ([]types.FileRecord, error) {
	info, err := o.fs.Stat(cfg.Source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", probe.ErrDirectoryNotFound, cfg.Source)
		}
		return nil, fmt.Errorf("cannot access %s: %w", cfg.Source, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", probe.ErrNotDirectory, cfg.Source)
	}

	report.OutputDir = placement.OutputDir(cfg)
	if err := o.exec.EnsureDir(report.OutputDir); err != nil {
		return nil, err
	}

	records, err := probe.ListFiles(o.fs, cfg.Source)
	if err != nil {
		return nil, err
	}
	report.Files = len(records)
	report.SourceBytes = audit.SumRecords(records)

	o.log.Debug("enumerated files", "files", report.Files, "bytes", report.SourceBytes)
	return records, nil
}

// transferAll places each record. Failures are logged and recorded and
// never stop the loop; cancellation is honored between files.
func (o *Organizer) transferAll(ctx context.Context, cfg types.SortConfig, records []types.FileRecord, report *types.RunReport) {
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			report.Interrupted = true
			o.log.Warn("run interrupted", "remaining", len(records)-i)
			return
		}

		dest, err := o.place(cfg, rec)
		if err != nil {
			kind := transfer.Classify(err)
			report.Failures = append(report.Failures, types.TransferFailure{
				Path:  rec.Path,
				Kind:  kind,
				Error: err.Error(),
			})
			o.log.Error("transfer failed", "file", rec.Path, "kind", kind, "error", err)
		} else {
			report.Transferred++
			o.log.Debug("transferred", "file", rec.Name, "dest", dest)
		}

		if o.progress != nil {
			o.progress(Progress{Index: i + 1, Total: len(records), Record: rec, Dest: dest, Err: err})
		}
	}
}

func (o *Organizer) place(cfg types.SortConfig, rec types.FileRecord) (string, error) {
	dest, err := placement.Destination(cfg, rec)
	if err != nil {
		return "", err
	}
	if err := o.exec.EnsureDir(dest); err != nil {
		return dest, err
	}
	return dest, o.exec.Transfer(rec.Path, dest, cfg.Move)
}

func (o *Organizer) audit(report *types.RunReport) {
	total, statErrs := audit.TotalSize(o.fs, report.OutputDir, o.opts.SkipDirs)
	report.OrganizedBytes = total
	report.StatErrors = statErrs
	for _, se := range statErrs {
		o.log.Warn("cannot stat entry", "path", se.Path, "error", se.Error)
	}
}

func (o *Organizer) logAudit(report *types.RunReport) {
	if !report.SizeMatch() {
		o.log.Warn("size mismatch after sorting",
			"original_bytes", report.SourceBytes,
			"sorted_bytes", report.OrganizedBytes)
		return
	}
	o.log.Info("finished sorting",
		"original", types.FormatSize(report.SourceBytes),
		"sorted", types.FormatSize(report.OrganizedBytes),
		"files", report.Files,
		"elapsed", report.Elapsed.Round(time.Millisecond))
}

func (o *Organizer) analyzeAll(ctx context.Context, source string, report *types.RunReport) {
	if o.opts.AnalyzeOldest {
		report.Analyses = append(report.Analyses, o.analyze(ctx, source, Oldest))
	}
	if o.opts.AnalyzeNewest {
		report.Analyses = append(report.Analyses, o.analyze(ctx, source, Newest))
	}
}

// analyze selects, extracts and summarizes one PDF. Every failure is
// recorded on the result and logged as a warning.
func (o *Organizer) analyze(ctx context.Context, source, which string) types.Analysis {
	result := types.Analysis{Which: which}
	fail := func(err error) types.Analysis {
		result.Error = err.Error()
		o.log.Warn("pdf analysis failed", "which", which, "error", err)
		return result
	}

	rec, err := pdf.SelectExtreme(o.fs, source, which == Oldest)
	if err != nil {
		return fail(err)
	}
	result.File = rec
	o.log.Info("selected pdf", "which", which, "file", rec.Name,
		"created", rec.Created.Local().Format("2.1.2006"))

	text, err := pdf.ExtractText(o.fs, rec.Path)
	if err != nil {
		return fail(err)
	}

	if o.opts.Summarizer == nil {
		return fail(ErrNoSummarizer)
	}
	summary, err := o.opts.Summarizer.Summarize(ctx, text, o.opts.AnalysisContext)
	if err != nil {
		return fail(err)
	}
	result.Summary = summary
	return result
}
