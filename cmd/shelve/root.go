package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/shelve/pkg/shelve/config"
	"github.com/jamesainslie/shelve/pkg/shelve/logging"
	"github.com/jamesainslie/shelve/pkg/shelve/organizer"
	"github.com/jamesainslie/shelve/pkg/shelve/output"
	"github.com/jamesainslie/shelve/pkg/shelve/summarize"
	"github.com/jamesainslie/shelve/pkg/shelve/types"
)

// app carries the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	fs      afero.Fs
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper(), fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "shelve [path]",
		Short: "Organize a folder by file type and creation year",
		Long: `Shelve copies or moves every file in a directory into
<path>/<output_root>/<extension>/<year>/, checks that no bytes went missing,
and can summarize the oldest and newest PDF through an OpenAI-compatible API.

Without a path argument shelve asks for one.

Examples:
  shelve ~/Downloads                 # Copy into ~/Downloads/organized/ext/year
  shelve -m ~/Downloads              # Move instead of copy
  shelve --by-year=false .           # Sort by extension only
  shelve --no-analyze -o json .      # Skip PDF summaries, print JSON
  shelve config init                 # Write a default config file`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runOrganize,
	}

	// Persistent flags (available to all commands)
	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ~/.config/shelve/config.yaml)")
	pf.StringP("output", "o", "", fmt.Sprintf("output format (%s)", strings.Join(output.Available(), ", ")))
	pf.BoolP("quiet", "q", false, "no console logging")
	pf.BoolP("verbose", "v", false, "debug output")
	pf.String("log-file", "", "log file path (default: $XDG_STATE_HOME/shelve/shelve.log)")

	f := cmd.Flags()
	f.StringP("output-root", "r", "", "folder created inside the source for organized files (default: organized)")
	f.Bool("by-type", true, "sort into folders by file extension")
	f.Bool("by-year", true, "sort into folders by creation year")
	f.BoolP("move", "m", false, "move files instead of copying")
	f.Bool("analyze-oldest", true, "summarize the oldest PDF")
	f.Bool("analyze-newest", true, "summarize the newest PDF")
	f.Bool("no-analyze", false, "skip all PDF summaries")
	f.String("context", "", "background passed to the summarizer with each PDF")

	// Bind flags to viper
	_ = a.v.BindPFlag("output", pf.Lookup("output"))
	_ = a.v.BindPFlag("quiet", pf.Lookup("quiet"))
	_ = a.v.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = a.v.BindPFlag("logging.path", pf.Lookup("log-file"))
	_ = a.v.BindPFlag("output_root", f.Lookup("output-root"))
	_ = a.v.BindPFlag("sort.by_type", f.Lookup("by-type"))
	_ = a.v.BindPFlag("sort.by_year", f.Lookup("by-year"))
	_ = a.v.BindPFlag("move", f.Lookup("move"))
	_ = a.v.BindPFlag("analyze.oldest", f.Lookup("analyze-oldest"))
	_ = a.v.BindPFlag("analyze.newest", f.Lookup("analyze-newest"))
	_ = a.v.BindPFlag("no_analyze", f.Lookup("no-analyze"))
	_ = a.v.BindPFlag("analyze.context", f.Lookup("context"))

	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		printError(cmd.ErrOrStderr(), "%v", err)
		return err
	}
	return nil
}

// loadConfig reads .env files, then the config file and environment.
func (a *app) loadConfig() (*config.Config, error) {
	if _, err := config.LoadDotEnv(config.DotEnvPaths()...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return nil, err
	}
	if a.v.GetBool("no_analyze") {
		cfg.Analyze.Oldest = false
		cfg.Analyze.Newest = false
	}
	return cfg, nil
}

// initLogging starts file logging plus console logging unless quiet.
func (a *app) initLogging(cfg *config.Config, console io.Writer) error {
	rotation := logging.DefaultRotationConfig()
	if cfg.Logging.Rotation.MaxSize != "" {
		size, err := types.ParseSize(cfg.Logging.Rotation.MaxSize)
		if err != nil {
			return fmt.Errorf("logging.rotation.max_size: %w", err)
		}
		rotation.MaxSize = size
	}
	if cfg.Logging.Rotation.MaxBackups > 0 {
		rotation.MaxBackups = cfg.Logging.Rotation.MaxBackups
	}

	level := cfg.Logging.Level
	consoleLevel := "warn"
	if a.v.GetBool("verbose") {
		level = "debug"
		consoleLevel = "debug"
	}
	if a.v.GetBool("quiet") {
		consoleLevel = ""
	}

	path := cfg.Logging.Path
	if path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return err
		}
		path = expanded
	}

	return logging.Init(logging.Config{
		Level:        level,
		Path:         path,
		Rotation:     rotation,
		Components:   cfg.Logging.Components,
		ConsoleLevel: consoleLevel,
		Console:      console,
	})
}

func (a *app) runOrganize(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	formatter, err := output.Get(cfg.Output)
	if err != nil {
		return err
	}

	if err := a.initLogging(cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}
	defer func() { _ = logging.Close() }()
	log := logging.Get("cli")

	var source string
	if len(args) > 0 {
		source = args[0]
	} else {
		source, err = promptForPath(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
	}
	source, err = resolveSource(source)
	if err != nil {
		return err
	}

	opts := buildOptions(cfg, source)
	if opts.AnalyzeOldest || opts.AnalyzeNewest {
		client, err := summarize.NewClient(summarizeConfig(cfg))
		if err != nil {
			log.Warn("PDF summaries disabled", "reason", err)
		} else {
			opts.Summarizer = client
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runOpts []organizer.Option
	if a.v.GetBool("verbose") && !a.v.GetBool("quiet") {
		runOpts = append(runOpts, organizer.WithProgress(progressPrinter(cmd.ErrOrStderr())))
	}

	report, err := organizer.New(a.fs, opts, runOpts...).Run(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

// progressPrinter writes one line per finished file to w.
func progressPrinter(w io.Writer) func(organizer.Progress) {
	return func(p organizer.Progress) {
		if p.Err != nil {
			fmt.Fprintf(w, "[%d/%d] %s: %v\n", p.Index, p.Total, p.Record.Name, p.Err)
			return
		}
		fmt.Fprintf(w, "[%d/%d] %s (%s) -> %s\n", p.Index, p.Total, p.Record.Name, p.Record.HumanSize(), p.Dest)
	}
}

// buildOptions maps loaded configuration onto organizer options.
func buildOptions(cfg *config.Config, source string) organizer.Options {
	return organizer.Options{
		Sort: types.SortConfig{
			Source:     source,
			OutputRoot: cfg.OutputRoot,
			ByType:     cfg.Sort.ByType,
			ByYear:     cfg.Sort.ByYear,
			Move:       cfg.Move,
		},
		AnalyzeOldest:   cfg.Analyze.Oldest,
		AnalyzeNewest:   cfg.Analyze.Newest,
		AnalysisContext: cfg.Analyze.Context,
		SkipDirs:        cfg.SkipDirs,
	}
}

func summarizeConfig(cfg *config.Config) summarize.Config {
	return summarize.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	}
}

// resolveSource expands ~ and makes the path absolute.
func resolveSource(path string) (string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}

// printError prints an error message to w.
func printError(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "Error: "+format+"\n", args...)
}
