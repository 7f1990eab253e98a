package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gnana997/proplint/pkg/lint"
	"github.com/gnana997/proplint/pkg/mcp"
	"github.com/gnana997/proplint/pkg/mcplog"
	"github.com/gnana997/proplint/pkg/util"
	"github.com/gnana997/proplint/pkg/workspace"
)

const version = "0.1.0-dev"

// errDiagnostics signals a clean run that found problems; the message is
// already on stdout so main exits 1 without printing anything extra.
var errDiagnostics = errors.New("diagnostics reported")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "lint":
		err = runLint(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "version":
		fmt.Printf("proplint %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`proplint - prop usage linter for JS/TS component code

Usage:
  proplint <command> [flags]

Commands:
  lint [root]     Lint a directory tree (default ".") and print diagnostics
  watch [root]    Lint, then re-lint files as they change
  serve           Run as an MCP server over stdio
  version         Print version
  help            Show this help

Lint flags:
  -format string      Output format: text or json (default "text")
  -workers int        Lint worker count (default: parser pool size)
  -skip-undeclared    Skip components with no prop declarations
  -ignore string      Comma-separated prop names to ignore
  -config string      Project config path (default ".proplint.yaml")
  -log-level string   Log level: debug, info, warn, error (default "warn")

Serve flags:
  -call-log string    JSONL tool-call log path (empty disables)
  -log-level string   Log level (default "info")`)
}

// newLogger writes to stderr so lint output on stdout stays parseable.
func newLogger(level string) *slog.Logger {
	return util.NewLogger(util.LoggerConfig{
		Level:  util.LogLevel(level),
		Format: util.FormatText,
		Output: os.Stderr,
	})
}

func runLint(args []string) error {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	format := fs.String("format", "text", "output format: text or json")
	workers := fs.Int("workers", 0, "lint worker count")
	skipUndeclared := fs.Bool("skip-undeclared", false, "skip components with no prop declarations")
	ignore := fs.String("ignore", "", "comma-separated prop names to ignore")
	configPath := fs.String("config", "", "project config path")
	logLevel := fs.String("log-level", "warn", "log level")
	fs.Parse(args)

	root := fs.Arg(0)
	if root == "" {
		root = "."
	}

	logger := newLogger(*logLevel)
	project, err := loadProjectConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := project.lintConfig()
	if *skipUndeclared {
		cfg.SkipUndeclared = true
	}
	if *ignore != "" {
		for _, name := range strings.Split(*ignore, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Ignore = append(cfg.Ignore, name)
			}
		}
	}

	runner, err := workspace.NewRunner(cfg, workspace.RunnerOptions{Workers: *workers}, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	report, err := runner.Run(context.Background(), root, project.scanOptions(), nil)
	if err != nil {
		return err
	}

	switch *format {
	case "json":
		if err := printJSONReport(report); err != nil {
			return err
		}
	default:
		printTextReport(report)
	}

	for _, fe := range report.Stats.Errors {
		fmt.Fprintf(os.Stderr, "%s: %v\n", fe.FilePath, fe.Err)
	}
	if report.Stats.Diagnostics > 0 {
		return errDiagnostics
	}
	return nil
}

func printTextReport(report *workspace.Report) {
	for _, res := range report.Results {
		for _, d := range res.Diagnostics {
			fmt.Printf("%s:%d:%d: %s\n", d.File, d.Line, d.Column, d.Message)
		}
	}
	fmt.Printf("%d files, %d components, %d problems\n",
		report.Stats.FilesLinted, report.Stats.Components, report.Stats.Diagnostics)
}

func printJSONReport(report *workspace.Report) error {
	diagnostics := []lint.Diagnostic{}
	for _, res := range report.Results {
		diagnostics = append(diagnostics, res.Diagnostics...)
	}
	out := struct {
		Diagnostics []lint.Diagnostic `json:"diagnostics"`
		FilesLinted int               `json:"filesLinted"`
		FilesFailed int               `json:"filesFailed"`
		Components  int               `json:"components"`
	}{diagnostics, report.Stats.FilesLinted, report.Stats.FilesFailed, report.Stats.Components}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	workers := fs.Int("workers", 0, "lint worker count")
	configPath := fs.String("config", "", "project config path")
	debounce := fs.Int("debounce", 200, "debounce window in milliseconds")
	logLevel := fs.String("log-level", "info", "log level")
	fs.Parse(args)

	root := fs.Arg(0)
	if root == "" {
		root = "."
	}

	logger := newLogger(*logLevel)
	project, err := loadProjectConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runner, err := workspace.NewRunner(project.lintConfig(), workspace.RunnerOptions{Workers: *workers}, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	report, err := runner.Run(context.Background(), root, project.scanOptions(), nil)
	if err != nil {
		return err
	}
	printTextReport(report)

	watchOpts := workspace.DefaultWatchOptions()
	watchOpts.DebounceMs = *debounce
	watchOpts.Exclude = project.scanOptions().Exclude

	onResult := func(res *lint.Result) {
		if len(res.Diagnostics) == 0 {
			fmt.Printf("%s: clean\n", res.File)
			return
		}
		for _, d := range res.Diagnostics {
			fmt.Printf("%s:%d:%d: %s\n", d.File, d.Line, d.Column, d.Message)
		}
	}
	onRemove := func(path string) {
		fmt.Printf("%s: removed\n", path)
	}

	watcher, err := workspace.NewWatcher(runner, watchOpts, onResult, onRemove, logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(root); err != nil {
		return err
	}
	defer watcher.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	fmt.Println("\nstopping")
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	workers := fs.Int("workers", 0, "lint worker count")
	configPath := fs.String("config", "", "project config path")
	callLog := fs.String("call-log", "", "JSONL tool-call log path")
	logLevel := fs.String("log-level", "info", "log level")
	fs.Parse(args)

	logger := newLogger(*logLevel)
	project, err := loadProjectConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runner, err := workspace.NewRunner(project.lintConfig(), workspace.RunnerOptions{Workers: *workers}, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	jsonl, err := mcplog.NewLogger(*callLog)
	if err != nil {
		return fmt.Errorf("open call log: %w", err)
	}
	if jsonl != nil {
		defer jsonl.Close()
	}

	logger.Info("starting MCP server", "version", version, "call_log", *callLog)
	return mcp.NewServer(runner, jsonl, logger).ServeStdio()
}
