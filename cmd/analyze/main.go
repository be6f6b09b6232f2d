package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"kintaicli/internal/config"
	"kintaicli/internal/exporter"
	"kintaicli/internal/infrastructure"
	"kintaicli/internal/services"
)

const (
	exitOK = iota
	exitFailure
	exitUsage
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run analyzes every input workbook and writes one report per file. It
// returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "comma-separated timesheet workbooks or directories (.xlsx, .xlsm)")
	out := fs.String("out", "", "output directory for reports (defaults to data/reports relative to executable)")
	format := fs.String("format", string(exporter.FormatCSV), "report format: csv, json or xlsx")
	includeToday := fs.Bool("include-today", false, "evaluate today's records as well")
	configPath := fs.String("config", "", "optional YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *in == "" {
		fmt.Fprintln(stderr, "analyze: -in is required")
		fs.Usage()
		return exitUsage
	}
	if _, err := exporter.ParseFormat(*format); err != nil {
		fmt.Fprintf(stderr, "analyze: %v\n", err)
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "analyze: %v\n", err)
		return exitFailure
	}
	logger := infrastructure.WithComponent(infrastructure.NewLogger(cfg.Logging, stderr), "analyze")
	// One trace ID for every log line of this invocation
	ctx = infrastructure.EnsureTraceID(ctx)

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		logger.Error("Failed to resolve paths", slog.String("error", err.Error()))
		return exitFailure
	}
	if *out != "" {
		paths.ReportsDir = *out
	}

	analysis, err := services.NewAnalysisService(cfg.Analysis, nil, nil, logger)
	if err != nil {
		logger.Error("Failed to initialize analysis service", slog.String("error", err.Error()))
		return exitFailure
	}
	if err := analysis.Validator().ValidateOutputDirectory(paths.ReportsDir); err != nil {
		logger.Error("Invalid output directory", slog.String("error", err.Error()))
		return exitFailure
	}

	inputs, err := analysis.Validator().ExpandInputs(*in)
	if err != nil {
		logger.Error("Failed to resolve inputs", slog.String("error", err.Error()))
		return exitFailure
	}

	// An explicit flag, true or false, overrides the configured default
	opts := services.AnalysisOptions{}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "include-today" {
			opts.IncludeToday = includeToday
		}
	})
	results, err := analysis.AnalyzeFiles(ctx, inputs, opts)
	if err != nil {
		logger.Error("Analysis aborted", slog.String("error", err.Error()))
		return exitFailure
	}

	reports := services.NewReportService(paths, nil, logger)
	code := exitOK
	for _, r := range results {
		if r.Err != nil {
			infrastructure.WithError(logger, r.Err).WarnContext(ctx, "Timesheet skipped", slog.String("path", r.Path))
			fmt.Fprintf(stdout, "FAIL  %s: %v\n", r.Path, r.Err)
			code = exitFailure
			continue
		}
		saved, err := reports.Save(ctx, *format, "", r.Result)
		if err != nil {
			fmt.Fprintf(stdout, "FAIL  %s: %v\n", r.Path, err)
			code = exitFailure
			continue
		}
		s := r.Result.Summary
		fmt.Fprintf(stdout, "OK    %s: %d employees, %d records, %d violations -> %s\n",
			r.Path, s.TotalEmployees, s.TotalRecords, len(r.Result.AllViolations), saved)
	}
	return code
}

// loadConfig reads defaults, the optional file and KINTAI_* variables
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}
