package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"kintaicli/internal/attendance"
	"kintaicli/internal/config"
	"kintaicli/internal/dataprocessing"
	"kintaicli/internal/infrastructure"
	"kintaicli/internal/validation"
	"kintaicli/pkg/contracts/domain"
)

// Analysis sources, used as the metric "source" attribute
const (
	SourceFile   = "file"
	SourceUpload = "upload"
)

// AnalysisOptions overrides the configured engine settings for one run
type AnalysisOptions struct {
	// IncludeToday evaluates the current date when set
	IncludeToday *bool
}

// FileResult is the outcome of one file in a batch
type FileResult struct {
	Path   string
	Result domain.AnalysisResult
	Err    error
}

// RulesCatalog is the static rule metadata the engine evaluates against
type RulesCatalog struct {
	Violations     []attendance.ViolationMeta `json:"violations"`
	OvertimeLevels []attendance.LevelMeta     `json:"overtime_levels"`
}

// AnalysisService runs timesheet workbooks through the attendance engine
type AnalysisService struct {
	engine      attendance.Config
	reader      *dataprocessing.WorkbookReader
	validator   *validation.FileValidator
	concurrency int
	metrics     *infrastructure.AnalysisMetrics
	logger      *slog.Logger
}

// NewAnalysisService creates the service from the analysis configuration.
// now overrides the engine clock when non-nil.
func NewAnalysisService(cfg config.AnalysisConfig, now func() time.Time, metrics *infrastructure.AnalysisMetrics, logger *slog.Logger) (*AnalysisService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	engine, err := EngineConfig(cfg)
	if err != nil {
		return nil, err
	}
	if now != nil {
		engine.Now = now
	}

	concurrency := cfg.BatchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	logger = logger.With(slog.String("component", "analysis_service"))
	logger.Info("AnalysisService initialized",
		slog.String("timezone", engine.Location.String()),
		slog.Bool("include_today", engine.IncludeToday),
		slog.Int("batch_concurrency", concurrency))

	return &AnalysisService{
		engine: engine,
		reader: dataprocessing.NewWorkbookReader(dataprocessing.ReaderOptions{
			HeaderRows: cfg.HeaderRows,
			Sheets:     cfg.Sheets,
		}, logger),
		validator:   validation.NewFileValidator(cfg.MaxUploadBytes, logger),
		concurrency: concurrency,
		metrics:     metrics,
		logger:      logger,
	}, nil
}

// EngineConfig maps the application configuration onto the engine's
func EngineConfig(cfg config.AnalysisConfig) (attendance.Config, error) {
	engine := attendance.DefaultConfig()
	engine.IncludeToday = cfg.IncludeToday
	if cfg.Timezone != "" {
		loc, err := cfg.Location()
		if err != nil {
			return attendance.Config{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		engine.Location = loc
	}
	return engine, nil
}

// Validator exposes the file validator used for inputs
func (s *AnalysisService) Validator() *validation.FileValidator {
	return s.validator
}

// Rules returns the violation and overtime tier metadata
func (s *AnalysisService) Rules() RulesCatalog {
	return RulesCatalog{
		Violations:     attendance.ViolationRules(),
		OvertimeLevels: attendance.OvertimeLevels(),
	}
}

// AnalyzeFile validates and analyzes the workbook at path
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string, opts AnalysisOptions) (domain.AnalysisResult, error) {
	ctx, span := tracer().Start(ctx, "attendance.analyze_file",
		trace.WithAttributes(attribute.String("file.name", filepath.Base(path))))
	defer span.End()

	return s.run(ctx, span, SourceFile, opts, func(ctx context.Context) ([]attendance.Sheet, error) {
		if err := s.validator.ValidateTimesheet(path); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTimesheet, err)
		}
		return s.reader.ParseFile(ctx, path)
	})
}

// AnalyzeUpload validates and analyzes an uploaded workbook. size is the
// declared upload size.
func (s *AnalysisService) AnalyzeUpload(ctx context.Context, name string, size int64, src io.Reader, opts AnalysisOptions) (domain.AnalysisResult, error) {
	ctx, span := tracer().Start(ctx, "attendance.analyze_upload",
		trace.WithAttributes(attribute.String("file.name", name), attribute.Int64("file.size", size)))
	defer span.End()

	return s.run(ctx, span, SourceUpload, opts, func(ctx context.Context) ([]attendance.Sheet, error) {
		if err := s.validator.ValidateUpload(name, size); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTimesheet, err)
		}
		return s.reader.Parse(ctx, io.LimitReader(src, s.validator.MaxBytes()+1))
	})
}

// AnalyzeFiles analyzes independent workbooks in parallel, bounded by the
// configured concurrency. Per-file failures are reported in the results,
// which keep the input order; only cancellation fails the batch.
func (s *AnalysisService) AnalyzeFiles(ctx context.Context, paths []string, opts AnalysisOptions) ([]FileResult, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}

	ctx, span := tracer().Start(ctx, "attendance.analyze_batch",
		trace.WithAttributes(attribute.Int("batch.files", len(paths))))
	defer span.End()

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := s.AnalyzeFile(gctx, path, opts)
			results[i] = FileResult{Path: path, Result: result, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("batch.failed", failed))
	s.logger.InfoContext(ctx, "batch analysis completed",
		slog.Int("files", len(paths)),
		slog.Int("failed", failed))
	return results, nil
}

// run reads sheets with read, evaluates them and records the outcome
func (s *AnalysisService) run(ctx context.Context, span trace.Span, source string, opts AnalysisOptions, read func(context.Context) ([]attendance.Sheet, error)) (domain.AnalysisResult, error) {
	start := time.Now()

	result, err := s.evaluate(ctx, opts, read)
	infrastructure.RecordAnalysis(ctx, s.metrics, source, result, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "analysis failed",
			slog.String("source", source),
			slog.String("error", err.Error()))
		return domain.AnalysisResult{}, err
	}

	span.SetAttributes(
		attribute.String("analysis.run_id", result.RunID),
		attribute.Int("analysis.records", result.Summary.TotalRecords),
		attribute.Int("analysis.employees", result.Summary.TotalEmployees),
		attribute.Int("analysis.violations", len(result.AllViolations)),
		attribute.Int("analysis.skipped_rows", result.Summary.SkippedRows),
	)
	return result, nil
}

func (s *AnalysisService) evaluate(ctx context.Context, opts AnalysisOptions, read func(context.Context) ([]attendance.Sheet, error)) (domain.AnalysisResult, error) {
	readCtx, readSpan := tracer().Start(ctx, "attendance.read")
	sheets, err := read(readCtx)
	readSpan.End()
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	cfg := s.engine
	if opts.IncludeToday != nil {
		cfg.IncludeToday = *opts.IncludeToday
	}

	evalCtx, evalSpan := tracer().Start(ctx, "attendance.evaluate",
		trace.WithAttributes(attribute.Int("sheets", len(sheets))))
	defer evalSpan.End()

	return attendance.NewAnalyzer(cfg, s.logger).AnalyzeSheets(evalCtx, sheets...)
}

func tracer() trace.Tracer {
	return otel.Tracer(infrastructure.MeterName)
}
