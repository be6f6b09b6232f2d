package attendance

import (
	"context"
	"log/slog"
	"time"

	"kintaicli/pkg/contracts/domain"
)

// Analyzer runs the full pipeline: decode, detect, aggregate
type Analyzer struct {
	cfg      Config
	decoder  *Decoder
	detector *Detector
	logger   *slog.Logger
}

// NewAnalyzer creates an analyzer. A nil logger falls back to slog.Default.
func NewAnalyzer(cfg Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Analyzer{
		cfg:      cfg,
		decoder:  NewDecoder(cfg, logger),
		detector: NewDetector(cfg),
		logger:   logger.With(slog.String("component", "attendance_analyzer")),
	}
}

// Config returns the effective configuration
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze runs the pipeline over rows that belong to no named sheet.
// Results are reproducible only when Config.Now and Config.NewRunID are
// both fixed; by default every run gets a fresh UUID and timestamp.
func (a *Analyzer) Analyze(ctx context.Context, rows []Row) (domain.AnalysisResult, error) {
	return a.AnalyzeSheets(ctx, Sheet{Rows: rows})
}

// AnalyzeSheets runs the pipeline over every sheet as one run. A row with
// too few columns fails the run with no partial result; an input with no
// decodable rows yields an empty result and no error.
func (a *Analyzer) AnalyzeSheets(ctx context.Context, sheets ...Sheet) (domain.AnalysisResult, error) {
	start := time.Now()
	a.logger.InfoContext(ctx, "starting attendance analysis", slog.Int("sheets", len(sheets)))

	records, stats, err := a.decoder.DecodeSheets(ctx, sheets...)
	if err != nil {
		a.logger.ErrorContext(ctx, "decode failed", slog.String("error", err.Error()))
		return domain.AnalysisResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.AnalysisResult{}, err
	}

	result := a.AnalyzeRecords(records)

	result.Summary.SheetNames = sheetNames(sheets)
	result.Summary.SkippedRows = stats.SkippedRows
	result.Summary.MalformedDurationCells = stats.MalformedDurationCells
	result.Summary.MalformedTimeCells = stats.MalformedTimeCells

	a.logger.InfoContext(ctx, "attendance analysis completed",
		slog.String("run_id", result.RunID),
		slog.Int("records", len(records)),
		slog.Int("employees", result.Summary.TotalEmployees),
		slog.Int("violations", len(result.AllViolations)),
		slog.Int("skipped_rows", stats.SkippedRows),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// AnalyzeRecords detects and aggregates already decoded records
func (a *Analyzer) AnalyzeRecords(records []domain.AttendanceRecord) domain.AnalysisResult {
	violations := a.detector.DetectAll(records)
	if violations == nil {
		violations = []domain.Violation{}
	}
	SortViolations(violations)

	employees := SummarizeEmployees(a.cfg, records, violations)

	summary := Summarize(employees, records)
	summary.SheetNames = []string{}

	return domain.AnalysisResult{
		RunID:               a.cfg.NewRunID(),
		GeneratedAt:         a.cfg.Now().In(a.cfg.Location),
		Summary:             summary,
		EmployeeSummaries:   employees,
		DepartmentSummaries: SummarizeDepartments(employees),
		AllViolations:       violations,
		OvertimeAlerts:      OvertimeAlerts(employees),
		PaceAlerts:          PaceAlerts(employees),
	}
}

func sheetNames(sheets []Sheet) []string {
	names := []string{}
	seen := make(map[string]bool, len(sheets))
	for _, s := range sheets {
		if s.Name == "" || seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		names = append(names, s.Name)
	}
	return names
}
