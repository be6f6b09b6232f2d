// Package services implements the application layer between the HTTP
// handlers or CLI and the attendance engine.
//
// # Services
//
//   - AnalysisService: validates timesheet workbooks, reads them through
//     dataprocessing and runs the attendance engine. Runs are traced and
//     recorded in the analysis metrics; batches run files in parallel with
//     a bounded errgroup.
//   - ReportService: renders results as CSV, JSON or XLSX and manages the
//     saved reports in the reports directory.
//   - HealthService: liveness, readiness and version information.
//
// # Errors
//
// Services return the sentinels in errors.go, wrapped around the cause:
//
//	result, err := svc.AnalyzeFile(ctx, path, services.AnalysisOptions{})
//	switch {
//	case errors.Is(err, services.ErrInvalidTimesheet):
//	    // rejected before reading, see validation.Err*
//	case apperrors.IsType(err, apperrors.ErrTypeParsing):
//	    // the workbook is not a timesheet export
//	}
//
// Every constructor takes a *slog.Logger; nil falls back to slog.Default.
package services
