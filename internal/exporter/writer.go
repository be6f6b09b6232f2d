package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"kintaicli/internal/config"
	"kintaicli/pkg/contracts/domain"
)

// ReportWriter writes report files into the reports directory
type ReportWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewReportWriter creates a report writer. A nil logger falls back to
// slog.Default.
func NewReportWriter(paths *config.Paths, logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{
		paths:  paths,
		logger: logger.With(slog.String("component", "report_writer")),
	}
}

// WriteReport writes result as baseName plus the format's extension and
// returns the full path. Relative names resolve against the reports
// directory.
func (w *ReportWriter) WriteReport(format Format, baseName string, result domain.AnalysisResult) (string, error) {
	fullPath := w.resolvePath(baseName + format.Extension())

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	err = Write(file, format, result)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write %s report: %w", format, err)
	}

	w.logger.Info("report written",
		slog.String("format", string(format)),
		slog.String("path", fullPath),
		slog.Int("employees", len(result.EmployeeSummaries)),
		slog.Int("violations", len(result.AllViolations)))
	return fullPath, nil
}

// Write renders result to w in the given format. CSV carries a UTF-8 BOM
// so spreadsheet applications detect the encoding.
func Write(w io.Writer, format Format, result domain.AnalysisResult) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, result, true)
	case FormatJSON:
		return ExportJSON(w, result)
	case FormatXLSX:
		return ExportXLSX(w, result)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// WriteCSVFile writes the CSV report with a UTF-8 BOM
func (w *ReportWriter) WriteCSVFile(baseName string, result domain.AnalysisResult) (string, error) {
	return w.WriteReport(FormatCSV, baseName, result)
}

func (w *ReportWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) || w.paths == nil {
		return name
	}
	return w.paths.GetReportPath(name)
}
