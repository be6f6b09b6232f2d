package http

import (
	"context"
	"io"

	"kintaicli/internal/exporter"
	"kintaicli/internal/services"
	"kintaicli/pkg/contracts/domain"
)

// AnalysisServiceInterface defines the analysis operations the handlers use
type AnalysisServiceInterface interface {
	AnalyzeUpload(ctx context.Context, name string, size int64, src io.Reader, opts services.AnalysisOptions) (domain.AnalysisResult, error)
	Rules() services.RulesCatalog
}

// ReportServiceInterface defines report rendering and storage operations
type ReportServiceInterface interface {
	Render(ctx context.Context, w io.Writer, format string, result domain.AnalysisResult) (exporter.Format, error)
	Save(ctx context.Context, format, baseName string, result domain.AnalysisResult) (string, error)
	ListReports(ctx context.Context) ([]services.ReportFile, error)
	OpenReport(ctx context.Context, rel string) (io.ReadSeekCloser, services.ReportFile, error)
}
