package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"kintaicli/internal/config"
	apperrors "kintaicli/internal/errors"
	"kintaicli/internal/exporter"
	"kintaicli/internal/infrastructure"
	"kintaicli/pkg/contracts/domain"
)

// ReportFile describes a saved report in the reports directory
type ReportFile struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Format   string    `json:"format"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ReportService renders, saves and lists analysis reports
type ReportService struct {
	paths   *config.Paths
	writer  *exporter.ReportWriter
	metrics *infrastructure.AnalysisMetrics
	logger  *slog.Logger
}

// NewReportService creates a report service over the reports directory
func NewReportService(paths *config.Paths, metrics *infrastructure.AnalysisMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "report_service"))

	logger.Info("ReportService initialized", slog.String("reports_dir", paths.ReportsDir))
	return &ReportService{
		paths:   paths,
		writer:  exporter.NewReportWriter(paths, logger),
		metrics: metrics,
		logger:  logger,
	}
}

// Render writes result to w in the named format
func (s *ReportService) Render(ctx context.Context, w io.Writer, format string, result domain.AnalysisResult) (exporter.Format, error) {
	f, err := exporter.ParseFormat(format)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := exporter.Write(w, f, result); err != nil {
		return f, apperrors.NewExportError(fmt.Sprintf("failed to render %s report", f), err)
	}
	infrastructure.RecordExport(ctx, s.metrics, string(f))
	return f, nil
}

// Save writes result into the reports directory and returns its path. An
// empty baseName derives one from the analysed period.
func (s *ReportService) Save(ctx context.Context, format, baseName string, result domain.AnalysisResult) (string, error) {
	f, err := exporter.ParseFormat(format)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if baseName == "" {
		baseName = ReportBaseName(result)
	}

	path, err := s.writer.WriteReport(f, baseName, result)
	if err != nil {
		return "", apperrors.NewStorageError("failed to save report", err).WithContext("name", baseName)
	}
	infrastructure.RecordExport(ctx, s.metrics, string(f))
	return path, nil
}

// ReportBaseName names a report after its period and run, e.g.
// attendance_2024-05-01_2024-05-31_1a2b3c4d
func ReportBaseName(result domain.AnalysisResult) string {
	r := result.Summary.AnalysisDateRange
	name := "attendance"
	if !r.Start.IsZero() {
		name += "_" + r.Start.Format(time.DateOnly) + "_" + r.End.Format(time.DateOnly)
	}
	if id := result.RunID; id != "" {
		name += "_" + strings.SplitN(id, "-", 2)[0]
	}
	return name
}

// ListReports returns the saved reports, newest first
func (s *ReportService) ListReports(ctx context.Context) ([]ReportFile, error) {
	root := s.paths.ReportsDir
	s.logger.DebugContext(ctx, "ListReports: scanning directory", slog.String("reports_dir", root))

	reports := []ReportFile{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return fs.SkipAll
			}
			s.logger.Debug("error accessing path",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil
		}
		if d.IsDir() {
			return nil
		}

		format, ok := reportFormat(d.Name())
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		reports = append(reports, ReportFile{
			Name:     d.Name(),
			Path:     filepath.ToSlash(rel),
			Format:   string(format),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].Modified.Equal(reports[j].Modified) {
			return reports[i].Modified.After(reports[j].Modified)
		}
		return reports[i].Path < reports[j].Path
	})
	return reports, nil
}

// OpenReport opens a saved report by its path relative to the reports
// directory. Paths escaping the directory are rejected.
func (s *ReportService) OpenReport(ctx context.Context, rel string) (io.ReadSeekCloser, ReportFile, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if rel == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, ReportFile{}, fmt.Errorf("%w: report path %q", ErrInvalidInput, rel)
	}
	format, ok := reportFormat(clean)
	if !ok {
		return nil, ReportFile{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(clean))
	}

	full := filepath.Join(s.paths.ReportsDir, clean)
	file, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ReportFile{}, fmt.Errorf("%w: %s", ErrReportNotFound, rel)
	}
	if err != nil {
		return nil, ReportFile{}, fmt.Errorf("failed to open report: %w", err)
	}

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return nil, ReportFile{}, fmt.Errorf("%w: %s", ErrReportNotFound, rel)
	}

	s.logger.DebugContext(ctx, "report opened", slog.String("path", full))
	return file, ReportFile{
		Name:     info.Name(),
		Path:     filepath.ToSlash(clean),
		Format:   string(format),
		Size:     info.Size(),
		Modified: info.ModTime(),
	}, nil
}

func reportFormat(name string) (exporter.Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	f, err := exporter.ParseFormat(ext)
	return f, err == nil
}
