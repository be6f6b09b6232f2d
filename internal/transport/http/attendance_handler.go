package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "kintaicli/internal/errors"
	"kintaicli/internal/exporter"
	customMiddleware "kintaicli/internal/middleware"
	"kintaicli/internal/services"
	"kintaicli/internal/validation"
	api "kintaicli/pkg/contracts/api/v1"
)

const (
	// multipartMemory is the part of an upload kept in memory before
	// spilling to a temp file
	multipartMemory = 8 << 20
	// multipartOverhead allows for form fields and part headers on top of
	// the workbook itself
	multipartOverhead = 64 << 10
)

// AttendanceHandler handles timesheet analysis and report requests
type AttendanceHandler struct {
	analysis     AnalysisServiceInterface
	reports      ReportServiceInterface
	validator    *customMiddleware.Validator
	maxUpload    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(
	analysis AnalysisServiceInterface,
	reports ReportServiceInterface,
	maxUpload int64,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *AttendanceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceHandler{
		analysis:     analysis,
		reports:      reports,
		validator:    customMiddleware.NewValidator(logger),
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("handler", "attendance")),
		errorHandler: errorHandler,
	}
}

// Routes returns the attendance routes
func (h *AttendanceHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/rules", h.GetRules)
	r.Get("/reports", h.ListReports)
	r.Get("/reports/*", h.DownloadReport)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))
		r.Post("/analyze", h.Analyze)
		r.Post("/export.csv", h.Export(exporter.FormatCSV))
		r.Post("/export.json", h.Export(exporter.FormatJSON))
		r.Post("/export.xlsx", h.Export(exporter.FormatXLSX))
	})

	return r
}

// GetRules handles GET /api/v1/attendance/rules
func (h *AttendanceHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.analysis.Rules())
}

// Analyze handles POST /api/v1/attendance/analyze. The multipart field
// "file" carries the workbook; "save" additionally stores a report.
func (h *AttendanceHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	file, header, params, err := h.parseUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Close()

	result, err := h.analysis.AnalyzeUpload(ctx, header.Filename, header.Size, file, analysisOptions(params))
	if err != nil {
		h.logger.WarnContext(ctx, "upload analysis failed",
			slog.String("file", header.Filename),
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	if params.Save != "" {
		path, err := h.reports.Save(ctx, params.Save, "", result)
		if err != nil {
			h.errorHandler.HandleError(w, r, mapServiceError(err))
			return
		}
		w.Header().Set(api.HeaderReportPath, filepath.ToSlash(filepath.Base(path)))
	}

	h.logger.InfoContext(ctx, "upload analyzed",
		slog.String("file", header.Filename),
		slog.String("run_id", result.RunID),
		slog.Int("violations", len(result.AllViolations)),
		slog.String("request_id", reqID))

	render.JSON(w, r, result)
}

// Export handles POST /api/v1/attendance/export.{csv,json,xlsx}: the
// uploaded workbook is analysed and the report returned as a download
func (h *AttendanceHandler) Export(format exporter.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		file, header, params, err := h.parseUpload(w, r)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		defer file.Close()

		result, err := h.analysis.AnalyzeUpload(ctx, header.Filename, header.Size, file, analysisOptions(params))
		if err != nil {
			h.errorHandler.HandleError(w, r, mapServiceError(err))
			return
		}

		// Rendered in full first so a failure can still become a problem response
		var buf bytes.Buffer
		f, err := h.reports.Render(ctx, &buf, string(format), result)
		if err != nil {
			h.errorHandler.HandleError(w, r, mapServiceError(err))
			return
		}

		name := services.ReportBaseName(result) + f.Extension()
		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			h.logger.WarnContext(ctx, "report download interrupted",
				slog.String("file", name),
				slog.String("error", err.Error()),
				slog.String("request_id", middleware.GetReqID(ctx)))
		}
	}
}

// ListReports handles GET /api/v1/attendance/reports
func (h *AttendanceHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.ListReports(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("list reports", err))
		return
	}
	resp := api.ReportListResponse{Reports: make([]api.ReportInfo, 0, len(reports)), Count: len(reports)}
	for _, rf := range reports {
		resp.Reports = append(resp.Reports, api.ReportInfo(rf))
	}
	render.JSON(w, r, resp)
}

// DownloadReport handles GET /api/v1/attendance/reports/{path}
func (h *AttendanceHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := api.ReportRequest{Path: chi.URLParam(r, "*")}
	if err := h.validator.ValidateStruct(params); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	file, info, err := h.reports.OpenReport(ctx, params.Path)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	defer file.Close()

	if f, err := exporter.ParseFormat(info.Format); err == nil {
		w.Header().Set("Content-Type", f.ContentType())
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name))
	http.ServeContent(w, r, info.Name, info.Modified, file)
}

// parseUpload reads the multipart form and the workbook part
func (h *AttendanceHandler) parseUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, api.AnalyzeRequest, error) {
	var params api.AnalyzeRequest

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, params, payloadTooLarge(h.maxUpload)
		}
		return nil, nil, params, apierrors.InvalidRequestWithError(err)
	}

	params.IncludeToday = r.FormValue(api.FieldIncludeToday)
	params.Save = r.FormValue(api.FieldSave)
	if err := h.validator.ValidateStruct(params); err != nil {
		return nil, nil, params, err
	}

	file, header, err := r.FormFile(api.FieldFile)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, params, apierrors.ErrMissingFile
	}
	if err != nil {
		return nil, nil, params, apierrors.InvalidRequestWithError(err)
	}
	return file, header, params, nil
}

func analysisOptions(params api.AnalyzeRequest) services.AnalysisOptions {
	var opts services.AnalysisOptions
	if include, err := strconv.ParseBool(params.IncludeToday); err == nil {
		opts.IncludeToday = &include
	}
	return opts
}

func payloadTooLarge(limit int64) *apierrors.APIError {
	return apierrors.NewWithDetails(
		http.StatusRequestEntityTooLarge,
		"PAYLOAD_TOO_LARGE",
		"Uploaded file exceeds the size limit",
		map[string]any{"max_bytes": limit},
	)
}

// mapServiceError converts service sentinels into API errors. Anything
// unrecognised passes through for the error handler's defaults.
func mapServiceError(err error) error {
	var appErr *apierrors.AppError
	switch {
	case errors.Is(err, validation.ErrFileTooLarge):
		return apierrors.NewWithDetails(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
			"Uploaded file exceeds the size limit", err.Error())
	case errors.Is(err, validation.ErrUnsupportedExtension), errors.Is(err, validation.ErrTemporaryFile):
		return apierrors.NewWithDetails(http.StatusBadRequest, "UNSUPPORTED_FILE",
			"Only .xlsx timesheets are supported", err.Error())
	case errors.Is(err, validation.ErrEmptyFile):
		return apierrors.ErrValidation("file", "file is empty")
	case errors.Is(err, services.ErrInvalidTimesheet):
		return apierrors.ErrValidation("file", err.Error())
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.ErrValidation("format", err.Error())
	case errors.Is(err, services.ErrReportNotFound):
		return apierrors.NotFoundError("report")
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.InvalidRequestWithError(err)
	case errors.As(err, &appErr) && appErr.Type == apierrors.ErrTypeParsing:
		return apierrors.MalformedTimesheetError(err)
	}
	return err
}
