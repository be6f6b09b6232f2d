package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"kintaicli/internal/attendance"
	apierrors "kintaicli/internal/errors"
	"kintaicli/internal/exporter"
	"kintaicli/internal/services"
	"kintaicli/internal/shared/testutil"
	"kintaicli/internal/validation"
	api "kintaicli/pkg/contracts/api/v1"
	"kintaicli/pkg/contracts/domain"
)

// MockAnalysisService is a mock implementation of AnalysisServiceInterface
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) AnalyzeUpload(ctx context.Context, name string, size int64, src io.Reader, opts services.AnalysisOptions) (domain.AnalysisResult, error) {
	args := m.Called(name, size, opts)
	return args.Get(0).(domain.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisService) Rules() services.RulesCatalog {
	args := m.Called()
	return args.Get(0).(services.RulesCatalog)
}

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Render(ctx context.Context, w io.Writer, format string, result domain.AnalysisResult) (exporter.Format, error) {
	args := m.Called(w, format, result)
	return args.Get(0).(exporter.Format), args.Error(1)
}

func (m *MockReportService) Save(ctx context.Context, format, baseName string, result domain.AnalysisResult) (string, error) {
	args := m.Called(format, baseName, result)
	return args.String(0), args.Error(1)
}

func (m *MockReportService) ListReports(ctx context.Context) ([]services.ReportFile, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.ReportFile), args.Error(1)
}

func (m *MockReportService) OpenReport(ctx context.Context, rel string) (io.ReadSeekCloser, services.ReportFile, error) {
	args := m.Called(rel)
	if args.Get(0) == nil {
		return nil, args.Get(1).(services.ReportFile), args.Error(2)
	}
	return args.Get(0).(io.ReadSeekCloser), args.Get(1).(services.ReportFile), args.Error(2)
}

type nopSeekCloser struct {
	io.ReadSeeker
}

func (nopSeekCloser) Close() error { return nil }

var workbookBytes = []byte("PK\x03\x04 timesheet")

func testResult() domain.AnalysisResult {
	jst := time.FixedZone("JST", 9*60*60)
	return domain.AnalysisResult{
		RunID: "5e5e5e5e-0000-4000-8000-000000000000",
		Summary: domain.AnalysisSummary{
			TotalEmployees: 1,
			TotalRecords:   20,
			AnalysisDateRange: domain.DateRange{
				Start: time.Date(2024, 5, 1, 0, 0, 0, 0, jst),
				End:   time.Date(2024, 5, 31, 0, 0, 0, 0, jst),
			},
		},
	}
}

// uploadRequest builds a multipart request; an empty filename omits the file part
func uploadRequest(target, filename string, content []byte, fields map[string]string) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if filename != "" {
		fw, _ := mw.CreateFormFile("file", filename)
		_, _ = fw.Write(content)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func includeToday(want bool) any {
	return mock.MatchedBy(func(o services.AnalysisOptions) bool {
		return o.IncludeToday != nil && *o.IncludeToday == want
	})
}

type AttendanceHandlerSuite struct {
	suite.Suite
	analysis *MockAnalysisService
	reports  *MockReportService
	logs     *testutil.BufferedSlogHandler
	router   chi.Router
}

func TestAttendanceHandlerSuite(t *testing.T) {
	suite.Run(t, new(AttendanceHandlerSuite))
}

func (s *AttendanceHandlerSuite) SetupTest() {
	s.analysis = new(MockAnalysisService)
	s.reports = new(MockReportService)

	logger, logs := testutil.NewTestLogger(s.T())
	s.logs = logs
	handler := NewAttendanceHandler(s.analysis, s.reports, 1024, logger, apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Mount("/api/v1/attendance", handler.Routes())
	s.router = r
}

func (s *AttendanceHandlerSuite) TearDownTest() {
	s.analysis.AssertExpectations(s.T())
	s.reports.AssertExpectations(s.T())
}

func (s *AttendanceHandlerSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *AttendanceHandlerSuite) problem(rec *httptest.ResponseRecorder) map[string]any {
	var p map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &p), rec.Body.String())
	return p
}

func (s *AttendanceHandlerSuite) TestGetRules() {
	s.analysis.On("Rules").Return(services.RulesCatalog{
		Violations:     []attendance.ViolationMeta{{Type: domain.ViolationBreak, Urgency: domain.UrgencyHigh}},
		OvertimeLevels: []attendance.LevelMeta{{Level: domain.OvertimeNormal}},
	})

	rec := s.serve(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/rules", nil))
	s.Equal(http.StatusOK, rec.Code)

	var got services.RulesCatalog
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Require().Len(got.Violations, 1)
	s.Equal(domain.ViolationBreak, got.Violations[0].Type)
	s.Len(got.OvertimeLevels, 1)
}

func (s *AttendanceHandlerSuite) TestAnalyze() {
	result := testResult()
	s.analysis.On("AnalyzeUpload", "may.xlsx", int64(len(workbookBytes)), includeToday(true)).Return(result, nil)

	rec := s.serve(uploadRequest("/api/v1/attendance/analyze", "may.xlsx", workbookBytes,
		map[string]string{"include_today": "true"}))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var got domain.AnalysisResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal(result.RunID, got.RunID)
	s.Equal(20, got.Summary.TotalRecords)
	s.Empty(rec.Header().Get(api.HeaderReportPath))
	s.True(s.logs.ContainsMessage("upload analyzed"))
}

func (s *AttendanceHandlerSuite) TestAnalyze_DefaultOptions() {
	s.analysis.On("AnalyzeUpload", "may.xlsx", int64(len(workbookBytes)), services.AnalysisOptions{}).Return(testResult(), nil)

	rec := s.serve(uploadRequest("/api/v1/attendance/analyze", "may.xlsx", workbookBytes, nil))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *AttendanceHandlerSuite) TestAnalyze_Save() {
	result := testResult()
	s.analysis.On("AnalyzeUpload", "may.xlsx", mock.Anything, mock.Anything).Return(result, nil)
	s.reports.On("Save", "xlsx", "", result).Return("/srv/reports/attendance_2024-05-01_2024-05-31_5e5e5e5e.xlsx", nil)

	rec := s.serve(uploadRequest("/api/v1/attendance/analyze", "may.xlsx", workbookBytes,
		map[string]string{"save": "xlsx"}))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("attendance_2024-05-01_2024-05-31_5e5e5e5e.xlsx", rec.Header().Get(api.HeaderReportPath))
}

func (s *AttendanceHandlerSuite) TestAnalyze_ServiceErrors() {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantType string
	}{
		{
			name:     "too large",
			err:      fmt.Errorf("%w: %w", services.ErrInvalidTimesheet, validation.ErrFileTooLarge),
			wantCode: http.StatusRequestEntityTooLarge,
			wantType: apierrors.TypePayloadTooLarge,
		},
		{
			name:     "lock file",
			err:      fmt.Errorf("%w: %w", services.ErrInvalidTimesheet, validation.ErrTemporaryFile),
			wantCode: http.StatusBadRequest,
			wantType: apierrors.TypeUnsupportedFile,
		},
		{
			name:     "empty",
			err:      fmt.Errorf("%w: %w", services.ErrInvalidTimesheet, validation.ErrEmptyFile),
			wantCode: http.StatusBadRequest,
			wantType: apierrors.TypeValidation,
		},
		{
			name:     "malformed",
			err:      apierrors.NewParsingError("row 4 has 12 columns", errors.New("insufficient columns")),
			wantCode: http.StatusUnprocessableEntity,
			wantType: apierrors.TypeTimesheetMalformed,
		},
		{
			name:     "cancelled",
			err:      context.Canceled,
			wantCode: http.StatusGatewayTimeout,
			wantType: apierrors.TypeTimeout,
		},
		{
			name:     "unexpected",
			err:      errors.New("disk on fire"),
			wantCode: http.StatusInternalServerError,
			wantType: apierrors.TypeInternal,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.analysis.On("AnalyzeUpload", "may.xlsx", mock.Anything, mock.Anything).
				Return(domain.AnalysisResult{}, tt.err).Once()

			rec := s.serve(uploadRequest("/api/v1/attendance/analyze", "may.xlsx", workbookBytes, nil))
			s.Equal(tt.wantCode, rec.Code)
			s.Equal(tt.wantType, s.problem(rec)["type"])
		})
	}
}

func (s *AttendanceHandlerSuite) TestAnalyze_BadRequests() {
	tests := []struct {
		name     string
		req      func() *http.Request
		wantCode int
	}{
		{
			name: "missing file",
			req: func() *http.Request {
				return uploadRequest("/api/v1/attendance/analyze", "", nil, map[string]string{"save": "csv"})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "bad include_today",
			req: func() *http.Request {
				return uploadRequest("/api/v1/attendance/analyze", "may.xlsx", workbookBytes, map[string]string{"include_today": "maybe"})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "bad save format",
			req: func() *http.Request {
				return uploadRequest("/api/v1/attendance/analyze", "may.xlsx", workbookBytes, map[string]string{"save": "pdf"})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "json body",
			req: func() *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/analyze", strings.NewReader("{}"))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			wantCode: http.StatusUnsupportedMediaType,
		},
		{
			name: "body over limit",
			req: func() *http.Request {
				return uploadRequest("/api/v1/attendance/analyze", "big.xlsx", make([]byte, 256<<10), nil)
			},
			wantCode: http.StatusRequestEntityTooLarge,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.serve(tt.req())
			s.Equal(tt.wantCode, rec.Code, rec.Body.String())
		})
	}
	s.analysis.AssertNotCalled(s.T(), "AnalyzeUpload", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AttendanceHandlerSuite) TestExport() {
	result := testResult()
	s.analysis.On("AnalyzeUpload", "may.xlsx", mock.Anything, mock.Anything).Return(result, nil)
	s.reports.On("Render", mock.Anything, "csv", result).
		Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(0).(io.Writer), "\ufeff\"サマリー\"\r\n")
		}).
		Return(exporter.FormatCSV, nil)

	rec := s.serve(uploadRequest("/api/v1/attendance/export.csv", "may.xlsx", workbookBytes, nil))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	s.Equal(`attachment; filename="attendance_2024-05-01_2024-05-31_5e5e5e5e.csv"`, rec.Header().Get("Content-Disposition"))
	s.True(strings.HasPrefix(rec.Body.String(), "\ufeff"))
}

func (s *AttendanceHandlerSuite) TestExport_RenderFailure() {
	s.analysis.On("AnalyzeUpload", "may.xlsx", mock.Anything, mock.Anything).Return(testResult(), nil)
	s.reports.On("Render", mock.Anything, "xlsx", mock.Anything).
		Return(exporter.FormatXLSX, apierrors.NewExportError("failed to write workbook", errors.New("zip")))

	rec := s.serve(uploadRequest("/api/v1/attendance/export.xlsx", "may.xlsx", workbookBytes, nil))
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal(apierrors.TypeExportFailed, s.problem(rec)["type"])
	s.Empty(rec.Header().Get("Content-Disposition"))
}

func (s *AttendanceHandlerSuite) TestListReports() {
	modified := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	s.reports.On("ListReports").Return([]services.ReportFile{
		{Name: "may.csv", Path: "may.csv", Format: "csv", Size: 120, Modified: modified},
	}, nil).Once()

	rec := s.serve(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/reports", nil))
	s.Require().Equal(http.StatusOK, rec.Code)

	var got api.ReportListResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal(1, got.Count)
	s.Equal("may.csv", got.Reports[0].Path)

	s.reports.On("ListReports").Return(nil, errors.New("permission denied")).Once()
	rec = s.serve(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/reports", nil))
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("FILESYSTEM_ERROR", s.problem(rec)["error_code"])
}

func (s *AttendanceHandlerSuite) TestDownloadReport() {
	modified := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	s.reports.On("OpenReport", "monthly/may.csv").Return(
		nopSeekCloser{strings.NewReader("a,b\r\n")},
		services.ReportFile{Name: "may.csv", Path: "monthly/may.csv", Format: "csv", Size: 5, Modified: modified},
		nil,
	)
	s.reports.On("OpenReport", "june.csv").Return(nil, services.ReportFile{},
		fmt.Errorf("%w: june.csv", services.ErrReportNotFound))

	rec := s.serve(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/reports/monthly/may.csv", nil))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("a,b\r\n", rec.Body.String())
	s.Equal("text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	s.Equal(`attachment; filename="may.csv"`, rec.Header().Get("Content-Disposition"))

	rec = s.serve(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/reports/june.csv", nil))
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.serve(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/reports/../secret.csv", nil))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.reports.AssertNotCalled(s.T(), "OpenReport", "../secret.csv")
}
