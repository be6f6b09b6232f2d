package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "kintaicli/internal/errors"
	"kintaicli/internal/services"
	"kintaicli/internal/shared/testutil"
)

// MockHealthService is a mock implementation of HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]any {
	return m.Called().Get(0).(map[string]any)
}

func TestHealthHandler(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		method     string
		setup      func(*MockHealthService)
		handle     func(*HealthHandler) http.HandlerFunc
		wantStatus int
		wantBody   string
	}{
		{
			name:       "health",
			method:     "HealthCheck",
			setup:      func(m *MockHealthService) { m.On("HealthCheck").Return(services.HealthStatus{Status: services.StatusOK, Timestamp: now}) },
			handle:     func(h *HealthHandler) http.HandlerFunc { return h.HealthCheck },
			wantStatus: http.StatusOK,
			wantBody:   services.StatusOK,
		},
		{
			name:   "ready",
			method: "ReadinessCheck",
			setup: func(m *MockHealthService) {
				m.On("ReadinessCheck").Return(services.HealthStatus{Status: services.StatusReady, Timestamp: now})
			},
			handle:     func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			wantStatus: http.StatusOK,
			wantBody:   services.StatusReady,
		},
		{
			name:   "not ready",
			method: "ReadinessCheck",
			setup: func(m *MockHealthService) {
				m.On("ReadinessCheck").Return(services.HealthStatus{
					Status:   services.StatusNotReady,
					Services: map[string]services.ServiceHealth{"reports": {Status: services.StatusNotReady, Message: "read-only"}},
				})
			},
			handle:     func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   services.StatusNotReady,
		},
		{
			name:       "live",
			method:     "LivenessCheck",
			setup:      func(m *MockHealthService) { m.On("LivenessCheck").Return(services.HealthStatus{Status: services.StatusAlive}) },
			handle:     func(h *HealthHandler) http.HandlerFunc { return h.LivenessCheck },
			wantStatus: http.StatusOK,
			wantBody:   services.StatusAlive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockHealthService)
			tt.setup(svc)
			logger, _ := testutil.NewTestLogger(t)
			h := NewHealthHandler(svc, logger)

			rec := httptest.NewRecorder()
			tt.handle(h)(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantBody, got.Status)
			svc.AssertCalled(t, tt.method)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	svc := new(MockHealthService)
	svc.On("Version").Return(map[string]any{"name": "kintaicli", "version": "1.2.3"})

	rec := httptest.NewRecorder()
	NewHealthHandler(svc, nil).Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"kintaicli","version":"1.2.3"}`, rec.Body.String())
}

func TestMetricsHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	t.Run("disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "SERVICE_UNAVAILABLE")
	})

	t.Run("enabled", func(t *testing.T) {
		scrape := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# HELP go_goroutines\n"))
		})
		rec := httptest.NewRecorder()
		NewMetricsHandler(scrape, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})
}
