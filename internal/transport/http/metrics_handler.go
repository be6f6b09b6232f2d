package http

import (
	"net/http"

	apierrors "kintaicli/internal/errors"
)

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct {
	prometheus   http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the exporter's handler, which is nil when
// metrics are disabled
func NewMetricsHandler(prometheus http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		prometheus:   prometheus,
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusServiceUnavailable,
			"SERVICE_UNAVAILABLE",
			"Metrics are disabled",
			"set telemetry.metrics_enabled to expose /metrics",
		))
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
