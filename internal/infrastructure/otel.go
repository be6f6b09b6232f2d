package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"kintaicli/internal/config"
	apperrors "kintaicli/internal/errors"
	"kintaicli/pkg/contracts/domain"
)

// MeterName is the instrumentation scope of every tracer and meter
const MeterName = "kintaicli"

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	// PrometheusHTTP serves the scrape endpoint; nil when metrics are off
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel sets up tracing and metrics from the telemetry config.
// Disabled signals get no-op implementations so callers never nil-check.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	return initializeOTel(cfg, os.Stdout, logger)
}

func initializeOTel(cfg config.TelemetryConfig, traceOut io.Writer, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx := context.Background()

	logger.InfoContext(ctx, "initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.TracingEnabled),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled))

	res := createResource(cfg)
	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}

	if cfg.TracingEnabled {
		if err := initializeTracing(cfg, res, traceOut, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.MetricsEnabled {
		if err := initializeMetrics(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

func createResource(cfg config.TelemetryConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

// initializeTracing always installs an SDK provider so spans carry valid
// trace IDs for log correlation; spans are exported only with TraceStdout
func initializeTracing(cfg config.TelemetryConfig, res *resource.Resource, out io.Writer, providers *OTelProviders) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}

	if cfg.TraceStdout {
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(out),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.Debug("tracing initialized",
		slog.Bool("stdout_exporter", cfg.TraceStdout),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

// initializeMetrics wires the OTel Prometheus exporter to a private
// registry, which also carries the Go runtime and process collectors
func initializeMetrics(cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return fmt.Errorf("failed to register go collector: %w", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return fmt.Errorf("failed to register process collector: %w", err)
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	otel.SetMeterProvider(mp)

	providers.Logger.Debug("metrics initialized", slog.String("exporter", "prometheus"))
	return nil
}

// Shutdown flushes and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("opentelemetry shutdown: %w", err)
	}
	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// AnalysisMetrics holds the business instruments of the analysis service
// and the HTTP layer
type AnalysisMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	AnalysisRunsTotal   metric.Int64Counter
	AnalysisDuration    metric.Float64Histogram
	AnalysisRecords     metric.Int64Counter
	AnalysisSkippedRows metric.Int64Counter
	AnalysisViolations  metric.Int64Counter
	AnalysisErrors      metric.Int64Counter
	OvertimeAlerts      metric.Int64Counter
	PaceAlerts          metric.Int64Counter
	ReportsExported     metric.Int64Counter
}

// NewAnalysisMetrics creates the instruments on meter. A nil meter yields
// no-op instruments.
func NewAnalysisMetrics(meter metric.Meter) (*AnalysisMetrics, error) {
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(MeterName)
	}

	var errs []error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	seconds := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		errs = append(errs, err)
		return h
	}

	active, err := meter.Int64UpDownCounter("http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"))
	errs = append(errs, err)

	m := &AnalysisMetrics{
		HTTPRequestsTotal:   counter("http_requests_total", "Total number of HTTP requests"),
		HTTPRequestDuration: seconds("http_request_duration_seconds", "HTTP request duration in seconds"),
		HTTPActiveRequests:  active,

		AnalysisRunsTotal:   counter("attendance_analysis_runs_total", "Analysis runs by source and status"),
		AnalysisDuration:    seconds("attendance_analysis_duration_seconds", "Analysis run duration in seconds"),
		AnalysisRecords:     counter("attendance_records_total", "Attendance records decoded"),
		AnalysisSkippedRows: counter("attendance_skipped_rows_total", "Rows skipped because they could not be decoded"),
		AnalysisViolations:  counter("attendance_violations_total", "Violations detected by type"),
		AnalysisErrors:      counter("attendance_analysis_errors_total", "Failed analysis runs by error type"),
		OvertimeAlerts:      counter("attendance_overtime_alerts_total", "Overtime alerts by tier"),
		PaceAlerts:          counter("attendance_pace_alerts_total", "Month-end pace alerts"),
		ReportsExported:     counter("attendance_reports_exported_total", "Reports exported by format"),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("create analysis metrics: %w", err)
	}
	return m, nil
}

// RecordAnalysis records one finished run. Result counters are only
// touched when the run succeeded.
func RecordAnalysis(ctx context.Context, m *AnalysisMetrics, source string, result domain.AnalysisResult, d time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	sourceAttr := attribute.String("source", source)
	m.AnalysisRunsTotal.Add(ctx, 1, metric.WithAttributes(sourceAttr, attribute.String("status", status)))
	m.AnalysisDuration.Record(ctx, d.Seconds(), metric.WithAttributes(sourceAttr, attribute.String("status", status)))

	if err != nil {
		m.AnalysisErrors.Add(ctx, 1, metric.WithAttributes(sourceAttr, attribute.String("error.type", errorKind(err))))
		return
	}

	m.AnalysisRecords.Add(ctx, int64(result.Summary.TotalRecords), metric.WithAttributes(sourceAttr))
	m.AnalysisSkippedRows.Add(ctx, int64(result.Summary.SkippedRows), metric.WithAttributes(sourceAttr))

	byType := make(map[domain.ViolationType]int64)
	for _, v := range result.AllViolations {
		byType[v.Type]++
	}
	for t, n := range byType {
		m.AnalysisViolations.Add(ctx, n, metric.WithAttributes(attribute.String("violation.type", string(t))))
	}

	byLevel := make(map[domain.OvertimeAlertLevel]int64)
	for _, a := range result.OvertimeAlerts {
		byLevel[a.Level]++
	}
	for level, n := range byLevel {
		m.OvertimeAlerts.Add(ctx, n, metric.WithAttributes(attribute.String("overtime.level", string(level))))
	}
	m.PaceAlerts.Add(ctx, int64(len(result.PaceAlerts)))
}

// RecordExport counts an exported report
func RecordExport(ctx context.Context, m *AnalysisMetrics, format string) {
	if m == nil {
		return
	}
	m.ReportsExported.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// RecordHTTPRequest records a finished HTTP request
func RecordHTTPRequest(ctx context.Context, m *AnalysisMetrics, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), attrs)
}

// errorKind names an error for metric attributes without leaking messages
func errorKind(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return string(appErr.Type)
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	}
	return "internal"
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts the active span's trace ID
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(toAttributes(attributes)...))
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(toAttributes(attributes)...)
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

func toAttributes(values map[string]any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
	return attrs
}
