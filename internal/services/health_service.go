package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"kintaicli/internal/config"
	"kintaicli/internal/infrastructure"
)

// Health statuses
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                      `json:"status"`
	Timestamp time.Time                   `json:"timestamp"`
	Version   string                      `json:"version"`
	System    *infrastructure.SystemStats `json:"system,omitempty"`
	Services  map[string]ServiceHealth    `json:"services,omitempty"`
}

// ServiceHealth represents individual dependency health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. buildTime may be empty.
func NewHealthService(version, buildTime string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports whether the reports and logs directories are
// usable
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]ServiceHealth),
	}

	if hs.paths != nil {
		status.Services["reports"] = checkWritableDir(hs.paths.ReportsDir)
		status.Services["logs"] = checkWritableDir(hs.paths.LogsDir)
	}

	for name, service := range status.Services {
		if service.Status != StatusReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "dependency not ready",
				slog.String("service", name),
				slog.String("message", service.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status with runtime statistics
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	stats := infrastructure.CollectSystemStats(hs.startTime)
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		System:    &stats,
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]any {
	result := map[string]any{
		"name":         config.AppName,
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

// checkWritableDir creates dir if needed and probes it with a temp file
func checkWritableDir(dir string) ServiceHealth {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("cannot create directory %s: %v", dir, err),
		}
	}

	probe, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("directory %s is not writable: %v", filepath.Base(dir), err),
		}
	}
	probe.Close()
	os.Remove(probe.Name())

	return ServiceHealth{Status: StatusReady}
}
