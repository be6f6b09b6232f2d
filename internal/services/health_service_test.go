package services

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kintaicli/internal/config"
	"kintaicli/internal/shared/testutil"
)

func newTestHealthService(t *testing.T, paths *config.Paths) *HealthService {
	logger, _ := testutil.NewTestLogger(t)
	return NewHealthService("1.2.3", "2024-05-01T00:00:00Z", paths, logger)
}

func TestHealthService_HealthCheck(t *testing.T) {
	hs := newTestHealthService(t, nil)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, StatusOK, status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	dir := t.TempDir()
	paths := &config.Paths{
		ReportsDir: filepath.Join(dir, "reports"),
		LogsDir:    filepath.Join(dir, "logs"),
	}
	hs := newTestHealthService(t, paths)

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, StatusReady, status.Status)
	require.Contains(t, status.Services, "reports")
	assert.Equal(t, StatusReady, status.Services["reports"].Status)
	assert.DirExists(t, paths.ReportsDir)

	entries, err := os.ReadDir(paths.ReportsDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe files are removed")
}

func TestHealthService_ReadinessCheck_NotReady(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	hs := newTestHealthService(t, &config.Paths{
		ReportsDir: filepath.Join(blocker, "reports"),
		LogsDir:    filepath.Join(dir, "logs"),
	})

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, StatusNotReady, status.Status)
	assert.Equal(t, StatusNotReady, status.Services["reports"].Status)
	assert.NotEmpty(t, status.Services["reports"].Message)
	assert.Equal(t, StatusReady, status.Services["logs"].Status)
}

func TestHealthService_LivenessCheck(t *testing.T) {
	hs := newTestHealthService(t, nil)

	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, StatusAlive, status.Status)
	require.NotNil(t, status.System)
	assert.Equal(t, runtime.Version(), status.System.GoVersion)
	assert.Positive(t, status.System.Goroutines)
}

func TestHealthService_Version(t *testing.T) {
	hs := newTestHealthService(t, nil)

	info := hs.Version()
	assert.Equal(t, config.AppName, info["name"])
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "2024-05-01T00:00:00Z", info["build_time"])
	assert.Equal(t, runtime.GOOS, info["os"])

	assert.NotContains(t, NewHealthService("dev", "", nil, nil).Version(), "build_time")
}
