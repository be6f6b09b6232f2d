package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Address())
	assert.False(t, cfg.Analysis.IncludeToday)
	assert.Equal(t, "Asia/Tokyo", cfg.Analysis.Timezone)
	assert.Equal(t, int64(10<<20), cfg.Analysis.MaxUploadBytes)
	assert.Equal(t, 1, cfg.Analysis.HeaderRows)
	assert.Equal(t, AppName, cfg.Telemetry.ServiceName)
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		env      map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults only",
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  port: 9090
  read_timeout: 5s
analysis:
  include_today: true
  batch_concurrency: 2
  sheets: ["正社員", "派遣"]
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
				assert.True(t, cfg.Analysis.IncludeToday)
				assert.Equal(t, 2, cfg.Analysis.BatchConcurrency)
				assert.Equal(t, []string{"正社員", "派遣"}, cfg.Analysis.Sheets)
			},
		},
		{
			name: "environment overrides file",
			file: "server:\n  port: 9090\nlogging:\n  level: warn\n",
			env: map[string]string{
				"KINTAI_SERVER_PORT":              "7070",
				"KINTAI_ANALYSIS_INCLUDE_TODAY":   "true",
				"KINTAI_SECURITY_ALLOWED_ORIGINS": "http://a.example,http://b.example",
				"KINTAI_SERVER_REQUEST_TIMEOUT":   "30s",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.True(t, cfg.Analysis.IncludeToday)
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "failed to load config from file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadFrom(writeConfigFile(t, "server: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("KINTAI_SERVER_PORT", "eighty")
		_, err := LoadFrom("")
		assert.ErrorContains(t, err, "failed to load config from env")
	})

	t.Run("validation", func(t *testing.T) {
		t.Setenv("KINTAI_ANALYSIS_BATCH_CONCURRENCY", "0")
		_, err := LoadFrom("")
		require.Error(t, err)

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "BatchConcurrency", verrs[0].Field())
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "Port"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, "Level"},
		{"file output without path", func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" }, "FilePath"},
		{"console output without path", func(c *Config) { c.Logging.Output = "console"; c.Logging.FilePath = "" }, ""},
		{"upload limit above 100MB", func(c *Config) { c.Analysis.MaxUploadBytes = 200 << 20 }, "MaxUploadBytes"},
		{"unknown time zone", func(c *Config) { c.Analysis.Timezone = "Mars/Olympus" }, "invalid analysis timezone"},
		{"cors without origins", func(c *Config) { c.Security.AllowedOrigins = nil }, "AllowedOrigins"},
		{"no cors, no origins", func(c *Config) { c.Security.EnableCORS = false; c.Security.AllowedOrigins = nil }, ""},
		{"sample ratio", func(c *Config) { c.Telemetry.SampleRatio = 1.5 }, "SampleRatio"},
		{"blank sheet name", func(c *Config) { c.Analysis.Sheets = []string{""} }, "Sheets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestAnalysisConfig_Location(t *testing.T) {
	loc, err := AnalysisConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = AnalysisConfig{Timezone: "Nowhere/City"}.Location()
	assert.Error(t, err)
}
