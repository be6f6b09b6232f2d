package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kintaicli/internal/attendance"
	"kintaicli/internal/config"
	apperrors "kintaicli/internal/errors"
	"kintaicli/internal/infrastructure"
	"kintaicli/internal/shared/testutil"
	"kintaicli/internal/validation"
	"kintaicli/pkg/contracts/domain"
)

var jst = time.FixedZone("JST", 9*60*60)

// fixedNow is after every fixture date
func fixedNow() time.Time {
	return time.Date(2024, 5, 31, 18, 0, 0, 0, jst)
}

func newTestAnalysisService(t *testing.T, mutate ...func(*config.AnalysisConfig)) (*AnalysisService, *testutil.BufferedSlogHandler) {
	t.Helper()
	cfg := config.Default().Analysis
	for _, m := range mutate {
		m(&cfg)
	}
	logger, logs := testutil.NewTestLogger(t)
	metrics, err := infrastructure.NewAnalysisMetrics(nil)
	require.NoError(t, err)

	svc, err := NewAnalysisService(cfg, fixedNow, metrics, logger)
	require.NoError(t, err)
	return svc, logs
}

// writeTimesheet writes a one-sheet workbook into its own directory
func writeTimesheet(t *testing.T, rows ...[]string) string {
	t.Helper()
	return testutil.WriteWorkbook(t, t.TempDir(), testutil.WorkbookSheet{Name: "2024年5月", Rows: rows})
}

func TestAnalysisService_AnalyzeFile(t *testing.T) {
	svc, logs := newTestAnalysisService(t)
	path := writeTimesheet(t,
		testutil.NewRow().Cells(),
		testutil.NewRow().Date("2024-05-14").NoPunch().Work("0:00", "0:00").Cells(),
		testutil.NewRow().Employee("E002", "佐藤花子", "開発部").Date("2024-05-14").Cells(),
	)

	result, err := svc.AnalyzeFile(context.Background(), path, AnalysisOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Summary.TotalRecords)
	assert.Equal(t, 2, result.Summary.TotalEmployees)
	assert.Equal(t, []string{"2024年5月"}, result.Summary.SheetNames)
	require.Len(t, result.AllViolations, 1)
	assert.Equal(t, domain.ViolationMissingClock, result.AllViolations[0].Type)
	assert.True(t, fixedNow().Equal(result.GeneratedAt))
	assert.True(t, logs.ContainsMessage("attendance analysis completed"))
}

func TestAnalysisService_IncludeTodayOverride(t *testing.T) {
	svc, _ := newTestAnalysisService(t)
	path := writeTimesheet(t, testutil.NewRow().Date("2024-05-31").NoPunch().Work("0:00", "0:00").Cells())

	result, err := svc.AnalyzeFile(context.Background(), path, AnalysisOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.AllViolations, "today is not evaluated by default")

	include := true
	result, err = svc.AnalyzeFile(context.Background(), path, AnalysisOptions{IncludeToday: &include})
	require.NoError(t, err)
	require.Len(t, result.AllViolations, 1)
	assert.Equal(t, domain.ViolationMissingClock, result.AllViolations[0].Type)
}

func TestAnalysisService_AnalyzeFile_Errors(t *testing.T) {
	svc, _ := newTestAnalysisService(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "none.xlsx"), AnalysisOptions{})
		assert.ErrorIs(t, err, ErrInvalidTimesheet)
		assert.ErrorIs(t, err, validation.ErrFileNotFound)
	})

	t.Run("wrong extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "timesheet.csv")
		require.NoError(t, os.WriteFile(path, []byte("a,b"), 0o644))
		_, err := svc.AnalyzeFile(context.Background(), path, AnalysisOptions{})
		assert.ErrorIs(t, err, validation.ErrUnsupportedExtension)
	})

	t.Run("not a workbook", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))
		_, err := svc.AnalyzeFile(context.Background(), path, AnalysisOptions{})
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
	})
}

func TestAnalysisService_AnalyzeUpload(t *testing.T) {
	svc, _ := newTestAnalysisService(t)
	data, err := os.ReadFile(writeTimesheet(t, testutil.NewRow().Cells()))
	require.NoError(t, err)

	result, err := svc.AnalyzeUpload(context.Background(), "may.xlsx", int64(len(data)), bytes.NewReader(data), AnalysisOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.TotalRecords)

	_, err = svc.AnalyzeUpload(context.Background(), "~$may.xlsx", int64(len(data)), bytes.NewReader(data), AnalysisOptions{})
	assert.ErrorIs(t, err, validation.ErrTemporaryFile)

	_, err = svc.AnalyzeUpload(context.Background(), "may.xlsx", 0, bytes.NewReader(nil), AnalysisOptions{})
	assert.ErrorIs(t, err, validation.ErrEmptyFile)
}

func TestAnalysisService_AnalyzeUpload_SizeLimit(t *testing.T) {
	svc, _ := newTestAnalysisService(t, func(c *config.AnalysisConfig) { c.MaxUploadBytes = 1024 })

	_, err := svc.AnalyzeUpload(context.Background(), "big.xlsx", 4096, bytes.NewReader(make([]byte, 4096)), AnalysisOptions{})
	assert.ErrorIs(t, err, validation.ErrFileTooLarge)
	assert.ErrorIs(t, err, ErrInvalidTimesheet)
}

func TestAnalysisService_AnalyzeFiles(t *testing.T) {
	svc, logs := newTestAnalysisService(t, func(c *config.AnalysisConfig) { c.BatchConcurrency = 2 })

	paths := []string{
		writeTimesheet(t, testutil.NewRow().Cells()),
		filepath.Join(t.TempDir(), "missing.xlsx"),
		writeTimesheet(t, testutil.NewRow().Cells(), testutil.NewRow().Date("2024-05-14").Cells()),
	}

	results, err := svc.AnalyzeFiles(context.Background(), paths, AnalysisOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, paths[i], r.Path, "results keep input order")
	}
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].Result.Summary.TotalRecords)
	assert.ErrorIs(t, results[1].Err, validation.ErrFileNotFound)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 2, results[2].Result.Summary.TotalRecords)
	assert.NotEqual(t, results[0].Result.RunID, results[2].Result.RunID)

	assert.True(t, logs.ContainsMessage("batch analysis completed"))
	assert.True(t, logs.ContainsAttr("failed", int64(1)))
}

func TestAnalysisService_AnalyzeFiles_Empty(t *testing.T) {
	svc, _ := newTestAnalysisService(t)
	_, err := svc.AnalyzeFiles(context.Background(), nil, AnalysisOptions{})
	assert.ErrorIs(t, err, ErrNoInputs)
}

func TestAnalysisService_AnalyzeFiles_Cancelled(t *testing.T) {
	svc, _ := newTestAnalysisService(t)
	path := writeTimesheet(t, testutil.NewRow().Cells())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := svc.AnalyzeFiles(ctx, []string{path, path}, AnalysisOptions{})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, results)
}

func TestAnalysisService_Rules(t *testing.T) {
	svc, _ := newTestAnalysisService(t)
	rules := svc.Rules()

	assert.Len(t, rules.Violations, len(attendance.ViolationRules()))
	require.Len(t, rules.OvertimeLevels, 8)
	assert.Equal(t, domain.OvertimeNormal, rules.OvertimeLevels[0].Level)
}

func TestEngineConfig(t *testing.T) {
	cfg := config.Default().Analysis
	cfg.IncludeToday = true

	engine, err := EngineConfig(cfg)
	require.NoError(t, err)
	assert.True(t, engine.IncludeToday)
	assert.Equal(t, "Asia/Tokyo", engine.Location.String())

	cfg.Timezone = "Mars/Olympus"
	_, err = EngineConfig(cfg)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewAnalysisService(cfg, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
