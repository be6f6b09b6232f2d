package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, sampleResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetEmployees, SheetViolations}, f.GetSheetList())

	employees, err := f.GetRows(SheetEmployees)
	require.NoError(t, err)
	require.Len(t, employees, 3)
	assert.Equal(t, EmployeeColumns, employees[0])
	assert.Equal(t, "E002", employees[2][0])

	overtime, err := f.GetCellValue(SheetEmployees, "E2")
	require.NoError(t, err)
	assert.Equal(t, "2760", overtime)

	cellType, err := f.GetCellType(SheetEmployees, "E2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType, "counts are numeric")

	violations, err := f.GetRows(SheetViolations)
	require.NoError(t, err)
	require.Len(t, violations, 4)
	assert.Equal(t, "remarks_format_warning", violations[2][3])

	runID, err := f.GetCellValue(SheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "run-export", runID)
}

func TestExportXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, emptyResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetViolations)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
