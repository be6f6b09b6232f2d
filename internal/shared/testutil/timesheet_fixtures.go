package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Timesheet column positions, mirrored here so fixtures do not depend on
// the packages that consume them
const (
	colEmployeeID   = 0
	colEmployeeName = 1
	colDepartment   = 2
	colPosition     = 3
	colDate         = 4
	colDayOfWeek    = 5
	colCalendarType = 6
	colApplication  = 7
	colClockIn      = 8
	colClockOut     = 10
	colStart        = 11
	colEnd          = 12
	colBreak        = 36
	colActual       = 39
	colSchedPlus    = 40
	colScheduled    = 42
	colStatutory    = 44
	colCumulative   = 58
	colRemarks      = 60

	// TimesheetColumns is the width of a full timesheet row
	TimesheetColumns = 61
)

// RowBuilder assembles one timesheet row for tests. The zero row is an
// on-time weekday with a regular 09:00-17:30 shift.
type RowBuilder struct {
	cells []string
}

// NewRow returns a builder pre-filled with a compliant weekday
func NewRow() *RowBuilder {
	b := &RowBuilder{cells: make([]string, TimesheetColumns)}
	return b.
		Employee("E001", "山田太郎", "営業部").
		Date("2024-05-13").
		Set(colPosition, "主任").
		Set(colDayOfWeek, "月").
		Calendar("平日").
		Punch("09:00", "17:30").
		Set(colBreak, "1:00").
		Set(colActual, "7:30").
		Set(colSchedPlus, "7:30").
		Set(colScheduled, "7:30")
}

// Set writes an arbitrary cell
func (b *RowBuilder) Set(col int, value string) *RowBuilder {
	b.cells[col] = value
	return b
}

// Employee sets identity columns
func (b *RowBuilder) Employee(id, name, department string) *RowBuilder {
	return b.Set(colEmployeeID, id).Set(colEmployeeName, name).Set(colDepartment, department)
}

// Date sets the record date
func (b *RowBuilder) Date(date string) *RowBuilder {
	return b.Set(colDate, date)
}

// DayOfWeek sets the weekday glyph
func (b *RowBuilder) DayOfWeek(glyph string) *RowBuilder {
	return b.Set(colDayOfWeek, glyph)
}

// Calendar sets the calendar type cell
func (b *RowBuilder) Calendar(calendarType string) *RowBuilder {
	return b.Set(colCalendarType, calendarType)
}

// Applications sets the raw application content
func (b *RowBuilder) Applications(content string) *RowBuilder {
	return b.Set(colApplication, content)
}

// Punch sets clock-in/out and the computed start/end to the same times
func (b *RowBuilder) Punch(in, out string) *RowBuilder {
	return b.Set(colClockIn, in).Set(colClockOut, out).Set(colStart, in).Set(colEnd, out)
}

// NoPunch clears every clock column
func (b *RowBuilder) NoPunch() *RowBuilder {
	return b.Punch("", "")
}

// Work sets actual work and break durations ("H:MM")
func (b *RowBuilder) Work(actual, breakTime string) *RowBuilder {
	return b.Set(colActual, actual).Set(colBreak, breakTime)
}

// Overtime sets the statutory overtime duration
func (b *RowBuilder) Overtime(statutory string) *RowBuilder {
	return b.Set(colStatutory, statutory)
}

// Cumulative sets the payroll-reported cumulative overtime
func (b *RowBuilder) Cumulative(value string) *RowBuilder {
	return b.Set(colCumulative, value)
}

// Remarks sets the remarks cell
func (b *RowBuilder) Remarks(remarks string) *RowBuilder {
	return b.Set(colRemarks, remarks)
}

// Truncate drops trailing cells, producing a short row
func (b *RowBuilder) Truncate(width int) *RowBuilder {
	b.cells = b.cells[:width]
	return b
}

// Cells returns a copy of the row
func (b *RowBuilder) Cells() []string {
	out := make([]string, len(b.cells))
	copy(out, b.cells)
	return out
}

// HeaderRow returns a header line matching the timesheet layout
func HeaderRow() []string {
	header := make([]string, TimesheetColumns)
	for i := range header {
		header[i] = fmt.Sprintf("項目%d", i)
	}
	header[colEmployeeID] = "社員番号"
	header[colEmployeeName] = "氏名"
	header[colDepartment] = "所属"
	header[colDate] = "日付"
	header[colRemarks] = "備考"
	return header
}

// WorkbookSheet is one worksheet written by WriteWorkbook
type WorkbookSheet struct {
	Name string
	Rows [][]string
}

// WriteWorkbook writes an .xlsx file under dir with a header row followed by
// rows on each sheet, and returns its path
func WriteWorkbook(t testing.TB, dir string, sheets ...WorkbookSheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("create sheet %s: %v", sheet.Name, err)
		}

		rows := append([][]string{HeaderRow()}, sheet.Rows...)
		for r, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				t.Fatalf("write row %d: %v", r+1, err)
			}
		}
	}

	path := filepath.Join(dir, "timesheet.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
