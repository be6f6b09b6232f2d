package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"kintaicli/internal/attendance"
	apperrors "kintaicli/internal/errors"
)

// rawColumns are read without number formatting
var rawColumns = []int{
	attendance.ColDate,
	attendance.ColClockIn,
	attendance.ColClockOut,
	attendance.ColComputedStart,
	attendance.ColComputedEnd,
}

// ReaderOptions controls which parts of a workbook become rows
type ReaderOptions struct {
	// HeaderRows is the number of leading rows dropped from every sheet
	HeaderRows int `json:"header_rows" yaml:"header_rows"`

	// Sheets restricts reading to the named worksheets; empty reads all
	Sheets []string `json:"sheets,omitempty" yaml:"sheets,omitempty"`
}

// DefaultReaderOptions reads every worksheet below a single header row
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{HeaderRows: 1}
}

// WorkbookReader converts timesheet workbooks into attendance sheets
type WorkbookReader struct {
	opts   ReaderOptions
	logger *slog.Logger
}

// NewWorkbookReader creates a reader. A nil logger falls back to slog.Default.
func NewWorkbookReader(opts ReaderOptions, logger *slog.Logger) *WorkbookReader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.HeaderRows < 0 {
		opts.HeaderRows = 0
	}
	return &WorkbookReader{
		opts:   opts,
		logger: logger.With(slog.String("component", "workbook_reader")),
	}
}

// ParseFile opens the workbook at path and reads its sheets
func (r *WorkbookReader) ParseFile(ctx context.Context, path string) ([]attendance.Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets, err := r.readWorkbook(ctx, f)
	if err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "workbook read",
		slog.String("path", path),
		slog.Int("sheets", len(sheets)),
		slog.Int("rows", countRows(sheets)))
	return sheets, nil
}

// Parse reads a workbook from src, e.g. an uploaded multipart file
func (r *WorkbookReader) Parse(ctx context.Context, src io.Reader) ([]attendance.Sheet, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read workbook", err)
	}
	defer f.Close()

	sheets, err := r.readWorkbook(ctx, f)
	if err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "workbook read",
		slog.Int("sheets", len(sheets)),
		slog.Int("rows", countRows(sheets)))
	return sheets, nil
}

func (r *WorkbookReader) readWorkbook(ctx context.Context, f *excelize.File) ([]attendance.Sheet, error) {
	names, err := r.sheetNames(f)
	if err != nil {
		return nil, err
	}

	var sheets []attendance.Sheet
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sheet, ok, err := r.readSheet(f, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			r.logger.DebugContext(ctx, "empty worksheet skipped", slog.String("sheet", name))
			continue
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func (r *WorkbookReader) sheetNames(f *excelize.File) ([]string, error) {
	all := f.GetSheetList()
	if len(r.opts.Sheets) == 0 {
		return all, nil
	}

	present := make(map[string]bool, len(all))
	for _, name := range all {
		present[name] = true
	}
	for _, name := range r.opts.Sheets {
		if !present[name] {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("worksheet %q", name))
		}
	}
	return r.opts.Sheets, nil
}

// readSheet returns the data rows of one worksheet. ok is false when the
// sheet has no rows at all.
func (r *WorkbookReader) readSheet(f *excelize.File, name string) (attendance.Sheet, bool, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return attendance.Sheet{}, false, apperrors.NewParsingError("failed to read worksheet", err).WithContext("sheet", name)
	}
	if len(rows) == 0 {
		return attendance.Sheet{}, false, nil
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return attendance.Sheet{}, false, apperrors.NewParsingError("failed to read worksheet", err).WithContext("sheet", name)
	}

	skip := min(r.opts.HeaderRows, len(rows))
	var header []string
	if skip > 0 {
		header = rows[skip-1]
	}
	width := sheetWidth(header, rows[skip:])

	sheet := attendance.Sheet{
		Name:   name,
		Offset: skip,
		Rows:   make([]attendance.Row, 0, len(rows)-skip),
	}
	for i := skip; i < len(rows); i++ {
		var rawRow []string
		if i < len(raw) {
			rawRow = raw[i]
		}
		sheet.Rows = append(sheet.Rows, buildRow(rows[i], rawRow, width))
	}
	return sheet, true, nil
}

// sheetWidth is the column count rows are padded back to after excelize
// trims trailing blanks. A non-blank header row defines the sheet's width,
// so an export narrower than the timesheet layout still fails the column
// check. Without a usable header the layout width is assumed. Either way a
// wider data row widens the sheet.
func sheetWidth(header []string, data [][]string) int {
	width := attendance.MinColumns
	if !isBlankRow(header) {
		width = len(header)
	}
	for _, row := range data {
		width = max(width, len(row))
	}
	return width
}

// buildRow pads cells to width and substitutes raw values for the date and
// clock columns. A row that is blank after trimming stays blank.
func buildRow(cells, raw []string, width int) attendance.Row {
	row := make(attendance.Row, max(len(cells), width))
	copy(row, cells)
	if isBlankRow(cells) {
		return row[:len(cells)]
	}
	for _, col := range rawColumns {
		if col < len(raw) && col < len(row) && strings.TrimSpace(raw[col]) != "" {
			row[col] = raw[col]
		}
	}
	return row
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func countRows(sheets []attendance.Sheet) int {
	n := 0
	for _, s := range sheets {
		n += len(s.Rows)
	}
	return n
}
