package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"kintaicli/pkg/contracts/domain"
)

// dateLayouts are the accepted textual date encodings
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006年1月2日",
}

// timestampLayouts are the accepted date+time encodings of clock cells
var timestampLayouts = []string{
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04",
	"2006-01-02T15:04:05",
}

// calendarTypes maps the payroll calendar labels to calendar types
var calendarTypes = map[string]domain.CalendarType{
	"平日":       domain.CalendarWeekday,
	"出勤日":      domain.CalendarWeekday,
	"weekday":  domain.CalendarWeekday,
	"法定休日":     domain.CalendarStatutoryHoliday,
	"法休":       domain.CalendarStatutoryHoliday,
	"所定休日":     domain.CalendarScheduledHoliday,
	"公休":       domain.CalendarScheduledHoliday,
	"休日":       domain.CalendarScheduledHoliday,
	"祝日":       domain.CalendarPublicHoliday,
	"祝":        domain.CalendarPublicHoliday,
	"holiday":  domain.CalendarScheduledHoliday,
	"statutory": domain.CalendarStatutoryHoliday,
}

// Decoder turns timesheet rows into attendance records
type Decoder struct {
	cfg    Config
	logger *slog.Logger
}

// NewDecoder creates a decoder. A nil logger falls back to slog.Default.
func NewDecoder(cfg Config, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		cfg:    cfg.withDefaults(),
		logger: logger.With(slog.String("component", "attendance_decoder")),
	}
}

// Decode maps one row to a record. A row narrower than MinColumns yields an
// error wrapping ErrInsufficientColumns; rows without an employee id or a
// readable date yield a skippable error (see IsSkippable).
func (d *Decoder) Decode(row Row) (domain.AttendanceRecord, error) {
	rec, _, err := d.decodeRow("", 0, row)
	return rec, err
}

// DecodeSheets decodes every sheet, skipping blank and undecodable rows, and
// fills the weekly overtime running totals. The first non-blank row narrower
// than the layout aborts the batch.
func (d *Decoder) DecodeSheets(ctx context.Context, sheets ...Sheet) ([]domain.AttendanceRecord, DecodeStats, error) {
	var (
		records []domain.AttendanceRecord
		stats   DecodeStats
	)

	for _, sheet := range sheets {
		for i, row := range sheet.Rows {
			if i%1000 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, stats, err
				}
			}

			rowNumber := sheet.Offset + i + 1
			if isBlank(row) {
				stats.BlankRows++
				continue
			}
			stats.Rows++

			rec, cellStats, err := d.decodeRow(sheet.Name, rowNumber, row)
			stats.Add(cellStats)
			if err != nil {
				if !IsSkippable(err) {
					return nil, stats, err
				}
				stats.SkippedRows++
				d.logger.DebugContext(ctx, "row skipped",
					slog.String("sheet", sheet.Name),
					slog.Int("row", rowNumber),
					slog.String("reason", err.Error()),
				)
				continue
			}
			records = append(records, rec)
		}
	}

	fillWeeklyOvertime(records)

	if stats.SkippedRows > 0 || stats.MalformedDurationCells > 0 || stats.MalformedTimeCells > 0 {
		d.logger.WarnContext(ctx, "recovered decode problems",
			slog.Int("skipped_rows", stats.SkippedRows),
			slog.Int("malformed_duration_cells", stats.MalformedDurationCells),
			slog.Int("malformed_time_cells", stats.MalformedTimeCells),
		)
	}
	d.logger.DebugContext(ctx, "sheets decoded",
		slog.Int("sheets", len(sheets)),
		slog.Int("rows", stats.Rows),
		slog.Int("records", len(records)),
	)

	return records, stats, nil
}

func (d *Decoder) decodeRow(sheet string, rowNumber int, row Row) (domain.AttendanceRecord, DecodeStats, error) {
	var stats DecodeStats

	if len(row) < MinColumns {
		return domain.AttendanceRecord{}, stats, insufficientColumns(sheet, rowNumber, len(row))
	}

	cell := func(i int) string { return strings.TrimSpace(row[i]) }

	employeeID := cell(ColEmployeeID)
	if employeeID == "" {
		return domain.AttendanceRecord{}, stats, &RowError{Sheet: sheet, Row: rowNumber, Err: ErrMissingEmployeeID}
	}
	rawDate := cell(ColDate)
	if rawDate == "" {
		return domain.AttendanceRecord{}, stats, &RowError{Sheet: sheet, Row: rowNumber, Err: ErrMissingDate}
	}
	date, ok := parseDate(rawDate, d.cfg.Location)
	if !ok {
		return domain.AttendanceRecord{}, stats, &RowError{Sheet: sheet, Row: rowNumber, Err: fmt.Errorf("%w: %q", ErrInvalidDate, rawDate)}
	}

	duration := func(i int) int {
		m, ok := ParseDuration(row[i])
		if !ok {
			stats.MalformedDurationCells++
		}
		return m
	}
	clock := func(i int) *time.Time {
		t, ok := parseClock(row[i], date, d.cfg.Location)
		if !ok {
			stats.MalformedTimeCells++
		}
		return t
	}

	apps := ParseApplications(row[ColApplicationContent])
	rec := domain.AttendanceRecord{
		EmployeeID:         employeeID,
		EmployeeName:       cell(ColEmployeeName),
		Department:         cell(ColDepartment),
		Position:           cell(ColPosition),
		Date:               date,
		DayOfWeek:          cell(ColDayOfWeek),
		CalendarType:       parseCalendarType(cell(ColCalendarType), date),
		ApplicationContent: cell(ColApplicationContent),
		Applications:       apps,

		ClockIn:       clock(ColClockIn),
		ClockOut:      clock(ColClockOut),
		ComputedStart: clock(ColComputedStart),
		ComputedEnd:   clock(ColComputedEnd),

		BreakMinutes:                       duration(ColBreakMinutes),
		NightBreakCorrectionMinutes:        nightBreakCorrectionMinutes(apps),
		ActualWorkMinutes:                  duration(ColActualWorkMinutes),
		ScheduledPlusActualMinutes:         duration(ColScheduledPlusActual),
		ScheduledWorkMinutes:               duration(ColScheduledWorkMinutes),
		StatutoryOvertimeMinutes:           duration(ColStatutoryOvertimeMinutes),
		CumulativeStatutoryOvertimeMinutes: duration(ColCumulativeStatutoryOvertime),

		Remarks:   cell(ColRemarks),
		SheetName: sheet,
		RowNumber: rowNumber,
	}

	deriveFlags(&rec)
	return rec, stats, nil
}

// deriveFlags sets the punctuality and holiday flags from the shift
func deriveFlags(rec *domain.AttendanceRecord) {
	if !rec.CalendarType.IsWeekday() {
		rec.HolidayWorkFlag = rec.ActualWorkMinutes > 0 || rec.HasBothPunches()
		return
	}

	shift, ok := shiftFromApplications(rec.Applications)
	if !ok {
		shift = defaultShift
	}

	if start := effectiveStart(*rec); start != nil {
		m := minutesSinceMidnight(rec.Date, *start)
		rec.LateFlag = m > shift.start
		rec.EarlyStartFlag = m < shift.start
	}
	if end := effectiveEnd(*rec); end != nil {
		rec.EarlyLeaveFlag = minutesSinceMidnight(rec.Date, *end) < shift.end
	}
}

// effectiveStart prefers the payroll-computed start over the raw punch
func effectiveStart(rec domain.AttendanceRecord) *time.Time {
	if rec.ComputedStart != nil {
		return rec.ComputedStart
	}
	return rec.ClockIn
}

func effectiveEnd(rec domain.AttendanceRecord) *time.Time {
	if rec.ComputedEnd != nil {
		return rec.ComputedEnd
	}
	return rec.ClockOut
}

func minutesSinceMidnight(date, t time.Time) int {
	return int(t.Sub(date) / time.Minute)
}

// fillWeeklyOvertime sets WeeklyOvertimeMinutes to the running statutory
// overtime of the employee's Monday-started week, up to and including the day
func fillWeeklyOvertime(records []domain.AttendanceRecord) {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := records[order[a]], records[order[b]]
		if ra.EmployeeID != rb.EmployeeID {
			return ra.EmployeeID < rb.EmployeeID
		}
		return ra.Date.Before(rb.Date)
	})

	var (
		employee string
		week     time.Time
		running  int
	)
	for _, i := range order {
		rec := &records[i]
		wk := weekStart(rec.Date)
		if rec.EmployeeID != employee || !wk.Equal(week) {
			employee, week, running = rec.EmployeeID, wk, 0
		}
		running += rec.StatutoryOvertimeMinutes
		rec.WeeklyOvertimeMinutes = running
	}
}

func weekStart(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -offset)
}

func isBlank(row Row) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseDate reads a date cell as a calendar date in loc. Trailing weekday
// annotations ("2024/05/13(月)") and Excel serial numbers are accepted.
func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	s := raw
	if i := strings.IndexAny(s, " (（T"); i > 0 {
		s = s[:i]
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial >= 1 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}

// maxClockFraction bounds raw clock values read as day fractions of the
// record date rather than serial datetimes
const maxClockFraction = 2

// parseClock reads a clock cell relative to the record date. Blank cells
// are nil and ok. Bare "HH:MM" values of 24:00 and later roll into the next
// day, and so do day fractions of 1 or more ("1.0416..." is 25:00). Excel
// time fractions ("0.375") and serial timestamps are accepted.
func parseClock(raw string, date time.Time, loc *time.Location) (*time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, true
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, true
		}
	}

	if h, m, found := strings.Cut(s, ":"); found {
		if rest, _, hasSeconds := strings.Cut(m, ":"); hasSeconds {
			m = rest
		}
		hv, errH := strconv.Atoi(h)
		mv, errM := strconv.Atoi(m)
		if errH != nil || errM != nil || hv < 0 || hv > 47 || mv < 0 || mv > 59 {
			return nil, false
		}
		t := date.Add(time.Duration(hv)*time.Hour + time.Duration(mv)*time.Minute)
		return &t, true
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 {
		// Serial 2 is 1900-01-01; anything below is a bare [h]:mm time,
		// possibly past midnight
		if v < maxClockFraction {
			t := date.Add(time.Duration(v*24*60+0.5) * time.Minute)
			return &t, true
		}
		serial, err := excelize.ExcelDateToTime(v, false)
		if err != nil {
			return nil, false
		}
		t := time.Date(serial.Year(), serial.Month(), serial.Day(), serial.Hour(), serial.Minute(), 0, 0, loc)
		return &t, true
	}

	return nil, false
}

// parseCalendarType maps the calendar cell; a blank cell falls back to the
// day of week, with Sunday as the statutory holiday
func parseCalendarType(raw string, date time.Time) domain.CalendarType {
	if raw == "" {
		switch date.Weekday() {
		case time.Sunday:
			return domain.CalendarStatutoryHoliday
		case time.Saturday:
			return domain.CalendarScheduledHoliday
		default:
			return domain.CalendarWeekday
		}
	}
	if ct, ok := calendarTypes[raw]; ok {
		return ct
	}
	if ct, ok := calendarTypes[strings.ToLower(raw)]; ok {
		return ct
	}
	return domain.CalendarOther
}
