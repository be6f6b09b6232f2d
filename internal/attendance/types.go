package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Row is one decoded spreadsheet row, cells in column order
type Row []string

// Sheet is a named sequence of rows from one worksheet. Offset is the number
// of worksheet rows preceding Rows (the header), so row numbers in errors
// match what a user sees in a spreadsheet application.
type Sheet struct {
	Name   string
	Offset int
	Rows   []Row
}

// Column positions of the timesheet export. Indices not listed here are
// payroll passthrough fields and are ignored.
const (
	ColEmployeeID                  = 0
	ColEmployeeName                = 1
	ColDepartment                  = 2
	ColPosition                    = 3
	ColDate                        = 4
	ColDayOfWeek                   = 5
	ColCalendarType                = 6
	ColApplicationContent          = 7
	ColClockIn                     = 8
	ColClockOut                    = 10
	ColComputedStart               = 11
	ColComputedEnd                 = 12
	ColBreakMinutes                = 36
	ColActualWorkMinutes           = 39
	ColScheduledPlusActual         = 40
	ColScheduledWorkMinutes        = 42
	ColStatutoryOvertimeMinutes    = 44
	ColCumulativeStatutoryOvertime = 58
	ColRemarks                     = 60

	// MinColumns is the narrowest row the layout allows
	MinColumns = 61
)

// Config tunes a single analysis run
type Config struct {
	// IncludeToday evaluates the current calendar date. When false the
	// day is skipped because clock-out may not have happened yet.
	IncludeToday bool `json:"include_today" yaml:"include_today"`

	// Location anchors "today" and timestamp parsing. Defaults to Asia/Tokyo,
	// falling back to UTC when the zone database is unavailable.
	Location *time.Location `json:"-" yaml:"-"`

	// Now returns the current time. Injected by tests for determinism.
	Now func() time.Time `json:"-" yaml:"-"`

	// RemarksValidator checks the shape of non-blank remarks
	RemarksValidator RemarksValidator `json:"-" yaml:"-"`

	// NewRunID names each analysis run. Defaults to random UUIDs.
	NewRunID func() string `json:"-" yaml:"-"`
}

// DefaultConfig returns the configuration used when the caller sets nothing
func DefaultConfig() Config {
	return Config{
		IncludeToday:     false,
		Location:         defaultLocation(),
		Now:              time.Now,
		RemarksValidator: DefaultRemarksValidator(),
		NewRunID:         uuid.NewString,
	}
}

// withDefaults fills unset fields
func (c Config) withDefaults() Config {
	if c.Location == nil {
		c.Location = defaultLocation()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.RemarksValidator == nil {
		c.RemarksValidator = DefaultRemarksValidator()
	}
	if c.NewRunID == nil {
		c.NewRunID = uuid.NewString
	}
	return c
}

// today returns the current calendar date in the configured location
func (c Config) today() time.Time {
	now := c.Now().In(c.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.Location)
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// DecodeStats counts the locally recovered problems of a decode pass
type DecodeStats struct {
	Rows                   int `json:"rows"`
	BlankRows              int `json:"blank_rows"`
	SkippedRows            int `json:"skipped_rows"`
	MalformedDurationCells int `json:"malformed_duration_cells"`
	MalformedTimeCells     int `json:"malformed_time_cells"`
}

// Add accumulates other into s
func (s *DecodeStats) Add(other DecodeStats) {
	s.Rows += other.Rows
	s.BlankRows += other.BlankRows
	s.SkippedRows += other.SkippedRows
	s.MalformedDurationCells += other.MalformedDurationCells
	s.MalformedTimeCells += other.MalformedTimeCells
}

// Minutes per hour, used by thresholds written in hours
const minutesPerHour = 60

func hours(h int) int {
	return h * minutesPerHour
}
