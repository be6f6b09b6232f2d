package domain

import (
	"time"
)

// CalendarType classifies a day on the company calendar
type CalendarType string

const (
	CalendarWeekday          CalendarType = "weekday"
	CalendarStatutoryHoliday CalendarType = "statutory_holiday"
	CalendarScheduledHoliday CalendarType = "scheduled_holiday"
	CalendarPublicHoliday    CalendarType = "public_holiday"
	CalendarOther            CalendarType = "other"
)

// IsWeekday reports whether the day counts as a business day
func (c CalendarType) IsWeekday() bool {
	return c == CalendarWeekday
}

// ApplicationKind identifies an approval entry recorded against a day
type ApplicationKind string

const (
	ApplicationOvertimeEnd       ApplicationKind = "overtime_end"
	ApplicationSpecialOvertime   ApplicationKind = "special_overtime"
	ApplicationLateArrival       ApplicationKind = "late_arrival"
	ApplicationEarlyLeave        ApplicationKind = "early_leave"
	ApplicationEarlyStart        ApplicationKind = "early_start"
	ApplicationHourlyLeave       ApplicationKind = "hourly_leave"
	ApplicationPrivateOuting     ApplicationKind = "private_outing"
	ApplicationNightBreakFix     ApplicationKind = "night_break_correction"
	ApplicationDirectToSite      ApplicationKind = "direct_to_site"
	ApplicationDirectFromSite    ApplicationKind = "direct_from_site"
	ApplicationTrainDelay        ApplicationKind = "train_delay"
	ApplicationClockCorrection   ApplicationKind = "clock_correction"
	ApplicationFullDayLeave      ApplicationKind = "full_day_leave"
	ApplicationHalfDayLeave      ApplicationKind = "half_day_leave"
	ApplicationSubstituteHoliday ApplicationKind = "substitute_holiday"
	ApplicationAbsence           ApplicationKind = "absence"
	ApplicationUnknown           ApplicationKind = "unknown"
)

// Application is one parsed entry of a day's application content,
// e.g. "残業終了,900-1730/1200-1300/7.75/5"
type Application struct {
	Kind   ApplicationKind `json:"kind"`
	Name   string          `json:"name"`
	Detail string          `json:"detail,omitempty"`
}

// AttendanceRecord is one employee-day reconstructed from a timesheet row.
// Durations are whole minutes.
type AttendanceRecord struct {
	EmployeeID   string       `json:"employee_id"`
	EmployeeName string       `json:"employee_name"`
	Department   string       `json:"department"`
	Position     string       `json:"position,omitempty"`
	Date         time.Time    `json:"date"`
	DayOfWeek    string       `json:"day_of_week"`
	CalendarType CalendarType `json:"calendar_type"`

	ApplicationContent string        `json:"application_content,omitempty"`
	Applications       []Application `json:"applications,omitempty"`

	ClockIn       *time.Time `json:"clock_in,omitempty"`
	ClockOut      *time.Time `json:"clock_out,omitempty"`
	ComputedStart *time.Time `json:"computed_start,omitempty"`
	ComputedEnd   *time.Time `json:"computed_end,omitempty"`

	BreakMinutes                       int `json:"break_minutes"`
	NightBreakCorrectionMinutes        int `json:"night_break_correction_minutes"`
	ActualWorkMinutes                  int `json:"actual_work_minutes"`
	ScheduledPlusActualMinutes         int `json:"scheduled_plus_actual_minutes"`
	ScheduledWorkMinutes               int `json:"scheduled_work_minutes"`
	StatutoryOvertimeMinutes           int `json:"statutory_overtime_minutes"`
	CumulativeStatutoryOvertimeMinutes int `json:"cumulative_statutory_overtime_minutes"`
	WeeklyOvertimeMinutes              int `json:"weekly_overtime_minutes"`

	LateFlag        bool `json:"late_flag"`
	EarlyLeaveFlag  bool `json:"early_leave_flag"`
	EarlyStartFlag  bool `json:"early_start_flag"`
	HolidayWorkFlag bool `json:"holiday_work_flag"`

	Remarks string `json:"remarks,omitempty"`

	// Source location, for error reporting and details text
	SheetName string `json:"sheet_name,omitempty"`
	RowNumber int    `json:"row_number"`
}

// HasApplication reports whether any application of the given kind is present
func (r AttendanceRecord) HasApplication(kind ApplicationKind) bool {
	for _, app := range r.Applications {
		if app.Kind == kind {
			return true
		}
	}
	return false
}

// ApplicationsOf returns every application of the given kind
func (r AttendanceRecord) ApplicationsOf(kind ApplicationKind) []Application {
	var apps []Application
	for _, app := range r.Applications {
		if app.Kind == kind {
			apps = append(apps, app)
		}
	}
	return apps
}

// HasBothPunches reports whether clock-in and clock-out were recorded
func (r AttendanceRecord) HasBothPunches() bool {
	return r.ClockIn != nil && r.ClockOut != nil
}

// IsWorkDay reports whether any work was performed on the day
func (r AttendanceRecord) IsWorkDay() bool {
	return r.ActualWorkMinutes > 0 || r.HasBothPunches()
}
