package domain

import (
	"time"
)

// EmployeeMonthlySummary aggregates one employee's records for the month
type EmployeeMonthlySummary struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Department   string `json:"department"`

	TotalWorkDays        int `json:"total_work_days"`
	TotalOvertimeMinutes int `json:"total_overtime_minutes"`
	HolidayWorkDays      int `json:"holiday_work_days"`
	LateDays             int `json:"late_days"`
	EarlyLeaveDays       int `json:"early_leave_days"`
	MissingClockDays     int `json:"missing_clock_days"`
	PassedWeekdays       int `json:"passed_weekdays"`
	TotalWeekdaysInMonth int `json:"total_weekdays_in_month"`

	// Last cumulative value reported by the payroll system, for cross-checks
	ReportedCumulativeOvertimeMinutes int `json:"reported_cumulative_overtime_minutes"`

	OvertimeLevel OvertimeAlertLevel `json:"overtime_level"`
	Forecast      *PaceForecast      `json:"forecast,omitempty"`
	Violations    []Violation        `json:"violations"`
}

// HasIssues reports whether the employee has at least one violation
func (s EmployeeMonthlySummary) HasIssues() bool {
	return len(s.Violations) > 0
}

// DepartmentSummary aggregates employee summaries by department
type DepartmentSummary struct {
	Department             string `json:"department"`
	EmployeeCount          int    `json:"employee_count"`
	TotalOvertimeMinutes   int    `json:"total_overtime_minutes"`
	AverageOvertimeMinutes int    `json:"average_overtime_minutes"`
	HolidayWorkCount       int    `json:"holiday_work_count"`
	TotalViolations        int    `json:"total_violations"`
}

// DateRange is an inclusive calendar date span
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether the range is unset
func (d DateRange) IsZero() bool {
	return d.Start.IsZero() && d.End.IsZero()
}

// AnalysisSummary holds the top-level totals of a run
type AnalysisSummary struct {
	TotalEmployees      int       `json:"total_employees"`
	EmployeesWithIssues int       `json:"employees_with_issues"`
	HighUrgencyCount    int       `json:"high_urgency_count"`
	MediumUrgencyCount  int       `json:"medium_urgency_count"`
	LowUrgencyCount     int       `json:"low_urgency_count"`
	AnalysisDateRange   DateRange `json:"analysis_date_range"`
	SheetNames          []string  `json:"sheet_names"`

	TotalRecords           int `json:"total_records"`
	SkippedRows            int `json:"skipped_rows"`
	MalformedDurationCells int `json:"malformed_duration_cells"`
	MalformedTimeCells     int `json:"malformed_time_cells"`
}

// AnalysisResult is the immutable outcome of one analysis run
type AnalysisResult struct {
	RunID               string                   `json:"run_id"`
	GeneratedAt         time.Time                `json:"generated_at"`
	Summary             AnalysisSummary          `json:"summary"`
	EmployeeSummaries   []EmployeeMonthlySummary `json:"employee_summaries"`
	DepartmentSummaries []DepartmentSummary      `json:"department_summaries"`
	AllViolations       []Violation              `json:"all_violations"`
	OvertimeAlerts      []OvertimeAlert          `json:"overtime_alerts"`
	PaceAlerts          []PaceForecast           `json:"pace_alerts"`
}
