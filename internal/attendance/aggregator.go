package attendance

import (
	"math"
	"sort"
	"time"

	"kintaicli/pkg/contracts/domain"
)

// employeeAccumulator collects one employee's facts during the fold
type employeeAccumulator struct {
	summary         domain.EmployeeMonthlySummary
	weekdays        map[string]struct{}
	passedWeekdays  map[string]struct{}
	lastCumulative  time.Time
	overtimeMinutes int
}

// SummarizeEmployees folds records and violations into one summary per
// employee id, ordered by id. Weekday counts use distinct weekday dates;
// a weekday has passed when it is inside the detector's evaluation window.
func SummarizeEmployees(cfg Config, records []domain.AttendanceRecord, violations []domain.Violation) []domain.EmployeeMonthlySummary {
	cfg = cfg.withDefaults()

	byID := make(map[string]*employeeAccumulator)
	get := func(id string) *employeeAccumulator {
		acc, ok := byID[id]
		if !ok {
			acc = &employeeAccumulator{
				summary:        domain.EmployeeMonthlySummary{EmployeeID: id, Violations: []domain.Violation{}},
				weekdays:       make(map[string]struct{}),
				passedWeekdays: make(map[string]struct{}),
			}
			byID[id] = acc
		}
		return acc
	}

	for _, rec := range records {
		acc := get(rec.EmployeeID)
		s := &acc.summary
		if s.EmployeeName == "" {
			s.EmployeeName = rec.EmployeeName
		}
		if s.Department == "" {
			s.Department = rec.Department
		}

		if rec.IsWorkDay() {
			s.TotalWorkDays++
		}
		acc.overtimeMinutes += rec.StatutoryOvertimeMinutes
		if rec.HolidayWorkFlag {
			s.HolidayWorkDays++
		}
		if rec.LateFlag {
			s.LateDays++
		}
		if rec.EarlyLeaveFlag {
			s.EarlyLeaveDays++
		}
		if rec.CalendarType.IsWeekday() {
			day := rec.Date.Format(time.DateOnly)
			acc.weekdays[day] = struct{}{}
			if evaluatesDate(cfg, rec.Date) {
				acc.passedWeekdays[day] = struct{}{}
			}
		}
		if !rec.Date.Before(acc.lastCumulative) {
			acc.lastCumulative = rec.Date
			s.ReportedCumulativeOvertimeMinutes = rec.CumulativeStatutoryOvertimeMinutes
		}
	}

	for _, v := range violations {
		acc := get(v.EmployeeID)
		if acc.summary.EmployeeName == "" {
			acc.summary.EmployeeName = v.EmployeeName
		}
		acc.summary.Violations = append(acc.summary.Violations, v)
		if v.Type == domain.ViolationMissingClock {
			acc.summary.MissingClockDays++
		}
	}

	out := make([]domain.EmployeeMonthlySummary, 0, len(byID))
	for _, acc := range byID {
		s := acc.summary
		s.TotalOvertimeMinutes = max(acc.overtimeMinutes, 0)
		s.TotalWeekdaysInMonth = len(acc.weekdays)
		s.PassedWeekdays = len(acc.passedWeekdays)
		s.OvertimeLevel = Classify(s.TotalOvertimeMinutes)
		s.Forecast = ForecastEmployee(s)
		SortViolations(s.Violations)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

// SummarizeDepartments groups employees by department, ordered by name.
// Only employees with at least one work day count toward the head count,
// overtime and holiday totals; every employee counts toward violations.
// Departments without a working employee are omitted.
func SummarizeDepartments(employees []domain.EmployeeMonthlySummary) []domain.DepartmentSummary {
	byName := make(map[string]*domain.DepartmentSummary)
	violations := make(map[string]int)

	for _, e := range employees {
		violations[e.Department] += len(e.Violations)
		if e.TotalWorkDays < 1 {
			continue
		}
		d, ok := byName[e.Department]
		if !ok {
			d = &domain.DepartmentSummary{Department: e.Department}
			byName[e.Department] = d
		}
		d.EmployeeCount++
		d.TotalOvertimeMinutes += e.TotalOvertimeMinutes
		d.HolidayWorkCount += e.HolidayWorkDays
	}

	out := make([]domain.DepartmentSummary, 0, len(byName))
	for name, d := range byName {
		d.TotalViolations = violations[name]
		d.AverageOvertimeMinutes = int(math.Round(float64(d.TotalOvertimeMinutes) / float64(d.EmployeeCount)))
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

// OvertimeAlerts lists employees whose actual overtime reached the warning
// tier, highest overtime first
func OvertimeAlerts(employees []domain.EmployeeMonthlySummary) []domain.OvertimeAlert {
	alerts := []domain.OvertimeAlert{}
	for _, e := range employees {
		if e.OvertimeLevel.Rank() < domain.OvertimeWarning.Rank() {
			continue
		}
		meta, _ := LevelInfo(e.OvertimeLevel)
		alerts = append(alerts, domain.OvertimeAlert{
			EmployeeID:      e.EmployeeID,
			EmployeeName:    e.EmployeeName,
			Department:      e.Department,
			OvertimeMinutes: e.TotalOvertimeMinutes,
			Level:           e.OvertimeLevel,
			Label:           meta.Label,
			Action:          meta.Action,
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool { return alerts[i].OvertimeMinutes > alerts[j].OvertimeMinutes })
	return alerts
}

// PaceAlerts lists the forecasts that pass IsPaceAlert, highest prediction
// first
func PaceAlerts(employees []domain.EmployeeMonthlySummary) []domain.PaceForecast {
	alerts := []domain.PaceForecast{}
	for _, e := range employees {
		if e.Forecast != nil && IsPaceAlert(*e.Forecast) {
			alerts = append(alerts, *e.Forecast)
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].PredictedOvertimeMinutes > alerts[j].PredictedOvertimeMinutes
	})
	return alerts
}

// Summarize computes the top-level totals. An employee with violations of
// several urgencies counts once in each matching bucket.
func Summarize(employees []domain.EmployeeMonthlySummary, records []domain.AttendanceRecord) domain.AnalysisSummary {
	summary := domain.AnalysisSummary{
		TotalEmployees: len(employees),
		TotalRecords:   len(records),
	}

	for _, e := range employees {
		if !e.HasIssues() {
			continue
		}
		summary.EmployeesWithIssues++

		seen := make(map[domain.Urgency]bool, 3)
		for _, v := range e.Violations {
			seen[v.Urgency] = true
		}
		if seen[domain.UrgencyHigh] {
			summary.HighUrgencyCount++
		}
		if seen[domain.UrgencyMedium] {
			summary.MediumUrgencyCount++
		}
		if seen[domain.UrgencyLow] {
			summary.LowUrgencyCount++
		}
	}

	for i, rec := range records {
		if i == 0 || rec.Date.Before(summary.AnalysisDateRange.Start) {
			summary.AnalysisDateRange.Start = rec.Date
		}
		if i == 0 || rec.Date.After(summary.AnalysisDateRange.End) {
			summary.AnalysisDateRange.End = rec.Date
		}
	}

	return summary
}

// SortViolations orders violations by date, employee id and rule order
func SortViolations(violations []domain.Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.EmployeeID != b.EmployeeID {
			return a.EmployeeID < b.EmployeeID
		}
		return ruleOrder(a.Type) < ruleOrder(b.Type)
	})
}
