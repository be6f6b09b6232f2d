package exporter

import (
	"time"

	"kintaicli/pkg/contracts/domain"
)

var jst = time.FixedZone("JST", 9*60*60)

func sampleResult() domain.AnalysisResult {
	may := func(d int) time.Time { return time.Date(2024, 5, d, 0, 0, 0, 0, jst) }

	violations := []domain.Violation{
		{EmployeeID: "E001", EmployeeName: "山田太郎", Date: may(13), Type: domain.ViolationMissingClock, Urgency: domain.UrgencyHigh, Details: "出勤・退勤の打刻なし"},
		{EmployeeID: "E001", EmployeeName: "山田太郎", Date: may(14), Type: domain.ViolationRemarksFormatWarning, Urgency: domain.UrgencyLow, Details: `備考「"至急", 対応」が【理由】詳細の形式ではありません`},
		{EmployeeID: "E002", EmployeeName: "佐藤花子", Date: may(14), Type: domain.ViolationLateApplicationMissing, Urgency: domain.UrgencyMedium, Details: "出勤09:20 遅刻申請なし"},
	}

	return domain.AnalysisResult{
		RunID:       "run-export",
		GeneratedAt: time.Date(2024, 5, 15, 10, 0, 0, 0, jst),
		Summary: domain.AnalysisSummary{
			TotalEmployees:      2,
			EmployeesWithIssues: 2,
			HighUrgencyCount:    1,
			MediumUrgencyCount:  1,
			LowUrgencyCount:     1,
			AnalysisDateRange:   domain.DateRange{Start: may(1), End: may(28)},
			SheetNames:          []string{"5月", "5月(派遣)"},
			TotalRecords:        40,
			MalformedTimeCells:  2,
		},
		EmployeeSummaries: []domain.EmployeeMonthlySummary{
			{EmployeeID: "E001", EmployeeName: "山田太郎", Department: "営業部", TotalWorkDays: 10, TotalOvertimeMinutes: 2760, LateDays: 0, Violations: violations[:2]},
			{EmployeeID: "E002", EmployeeName: "佐藤花子", Department: "開発部", TotalWorkDays: 9, TotalOvertimeMinutes: 300, LateDays: 1, EarlyLeaveDays: 2, HolidayWorkDays: 1, Violations: violations[2:]},
		},
		DepartmentSummaries: []domain.DepartmentSummary{
			{Department: "営業部", EmployeeCount: 1, TotalOvertimeMinutes: 2760, AverageOvertimeMinutes: 2760, TotalViolations: 2},
			{Department: "開発部", EmployeeCount: 1, TotalOvertimeMinutes: 300, AverageOvertimeMinutes: 300, HolidayWorkCount: 1, TotalViolations: 1},
		},
		AllViolations:  violations,
		OvertimeAlerts: []domain.OvertimeAlert{},
		PaceAlerts:     []domain.PaceForecast{},
	}
}

func emptyResult() domain.AnalysisResult {
	return domain.AnalysisResult{
		RunID:               "run-empty",
		Summary:             domain.AnalysisSummary{SheetNames: []string{}},
		EmployeeSummaries:   []domain.EmployeeMonthlySummary{},
		DepartmentSummaries: []domain.DepartmentSummary{},
		AllViolations:       []domain.Violation{},
		OvertimeAlerts:      []domain.OvertimeAlert{},
		PaceAlerts:          []domain.PaceForecast{},
	}
}
