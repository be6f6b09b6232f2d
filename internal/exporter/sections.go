package exporter

import (
	"strings"

	"kintaicli/pkg/contracts/domain"
)

// Report section titles, in output order
const (
	ReportTitle       = "勤怠コンプライアンス分析レポート"
	SectionSummary    = "分析サマリー"
	SectionEmployees  = "社員別集計"
	SectionViolations = "違反一覧"
)

var (
	// EmployeeColumns heads the per-employee rows
	EmployeeColumns = []string{"社員番号", "氏名", "所属", "出勤日数", "残業時間(分)", "休日出勤日数", "遅刻日数", "早退日数", "違反件数"}

	// ViolationColumns heads the per-violation rows
	ViolationColumns = []string{"日付", "社員番号", "氏名", "違反種別", "緊急度", "詳細"}
)

// section is one table of the report. Cells are strings or ints.
type section struct {
	title  string
	header []string
	rows   [][]any
}

func summarySection(result domain.AnalysisResult) section {
	s := result.Summary
	return section{
		title: SectionSummary,
		rows: [][]any{
			{"実行ID", result.RunID},
			{"作成日時", formatDateTime(result.GeneratedAt)},
			{"対象期間", formatDateRange(s.AnalysisDateRange)},
			{"シート", strings.Join(s.SheetNames, "・")},
			{"対象社員数", s.TotalEmployees},
			{"要確認社員数", s.EmployeesWithIssues},
			{"緊急度高", s.HighUrgencyCount},
			{"緊急度中", s.MediumUrgencyCount},
			{"緊急度低", s.LowUrgencyCount},
			{"レコード数", s.TotalRecords},
			{"スキップ行数", s.SkippedRows},
			{"不正な時間セル数", s.MalformedDurationCells},
			{"不正な時刻セル数", s.MalformedTimeCells},
			{"違反件数", len(result.AllViolations)},
		},
	}
}

func employeeSection(result domain.AnalysisResult) section {
	rows := make([][]any, 0, len(result.EmployeeSummaries))
	for _, e := range result.EmployeeSummaries {
		rows = append(rows, []any{
			e.EmployeeID,
			e.EmployeeName,
			e.Department,
			e.TotalWorkDays,
			e.TotalOvertimeMinutes,
			e.HolidayWorkDays,
			e.LateDays,
			e.EarlyLeaveDays,
			len(e.Violations),
		})
	}
	return section{title: SectionEmployees, header: EmployeeColumns, rows: rows}
}

func violationSection(result domain.AnalysisResult) section {
	rows := make([][]any, 0, len(result.AllViolations))
	for _, v := range result.AllViolations {
		rows = append(rows, []any{
			formatDate(v.Date),
			v.EmployeeID,
			v.EmployeeName,
			string(v.Type),
			string(v.Urgency),
			v.Details,
		})
	}
	return section{title: SectionViolations, header: ViolationColumns, rows: rows}
}

func reportSections(result domain.AnalysisResult) []section {
	return []section{summarySection(result), employeeSection(result), violationSection(result)}
}
