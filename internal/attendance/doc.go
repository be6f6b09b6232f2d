// Package attendance is the compliance engine for monthly timesheet exports.
//
// A run decodes positional rows into attendance records, evaluates the
// labor rules against each employee-day, classifies overtime on the
// 36 Agreement ladder and extrapolates month-end overtime from the weekdays
// that have already passed.
//
// # Components
//
//   - decoder.go: 61-column rows to records, durations in whole minutes
//   - application.go: application-content grammar and shift patterns
//   - detector.go: per-record rules, evaluated only for past dates
//   - classifier.go: the eight overtime tiers and their actions
//   - forecast.go: month-end extrapolation and the pace alert gates
//   - aggregator.go: employee and department summaries, alert lists
//   - analyzer.go: one synchronous run from rows to AnalysisResult
//
// The engine performs no I/O. Every run allocates its own state, so callers
// may run independent files in parallel.
//
// # Usage
//
//	analyzer := attendance.NewAnalyzer(attendance.DefaultConfig(), logger)
//	result, err := analyzer.AnalyzeSheets(ctx, sheets...)
//	if errors.Is(err, attendance.ErrInsufficientColumns) {
//	    // the workbook is not a timesheet export
//	}
package attendance
