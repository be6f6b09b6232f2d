// Package exporter serializes an attendance AnalysisResult for offline use.
//
// Export renders the flat CSV report: a summary block, one row per employee
// and one row per violation, every field double-quoted. ExportXLSX writes the
// same sections as a three-sheet workbook and ExportJSON the full result.
//
// ReportWriter places report files under the configured reports directory:
//
//	w := exporter.NewReportWriter(paths, logger)
//	path, err := w.WriteReport(exporter.FormatCSV, "attendance_2024_05", result)
//
// CSV files are written with a UTF-8 BOM so Excel detects the encoding.
package exporter
