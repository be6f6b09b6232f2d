// Package http implements the HTTP handlers of the attendance web service.
// Handlers stay thin: they parse and validate the request, call a service
// through the interfaces in this package and render the result.
//
// # Routes
//
//	POST /api/v1/attendance/analyze        multipart "file" → AnalysisResult JSON
//	POST /api/v1/attendance/export.csv     multipart "file" → CSV download
//	POST /api/v1/attendance/export.json    multipart "file" → JSON download
//	POST /api/v1/attendance/export.xlsx    multipart "file" → XLSX download
//	GET  /api/v1/attendance/rules          violation and overtime tier metadata
//	GET  /api/v1/attendance/reports        saved reports, newest first
//	GET  /api/v1/attendance/reports/{path} saved report download
//	GET  /api/health[/ready|/live]         health checks
//	GET  /api/version                      build information
//	GET  /metrics                          Prometheus scrape endpoint
//
// Uploads accept the optional form fields "include_today" (boolean) and
// "save" (csv, json or xlsx) on /analyze.
//
// # Errors
//
// Service sentinels are mapped to internal/errors API errors and rendered
// as RFC 7807 problem details by the shared ErrorHandler:
//
//	validation.ErrFileTooLarge           413 PAYLOAD_TOO_LARGE
//	validation.ErrUnsupportedExtension   400 UNSUPPORTED_FILE
//	AppError of type PARSING             422 MALFORMED_TIMESHEET
//	services.ErrReportNotFound           404 NOT_FOUND
package http
