// Package api contains the HTTP contract of the attendance analysis API.
// Version v1 is served under /api/v1/attendance.
package api

import "time"

// Form fields accepted by the upload endpoints
const (
	FieldFile         = "file"
	FieldIncludeToday = "include_today"
	FieldSave         = "save"
)

// HeaderReportPath carries the saved report's path relative to the
// reports directory when an analysis was stored with save
const HeaderReportPath = "X-Report-Path"

// AnalyzeRequest holds the optional form fields of POST /analyze and the
// export endpoints. The workbook itself travels in the "file" part.
type AnalyzeRequest struct {
	IncludeToday string `form:"include_today" validate:"omitempty,boolean"`
	Save         string `form:"save" validate:"omitempty,oneof=csv json xlsx"`
}

// ReportRequest addresses a saved report
type ReportRequest struct {
	Path string `form:"path" validate:"required,relpath"`
}

// ReportInfo describes a saved report
type ReportInfo struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Format   string    `json:"format"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ReportListResponse is the body of GET /reports, newest first
type ReportListResponse struct {
	Reports []ReportInfo `json:"reports"`
	Count   int          `json:"count"`
}
