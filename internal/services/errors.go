package services

import "errors"

// Service errors, mapped to API errors by the HTTP handlers
var (
	// Input errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoInputs         = errors.New("no timesheet files given")
	ErrInvalidTimesheet = errors.New("invalid timesheet file")

	// Report errors
	ErrReportNotFound    = errors.New("report not found")
	ErrUnsupportedFormat = errors.New("unsupported report format")

	// General errors
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
