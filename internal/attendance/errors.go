package attendance

import (
	"errors"
	"fmt"

	apperrors "kintaicli/internal/errors"
)

var (
	// ErrInsufficientColumns is returned when a non-blank row is narrower
	// than the timesheet layout. It aborts the whole run.
	ErrInsufficientColumns = errors.New("row has fewer columns than the timesheet layout")

	// ErrMissingEmployeeID and ErrMissingDate mark rows the decoder skips
	ErrMissingEmployeeID = errors.New("employee id is blank")
	ErrMissingDate       = errors.New("date is blank")

	// ErrInvalidDate marks a row whose date cell cannot be read
	ErrInvalidDate = errors.New("date cannot be parsed")
)

// RowError describes a row the decoder rejected
type RowError struct {
	Sheet string
	Row   int
	Err   error
}

func (e *RowError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("sheet %q row %d: %v", e.Sheet, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// IsSkippable reports whether err only disqualifies a single row
func IsSkippable(err error) bool {
	return errors.Is(err, ErrMissingEmployeeID) ||
		errors.Is(err, ErrMissingDate) ||
		errors.Is(err, ErrInvalidDate)
}

func insufficientColumns(sheet string, row, got int) error {
	return apperrors.NewParsingError(
		fmt.Sprintf("row %d has %d columns, need %d", row, got, MinColumns),
		ErrInsufficientColumns,
	).WithContext("sheet", sheet).
		WithContext("row", row).
		WithContext("columns", got)
}
