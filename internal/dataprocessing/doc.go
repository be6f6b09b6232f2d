// Package dataprocessing reads timesheet workbooks into positional rows.
//
// The attendance engine never sees the spreadsheet container. This package
// opens the .xlsx file with excelize, drops the header rows of every
// worksheet and pads each data row to the header width, because excelize
// trims trailing empty cells.
//
// # Cell values
//
// Cells are read with their display format applied, so durations formatted
// as [h]:mm arrive as "7:30". Date and clock columns are read raw instead:
// a date-formatted cell then arrives as its serial number, which the
// decoder converts, rather than as a locale-dependent display string.
//
// # Usage
//
//	reader := dataprocessing.NewWorkbookReader(dataprocessing.DefaultReaderOptions(), logger)
//	sheets, err := reader.ParseFile(ctx, "2024_05_timesheet.xlsx")
//	if err != nil {
//	    return err
//	}
//	result, err := analyzer.AnalyzeSheets(ctx, sheets...)
package dataprocessing
