// Package shared holds helpers used by more than one layer of the attendance
// analyzer. It carries no business rules of its own.
//
// The testutil subpackage provides a capturing slog handler and builders for
// timesheet rows and workbooks, so decoder, service and transport tests can
// share one fixture vocabulary:
//
//	logger, logs := testutil.NewTestLogger(t)
//	row := testutil.NewRow().Employee("E001", "山田太郎", "営業部").Date("2024-05-13")
//	path := testutil.WriteWorkbook(t, dir, testutil.WorkbookSheet{
//	    Name: "2024年5月",
//	    Rows: [][]string{row.Cells()},
//	})
package shared
