package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"kintaicli/pkg/contracts/domain"
)

// Worksheet names of the XLSX report
const (
	SheetSummary    = "サマリー"
	SheetEmployees  = "社員別"
	SheetViolations = "違反一覧"
)

// ExportXLSX writes result as a workbook with summary, employee and
// violation sheets. Counts are written as numbers.
func ExportXLSX(w io.Writer, result domain.AnalysisResult) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	names := []string{SheetSummary, SheetEmployees, SheetViolations}
	for i, s := range reportSections(result) {
		name := names[i]
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, s, header); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, s section, headerStyle int) error {
	rows := s.rows
	if len(s.header) > 0 {
		header := make([]any, len(s.header))
		for i, h := range s.header {
			header[i] = h
		}
		rows = append([][]any{header}, rows...)
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", name, r+1, err)
		}
	}

	if len(s.header) == 0 {
		return f.SetColWidth(name, "A", "B", 20)
	}

	last, err := excelize.ColumnNumberToName(len(s.header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", name, err)
	}
	if err := f.SetColWidth(name, "A", last, 14); err != nil {
		return err
	}
	return f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
