package exporter

import (
	"fmt"
	"io"
	"strings"

	"kintaicli/pkg/contracts/domain"
)

// utf8BOM lets Excel detect the encoding of a CSV file
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Export renders result as UTF-8 CSV with every field double-quoted. The
// title row and summary block come first, then the employee and violation
// sections, each introduced by its title row and header and separated by a
// blank line.
func Export(result domain.AnalysisResult) string {
	var b strings.Builder
	_ = writeSections(&b, result)
	return b.String()
}

// WriteCSV writes the Export rendering to w, optionally prefixed with a BOM
func WriteCSV(w io.Writer, result domain.AnalysisResult, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}
	return writeSections(w, result)
}

func writeSections(w io.Writer, result domain.AnalysisResult) error {
	qw := &quotedWriter{w: w}
	qw.record(ReportTitle)
	for i, s := range reportSections(result) {
		if i > 0 {
			qw.blank()
			qw.record(s.title)
		}
		if len(s.header) > 0 {
			qw.record(s.header...)
		}
		for _, row := range s.rows {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = cellText(v)
			}
			qw.record(cells...)
		}
	}
	return qw.err
}

// quotedWriter emits RFC 4180 records with every field quoted. The first
// write error sticks and suppresses further output.
type quotedWriter struct {
	w   io.Writer
	err error
}

func (q *quotedWriter) record(fields ...string) {
	if q.err != nil {
		return
	}
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
	_, q.err = io.WriteString(q.w, b.String())
}

func (q *quotedWriter) blank() {
	if q.err != nil {
		return
	}
	_, q.err = io.WriteString(q.w, "\r\n")
}

func cellText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return formatInt(x)
	default:
		return fmt.Sprint(x)
	}
}
