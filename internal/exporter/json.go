package exporter

import (
	"encoding/json"
	"io"

	"kintaicli/pkg/contracts/domain"
)

// ExportJSON writes the full result as indented JSON
func ExportJSON(w io.Writer, result domain.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
