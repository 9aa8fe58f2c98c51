package metadata

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// ExportCSV is an export-only encoding for spreadsheets.
const ExportCSV = "csv"

// Export writes records in the generic list shape read by NewJSON and
// NewYAML, or as a CSV with identifier and filename columns.
func Export(w io.Writer, records []Record, encoding string) error {
	if records == nil {
		records = []Record{}
	}
	switch encoding {
	case string(FormatJSON):
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case string(FormatYAML):
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(records)
	case ExportCSV:
		return gocsv.Marshal(&records, w)
	default:
		return fmt.Errorf("unsupported export encoding %q", encoding)
	}
}
