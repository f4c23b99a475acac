// Package loader decodes an uploaded byte buffer into a typed Table and
// candidate Schema, generalizing the teacher's schema.DiscoverFromCSV /
// helpers.ParseCSV pipeline from "[]string rows" to typed column vectors
// and from CSV-only to CSV/TSV/TXT/JSON/XLS/XLSX.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cpor-labs/cpor-portal/internal/schema"
	"github.com/cpor-labs/cpor-portal/internal/table"
)

// Load decodes data according to filename's extension (decoder selection
// never inspects content, per the spec) and returns the resulting Table
// and candidate Schema, or a typed *Error.
func Load(filename string, data []byte) (*table.Table, schema.Schema, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv", ".tsv", ".txt":
		return delimitedLoad(data)
	case ".json":
		return jsonLoad(data)
	case ".xlsx":
		return xlsxLoad(data)
	case ".xls":
		return xlsLoad(data)
	default:
		return nil, nil, &Error{Code: UnsupportedFormat, Message: fmt.Sprintf("unsupported file extension %q", ext)}
	}
}
