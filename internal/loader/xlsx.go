package loader

import (
	"bytes"
	"strings"

	"github.com/cpor-labs/cpor-portal/internal/schema"
	"github.com/cpor-labs/cpor-portal/internal/table"
	"github.com/xuri/excelize/v2"
)

func xlsxLoad(data []byte) (*table.Table, schema.Schema, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, &Error{Code: Malformed, Message: err.Error()}
	}
	defer f.Close()

	sheet := pickSheet(f.GetSheetList())
	if sheet == "" {
		return nil, nil, &Error{Code: EmptyInput, Message: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, &Error{Code: Malformed, Message: err.Error()}
	}
	if len(rows) == 0 {
		return nil, nil, &Error{Code: EmptyInput, Message: "sheet has no rows"}
	}

	header := rows[0]
	dataRows := rows[1:]
	if len(dataRows) == 0 {
		return nil, nil, &Error{Code: EmptyInput, Message: "header with no data rows"}
	}
	return buildTable(header, dataRows)
}

// pickSheet prefers a sheet literally named "Planilha1" or "Sheet1"
// (case-insensitive) over the first sheet in the workbook, matching the
// convention most spreadsheet tools use for a single-tab export.
func pickSheet(names []string) string {
	for _, n := range names {
		lower := strings.ToLower(n)
		if lower == "planilha1" || lower == "sheet1" {
			return n
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}
