package loader

import (
	"bytes"

	"github.com/cpor-labs/cpor-portal/internal/schema"
	"github.com/cpor-labs/cpor-portal/internal/table"
	"github.com/extrame/xls"
)

// xlsLoad reads the legacy OLE2 binary workbook format. There is no
// in-pack example using extrame/xls; the call shape here follows the
// library's documented public API (see DESIGN.md).
func xlsLoad(data []byte) (*table.Table, schema.Schema, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, nil, &Error{Code: Malformed, Message: err.Error()}
	}
	sheet := wb.GetSheet(0)
	if sheet == nil || sheet.MaxRow == 0 {
		return nil, nil, &Error{Code: EmptyInput, Message: "sheet has no rows"}
	}

	headerRow := sheet.Row(0)
	colCount := headerRow.LastCol()
	header := make([]string, colCount)
	for i := 0; i < colCount; i++ {
		header[i] = headerRow.Col(i)
	}

	var dataRows [][]string
	for r := 1; r <= int(sheet.MaxRow); r++ {
		row := sheet.Row(r)
		if row == nil {
			continue
		}
		rec := make([]string, colCount)
		for c := 0; c < colCount; c++ {
			rec[c] = row.Col(c)
		}
		dataRows = append(dataRows, rec)
	}
	if len(dataRows) == 0 {
		return nil, nil, &Error{Code: EmptyInput, Message: "header with no data rows"}
	}
	return buildTable(header, dataRows)
}
