package exporter

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Export"

// ToExcel renders grid as a single-sheet workbook: a frozen header row
// and a number format (currency or plain) applied to every numeric
// column, per the XLSX export step.
func ToExcel(grid Grid) ([]byte, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for col, h := range grid.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	numFmt := "#,##0.00"
	if grid.Format == "currency" {
		numFmt = `"R$" #,##0.00`
	}
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, err
	}

	for r, row := range grid.Rows {
		excelRow := r + 2
		for c, cellText := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, excelRow)
			if err != nil {
				return nil, err
			}
			if c >= grid.LabelCols && c-grid.LabelCols < len(grid.Numeric[r]) {
				if err := f.SetCellValue(sheetName, cell, grid.Numeric[r][c-grid.LabelCols]); err != nil {
					return nil, err
				}
				if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
					return nil, err
				}
				continue
			}
			if err := f.SetCellValue(sheetName, cell, cellText); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
