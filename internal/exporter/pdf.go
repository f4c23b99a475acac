package exporter

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
)

// ToPDF renders grid as an A4 landscape table, repeating the header
// row on every page via gofpdf's page-break header callback.
func ToPDF(title string, grid Grid) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)

	colWidth := 0.0
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 10)
		w := columnWidth(pdf, len(grid.Headers))
		colWidth = w
		for _, h := range grid.Headers {
			pdf.CellFormat(w, 8, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	})

	pdf.AddPage()
	if colWidth == 0 {
		colWidth = columnWidth(pdf, len(grid.Headers))
	}
	for _, row := range grid.Rows {
		for _, cell := range row {
			pdf.CellFormat(colWidth, 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func columnWidth(pdf *gofpdf.Fpdf, cols int) float64 {
	if cols == 0 {
		cols = 1
	}
	w, _ := pdf.GetPageSize()
	l, _, r, _ := pdf.GetMargins()
	return (w - l - r) / float64(cols)
}
