// Package exporter renders a pivot.Result or a generic table of rows to
// Excel or PDF. Both renderers share one "flatten to a 2-D grid" step
// so the number/currency format decision is made exactly once, then
// reused across XLSX number formats and PDF cell text.
package exporter

import (
	"fmt"
	"strings"

	"github.com/cpor-labs/cpor-portal/internal/pivot"
)

// Grid is a flattened sheet: a header row, value rows (already
// formatted as display text), the same rows as raw numerics aligned to
// the columns at index >= LabelCols, and the number format those
// numeric columns should render with.
type Grid struct {
	Headers   []string
	Rows      [][]string
	Numeric   [][]float64
	LabelCols int
	Format    string
}

// FromPivotResult flattens a pivot.Result: the row dimension labels
// first, then one column per pivot column tuple, then a trailing Total
// column, with a matching trailing Total row.
func FromPivotResult(res *pivot.Result) Grid {
	labelCols := len(res.Rows)
	format := formatNumber
	if res.ValueFormat == "currency" {
		format = func(v float64) string { return "R$ " + formatNumber(v) }
	}
	headers := make([]string, 0, labelCols+len(res.ColumnHeaders)+1)
	headers = append(headers, res.Rows...)
	headers = append(headers, flattenColumnHeaders(res.ColumnHeaders)...)
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(res.RowHeaders)+1)
	numeric := make([][]float64, 0, len(res.RowHeaders)+1)
	for ri, rh := range res.RowHeaders {
		row := append([]string{}, rh...)
		vals := make([]float64, 0, len(res.ColumnHeaders)+1)
		for _, v := range res.Values[ri] {
			row = append(row, format(v))
			vals = append(vals, v)
		}
		row = append(row, format(res.RowTotals[ri]))
		vals = append(vals, res.RowTotals[ri])
		rows = append(rows, row)
		numeric = append(numeric, vals)
	}

	totalRow := make([]string, labelCols)
	if labelCols > 0 {
		totalRow[0] = "Total"
	}
	totalVals := make([]float64, 0, len(res.ColumnTotals)+1)
	for _, v := range res.ColumnTotals {
		totalRow = append(totalRow, format(v))
		totalVals = append(totalVals, v)
	}
	totalRow = append(totalRow, format(res.GrandTotal))
	totalVals = append(totalVals, res.GrandTotal)
	rows = append(rows, totalRow)
	numeric = append(numeric, totalVals)

	return Grid{Headers: headers, Rows: rows, Numeric: numeric, LabelCols: labelCols, Format: res.ValueFormat}
}

// FromRows flattens an already-tabular dataset (e.g. a DashboardView
// report surface) with no label/value split — every column renders as
// plain text, no number format is applied.
func FromRows(headers []string, rows [][]string) Grid {
	return Grid{Headers: headers, Rows: rows, LabelCols: len(headers), Format: "number"}
}

func flattenColumnHeaders(headers [][]string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.Join(h, " / ")
	}
	return out
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
