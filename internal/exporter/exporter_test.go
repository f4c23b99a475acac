package exporter

import (
	"testing"

	"github.com/cpor-labs/cpor-portal/internal/pivot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *pivot.Result {
	return &pivot.Result{
		Rows:          []string{"region"},
		Columns:       []string{"product"},
		RowHeaders:    [][]string{{"N"}, {"S"}},
		ColumnHeaders: [][]string{{"A"}, {"B"}},
		Values:        [][]float64{{10, 5}, {3, 0}},
		RowTotals:     []float64{15, 3},
		ColumnTotals:  []float64{13, 5},
		GrandTotal:    18,
		Aggregator:    "sum",
		ValueFormat:   "number",
	}
}

func TestFromPivotResultShape(t *testing.T) {
	grid := FromPivotResult(sampleResult())
	assert.Equal(t, []string{"region", "A", "B", "Total"}, grid.Headers)
	require.Len(t, grid.Rows, 3) // 2 data rows + 1 total row
	assert.Equal(t, []string{"N", "10.00", "5.00", "15.00"}, grid.Rows[0])
	assert.Equal(t, []string{"Total", "13.00", "5.00", "18.00"}, grid.Rows[2])
	assert.Equal(t, 1, grid.LabelCols)
}

func TestToExcelProducesNonEmptyWorkbook(t *testing.T) {
	grid := FromPivotResult(sampleResult())
	data, err := ToExcel(grid)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// XLSX files are zip archives, identifiable by their local-file-header magic.
	assert.Equal(t, []byte("PK"), data[:2])
}

func TestToPDFProducesNonEmptyDocument(t *testing.T) {
	grid := FromPivotResult(sampleResult())
	data, err := ToPDF("Pivot export", grid)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, []byte("%PDF"), data[:4])
}

func TestFromRowsNoNumericSplit(t *testing.T) {
	grid := FromRows([]string{"ugr", "estimated"}, [][]string{{"X", "1000"}})
	assert.Equal(t, "number", grid.Format)
	assert.Equal(t, 2, grid.LabelCols)
}
