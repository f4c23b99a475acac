package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Table {
	return New([]Column{
		{Key: "region", Label: "Region", Kind: KindText, Values: []Value{Text("North"), Text("South"), Text("North")}},
		{Key: "units", Label: "Units", Kind: KindInteger, Values: []Value{Integer(10), Integer(5), AbsentValue}},
	})
}

func TestTableCellAndKeys(t *testing.T) {
	tbl := sample()
	assert.Equal(t, 3, tbl.Len())
	assert.ElementsMatch(t, []string{"region", "units"}, tbl.Keys())
	assert.Equal(t, "North", tbl.Cell(0, "region").Raw())
	assert.True(t, tbl.Cell(2, "units").Absent)
	assert.Equal(t, AbsentValue, tbl.Cell(99, "region"))
	assert.Equal(t, AbsentValue, tbl.Cell(0, "missing"))
}

func TestTableWithColumn(t *testing.T) {
	tbl := sample()
	derived := tbl.WithColumn(Column{Key: "share", Label: "Share", Kind: KindReal, Values: []Value{Real(0.5), Real(0.25), Real(0.25)}})
	require.NotSame(t, tbl, derived)
	assert.Equal(t, 3, tbl.Len(), "original table untouched")
	assert.Len(t, derived.Keys(), 3)
	assert.Equal(t, 0.5, derived.Cell(0, "share").Real)

	replaced := derived.WithColumn(Column{Key: "share", Label: "Share", Kind: KindReal, Values: []Value{Real(1)}})
	assert.Len(t, replaced.Keys(), 3, "replacing an existing key does not grow the column count")
}

func TestSubViewIsolatesIndices(t *testing.T) {
	tbl := sample()
	view := Sub(tbl, []int{1, 0})
	assert.Equal(t, 2, view.Len())
	assert.Equal(t, "South", view.Cell(0, "region").Raw())
	assert.Equal(t, "North", view.Cell(1, "region").Raw())
	assert.Equal(t, AbsentValue, view.Cell(5, "region"))
}

func TestOverlayAddsDerivedColumns(t *testing.T) {
	tbl := sample()
	view := WithColumns(tbl, map[string][]Value{
		"double_units": {Real(20), Real(10), AbsentValue},
	}, []string{"double_units"})
	assert.Contains(t, view.Keys(), "double_units")
	assert.Equal(t, "North", view.Cell(0, "region").Raw())
	assert.Equal(t, 20.0, view.Cell(0, "double_units").Real)
}

func TestValueDisplaySentinel(t *testing.T) {
	assert.Equal(t, SentinelEmptyCells, AbsentValue.Display())
	assert.Equal(t, "", AbsentValue.Raw())
	assert.Equal(t, "North", Text("North").Display())
}
