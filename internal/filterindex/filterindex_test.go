package filterindex

import (
	"testing"

	"github.com/cpor-labs/cpor-portal/internal/dataset"
	"github.com/cpor-labs/cpor-portal/internal/schema"
	"github.com/cpor-labs/cpor-portal/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	tbl := table.New([]table.Column{
		{Key: "city", Label: "City", Kind: table.KindText, Values: []table.Value{
			table.Text("São Paulo"), table.Text("saopaulo"), table.Text("Brasília"), table.AbsentValue, table.Text("Amazonas"),
		}},
	})
	sch := schema.Schema{{Key: "city", Label: "City", Kind: table.KindText}}
	s := dataset.NewStore()
	ds, err := s.Put("cities.csv", dataset.KindGeneric, tbl, sch)
	require.NoError(t, err)
	return ds
}

func TestValuesLocaleSortingOmitsAbsent(t *testing.T) {
	ds := buildDataset(t)
	values, err := Values(ds, "city")
	require.NoError(t, err)
	require.NotEmpty(t, values)
	assert.NotContains(t, values, table.SentinelEmptyCells, "absent cells are omitted, not surfaced as a sentinel option")
	assert.Contains(t, values, "Amazonas")
	assert.Contains(t, values, "Brasília")
}

func TestValuesCachesResult(t *testing.T) {
	ds := buildDataset(t)
	first, err := Values(ds, "city")
	require.NoError(t, err)
	cached, ok := ds.FilterCache.Get("city")
	require.True(t, ok)
	assert.Equal(t, first, cached)
}

func TestValuesUnknownColumn(t *testing.T) {
	ds := buildDataset(t)
	_, err := Values(ds, "missing")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestValuesDeduplicates(t *testing.T) {
	tbl := table.New([]table.Column{
		{Key: "region", Label: "Region", Kind: table.KindText, Values: []table.Value{table.Text("North"), table.Text("North"), table.Text("South")}},
	})
	sch := schema.Schema{{Key: "region", Label: "Region", Kind: table.KindText}}
	s := dataset.NewStore()
	ds, err := s.Put("x.csv", dataset.KindGeneric, tbl, sch)
	require.NoError(t, err)

	values, err := Values(ds, "region")
	require.NoError(t, err)
	assert.Len(t, values, 2)
}
