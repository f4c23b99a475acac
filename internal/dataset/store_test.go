package dataset

import (
	"sync"
	"testing"

	"github.com/cpor-labs/cpor-portal/internal/schema"
	"github.com/cpor-labs/cpor-portal/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() (*table.Table, schema.Schema) {
	tbl := table.New([]table.Column{
		{Key: "region", Label: "Region", Kind: table.KindText, Values: []table.Value{table.Text("North"), table.Text("South")}},
		{Key: "units", Label: "Units", Kind: table.KindInteger, Values: []table.Value{table.Integer(10), table.Integer(4)}},
		{Key: "price", Label: "Price", Kind: table.KindReal, Values: []table.Value{table.Real(2.5), table.Real(3)}},
	})
	sch := schema.Schema{
		{Key: "region", Label: "Region", Kind: table.KindText, IsMeasure: false},
		{Key: "units", Label: "Units", Kind: table.KindInteger, IsMeasure: true},
		{Key: "price", Label: "Price", Kind: table.KindReal, IsMeasure: true},
	}
	return tbl, sch
}

func TestStorePutAndGet(t *testing.T) {
	s := NewStore()
	tbl, sch := sampleTable()
	ds, err := s.Put("sales.csv", KindGeneric, tbl, sch)
	require.NoError(t, err)
	require.NotEmpty(t, ds.ID)

	got, ok := s.Get(ds.ID)
	require.True(t, ok)
	assert.Equal(t, "sales.csv", got.Name)
	assert.Equal(t, 2, got.Table.Len())
}

func TestStorePutRejectsEmptyName(t *testing.T) {
	s := NewStore()
	tbl, sch := sampleTable()
	_, err := s.Put("", KindGeneric, tbl, sch)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestStoreGetUnknownID(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestStoreTwoIDsNeverCollide(t *testing.T) {
	s := NewStore()
	tbl, sch := sampleTable()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ds, err := s.Put("sales.csv", KindGeneric, tbl, sch)
		require.NoError(t, err)
		assert.False(t, seen[ds.ID])
		seen[ds.ID] = true
	}
}

func TestStoreUpdateCalculationsMaterializesPreColumn(t *testing.T) {
	s := NewStore()
	tbl, sch := sampleTable()
	ds, err := s.Put("sales.csv", KindGeneric, tbl, sch)
	require.NoError(t, err)

	updated, err := s.UpdateCalculations(ds.ID, Calculations{
		Pre: []CalculationSpec{
			{ID: "c1", Name: "Total", Stage: StagePre, Expression: "{units} * {price}", ResultKey: "total"},
		},
	})
	require.NoError(t, err)

	col, ok := updated.Table.Column("total")
	require.True(t, ok)
	assert.Equal(t, 25.0, col.Values[0].Real)
	assert.Equal(t, 12.0, col.Values[1].Real)

	entry, ok := updated.Schema.Get("total")
	require.True(t, ok)
	assert.True(t, entry.Calculated)
	assert.True(t, entry.IsMeasure)

	// Original snapshot is untouched (copy-on-write).
	_, present := ds.Table.Column("total")
	assert.False(t, present)
}

func TestStoreUpdateCalculationsIsIdempotent(t *testing.T) {
	s := NewStore()
	tbl, sch := sampleTable()
	ds, _ := s.Put("sales.csv", KindGeneric, tbl, sch)

	calc := Calculations{Pre: []CalculationSpec{
		{ID: "c1", Name: "Total", Stage: StagePre, Expression: "{units} * {price}", ResultKey: "total"},
	}}
	first, err := s.UpdateCalculations(ds.ID, calc)
	require.NoError(t, err)
	second, err := s.UpdateCalculations(ds.ID, calc)
	require.NoError(t, err)

	assert.Equal(t, len(first.Table.Keys()), len(second.Table.Keys()), "re-applying the same spec must not stack a duplicate column")
}

func TestStoreUpdateCalculationsInvalidExpression(t *testing.T) {
	s := NewStore()
	tbl, sch := sampleTable()
	ds, _ := s.Put("sales.csv", KindGeneric, tbl, sch)

	_, err := s.UpdateCalculations(ds.ID, Calculations{Pre: []CalculationSpec{
		{ID: "c1", Name: "Bad", Stage: StagePre, Expression: "{units} +", ResultKey: "bad"},
	}})
	assert.Error(t, err)

	// Failed update must not have published a half-applied dataset.
	got, _ := s.Get(ds.ID)
	_, ok := got.Table.Column("bad")
	assert.False(t, ok)
}

func TestStoreUpdateCalculationsUnknownDataset(t *testing.T) {
	s := NewStore()
	_, err := s.UpdateCalculations("nope", Calculations{})
	assert.ErrorIs(t, err, ErrUnknownDataset)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	s := NewStore()
	tbl, sch := sampleTable()
	ds, _ := s.Put("sales.csv", KindGeneric, tbl, sch)
	s.Delete(ds.ID)
	s.Delete(ds.ID)
	_, ok := s.Get(ds.ID)
	assert.False(t, ok)
}

func TestStoreConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	s := NewStore()
	tbl, sch := sampleTable()
	ds, _ := s.Put("sales.csv", KindGeneric, tbl, sch)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, ok := s.Get(ds.ID)
			require.True(t, ok)
			_ = got.Table.Len()
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.UpdateCalculations(ds.ID, Calculations{Pre: []CalculationSpec{
			{ID: "c1", Name: "Total", Stage: StagePre, Expression: "{units} * {price}", ResultKey: "total"},
		}})
	}()
	wg.Wait()
}
