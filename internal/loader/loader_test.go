package loader

import (
	"testing"

	"github.com/cpor-labs/cpor-portal/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSVBasic(t *testing.T) {
	csv := []byte("region,product,units\nN,A,10\nN,B,5\nS,A,3\n")
	tbl, sch, err := Load("sales.csv", csv)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	units, ok := sch.Get("units")
	require.True(t, ok)
	assert.True(t, units.IsMeasure)
	assert.Equal(t, table.KindInteger, units.Kind)

	region, ok := sch.Get("region")
	require.True(t, ok)
	assert.False(t, region.IsMeasure)
}

func TestLoadSniffsSemicolonDelimiter(t *testing.T) {
	csv := []byte("a;b;c\n1;2;3\n4;5;6\n")
	tbl, _, err := Load("x.csv", csv)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, int64(2), tbl.Cell(0, "b").Integer)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, _, err := Load("data.docx", []byte("whatever"))
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, UnsupportedFormat, le.Code)
}

func TestLoadEmptyInput(t *testing.T) {
	_, _, err := Load("x.csv", []byte("\n\n\n"))
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, EmptyInput, le.Code)
}

func TestLoadHeaderOnlyIsEmptyInput(t *testing.T) {
	_, _, err := Load("x.csv", []byte("a,b,c\n"))
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, EmptyInput, le.Code)
}

func TestLoadRealColumnAcceptsLocaleLiterals(t *testing.T) {
	csv := []byte("amount\n\"R$ 1.234,56\"\n\"789,10\"\n50\n")
	tbl, sch, err := Load("x.csv", csv)
	require.NoError(t, err)
	e, _ := sch.Get("amount")
	assert.Equal(t, table.KindReal, e.Kind)
	assert.InDelta(t, 1234.56, tbl.Cell(0, "amount").Real, 1e-9)
}

func TestLoadBooleanNumericColumnIsNotAMeasure(t *testing.T) {
	csv := []byte("flag,amount\n1,10\n0,20\n1,30\n0,40\n1,50\n")
	_, sch, err := Load("x.csv", csv)
	require.NoError(t, err)
	e, _ := sch.Get("flag")
	assert.Equal(t, table.KindText, e.Kind)
	assert.False(t, e.IsMeasure)
}

func TestLoadIdentifierColumnIsNotAMeasure(t *testing.T) {
	csv := []byte("contrato_id,amount\n1,10\n2,20\n3,30\n")
	_, sch, err := Load("x.csv", csv)
	require.NoError(t, err)
	e, _ := sch.Get("contrato_id")
	assert.False(t, e.IsMeasure)
}

func TestLoadColumnNameNormalizationIsIdempotent(t *testing.T) {
	assert.Equal(t, normalizeKey("Região Sul"), normalizeKey(normalizeKey("Região Sul")))
	assert.Equal(t, "regiao_sul", normalizeKey("  Regiao   Sul  "))
}

func TestLoadDuplicateHeaderNamesGetSuffixed(t *testing.T) {
	csv := []byte("name,name\nA,B\nC,D\n")
	tbl, _, err := Load("x.csv", csv)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"name", "name_2"}, tbl.Keys())
}

func TestLoadJSONArray(t *testing.T) {
	body := []byte(`[{"region":"N","units":10},{"region":"S","units":3}]`)
	tbl, sch, err := Load("x.json", body)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	e, _ := sch.Get("units")
	assert.True(t, e.IsMeasure)
}

func TestLoadJSONDataWrapper(t *testing.T) {
	body := []byte(`{"data":[{"a":1},{"a":2}]}`)
	tbl, _, err := Load("x.json", body)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestLoadJSONMalformed(t *testing.T) {
	_, _, err := Load("x.json", []byte(`not json`))
	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, Malformed, le.Code)
}

func TestLoadDateColumn(t *testing.T) {
	csv := []byte("signed_at\n2025-01-01\n2025-02-15\n2025-03-20\n")
	_, sch, err := Load("x.csv", csv)
	require.NoError(t, err)
	e, _ := sch.Get("signed_at")
	assert.Equal(t, table.KindDate, e.Kind)
}
