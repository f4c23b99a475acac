package pivot

import (
	"context"
	"testing"

	"github.com/cpor-labs/cpor-portal/internal/dataset"
	"github.com/cpor-labs/cpor-portal/internal/schema"
	"github.com/cpor-labs/cpor-portal/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// regionProductUnits builds the S1-S4 fixture:
// region,product,units
// N,A,10
// N,B,5
// S,A,3
func regionProductUnits(t *testing.T) *dataset.Dataset {
	t.Helper()
	tbl := table.New([]table.Column{
		{Key: "region", Label: "Region", Kind: table.KindText, Values: []table.Value{
			table.Text("N"), table.Text("N"), table.Text("S"),
		}},
		{Key: "product", Label: "Product", Kind: table.KindText, Values: []table.Value{
			table.Text("A"), table.Text("B"), table.Text("A"),
		}},
		{Key: "units", Label: "Units", Kind: table.KindInteger, Values: []table.Value{
			table.Integer(10), table.Integer(5), table.Integer(3),
		}},
	})
	sc := schema.Schema{
		{Key: "region", Label: "Region", Kind: table.KindText, IsMeasure: false},
		{Key: "product", Label: "Product", Kind: table.KindText, IsMeasure: false},
		{Key: "units", Label: "Units", Kind: table.KindInteger, IsMeasure: true},
	}
	return &dataset.Dataset{ID: "ds1", Name: "fixture", Table: tbl, Schema: sc}
}

func TestPlannerS1BasicPivot(t *testing.T) {
	ds := regionProductUnits(t)
	q := Query{
		Rows:       []string{"region"},
		Columns:    []string{"product"},
		Measures:   []string{"units"},
		Aggregator: "sum",
	}
	res, err := Execute(context.Background(), ds, q)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"A"}, {"B"}}, res.ColumnHeaders)
	assert.Equal(t, [][]string{{"N"}, {"S"}}, res.RowHeaders)
	assert.Equal(t, [][]float64{{10, 5}, {3, 0}}, res.Values)
	assert.Equal(t, []float64{15, 3}, res.RowTotals)
	assert.Equal(t, []float64{13, 5}, res.ColumnTotals)
	assert.Equal(t, float64(18), res.GrandTotal)
}

func TestPlannerS2PostCalculatedShare(t *testing.T) {
	ds := regionProductUnits(t)
	q := Query{
		Rows:       []string{"region"},
		Columns:    []string{"product"},
		Measures:   []string{"units"},
		Aggregator: "sum",
		PostCalculations: []dataset.CalculationSpec{
			{Name: "share", Stage: dataset.StagePost, Expression: "{units}/{units} * 100", ResultKey: "share"},
		},
	}
	res, err := Execute(context.Background(), ds, q)
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	// Original A/B columns untouched, two new "share" columns appended
	// (one per column-group: A and B).
	require.Len(t, res.ColumnHeaders, 4)
	assert.Equal(t, []string{"A", "share"}, res.ColumnHeaders[2])
	assert.Equal(t, []string{"B", "share"}, res.ColumnHeaders[3])

	// N row: units present in both A and B -> 100/100; S row: B cell is 0 -> 0/0 -> 0.
	assert.Equal(t, float64(100), res.Values[0][2])
	assert.Equal(t, float64(100), res.Values[0][3])
	assert.Equal(t, float64(100), res.Values[1][2])
	assert.Equal(t, float64(0), res.Values[1][3])
}

func TestPlannerS3Filter(t *testing.T) {
	ds := regionProductUnits(t)
	q := Query{
		Rows:       []string{"region"},
		Columns:    []string{"product"},
		Measures:   []string{"units"},
		Aggregator: "sum",
		Filters:    map[string][]string{"region": {"N"}},
	}
	res, err := Execute(context.Background(), ds, q)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"N"}}, res.RowHeaders)
	assert.Equal(t, [][]float64{{10, 5}}, res.Values)
	assert.Equal(t, []float64{15}, res.RowTotals)
	assert.Equal(t, float64(15), res.GrandTotal)
}

func TestPlannerS4AggregatorSwitch(t *testing.T) {
	ds := regionProductUnits(t)
	q := Query{
		Rows:       []string{"region"},
		Columns:    []string{},
		Measures:   []string{"units"},
		Aggregator: "avg",
	}
	res, err := Execute(context.Background(), ds, q)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{7.5, 3}, res.RowTotals, 1e-9)
	assert.InDelta(t, 6.0, res.GrandTotal, 1e-9)
}

func TestPlannerSumWithNoGroupingEqualsRawSum(t *testing.T) {
	ds := regionProductUnits(t)
	q := Query{Measures: []string{"units"}, Aggregator: "sum"}
	res, err := Execute(context.Background(), ds, q)
	require.NoError(t, err)
	require.NotNil(t, res.SummaryValue)
	assert.Equal(t, float64(18), *res.SummaryValue)
	assert.Equal(t, float64(18), res.GrandTotal)
}

func TestPlannerPreCalculationEqualsColumn(t *testing.T) {
	ds := regionProductUnits(t)
	q := Query{
		Measures: []string{"unitsCopy"},
		Aggregator: "sum",
		PreCalculations: []dataset.CalculationSpec{
			{Name: "copy", Stage: dataset.StagePre, Expression: "{units}", ResultKey: "unitsCopy"},
		},
	}
	res, err := Execute(context.Background(), ds, q)
	require.NoError(t, err)
	assert.Equal(t, float64(18), res.GrandTotal)
}

func TestPlannerEmptyFilterYieldsZeroRows(t *testing.T) {
	ds := regionProductUnits(t)
	q := Query{
		Rows:       []string{"region"},
		Measures:   []string{"units"},
		Aggregator: "sum",
		Filters:    map[string][]string{"region": {}},
	}
	res, err := Execute(context.Background(), ds, q)
	require.NoError(t, err)
	assert.Empty(t, res.RowHeaders)
	assert.Equal(t, float64(0), res.GrandTotal)
}

func TestPlannerTooManyMeasures(t *testing.T) {
	ds := regionProductUnits(t)
	q := Query{
		Measures:   []string{"units", "units", "units", "units", "units", "units", "units"},
		Aggregator: "sum",
	}
	_, err := Execute(context.Background(), ds, q)
	assert.ErrorIs(t, err, ErrTooManyMeasures)
}

func TestPlannerNoMeasure(t *testing.T) {
	ds := regionProductUnits(t)
	_, err := Execute(context.Background(), ds, Query{Aggregator: "sum"})
	assert.ErrorIs(t, err, ErrNoMeasure)
}

func TestPlannerUnknownAggregator(t *testing.T) {
	ds := regionProductUnits(t)
	_, err := Execute(context.Background(), ds, Query{Measures: []string{"units"}, Aggregator: "bogus"})
	assert.ErrorIs(t, err, ErrUnknownAggregator)
}

func TestPlannerUnknownColumn(t *testing.T) {
	ds := regionProductUnits(t)
	_, err := Execute(context.Background(), ds, Query{
		Rows:       []string{"nope"},
		Measures:   []string{"units"},
		Aggregator: "sum",
	})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestPlannerCancelledContext(t *testing.T) {
	ds := regionProductUnits(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Execute(ctx, ds, Query{Measures: []string{"units"}, Aggregator: "sum"})
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestPlannerDivisionByZeroPostCalcYieldsZero(t *testing.T) {
	ds := regionProductUnits(t)
	q := Query{
		Measures:   []string{"units"},
		Aggregator: "sum",
		PostCalculations: []dataset.CalculationSpec{
			{Name: "bad", Stage: dataset.StagePost, Expression: "{units} / ({units} - {units})", ResultKey: "bad"},
		},
	}
	res, err := Execute(context.Background(), ds, q)
	require.NoError(t, err)
	assert.Equal(t, float64(0), res.SummaryValues["bad"])
}

func TestPlannerCurrencyFormat(t *testing.T) {
	tbl := table.New([]table.Column{
		{Key: "ugr", Label: "UGR", Kind: table.KindText, Values: []table.Value{table.Text("X")}},
		{Key: "valorEstimado", Label: "Valor Estimado", Kind: table.KindReal, Values: []table.Value{table.Real(1000)}},
	})
	sc := schema.Schema{
		{Key: "ugr", Label: "UGR", Kind: table.KindText, IsMeasure: false},
		{Key: "valorEstimado", Label: "Valor Estimado", Kind: table.KindReal, IsMeasure: true},
	}
	ds := &dataset.Dataset{ID: "ds2", Table: tbl, Schema: sc}
	res, err := Execute(context.Background(), ds, Query{Measures: []string{"valorEstimado"}, Aggregator: "sum"})
	require.NoError(t, err)
	assert.Equal(t, "currency", res.ValueFormat)
}
