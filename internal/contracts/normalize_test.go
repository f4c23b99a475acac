package contracts

import (
	"testing"
	"time"

	"github.com/cpor-labs/cpor-portal/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureView() table.View {
	end1 := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	end2 := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	return table.New([]table.Column{
		{Key: "descricao", Label: "Descrição", Kind: table.KindText, Values: []table.Value{
			table.Text("Contrato A"), table.Text("Contrato B"),
		}},
		{Key: "ugr", Label: "UGR", Kind: table.KindText, Values: []table.Value{
			table.Text("X"), table.Text("Y"),
		}},
		{Key: "estimado", Label: "Valor Estimado", Kind: table.KindReal, Values: []table.Value{
			table.Real(1000), table.Real(500),
		}},
		{Key: "executado", Label: "Valor Executado", Kind: table.KindReal, Values: []table.Value{
			table.Real(400), table.Real(500),
		}},
		{Key: "fimvigencia", Label: "Fim da Vigência", Kind: table.KindDate, Values: []table.Value{
			table.Date(end1), table.Date(end2),
		}},
	})
}

func TestS5ContractsNormalizerKPIs(t *testing.T) {
	today := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	rows, _, err := Normalize(fixtureView(), today)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	kpis := DeriveKPIs(rows, today)
	assert.Equal(t, float64(1500), kpis.TotalEstimated)
	assert.Equal(t, float64(900), kpis.TotalExecuted)
	assert.InDelta(t, 60.0, kpis.ExecutionPercent, 1e-9)
	assert.Equal(t, 1, kpis.ExpiredCount)
	assert.Equal(t, 0, kpis.ExpiringIn60Days)

	var ugrX, ugrY Row
	for _, r := range rows {
		switch r.UGR {
		case "X":
			ugrX = r
		case "Y":
			ugrY = r
		}
	}
	assert.Equal(t, StatusExpiredPrevious, ugrX.Lifecycle)
	assert.Equal(t, StatusFuture, ugrY.Lifecycle)
}

func TestS6ScenarioAdjustment(t *testing.T) {
	today := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	rows, _, err := Normalize(fixtureView(), today)
	require.NoError(t, err)

	base := DeriveKPIs(rows, today)
	result := ApplyScenario(rows, today, []Adjustment{{UGR: "X", Field: "executed", Delta: 100}})

	assert.Equal(t, float64(100), result.DeltaExecuted)
	assert.Equal(t, float64(0), result.DeltaPlanned)
	// Base KPIs (recomputed independently) are unaffected by the scenario.
	assert.Equal(t, float64(900), base.TotalExecuted)
	assert.Equal(t, float64(1000), result.KPIs.TotalExecuted)
}

func TestNormalizeDiscardsTotalRows(t *testing.T) {
	view := table.New([]table.Column{
		{Key: "descricao", Kind: table.KindText, Values: []table.Value{
			table.Text("Contrato A"), table.Text("Total Geral"),
		}},
		{Key: "ugr", Kind: table.KindText, Values: []table.Value{
			table.Text("X"), table.AbsentValue,
		}},
		{Key: "estimado", Kind: table.KindReal, Values: []table.Value{
			table.Real(1000), table.Real(1000),
		}},
	})
	rows, _, err := Normalize(view, time.Now())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Contrato A", rows[0].Description)
}

func TestNormalizeEmptyInput(t *testing.T) {
	view := table.New([]table.Column{
		{Key: "descricao", Kind: table.KindText, Values: []table.Value{table.Text("Total")}},
		{Key: "ugr", Kind: table.KindText, Values: []table.Value{table.AbsentValue}},
	})
	_, _, err := Normalize(view, time.Now())
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestDeriveGroupStatsSortedByKey(t *testing.T) {
	today := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	rows, _, err := Normalize(fixtureView(), today)
	require.NoError(t, err)

	stats := DeriveGroupStats(rows, today, func(r Row) string { return r.UGR })
	require.Len(t, stats, 2)
	assert.Equal(t, "X", stats[0].Key)
	assert.Equal(t, "Y", stats[1].Key)
	assert.Equal(t, float64(1000), stats[0].TotalEstimated)
}

func TestFilterRowsByUGR(t *testing.T) {
	today := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	rows, _, err := Normalize(fixtureView(), today)
	require.NoError(t, err)

	filtered := FilterRows(rows, map[string][]string{"ugr": {"x"}})
	require.Len(t, filtered, 1)
	assert.Equal(t, "X", filtered[0].UGR)
}

func TestBuildDashboardViewIncludesScenario(t *testing.T) {
	today := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	rows, _, err := Normalize(fixtureView(), today)
	require.NoError(t, err)

	view := BuildDashboardView(rows, today, nil, []Adjustment{{UGR: "X", Field: "executed", Delta: 100}}, nil)
	require.NotNil(t, view.Scenario)
	assert.Equal(t, float64(100), view.Scenario.DeltaExecuted)
	assert.Len(t, view.UnitBreakdown, 2)
	assert.Len(t, view.PIBreakdown, 0)
	assert.Len(t, view.MonthlyConsumption, 12)
}
