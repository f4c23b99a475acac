package contracts

import "github.com/shopspring/decimal"

// roundMoney stabilizes a money amount at the boundary where it becomes
// user-facing text (KPI totals, group totals, heatmap cells), so
// repeated formatting of the same aggregate is stable regardless of
// prior floating-point accumulation order. Internal aggregation stays
// plain float64 arithmetic; only the values leaving this package are
// rounded.
func roundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
