package contracts

import "time"

// ApplyScenario re-derives KPIs after applying a set of adjustments on
// top of the base aggregation, per the spec's "deltas applied after
// base aggregation" rule — the input rows are never mutated, only the
// reported totals shift.
func ApplyScenario(rows []Row, today time.Time, adjustments []Adjustment) ScenarioResult {
	base := DeriveKPIs(rows, today)

	var deltaPlanned, deltaExecuted, deltaCommitted float64
	for _, adj := range adjustments {
		switch adj.Field {
		case "estimated":
			deltaPlanned += adj.Delta
		case "executed":
			deltaExecuted += adj.Delta
		case "committed":
			deltaCommitted += adj.Delta
		}
	}

	scenarioKPIs := base
	scenarioKPIs.TotalEstimated += deltaPlanned
	scenarioKPIs.TotalExecuted += deltaExecuted
	scenarioKPIs.TotalCommitted += deltaCommitted
	if scenarioKPIs.TotalEstimated-scenarioKPIs.TotalExecuted > 0 {
		scenarioKPIs.Balance = scenarioKPIs.TotalEstimated - scenarioKPIs.TotalExecuted
	} else {
		scenarioKPIs.Balance = 0
	}
	scenarioKPIs.ExecutionPercent = 0
	if scenarioKPIs.TotalEstimated > 0 {
		scenarioKPIs.ExecutionPercent = scenarioKPIs.TotalExecuted / scenarioKPIs.TotalEstimated * 100
	}
	scenarioKPIs.TotalEstimated = roundMoney(scenarioKPIs.TotalEstimated)
	scenarioKPIs.TotalExecuted = roundMoney(scenarioKPIs.TotalExecuted)
	scenarioKPIs.TotalCommitted = roundMoney(scenarioKPIs.TotalCommitted)
	scenarioKPIs.Balance = roundMoney(scenarioKPIs.Balance)

	return ScenarioResult{
		DeltaPlanned:   roundMoney(deltaPlanned),
		DeltaExecuted:  roundMoney(deltaExecuted),
		DeltaCommitted: roundMoney(deltaCommitted),
		KPIs:           scenarioKPIs,
	}
}
