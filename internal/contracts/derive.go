package contracts

import (
	"math"
	"sort"
	"strings"
	"time"
)

// defaultTopN bounds the expiring/expired/supplier-concentration lists
// when the caller does not request a specific limit.
const defaultTopN = 10

// DeriveKPIs computes the dashboard's top-line summary over rows.
func DeriveKPIs(rows []Row, today time.Time) KPIs {
	var k KPIs
	for _, r := range rows {
		k.TotalEstimated += r.EstimatedAnnual
		k.TotalExecuted += r.Executed
		k.TotalCommitted += r.Committed
		if isExpiringSoon(r, today) {
			k.ExpiringIn60Days++
		}
		if isExpired(r, today) {
			k.ExpiredCount++
		}
	}
	k.Balance = math.Max(k.TotalEstimated-k.TotalExecuted, 0)
	if k.TotalEstimated > 0 {
		k.ExecutionPercent = k.TotalExecuted / k.TotalEstimated * 100
	}
	k.TotalEstimated = roundMoney(k.TotalEstimated)
	k.TotalExecuted = roundMoney(k.TotalExecuted)
	k.TotalCommitted = roundMoney(k.TotalCommitted)
	k.Balance = roundMoney(k.Balance)
	return k
}

func isExpiringSoon(r Row, today time.Time) bool {
	if r.VigencyEnd == nil {
		return false
	}
	days := int(r.VigencyEnd.Sub(today).Hours() / 24)
	return days >= 0 && days <= ExpiringWindowDays
}

func isExpired(r Row, today time.Time) bool {
	return r.VigencyEnd != nil && r.VigencyEnd.Before(today)
}

func isUGRExpired(r Row, today time.Time) bool {
	if r.VigencyEnd != nil && r.VigencyEnd.Before(today) {
		return true
	}
	upper := strings.ToUpper(r.Status)
	return strings.Contains(upper, "VENC") && !strings.Contains(upper, "VENCENDO")
}

// DeriveGroupStats groups rows by keyFn (the UGR or the PI breakdown
// both call this with their own selector) and rolls up the same
// totals the KPI summary computes, per group.
func DeriveGroupStats(rows []Row, today time.Time, keyFn func(Row) string) []GroupStat {
	type acc struct {
		est, exec, committed float64
		active, expired      int
	}
	groups := make(map[string]*acc)
	var order []string
	for _, r := range rows {
		key := keyFn(r)
		if key == "" {
			continue
		}
		a, ok := groups[key]
		if !ok {
			a = &acc{}
			groups[key] = a
			order = append(order, key)
		}
		a.est += r.EstimatedAnnual
		a.exec += r.Executed
		a.committed += r.Committed
		if isUGRExpired(r, today) {
			a.expired++
		} else {
			a.active++
		}
	}
	sort.Strings(order)
	out := make([]GroupStat, 0, len(order))
	for _, key := range order {
		a := groups[key]
		var pct float64
		if a.est > 0 {
			pct = a.exec / a.est * 100
		}
		out = append(out, GroupStat{
			Key:              key,
			TotalEstimated:   roundMoney(a.est),
			TotalExecuted:    roundMoney(a.exec),
			TotalCommitted:   roundMoney(a.committed),
			ExecutionPercent: pct,
			ActiveCount:      a.active,
			ExpiredCount:     a.expired,
		})
	}
	return out
}

// DeriveSupplierConcentration rolls up committed/executed totals per
// supplier, returning the top-N ranked by descending executed amount.
func DeriveSupplierConcentration(rows []Row, topN int) []SupplierStat {
	type acc struct{ committed, executed float64 }
	groups := make(map[string]*acc)
	var order []string
	for _, r := range rows {
		if r.Supplier == "" {
			continue
		}
		a, ok := groups[r.Supplier]
		if !ok {
			a = &acc{}
			groups[r.Supplier] = a
			order = append(order, r.Supplier)
		}
		a.committed += r.Committed
		a.executed += r.Executed
	}
	out := make([]SupplierStat, 0, len(order))
	for _, s := range order {
		a := groups[s]
		out = append(out, SupplierStat{Supplier: s, Committed: roundMoney(a.committed), Executed: roundMoney(a.executed)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Executed > out[j].Executed })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// DeriveMonthlySeries sums each of the 12 month columns across rows.
func DeriveMonthlySeries(rows []Row) []MonthlySeries {
	var totals [12]float64
	for _, r := range rows {
		for m, v := range r.Months {
			totals[m] += v
		}
	}
	out := make([]MonthlySeries, 12)
	for m := range totals {
		out[m] = MonthlySeries{Month: m + 1, Total: roundMoney(totals[m])}
	}
	return out
}

// CollapseMonthlySeries folds a 12-point monthly series into a single
// "total" bucket, for the dashboard query's chartMode=total view where
// the caller wants one aggregate bar instead of a month-by-month line.
func CollapseMonthlySeries(series []MonthlySeries) []MonthlySeries {
	var total float64
	for _, s := range series {
		total += s.Total
	}
	return []MonthlySeries{{Month: 0, Total: roundMoney(total)}}
}

func expiringItem(r Row, daysLeft int) ExpiringItem {
	sev, icon, motivo := SeverityInfo, "info", "Dentro do prazo"
	switch {
	case daysLeft < 0:
		sev, icon, motivo = SeverityCritical, "expired", "Vigência encerrada"
	case daysLeft <= 15:
		sev, icon, motivo = SeverityCritical, "urgent", "Vencimento iminente"
	case daysLeft <= 30:
		sev, icon, motivo = SeverityWarning, "soon", "Vencimento próximo"
	}
	return ExpiringItem{
		Description: r.Description,
		UGR:         r.UGR,
		VigencyEnd:  *r.VigencyEnd,
		DaysLeft:    daysLeft,
		Icon:        icon,
		Motivo:      motivo,
		Severity:    sev,
	}
}

// DeriveExpiringList returns contracts expiring within the configured
// window (inclusive), ranked by ascending days remaining — the most
// urgent first.
func DeriveExpiringList(rows []Row, today time.Time, topN int) []ExpiringItem {
	var items []ExpiringItem
	for _, r := range rows {
		if r.VigencyEnd == nil {
			continue
		}
		days := int(r.VigencyEnd.Sub(today).Hours() / 24)
		if days < 0 || days > ExpiringWindowDays {
			continue
		}
		items = append(items, expiringItem(r, days))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DaysLeft < items[j].DaysLeft })
	if topN > 0 && len(items) > topN {
		items = items[:topN]
	}
	return items
}

// DeriveExpiredList returns contracts whose vigency has already lapsed,
// ranked by descending staleness (longest-expired first).
func DeriveExpiredList(rows []Row, today time.Time, topN int) []ExpiringItem {
	var items []ExpiringItem
	for _, r := range rows {
		if r.VigencyEnd == nil || !r.VigencyEnd.Before(today) {
			continue
		}
		days := -int(today.Sub(*r.VigencyEnd).Hours() / 24)
		items = append(items, expiringItem(r, days))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DaysLeft < items[j].DaysLeft })
	if topN > 0 && len(items) > topN {
		items = items[:topN]
	}
	return items
}

// DeriveHeatmap builds one row per contract description with its
// 12-month series, flagging the month its vigency ends when that end
// date falls within the current year.
func DeriveHeatmap(rows []Row, today time.Time) []HeatmapRow {
	out := make([]HeatmapRow, 0, len(rows))
	for _, r := range rows {
		hr := HeatmapRow{Description: r.Description, Months: r.Months}
		for m, v := range hr.Months {
			hr.Months[m] = roundMoney(v)
		}
		if r.VigencyEnd != nil && r.VigencyEnd.Year() == today.Year() {
			hr.HighlightMonth = int(r.VigencyEnd.Month())
		}
		out = append(out, hr)
	}
	return out
}

// FilterRows keeps only rows matching every supplied filter's
// allow-set. Supported keys: ugr, pi, supplier, status.
func FilterRows(rows []Row, filters map[string][]string) []Row {
	if len(filters) == 0 {
		return rows
	}
	allow := make(map[string]map[string]bool, len(filters))
	for k, vals := range filters {
		set := make(map[string]bool, len(vals))
		for _, v := range vals {
			set[strings.ToLower(v)] = true
		}
		allow[strings.ToLower(k)] = set
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if set, ok := allow["ugr"]; ok && !set[strings.ToLower(r.UGR)] {
			continue
		}
		if set, ok := allow["pi"]; ok && !set[strings.ToLower(r.PI)] {
			continue
		}
		if set, ok := allow["supplier"]; ok && !set[strings.ToLower(r.Supplier)] {
			continue
		}
		if set, ok := allow["status"]; ok && !set[strings.ToLower(r.Status)] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// BuildDashboardView assembles the full derived payload a dashboard
// query returns: filter, then every derivation, then an optional
// scenario simulation.
func BuildDashboardView(rows []Row, today time.Time, filters map[string][]string, adjustments []Adjustment, warnings []string) DashboardView {
	filtered := FilterRows(rows, filters)
	view := DashboardView{
		KPIs:                  DeriveKPIs(filtered, today),
		UnitBreakdown:         DeriveGroupStats(filtered, today, func(r Row) string { return r.UGR }),
		PIBreakdown:           DeriveGroupStats(filtered, today, func(r Row) string { return r.PI }),
		SupplierConcentration: DeriveSupplierConcentration(filtered, defaultTopN),
		MonthlyConsumption:    DeriveMonthlySeries(filtered),
		ExpiringContractsList: DeriveExpiringList(filtered, today, defaultTopN),
		ExpiredContractsList:  DeriveExpiredList(filtered, today, defaultTopN),
		Heatmap:               DeriveHeatmap(filtered, today),
		Warnings:              warnings,
	}
	if len(adjustments) > 0 {
		s := ApplyScenario(filtered, today, adjustments)
		view.Scenario = &s
	}
	return view
}
