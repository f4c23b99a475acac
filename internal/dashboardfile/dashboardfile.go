// Package dashboardfile materializes the primary contracts dataset's
// derived view to dashboard_data.json, the integration surface two
// auxiliary dashboards poll directly instead of calling the HTTP API.
package dashboardfile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpor-labs/cpor-portal/internal/contracts"
)

// Projection is the on-disk schema: a deliberately narrower view than
// DashboardView, matching the field names external consumers already
// depend on.
type Projection struct {
	KPIs                contracts.KPIs            `json:"kpis"`
	UGRAnalysis         []contracts.GroupStat     `json:"ugr_analysis"`
	MonthlyConsumption  []contracts.MonthlySeries `json:"monthly_consumption"`
	ExpiringContracts   []contracts.ExpiringItem  `json:"expiring_contracts_list"`
	ExpiredContracts    []contracts.ExpiringItem  `json:"expired_contracts_list"`
	RawDataForFilters   []contracts.Row           `json:"raw_data_for_filters"`
}

// FromView builds the Projection an in-memory DashboardView and its
// source rows materialize to.
func FromView(view contracts.DashboardView, rows []contracts.Row) Projection {
	return Projection{
		KPIs:               view.KPIs,
		UGRAnalysis:        view.UnitBreakdown,
		MonthlyConsumption: view.MonthlyConsumption,
		ExpiringContracts:  view.ExpiringContractsList,
		ExpiredContracts:   view.ExpiredContractsList,
		RawDataForFilters:  rows,
	}
}

// Write serializes p to path atomically: marshal to a temp file in the
// same directory, then rename over the destination, so a concurrent
// reader never observes a partially-written file.
func Write(path string, p Projection) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dashboard_data-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
