package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cpor-labs/cpor-portal/internal/contracts"
	"github.com/cpor-labs/cpor-portal/internal/dashboardfile"
	"github.com/cpor-labs/cpor-portal/internal/dataset"
	"github.com/cpor-labs/cpor-portal/internal/loader"
)

type datasetRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type dashboardUploadResponse struct {
	Dataset  datasetRef   `json:"dataset"`
	Datasets []datasetRef `json:"datasets"`
}

func (s *Server) handleDashboardUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, s.Logger, &loader.Error{Code: loader.Malformed, Message: "missing file field"}, "")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, s.Logger, &loader.Error{Code: loader.Malformed, Message: err.Error()}, "")
		return
	}

	tbl, sch, err := loader.Load(header.Filename, data)
	if err != nil {
		writeError(w, s.Logger, err, "")
		return
	}

	if _, _, err := contracts.Normalize(tbl, time.Now()); err != nil {
		writeError(w, s.Logger, err, "")
		return
	}

	name := filepath.Base(header.Filename)
	ds, err := s.Store.Put(name, dataset.KindContracts, tbl, sch)
	if err != nil {
		writeError(w, s.Logger, err, "")
		return
	}
	s.SetDashboard(ds.ID)

	if err := s.projectDashboard(ds); err != nil {
		s.Logger.Warn().Err(err).Msg("failed to write dashboard_data.json")
	}

	writeJSON(w, http.StatusOK, dashboardUploadResponse{
		Dataset:  datasetRef{ID: ds.ID, Name: ds.Name},
		Datasets: refsFromStore(s.Store),
	})
}

func refsFromStore(store *dataset.Store) []datasetRef {
	refs := store.List()
	out := make([]datasetRef, len(refs))
	for i, ref := range refs {
		out[i] = datasetRef{ID: ref.Key, Name: ref.Label}
	}
	return out
}

type dashboardQueryRequest struct {
	DatasetID string                  `json:"datasetId"`
	Filters   map[string][]string     `json:"filters"`
	Scenario  *scenarioPayload        `json:"scenario"`
	ChartMode string                  `json:"chartMode"`
}

type scenarioPayload struct {
	Adjustments []contracts.Adjustment `json:"adjustments"`
}

// handleDashboardQuery fans its independent derivations out via
// errgroup and joins before responding, the same shape the analytics
// handler in the referenced ERP codebase uses for its five independent
// KPI/trend/aging queries.
func (s *Server) handleDashboardQuery(w http.ResponseWriter, r *http.Request) {
	var req dashboardQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.Logger, &jsonDecodeError{err}, "")
		return
	}

	ds, ok := s.Store.Get(req.DatasetID)
	if !ok {
		writeError(w, s.Logger, dataset.ErrUnknownDataset, req.DatasetID)
		return
	}

	today := time.Now()
	rows, warnings, err := contracts.Normalize(ds.Table, today)
	if err != nil {
		writeError(w, s.Logger, err, ds.ID)
		return
	}
	filtered := contracts.FilterRows(rows, req.Filters)

	g, ctx := errgroup.WithContext(r.Context())
	var view contracts.DashboardView
	view.Warnings = warnings

	g.Go(func() error { view.KPIs = contracts.DeriveKPIs(filtered, today); return ctxErr(ctx) })
	g.Go(func() error {
		view.UnitBreakdown = contracts.DeriveGroupStats(filtered, today, func(r contracts.Row) string { return r.UGR })
		return ctxErr(ctx)
	})
	g.Go(func() error {
		view.PIBreakdown = contracts.DeriveGroupStats(filtered, today, func(r contracts.Row) string { return r.PI })
		return ctxErr(ctx)
	})
	g.Go(func() error { view.MonthlyConsumption = contracts.DeriveMonthlySeries(filtered); return ctxErr(ctx) })
	g.Go(func() error {
		view.ExpiringContractsList = contracts.DeriveExpiringList(filtered, today, 10)
		view.ExpiredContractsList = contracts.DeriveExpiredList(filtered, today, 10)
		return ctxErr(ctx)
	})

	if err := g.Wait(); err != nil {
		writeError(w, s.Logger, err, ds.ID)
		return
	}

	if req.ChartMode == "total" {
		view.MonthlyConsumption = contracts.CollapseMonthlySeries(view.MonthlyConsumption)
	}

	view.Heatmap = contracts.DeriveHeatmap(filtered, today)
	view.SupplierConcentration = contracts.DeriveSupplierConcentration(filtered, 10)

	if req.Scenario != nil && len(req.Scenario.Adjustments) > 0 {
		result := contracts.ApplyScenario(filtered, today, req.Scenario.Adjustments)
		view.Scenario = &result
	}

	writeJSON(w, http.StatusOK, view)
}

func ctxErr(ctx interface{ Err() error }) error { return ctx.Err() }

func (s *Server) handleDashboardRefresh(w http.ResponseWriter, r *http.Request) {
	if s.Config.DriveSyncToken != "" {
		token := r.Header.Get("X-Portal-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.Config.DriveSyncToken)) != 1 {
			writeJSON(w, http.StatusForbidden, errorEnvelope{Error: "Forbidden"})
			return
		}
	}

	data, name, err := s.Provider.FetchWorkbook(r.Context())
	if err != nil {
		writeError(w, s.Logger, err, "")
		return
	}

	tbl, sch, err := loader.Load(name, data)
	if err != nil {
		writeError(w, s.Logger, err, "")
		return
	}
	if _, _, err := contracts.Normalize(tbl, time.Now()); err != nil {
		writeError(w, s.Logger, err, "")
		return
	}

	ds, err := s.Store.Put(name, dataset.KindContracts, tbl, sch)
	if err != nil {
		writeError(w, s.Logger, err, "")
		return
	}
	s.SetDashboard(ds.ID)

	if err := s.projectDashboard(ds); err != nil {
		s.Logger.Warn().Err(err).Msg("failed to write dashboard_data.json")
	}

	writeJSON(w, http.StatusOK, dashboardUploadResponse{
		Dataset:  datasetRef{ID: ds.ID, Name: ds.Name},
		Datasets: refsFromStore(s.Store),
	})
}

func (s *Server) projectDashboard(ds *dataset.Dataset) error {
	rows, warnings, err := contracts.Normalize(ds.Table, time.Now())
	if err != nil {
		return err
	}
	view := contracts.BuildDashboardView(rows, time.Now(), nil, nil, warnings)
	projection := dashboardfile.FromView(view, rows)
	return dashboardfile.Write(s.Config.DashboardFilePath, projection)
}
