package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cpor-labs/cpor-portal/internal/dataset"
	"github.com/cpor-labs/cpor-portal/internal/exporter"
	"github.com/cpor-labs/cpor-portal/internal/pivot"
)

var exportNameSanitizeRe = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// exportFilename builds "<dataset name>-<timestamp>.<ext>", stripping
// the dataset's own extension and any character unsafe in a
// Content-Disposition filename.
func exportFilename(datasetName, ext string) string {
	base := strings.TrimSuffix(datasetName, filepath.Ext(datasetName))
	base = exportNameSanitizeRe.ReplaceAllString(base, "_")
	if base == "" {
		base = "pivot"
	}
	return fmt.Sprintf("%s-%s.%s", base, time.Now().Format("20060102-150405"), ext)
}

// pivotRequest mirrors PivotQuery over the wire; DatasetID travels in
// the body so a single envelope covers both /pivot and /export.
type pivotRequest struct {
	DatasetID        string                         `json:"datasetId"`
	Rows             []string                       `json:"rows"`
	Columns          []string                       `json:"columns"`
	Measures         []string                       `json:"measures"`
	Aggregator       string                         `json:"aggregator"`
	Filters          map[string][]string            `json:"filters"`
	PreCalculations  []dataset.CalculationSpec      `json:"preCalculations"`
	PostCalculations []dataset.CalculationSpec      `json:"postCalculations"`
}

func (req pivotRequest) toQuery() pivot.Query {
	return pivot.Query{
		DatasetID:        req.DatasetID,
		Rows:             req.Rows,
		Columns:          req.Columns,
		Measures:         req.Measures,
		Aggregator:       req.Aggregator,
		Filters:          req.Filters,
		PreCalculations:  req.PreCalculations,
		PostCalculations: req.PostCalculations,
	}
}

func (s *Server) decodePivotRequest(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, pivot.Query, bool) {
	var req pivotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.Logger, &jsonDecodeError{err}, "")
		return nil, pivot.Query{}, false
	}
	ds, ok := s.Store.Get(req.DatasetID)
	if !ok {
		writeError(w, s.Logger, dataset.ErrUnknownDataset, req.DatasetID)
		return nil, pivot.Query{}, false
	}
	return ds, req.toQuery(), true
}

func (s *Server) handlePivot(w http.ResponseWriter, r *http.Request) {
	ds, q, ok := s.decodePivotRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	res, err := pivot.Execute(r.Context(), ds, q)
	if err != nil {
		writeError(w, s.Logger, err, ds.ID)
		return
	}
	// The hard deadline (60s) is enforced by the route's request
	// context timeout and surfaces as pivot.ErrTimeout above; exceeding
	// only the softer 30s threshold degrades to a warning instead.
	if time.Since(start) > SoftTimeout {
		res.Warnings = append(res.Warnings, "pivot exceeded the 30s soft deadline")
	}
	writeJSON(w, http.StatusOK, res)
}

type exportRequest struct {
	pivotRequest
	Format string `json:"format"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.Logger, &jsonDecodeError{err}, "")
		return
	}
	ds, ok := s.Store.Get(req.DatasetID)
	if !ok {
		writeError(w, s.Logger, dataset.ErrUnknownDataset, req.DatasetID)
		return
	}

	res, err := pivot.Execute(r.Context(), ds, req.toQuery())
	if err != nil {
		writeError(w, s.Logger, err, ds.ID)
		return
	}

	grid := exporter.FromPivotResult(res)
	switch req.Format {
	case "excel":
		data, err := exporter.ToExcel(grid)
		if err != nil {
			writeError(w, s.Logger, err, ds.ID)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(ds.Name, "xlsx")))
		_, _ = w.Write(data)
	case "pdf":
		data, err := exporter.ToPDF(ds.Name, grid)
		if err != nil {
			writeError(w, s.Logger, err, ds.ID)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(ds.Name, "pdf")))
		_, _ = w.Write(data)
	default:
		writeError(w, s.Logger, &jsonDecodeError{fmt.Errorf("unknown export format %q", req.Format)}, ds.ID)
	}
}
