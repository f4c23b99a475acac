package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cpor-labs/cpor-portal/internal/dataset"
	"github.com/cpor-labs/cpor-portal/internal/filterindex"
)

func (s *Server) handleFilterValues(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("datasetId")
	field := r.URL.Query().Get("field")

	ds, ok := s.Store.Get(id)
	if !ok {
		writeError(w, s.Logger, dataset.ErrUnknownDataset, id)
		return
	}

	values, err := filterindex.Values(ds, field)
	if err != nil {
		writeError(w, s.Logger, err, id)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"values": values})
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.Store.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCalculations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ds, ok := s.Store.Get(id)
	if !ok {
		writeError(w, s.Logger, dataset.ErrUnknownDataset, id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"calculations":         ds.Calculations,
		"availablePostColumns": ds.AvailablePostColumns,
	})
}

func (s *Server) handleUpdateCalculations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var calc dataset.Calculations
	if err := json.NewDecoder(r.Body).Decode(&calc); err != nil {
		writeError(w, s.Logger, &jsonDecodeError{err}, id)
		return
	}

	ds, err := s.Store.UpdateCalculations(id, calc)
	if err != nil {
		writeError(w, s.Logger, err, id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"calculations":         ds.Calculations,
		"availablePostColumns": ds.AvailablePostColumns,
	})
}

type jsonDecodeError struct{ err error }

func (e *jsonDecodeError) Error() string { return "malformed request body: " + e.err.Error() }
func (e *jsonDecodeError) Unwrap() error { return e.err }
