package httpapi

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/cpor-labs/cpor-portal/internal/dataset"
	"github.com/cpor-labs/cpor-portal/internal/loader"
)

type aggregationOption struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Format string `json:"format"`
}

var aggregationOptions = []aggregationOption{
	{ID: "sum", Label: "Sum", Format: "number"},
	{ID: "avg", Label: "Average", Format: "number"},
	{ID: "count", Label: "Count", Format: "number"},
	{ID: "distinctCount", Label: "Distinct Count", Format: "number"},
	{ID: "min", Label: "Minimum", Format: "number"},
	{ID: "max", Label: "Maximum", Format: "number"},
}

type uploadResponse struct {
	DatasetID    string            `json:"datasetId"`
	Name         string            `json:"name"`
	Columns      []string          `json:"columns"`
	Dimensions   []string          `json:"dimensions"`
	Measures     []string          `json:"measures"`
	Schema       map[string]string `json:"schema"`
	RowCount     int               `json:"rowCount"`
	Aggregations []aggregationOption `json:"aggregations"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
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

	name := filepath.Base(header.Filename)
	ds, err := s.Store.Put(name, dataset.KindGeneric, tbl, sch)
	if err != nil {
		writeError(w, s.Logger, err, "")
		return
	}

	writeJSON(w, http.StatusOK, buildUploadResponse(ds))
}

func buildUploadResponse(ds *dataset.Dataset) uploadResponse {
	schemaMap := make(map[string]string, len(ds.Schema))
	var dims, measures []string
	for _, e := range ds.Schema {
		schemaMap[e.Key] = e.Kind.String()
		if e.IsMeasure {
			measures = append(measures, e.Label)
		} else {
			dims = append(dims, e.Label)
		}
	}
	return uploadResponse{
		DatasetID:    ds.ID,
		Name:         ds.Name,
		Columns:      ds.Schema.Keys(),
		Dimensions:   dims,
		Measures:     measures,
		Schema:       schemaMap,
		RowCount:     ds.Table.Len(),
		Aggregations: aggregationOptions,
	}
}
