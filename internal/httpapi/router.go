// Package httpapi is the HTTP Facade: a chi router exposing the
// upload, pivot, export, dataset-management and dashboard endpoints
// over the Dataset Store, grounded on the gateway's NewRouter
// middleware chain (CORS omitted — this portal is same-origin).
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cpor-labs/cpor-portal/internal/config"
	"github.com/cpor-labs/cpor-portal/internal/dataset"
	"github.com/cpor-labs/cpor-portal/internal/driveprovider"
)

// SoftTimeout and HardTimeout bound a pivot request per §5: exceeding
// the soft deadline surfaces a warning, exceeding the hard deadline
// aborts the request with Timeout.
const (
	SoftTimeout = 30 * time.Second
	HardTimeout = 60 * time.Second
)

// Server bundles every handler group's dependencies.
type Server struct {
	Store       *dataset.Store
	Config      *config.Config
	Logger      zerolog.Logger
	DriveFileID string
	Provider    *driveprovider.Provider
	DashboardID func() (string, bool) // returns the current primary dashboard dataset id, if any
	SetDashboard func(id string)
}

// NewRouter builds the full chi router: the middleware chain, then
// every route group.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(s.Logger))
	r.Use(maxBodySize(s.Config.MaxUploadBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Get("/filter-values", s.handleFilterValues)
		r.Post("/pivot", withTimeout(s.handlePivot, HardTimeout))
		r.Post("/export", withTimeout(s.handleExport, HardTimeout))
		r.Delete("/dataset/{id}", s.handleDeleteDataset)
		r.Get("/dataset/{id}/calculations", s.handleGetCalculations)
		r.Put("/dataset/{id}/calculations", s.handleUpdateCalculations)

		r.Post("/dashboard/upload", s.handleDashboardUpload)
		r.Post("/dashboard/query", withTimeout(s.handleDashboardQuery, HardTimeout))
		r.Post("/dashboard/refresh-drive", s.handleDashboardRefresh)
	})

	return r
}

func withTimeout(h http.HandlerFunc, d time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		h(w, r.WithContext(ctx))
	}
}

func maxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = 25 * 1024 * 1024
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rw, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("reqId", chimw.GetReqID(r.Context())).
				Int("status", rw.Status()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}
