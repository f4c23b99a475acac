package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// writeError maps err to its status code via statusFor, logs it once at
// the boundary (never again further up the call stack), and writes the
// JSON error envelope.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error, datasetID string) {
	status, code := statusFor(err)
	log.Warn().
		Str("code", code).
		Str("datasetId", datasetID).
		Err(err).
		Msg("request failed")
	writeJSON(w, status, errorEnvelope{Error: code})
}
