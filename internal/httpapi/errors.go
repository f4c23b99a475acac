package httpapi

import (
	"errors"
	"net/http"

	"github.com/cpor-labs/cpor-portal/internal/contracts"
	"github.com/cpor-labs/cpor-portal/internal/dataset"
	"github.com/cpor-labs/cpor-portal/internal/driveprovider"
	"github.com/cpor-labs/cpor-portal/internal/expr"
	"github.com/cpor-labs/cpor-portal/internal/filterindex"
	"github.com/cpor-labs/cpor-portal/internal/loader"
	"github.com/cpor-labs/cpor-portal/internal/pivot"
)

// statusFor maps a typed component error to the HTTP status the spec's
// error-handling design assigns it. Unrecognized errors fall back to
// 500 (Internal) — the taxonomy covers every client-caused path, so an
// unmapped error is by construction a bug, not a client mistake.
func statusFor(err error) (int, string) {
	var loadErr *loader.Error
	if errors.As(err, &loadErr) {
		switch loadErr.Code {
		case loader.UnsupportedFormat:
			return http.StatusBadRequest, "UnsupportedFormat"
		case loader.Malformed:
			return http.StatusBadRequest, "Malformed"
		case loader.EmptyInput:
			return http.StatusBadRequest, "EmptyInput"
		case loader.SchemaConflict:
			return http.StatusBadRequest, "SchemaConflict"
		}
	}

	var invalidExpr *pivot.InvalidExpressionError
	if errors.As(err, &invalidExpr) {
		return http.StatusBadRequest, "InvalidExpression"
	}

	var syntaxErr *expr.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, expr.ErrEmptyExpression) {
		return http.StatusBadRequest, "InvalidExpression"
	}

	var decodeErr *jsonDecodeError
	if errors.As(err, &decodeErr) {
		return http.StatusBadRequest, "Malformed"
	}

	switch {
	case errors.Is(err, pivot.ErrNoMeasure):
		return http.StatusBadRequest, "NoMeasure"
	case errors.Is(err, pivot.ErrTooManyMeasures):
		return http.StatusBadRequest, "NoMeasure"
	case errors.Is(err, pivot.ErrUnknownAggregator):
		return http.StatusBadRequest, "UnknownAggregator"
	case errors.Is(err, pivot.ErrUnknownColumn), errors.Is(err, filterindex.ErrUnknownColumn):
		return http.StatusBadRequest, "UnknownColumn"
	case errors.Is(err, pivot.ErrCancelled):
		return 499, "Cancelled"
	case errors.Is(err, pivot.ErrTimeout):
		return http.StatusRequestTimeout, "Timeout"
	case errors.Is(err, dataset.ErrUnknownDataset):
		return http.StatusNotFound, "UnknownDataset"
	case errors.Is(err, dataset.ErrInvalidName):
		return http.StatusBadRequest, "Malformed"
	case errors.Is(err, contracts.ErrEmptyInput):
		return http.StatusBadRequest, "EmptyInput"
	case errors.Is(err, driveprovider.ErrRemoteFetchFailed):
		return http.StatusBadGateway, "RemoteFetchFailed"
	default:
		return http.StatusInternalServerError, "Internal"
	}
}
