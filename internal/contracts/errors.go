package contracts

import "errors"

// ErrEmptyInput is the fatal anomaly reported when no contract rows
// survive normalization (every row was a "total" row or the sheet was
// empty), distinct from the per-row warnings the normalizer otherwise
// collects.
var ErrEmptyInput = errors.New("contracts: no rows remain after normalization")
