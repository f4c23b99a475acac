package dataset

import "errors"

var (
	ErrUnknownDataset = errors.New("dataset: unknown id")
	ErrInvalidName    = errors.New("dataset: name must not be empty")
)
