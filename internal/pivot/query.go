// Package pivot implements the Pivot Planner: filter, pre-calculate,
// group, materialize, post-calculate, total and format a PivotQuery
// against a stored Dataset, generalizing the teacher engine's
// filters.go/aggregators.go/executor.go pipeline from dimension/measure
// maps to arbitrary typed columns.
package pivot

import (
	"errors"
	"fmt"

	"github.com/cpor-labs/cpor-portal/internal/dataset"
)

// MaxMeasures bounds how many measures a single PivotQuery may request.
const MaxMeasures = 6

var (
	ErrNoMeasure         = errors.New("pivot: at least one measure is required")
	ErrTooManyMeasures   = fmt.Errorf("pivot: at most %d measures allowed", MaxMeasures)
	ErrUnknownAggregator = errors.New("pivot: unknown aggregator")
	ErrUnknownColumn     = errors.New("pivot: referenced column does not exist in the dataset schema")
	ErrCancelled         = errors.New("pivot: cancelled")
	ErrTimeout           = errors.New("pivot: deadline exceeded")
)

// InvalidExpressionError wraps a calculated-column compile/eval failure
// with the offending column's name, mapped by the HTTP facade to the
// spec's InvalidExpression status code.
type InvalidExpressionError struct {
	Name string
	Err  error
}

func (e *InvalidExpressionError) Error() string {
	return fmt.Sprintf("pivot: invalid expression in %q: %v", e.Name, e.Err)
}

func (e *InvalidExpressionError) Unwrap() error { return e.Err }

// Query is the bound request against one Dataset.
type Query struct {
	DatasetID         string
	Rows              []string
	Columns           []string
	Measures          []string
	Aggregator        string
	Filters           map[string][]string
	PreCalculations   []dataset.CalculationSpec
	PostCalculations  []dataset.CalculationSpec
}

// Result is the materialized pivot matrix.
type Result struct {
	Rows          []string             `json:"rows"`
	Columns       []string             `json:"columns"`
	RowHeaders    [][]string           `json:"rowHeaders"`
	ColumnHeaders [][]string           `json:"columnHeaders"`
	ColumnKeys    []string             `json:"columnKeys"`
	Values        [][]float64          `json:"values"`
	RowTotals     []float64            `json:"rowTotals"`
	ColumnTotals  []float64            `json:"columnTotals"`
	GrandTotal    float64              `json:"grandTotal"`
	Aggregator    string               `json:"aggregator"`
	ValueFormat   string               `json:"valueFormat"`
	SummaryValue  *float64             `json:"summaryValue,omitempty"`
	SummaryValues map[string]float64   `json:"summaryValues,omitempty"`
	Calculations  dataset.Calculations `json:"calculations"`
	Warnings      []string             `json:"warnings,omitempty"`
}

type measureInfo struct {
	key   string
	label string
}

// currencyHeuristic matches measure names the format step treats as money.
const currencyHeuristic = `(?i)valor|saldo|empenho|executado|estimado`
