// Package dataset holds the portal's uploaded-table lifecycle: the
// immutable Dataset snapshot, its calculated-column specs, and the
// single-writer/multi-reader Store that publishes new snapshots via
// copy-on-write, mirroring the teacher engine's RecordView ownership
// discipline but at the whole-dataset granularity the spec calls for.
package dataset

import (
	"time"

	"github.com/cpor-labs/cpor-portal/internal/schema"
	"github.com/cpor-labs/cpor-portal/internal/table"
)

// Kind distinguishes a plain uploaded table from one known to carry
// contract rows, which unlocks the budget/contracts dashboard endpoints.
type Kind int

const (
	KindGeneric Kind = iota
	KindContracts
)

// Stage identifies when a CalculationSpec's expression runs: against raw
// rows before grouping (Pre) or against already-aggregated rows (Post).
type Stage string

const (
	StagePre  Stage = "pre"
	StagePost Stage = "post"
)

// CalculationSpec is one user-defined calculated column.
type CalculationSpec struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Stage      Stage  `json:"stage"`
	Expression string `json:"expression"`
	Decimals   *int   `json:"decimals,omitempty"`
	ResultKey  string `json:"resultKey"`
}

// Calculations splits specs by stage; Pre specs are materialized into the
// dataset's table, Post specs are evaluated per pivot request.
type Calculations struct {
	Pre  []CalculationSpec `json:"pre"`
	Post []CalculationSpec `json:"post"`
}

// ColumnRef is a lightweight (key, label) pair used in dataset listings
// and in the "available post-calculation columns" hint surfaced to the UI.
type ColumnRef struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Dataset is an immutable snapshot: a Table, its Schema, the calculated
// columns currently materialized, and a filter-value cache. Once
// published by the Store it is never mutated in place; updateCalculations
// builds and publishes a new Dataset instead.
type Dataset struct {
	ID                   string
	Name                 string
	Kind                 Kind
	CreatedAt            time.Time
	Table                *table.Table
	Schema               schema.Schema
	Calculations         Calculations
	AvailablePostColumns []ColumnRef
	FilterCache          *Cache
}

// AggregatorNames is the fixed set of aggregations the pivot planner
// supports, in the order they should be offered to a client.
var AggregatorNames = []string{"sum", "avg", "count", "distinctCount", "min", "max"}
