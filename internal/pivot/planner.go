package pivot

import (
	"context"
	"fmt"

	"github.com/cpor-labs/cpor-portal/internal/dataset"
	"github.com/cpor-labs/cpor-portal/internal/expr"
	"github.com/cpor-labs/cpor-portal/internal/table"
)

// Execute runs the full planner pipeline against ds: filter, pre-calculate,
// group, materialize, post-calculate, total and format, per the seven-step
// algorithm. Every blocking phase boundary checks ctx so a caller can
// cancel a heavy pivot mid-flight.
func Execute(ctx context.Context, ds *dataset.Dataset, q Query) (*Result, error) {
	if len(q.Measures) == 0 {
		return nil, ErrNoMeasure
	}
	if len(q.Measures) > MaxMeasures {
		return nil, ErrTooManyMeasures
	}
	if !isValidAggregator(q.Aggregator) {
		return nil, ErrUnknownAggregator
	}

	allowed := allowedColumnKeys(ds, q.PreCalculations)
	measures, err := resolveMeasures(ds, allowed, q.Measures)
	if err != nil {
		return nil, err
	}
	if err := checkColumnsExist(allowed, q.Rows); err != nil {
		return nil, err
	}
	if err := checkColumnsExist(allowed, q.Columns); err != nil {
		return nil, err
	}
	for key := range q.Filters {
		if !allowed[key] {
			return nil, ErrUnknownColumn
		}
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	filtered := applyFilters(table.View(ds.Table), q.Filters)

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	view, preWarnings, err := applyPreCalculations(ds, filtered, q.PreCalculations)
	if err != nil {
		return nil, err
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	var result *Result
	var warnings []string
	if len(q.Rows) == 0 && len(q.Columns) == 0 {
		result, warnings, err = materializeSummary(view, q, measures)
	} else {
		result, warnings, err = materializeGrouped(view, q, measures)
	}
	if err != nil {
		return nil, err
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	result.Calculations = dataset.Calculations{Pre: q.PreCalculations, Post: q.PostCalculations}
	result.Warnings = append(preWarnings, warnings...)
	return result, nil
}

// checkCancelled distinguishes a hard-deadline timeout (§5's 60s cap,
// mapped to Timeout/408) from an ordinary client-disconnect
// cancellation (mapped to Cancelled/499).
func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return ErrCancelled
	default:
		return nil
	}
}

func allowedColumnKeys(ds *dataset.Dataset, pre []dataset.CalculationSpec) map[string]bool {
	allowed := make(map[string]bool, len(ds.Schema.Keys())+len(pre))
	for _, k := range ds.Schema.Keys() {
		allowed[k] = true
	}
	for _, s := range pre {
		allowed[s.ResultKey] = true
	}
	return allowed
}

func checkColumnsExist(allowed map[string]bool, keys []string) error {
	for _, k := range keys {
		if !allowed[k] {
			return ErrUnknownColumn
		}
	}
	return nil
}

func resolveMeasures(ds *dataset.Dataset, allowed map[string]bool, keys []string) ([]measureInfo, error) {
	out := make([]measureInfo, len(keys))
	for i, k := range keys {
		if !allowed[k] {
			return nil, ErrUnknownColumn
		}
		label := k
		if e, ok := ds.Schema.Get(k); ok {
			label = e.Label
		}
		out[i] = measureInfo{key: k, label: label}
	}
	return out, nil
}

func measureLabels(measures []measureInfo) []string {
	labels := make([]string, len(measures))
	for i, m := range measures {
		labels[i] = m.label
	}
	return labels
}

// materializeSummary handles the "no rows, no columns" case: a single
// aggregate (or, with multiple measures, one per measure) with no grid.
func materializeSummary(view table.View, q Query, measures []measureInfo) (*Result, []string, error) {
	n := view.Len()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	res := &Result{
		Rows:          q.Rows,
		Columns:       q.Columns,
		RowHeaders:    [][]string{},
		ColumnHeaders: [][]string{},
		ColumnKeys:    []string{},
		Values:        [][]float64{},
		RowTotals:     []float64{},
		ColumnTotals:  []float64{},
		Aggregator:    q.Aggregator,
		ValueFormat:   decideFormat(q.Aggregator, measureLabels(measures)),
	}

	summaryValues := make(map[string]float64, len(measures))
	for _, m := range measures {
		summaryValues[m.key] = aggregate(view, indices, m.key, q.Aggregator)
	}

	if len(measures) == 1 {
		v := summaryValues[measures[0].key]
		res.SummaryValue = &v
	} else {
		res.SummaryValues = summaryValues
	}
	res.GrandTotal = summaryValues[measures[0].key]

	var warnings []string
	for _, spec := range q.PostCalculations {
		prog, err := expr.Compile(spec.Expression, spec.Decimals)
		if err != nil {
			return nil, nil, &InvalidExpressionError{Name: spec.Name, Err: err}
		}
		env := make(expr.MapEnv, len(measures))
		for _, m := range measures {
			env[m.key] = summaryValues[m.key]
			env[m.label] = summaryValues[m.key]
		}
		v, unresolved := prog.Eval(env)
		for _, name := range unresolved {
			warnings = append(warnings, fmt.Sprintf("%s: unknown placeholder {%s}", spec.Name, name))
		}
		if res.SummaryValues == nil {
			res.SummaryValues = make(map[string]float64, len(q.PostCalculations))
		}
		res.SummaryValues[spec.ResultKey] = v
	}

	return res, warnings, nil
}

type pairKey struct{ row, col int }

type visibleColumn struct {
	colIdx  int
	measure measureInfo
	header  []string
}

// materializeGrouped handles every case with at least one row or column
// dimension: group, materialize the value grid, append post-calculated
// columns and compute totals, steps 3-6 of the planner algorithm.
func materializeGrouped(view table.View, q Query, measures []measureInfo) (*Result, []string, error) {
	n := view.Len()
	rowTuples := rowColTuples(view, q.Rows)
	colTuples := rowColTuples(view, q.Columns)

	rowHeaders := distinctSorted(rowTuples)
	colHeaders := distinctSorted(colTuples)

	rowIndexOf := indexTuples(rowHeaders)
	colIndexOf := indexTuples(colHeaders)

	rowBuckets := make([][]int, len(rowHeaders))
	colBuckets := make([][]int, len(colHeaders))
	cellBuckets := make(map[pairKey][]int)

	for i := 0; i < n; i++ {
		ri, rok := rowIndexOf[tupleKey(rowTuples[i])]
		ci, cok := colIndexOf[tupleKey(colTuples[i])]
		if rok {
			rowBuckets[ri] = append(rowBuckets[ri], i)
		}
		if cok {
			colBuckets[ci] = append(colBuckets[ci], i)
		}
		if rok && cok {
			cellBuckets[pairKey{ri, ci}] = append(cellBuckets[pairKey{ri, ci}], i)
		}
	}

	var visibleCols []visibleColumn
	for ci, h := range colHeaders {
		for _, m := range measures {
			header := h
			if len(measures) > 1 {
				header = append(append([]string{}, h...), m.label)
			}
			visibleCols = append(visibleCols, visibleColumn{colIdx: ci, measure: m, header: header})
		}
	}

	values := make([][]float64, len(rowHeaders))
	for ri := range rowHeaders {
		row := make([]float64, len(visibleCols))
		for vi, vc := range visibleCols {
			idx := cellBuckets[pairKey{ri, vc.colIdx}]
			row[vi] = aggregate(view, idx, vc.measure.key, q.Aggregator)
		}
		values[ri] = row
	}

	primary := measures[0]
	rowTotals := make([]float64, len(rowHeaders))
	for ri := range rowHeaders {
		rowTotals[ri] = aggregate(view, rowBuckets[ri], primary.key, q.Aggregator)
	}

	columnTotals := make([]float64, len(visibleCols))
	for vi, vc := range visibleCols {
		columnTotals[vi] = aggregate(view, colBuckets[vc.colIdx], vc.measure.key, q.Aggregator)
	}

	allIndices := make([]int, n)
	for i := range allIndices {
		allIndices[i] = i
	}
	grandTotal := aggregate(view, allIndices, primary.key, q.Aggregator)

	columnHeaders := make([][]string, len(visibleCols))
	columnKeys := make([]string, len(visibleCols))
	for vi, vc := range visibleCols {
		columnHeaders[vi] = vc.header
		columnKeys[vi] = vc.measure.key
	}

	var warnings []string
	for _, spec := range q.PostCalculations {
		prog, err := expr.Compile(spec.Expression, spec.Decimals)
		if err != nil {
			return nil, nil, &InvalidExpressionError{Name: spec.Name, Err: err}
		}
		// One result column per column-group (colIdx), evaluated once per
		// row against an environment binding every measure visible at that
		// (row, colIdx) position — concrete scenarios require per-group
		// evaluation even though the grouping text reads "once per row".
		for ci, colHeader := range colHeaders {
			var groupVis []int
			for vi, vc := range visibleCols {
				if vc.colIdx == ci {
					groupVis = append(groupVis, vi)
				}
			}
			newCol := make([]float64, len(rowHeaders))
			for ri := range rowHeaders {
				env := make(expr.MapEnv, len(groupVis))
				for _, vi := range groupVis {
					vc := visibleCols[vi]
					env[vc.measure.key] = values[ri][vi]
					env[vc.measure.label] = values[ri][vi]
				}
				v, unresolved := prog.Eval(env)
				newCol[ri] = v
				for _, name := range unresolved {
					warnings = append(warnings, fmt.Sprintf("%s: unknown placeholder {%s}", spec.Name, name))
				}
			}
			header := append(append([]string{}, colHeader...), spec.Name)
			columnHeaders = append(columnHeaders, header)
			columnKeys = append(columnKeys, spec.ResultKey)
			for ri := range rowHeaders {
				values[ri] = append(values[ri], newCol[ri])
			}
			var total float64
			for _, v := range newCol {
				total += v
			}
			columnTotals = append(columnTotals, total)
		}
	}

	res := &Result{
		Rows:          q.Rows,
		Columns:       q.Columns,
		RowHeaders:    rowHeaders,
		ColumnHeaders: columnHeaders,
		ColumnKeys:    columnKeys,
		Values:        values,
		RowTotals:     rowTotals,
		ColumnTotals:  columnTotals,
		GrandTotal:    grandTotal,
		Aggregator:    q.Aggregator,
		ValueFormat:   decideFormat(q.Aggregator, measureLabels(measures)),
	}
	return res, warnings, nil
}
