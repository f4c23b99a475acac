package pivot

import (
	"fmt"

	"github.com/cpor-labs/cpor-portal/internal/dataset"
	"github.com/cpor-labs/cpor-portal/internal/expr"
	"github.com/cpor-labs/cpor-portal/internal/table"
)

type rowEnv struct {
	view table.View
	row  int
}

func (e rowEnv) Lookup(name string) (float64, bool) {
	return e.view.Cell(e.row, name).Numeric()
}

// applyPreCalculations evaluates any query-supplied pre-calc spec that is
// not already materialized on the dataset (same result key and
// expression already stored via updateCalculations), producing an
// ephemeral overlay column that participates in grouping but is dropped
// once the query finishes, per spec step 2.
func applyPreCalculations(ds *dataset.Dataset, view table.View, specs []dataset.CalculationSpec) (table.View, []string, error) {
	materialized := make(map[string]dataset.CalculationSpec, len(ds.Calculations.Pre))
	for _, s := range ds.Calculations.Pre {
		materialized[s.ResultKey] = s
	}

	extra := make(map[string][]table.Value)
	var order []string
	var warnings []string

	for _, spec := range specs {
		if m, ok := materialized[spec.ResultKey]; ok && m.Expression == spec.Expression {
			continue
		}
		prog, err := expr.Compile(spec.Expression, spec.Decimals)
		if err != nil {
			return nil, nil, &InvalidExpressionError{Name: spec.Name, Err: err}
		}
		n := view.Len()
		values := make([]table.Value, n)
		for i := 0; i < n; i++ {
			v, unresolved := prog.Eval(rowEnv{view: view, row: i})
			values[i] = table.Real(v)
			for _, name := range unresolved {
				warnings = append(warnings, fmt.Sprintf("%s: unknown placeholder {%s}", spec.Name, name))
			}
		}
		extra[spec.ResultKey] = values
		order = append(order, spec.ResultKey)
	}

	if len(extra) == 0 {
		return view, warnings, nil
	}
	return table.WithColumns(view, extra, order), warnings, nil
}
