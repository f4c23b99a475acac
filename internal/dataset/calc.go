package dataset

import (
	"fmt"

	"github.com/cpor-labs/cpor-portal/internal/expr"
	"github.com/cpor-labs/cpor-portal/internal/schema"
	"github.com/cpor-labs/cpor-portal/internal/table"
)

// rowEnv resolves a pre-calculation placeholder to the numeric value of
// the named column on one row of the source table.
type rowEnv struct {
	view table.View
	row  int
}

func (e rowEnv) Lookup(name string) (float64, bool) {
	return e.view.Cell(e.row, name).Numeric()
}

// materializePre evaluates every Pre calculation spec against src,
// returning the resulting table (with one new/replaced real-valued
// column per spec) and schema, plus any InvalidExpression error.
func materializePre(src *table.Table, sch schema.Schema, specs []CalculationSpec) (*table.Table, schema.Schema, error) {
	out := src
	outSchema := sch
	for _, spec := range specs {
		prog, err := expr.Compile(spec.Expression, spec.Decimals)
		if err != nil {
			return nil, nil, fmt.Errorf("calculated column %q: %w", spec.Name, err)
		}
		n := out.Len()
		values := make([]table.Value, n)
		for i := 0; i < n; i++ {
			v, _ := prog.Eval(rowEnv{view: out, row: i})
			values[i] = table.Real(v)
		}
		out = out.WithColumn(table.Column{Key: spec.ResultKey, Label: spec.Name, Kind: table.KindReal, Values: values})
		outSchema = outSchema.With(schema.Entry{Key: spec.ResultKey, Label: spec.Name, Kind: table.KindReal, IsMeasure: true, Calculated: true})
	}
	return out, outSchema, nil
}

// changedKeys returns the set of result keys affected by switching from
// oldSpecs to newSpecs, used to invalidate only the filter-value cache
// entries a calculation change could have touched.
func changedKeys(oldSpecs, newSpecs []CalculationSpec) map[string]bool {
	changed := make(map[string]bool)
	oldByKey := make(map[string]CalculationSpec, len(oldSpecs))
	for _, s := range oldSpecs {
		oldByKey[s.ResultKey] = s
	}
	seen := make(map[string]bool, len(newSpecs))
	for _, s := range newSpecs {
		seen[s.ResultKey] = true
		if prev, ok := oldByKey[s.ResultKey]; !ok || prev.Expression != s.Expression {
			changed[s.ResultKey] = true
		}
	}
	for k := range oldByKey {
		if !seen[k] {
			changed[k] = true
		}
	}
	return changed
}
