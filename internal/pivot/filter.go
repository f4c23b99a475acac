package pivot

import (
	"strings"

	"github.com/cpor-labs/cpor-portal/internal/table"
)

// applyFilters keeps rows whose stringified value, per filtered column,
// falls in that column's allow-set — AND across columns, exactly step 1
// of the planner algorithm. Matching is case-insensitive, the same
// convention the teacher's ApplyFilters uses for its allow-sets.
func applyFilters(view table.View, filters map[string][]string) table.View {
	if len(filters) == 0 {
		return view
	}
	allow := make(map[string]map[string]bool, len(filters))
	for key, vals := range filters {
		set := make(map[string]bool, len(vals))
		for _, v := range vals {
			set[strings.ToLower(v)] = true
		}
		allow[key] = set
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		keep := true
		for key, set := range allow {
			raw := strings.ToLower(view.Cell(i, key).Raw())
			if !set[raw] {
				keep = false
				break
			}
		}
		if keep {
			indices = append(indices, i)
		}
	}
	return table.Sub(view, indices)
}
