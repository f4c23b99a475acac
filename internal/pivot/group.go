package pivot

import (
	"sort"
	"strings"

	"github.com/cpor-labs/cpor-portal/internal/table"
)

const tupleSep = "\x1f"

func tupleKey(parts []string) string { return strings.Join(parts, tupleSep) }

// rowColTuples computes, for every row of view, the tuple of displayed
// values across keys (absent cells rendered as the sentinel). An empty
// keys slice yields one empty tuple per row, which collapses to a single
// group below — the mechanism that makes "no rows selected" or
// "no columns selected" fall out of the same grouping code path.
func rowColTuples(view table.View, keys []string) [][]string {
	n := view.Len()
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		tuple := make([]string, len(keys))
		for j, k := range keys {
			tuple[j] = view.Cell(i, k).Display()
		}
		out[i] = tuple
	}
	return out
}

// distinctSorted returns the distinct tuples in tuples, sorted
// lexicographically with the absent sentinel always sorted last.
func distinctSorted(tuples [][]string) [][]string {
	seen := make(map[string][]string)
	var order []string
	for _, t := range tuples {
		k := tupleKey(t)
		if _, ok := seen[k]; !ok {
			seen[k] = t
			order = append(order, k)
		}
	}
	sort.Slice(order, func(i, j int) bool { return lessTuple(seen[order[i]], seen[order[j]]) })
	out := make([][]string, len(order))
	for i, k := range order {
		out[i] = seen[k]
	}
	return out
}

func lessTuple(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			continue
		}
		if a[i] == table.SentinelEmptyCells {
			return false
		}
		if b[i] == table.SentinelEmptyCells {
			return true
		}
		return a[i] < b[i]
	}
	return len(a) < len(b)
}

func indexTuples(tuples [][]string) map[string]int {
	out := make(map[string]int, len(tuples))
	for i, t := range tuples {
		out[tupleKey(t)] = i
	}
	return out
}

// aggregate applies aggregator over the cells of column key at the given
// row indices. An empty result set (no numeric values for avg/min/max)
// is reported as 0, the same convention the spec gives division-by-zero:
// an "absent" numeric outcome collapses to 0 rather than a nullable type.
func aggregate(view table.View, indices []int, key, aggregator string) float64 {
	switch aggregator {
	case "sum":
		return aggSum(view, indices, key)
	case "avg":
		return aggAvg(view, indices, key)
	case "count":
		return aggCount(view, indices, key)
	case "distinctCount":
		return aggDistinctCount(view, indices, key)
	case "min":
		return aggMin(view, indices, key)
	case "max":
		return aggMax(view, indices, key)
	default:
		return 0
	}
}

func aggSum(view table.View, indices []int, key string) float64 {
	var sum float64
	for _, i := range indices {
		if v, ok := view.Cell(i, key).Numeric(); ok {
			sum += v
		}
	}
	return sum
}

func aggAvg(view table.View, indices []int, key string) float64 {
	var sum float64
	var count int
	for _, i := range indices {
		if v, ok := view.Cell(i, key).Numeric(); ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// aggCount counts non-absent cells, not merely numeric-coercible ones —
// a text column is a valid measure for "count" (e.g. counting records
// by a status label) even though it yields 0 under sum/avg/min/max.
func aggCount(view table.View, indices []int, key string) float64 {
	var count int
	for _, i := range indices {
		if !view.Cell(i, key).Absent {
			count++
		}
	}
	return float64(count)
}

func aggDistinctCount(view table.View, indices []int, key string) float64 {
	set := make(map[string]bool)
	for _, i := range indices {
		v := view.Cell(i, key)
		if v.Absent {
			continue
		}
		set[v.Raw()] = true
	}
	return float64(len(set))
}

func aggMin(view table.View, indices []int, key string) float64 {
	found := false
	var m float64
	for _, i := range indices {
		if v, ok := view.Cell(i, key).Numeric(); ok {
			if !found || v < m {
				m = v
				found = true
			}
		}
	}
	return m
}

func aggMax(view table.View, indices []int, key string) float64 {
	found := false
	var m float64
	for _, i := range indices {
		if v, ok := view.Cell(i, key).Numeric(); ok {
			if !found || v > m {
				m = v
				found = true
			}
		}
	}
	return m
}

func isValidAggregator(name string) bool {
	for _, n := range []string{"sum", "avg", "count", "distinctCount", "min", "max"} {
		if n == name {
			return true
		}
	}
	return false
}
