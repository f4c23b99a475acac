// Package filterindex computes and caches the distinct, locale-sorted
// value list the pivot workbench offers for each filterable column —
// the "Filter Value Index" component.
package filterindex

import (
	"errors"
	"sort"
	"sync"

	"github.com/cpor-labs/cpor-portal/internal/dataset"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var ErrUnknownColumn = errors.New("filterindex: unknown column")

// collatorPool hands out *collate.Collator instances ordering values the
// way a Brazilian-Portuguese-speaking analyst expects: case-insensitive,
// diacritic-insensitive. A Collator is not safe for concurrent use — it
// carries internal iteration buffers — and Values runs from parallel
// request handlers on cache-miss, so each sort borrows its own instance
// instead of sharing one package-global collator.
var collatorPool = sync.Pool{
	New: func() interface{} {
		return collate.New(language.BrazilianPortuguese, collate.IgnoreCase, collate.IgnoreDiacritics)
	},
}

// Values returns the distinct display values of column key within ds,
// sorted for presentation, serving from ds.FilterCache when possible.
// Absent cells are omitted rather than surfaced as a sentinel option.
func Values(ds *dataset.Dataset, key string) ([]string, error) {
	if cached, ok := ds.FilterCache.Get(key); ok {
		return cached, nil
	}

	col, ok := ds.Table.Column(key)
	if !ok {
		return nil, ErrUnknownColumn
	}

	seen := make(map[string]bool)
	distinct := make([]string, 0, len(col.Values))
	for _, v := range col.Values {
		if v.Absent {
			continue
		}
		d := v.Display()
		if !seen[d] {
			seen[d] = true
			distinct = append(distinct, d)
		}
	}
	sortLocale(distinct)

	ds.FilterCache.Put(key, distinct)
	return distinct, nil
}

func sortLocale(values []string) {
	collator := collatorPool.Get().(*collate.Collator)
	defer collatorPool.Put(collator)

	sort.Slice(values, func(i, j int) bool {
		a, b := values[i], values[j]
		if c := collator.CompareString(a, b); c != 0 {
			return c < 0
		}
		return a < b
	})
}
