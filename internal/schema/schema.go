// Package schema describes the columns of a Dataset: their key, display
// label, dynamic kind and whether they participate as a pivot measure.
// It is the generalization of the teacher's schema.Config (which carried
// separate Dimension/Measure metadata lists) to a single ordered entry
// list over the column-oriented Table.
package schema

import "github.com/cpor-labs/cpor-portal/internal/table"

// Entry describes one column's role for the pivot planner and the HTTP
// facade's dataset-introspection endpoints.
type Entry struct {
	Key        string     `json:"key"`
	Label      string     `json:"label"`
	Kind       table.Kind `json:"kind"`
	IsMeasure  bool       `json:"isMeasure"`
	Calculated bool       `json:"calculated"`
}

// Schema is the ordered set of entries for a dataset.
type Schema []Entry

func (s Schema) Keys() []string {
	keys := make([]string, len(s))
	for i, e := range s {
		keys[i] = e.Key
	}
	return keys
}

func (s Schema) Get(key string) (Entry, bool) {
	for _, e := range s {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

func (s Schema) Measures() []Entry {
	out := make([]Entry, 0, len(s))
	for _, e := range s {
		if e.IsMeasure {
			out = append(out, e)
		}
	}
	return out
}

func (s Schema) Dimensions() []Entry {
	out := make([]Entry, 0, len(s))
	for _, e := range s {
		if !e.IsMeasure {
			out = append(out, e)
		}
	}
	return out
}

// With returns a copy of s with entry appended, or replacing an existing
// entry of the same key.
func (s Schema) With(entry Entry) Schema {
	out := make(Schema, len(s))
	copy(out, s)
	for i, e := range out {
		if e.Key == entry.Key {
			out[i] = entry
			return out
		}
	}
	return append(out, entry)
}

// Without returns a copy of s with the named entry removed, if present.
func (s Schema) Without(key string) Schema {
	out := make(Schema, 0, len(s))
	for _, e := range s {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}
