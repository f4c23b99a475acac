package table

// Column is one typed vector plus its identity within a Table.
type Column struct {
	Key    string
	Label  string
	Kind   Kind
	Values []Value
}

// View is the zero-copy access pattern every pivot/expression component
// reads through: a Table itself, a filtered SubView, or an overlay
// carrying derived columns all satisfy it identically.
type View interface {
	Len() int
	Cell(row int, key string) Value
	Keys() []string
}

// Table is the column-oriented dataset body. It is immutable once built;
// adding a column (WithColumn) returns a new Table sharing the untouched
// column slices, the same copy-on-write discipline the store uses for
// whole datasets.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

func New(columns []Column) *Table {
	t := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		t.index[c.Key] = i
		if len(c.Values) > t.rows {
			t.rows = len(c.Values)
		}
	}
	return t
}

func (t *Table) Len() int { return t.rows }

func (t *Table) Columns() []Column { return t.columns }

func (t *Table) Column(key string) (Column, bool) {
	i, ok := t.index[key]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

func (t *Table) Keys() []string {
	keys := make([]string, len(t.columns))
	for i, c := range t.columns {
		keys[i] = c.Key
	}
	return keys
}

func (t *Table) Cell(row int, key string) Value {
	i, ok := t.index[key]
	if !ok || row < 0 || row >= t.rows {
		return AbsentValue
	}
	values := t.columns[i].Values
	if row >= len(values) {
		return AbsentValue
	}
	return values[row]
}

// WithColumn returns a new Table with col appended (or replacing an
// existing column of the same key), sharing every other column's backing
// slice. Used by the dataset store when materializing calculated columns.
func (t *Table) WithColumn(col Column) *Table {
	if i, ok := t.index[col.Key]; ok {
		cols := make([]Column, len(t.columns))
		copy(cols, t.columns)
		cols[i] = col
		return New(cols)
	}
	cols := make([]Column, len(t.columns)+1)
	copy(cols, t.columns)
	cols[len(t.columns)] = col
	return New(cols)
}

// WithoutColumn returns a new Table with the named column removed, if present.
func (t *Table) WithoutColumn(key string) *Table {
	i, ok := t.index[key]
	if !ok {
		return t
	}
	cols := make([]Column, 0, len(t.columns)-1)
	cols = append(cols, t.columns[:i]...)
	cols = append(cols, t.columns[i+1:]...)
	return New(cols)
}
