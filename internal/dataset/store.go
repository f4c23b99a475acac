package dataset

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cpor-labs/cpor-portal/internal/schema"
	"github.com/cpor-labs/cpor-portal/internal/table"
	"github.com/google/uuid"
)

// entry owns one dataset's published pointer plus the mutex serializing
// its mutating operations (updateCalculations, delete-in-place semantics
// are handled by removing the map key instead). Readers never take
// writeMu: they load ptr, which is always a complete, internally
// consistent snapshot.
type entry struct {
	writeMu sync.Mutex
	ptr     atomic.Pointer[Dataset]
}

// Store is the single-writer/multi-reader table of live datasets. Map
// structure changes (Put, Delete) are guarded by mu; per-dataset content
// changes (UpdateCalculations) are guarded by that dataset's own writeMu
// so that two different datasets can be updated concurrently without
// contending on a single global lock.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	counter uint64
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (s *Store) nextID() string {
	n := atomic.AddUint64(&s.counter, 1)
	return fmt.Sprintf("ds_%08x_%s", n, uuid.NewString())
}

// Put registers a freshly loaded table under a new dataset id.
func (s *Store) Put(name string, kind Kind, tbl *table.Table, sch schema.Schema) (*Dataset, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	ds := &Dataset{
		ID:          s.nextID(),
		Name:        name,
		Kind:        kind,
		CreatedAt:   time.Now(),
		Table:       tbl,
		Schema:      sch,
		FilterCache: NewCache(),
	}
	ds.AvailablePostColumns = postColumnsOf(sch)

	e := &entry{}
	e.ptr.Store(ds)

	s.mu.Lock()
	s.entries[ds.ID] = e
	s.mu.Unlock()
	return ds, nil
}

// Get returns the currently published snapshot for id.
func (s *Store) Get(id string) (*Dataset, bool) {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	ds := e.ptr.Load()
	return ds, ds != nil
}

// List returns a (id, name) pair for every live dataset, in no particular order.
func (s *Store) List() []ColumnRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ColumnRef, 0, len(s.entries))
	for id, e := range s.entries {
		if ds := e.ptr.Load(); ds != nil {
			out = append(out, ColumnRef{Key: id, Label: ds.Name})
		}
	}
	return out
}

// Delete removes a dataset. Deleting an unknown id is a no-op, matching
// the idempotent DELETE semantics in the HTTP facade.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// UpdateCalculations recompiles and materializes calc's Pre specs into
// a new table, publishes the resulting Dataset (copy-on-write), and
// carries forward every filter-cache entry whose column was untouched.
func (s *Store) UpdateCalculations(id string, calc Calculations) (*Dataset, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrUnknownDataset
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	old := e.ptr.Load()

	// Pre specs materialize against the dataset's original, uncalculated
	// table, so re-running UpdateCalculations is idempotent rather than
	// stacking derived columns on top of previously derived ones.
	baseTable, baseSchema := stripCalculated(old)

	newTable, newSchema, err := materializePre(baseTable, baseSchema, calc.Pre)
	if err != nil {
		return nil, err
	}

	changed := changedKeys(old.Calculations.Pre, calc.Pre)
	for _, spec := range calc.Post {
		changed[spec.ResultKey] = true
	}

	newDs := &Dataset{
		ID:           old.ID,
		Name:         old.Name,
		Kind:         old.Kind,
		CreatedAt:    old.CreatedAt,
		Table:        newTable,
		Schema:       newSchema,
		Calculations: calc,
		FilterCache:  old.FilterCache.Fork(changed),
	}
	newDs.AvailablePostColumns = postColumnsOf(newSchema)

	e.ptr.Store(newDs)
	return newDs, nil
}

func stripCalculated(ds *Dataset) (*table.Table, schema.Schema) {
	tbl := ds.Table
	sch := ds.Schema
	for _, entry := range ds.Schema {
		if entry.Calculated {
			tbl = tbl.WithoutColumn(entry.Key)
			sch = sch.Without(entry.Key)
		}
	}
	return tbl, sch
}

func postColumnsOf(sch schema.Schema) []ColumnRef {
	out := make([]ColumnRef, 0, len(sch))
	for _, e := range sch.Measures() {
		out = append(out, ColumnRef{Key: e.Key, Label: e.Label})
	}
	return out
}
