package testdoubles

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

// Operation names used for failure injection and call counting.
const (
	OpCreate           = "create"
	OpReadByID         = "read_by_id"
	OpReadAll          = "read_all"
	OpUpdate           = "update"
	OpDelete           = "delete"
	OpReadByBookID     = "read_by_book_id"
	OpReadByAuthorID   = "read_by_author_id"
	OpDeleteByBookID   = "delete_by_book_id"
	OpDeleteByAuthorID = "delete_by_author_id"
)

// ErrInjected is the default cause used by FailOn when no error is given.
var ErrInjected = errors.New("injected store failure")

// failures holds injected failures and call counts, shared by both fakes.
type failures struct {
	errs  map[string]error
	calls map[string]int
}

func newFailures() failures {
	return failures{errs: make(map[string]error), calls: make(map[string]int)}
}

// hit counts a call and returns the injected failure for op, if any.
func (f failures) hit(op string) error {
	f.calls[op]++

	cause, ok := f.errs[op]
	if !ok {
		return nil
	}

	return errors.Join(catalog.ErrStorage, fmt.Errorf("%s: %w", op, cause))
}

// FakeGateway is an in-memory catalog.Gateway. It is safe for concurrent use.
type FakeGateway[T catalog.Entity[T]] struct {
	mu       sync.Mutex
	rows     map[catalog.ID]T
	nextID   catalog.ID
	failures failures
}

// NewFakeGateway creates a FakeGateway holding the given rows. Rows with a zero id get the next sequence value.
func NewFakeGateway[T catalog.Entity[T]](rows ...T) *FakeGateway[T] {
	f := &FakeGateway[T]{
		rows:     make(map[catalog.ID]T),
		failures: newFailures(),
	}

	for _, row := range rows {
		id := row.EntityID()
		if id == 0 {
			f.nextID++
			id = f.nextID
		}

		if id > f.nextID {
			f.nextID = id
		}

		f.rows[id] = row.WithID(id)
	}

	return f
}

// FailOn makes every following call of op fail with cause (ErrInjected if cause is nil).
func (f *FakeGateway[T]) FailOn(op string, cause error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cause == nil {
		cause = ErrInjected
	}

	f.failures.errs[op] = cause
}

// Heal removes all injected failures.
func (f *FakeGateway[T]) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures.errs = make(map[string]error)
}

// Calls returns how often op was called.
func (f *FakeGateway[T]) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.failures.calls[op]
}

// Rows returns a copy of the stored rows ordered by id.
func (f *FakeGateway[T]) Rows() []T {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sortedRows()
}

// Put stores a row directly, bypassing failure injection. It simulates a write by another process.
func (f *FakeGateway[T]) Put(row T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if row.EntityID() > f.nextID {
		f.nextID = row.EntityID()
	}

	f.rows[row.EntityID()] = row
}

// Create implements catalog.Gateway.
func (f *FakeGateway[T]) Create(_ context.Context, entity T) (catalog.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failures.hit(OpCreate); err != nil {
		return 0, err
	}

	f.nextID++
	f.rows[f.nextID] = entity.WithID(f.nextID)

	return f.nextID, nil
}

// ReadByID implements catalog.Gateway.
func (f *FakeGateway[T]) ReadByID(_ context.Context, id catalog.ID) (T, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var empty T

	if err := f.failures.hit(OpReadByID); err != nil {
		return empty, false, err
	}

	row, ok := f.rows[id]

	return row, ok, nil
}

// ReadAll implements catalog.Gateway.
func (f *FakeGateway[T]) ReadAll(_ context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failures.hit(OpReadAll); err != nil {
		return nil, err
	}

	return f.sortedRows(), nil
}

// Update implements catalog.Gateway.
func (f *FakeGateway[T]) Update(_ context.Context, entity T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failures.hit(OpUpdate); err != nil {
		return err
	}

	if _, ok := f.rows[entity.EntityID()]; !ok {
		return rowNotFound(entity.EntityName(), entity.EntityID())
	}

	f.rows[entity.EntityID()] = entity

	return nil
}

// Delete implements catalog.Gateway.
func (f *FakeGateway[T]) Delete(_ context.Context, id catalog.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failures.hit(OpDelete); err != nil {
		return err
	}

	if _, ok := f.rows[id]; !ok {
		var entity T
		return rowNotFound(entity.EntityName(), id)
	}

	delete(f.rows, id)

	return nil
}

func (f *FakeGateway[T]) sortedRows() []T {
	ids := make([]catalog.ID, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]T, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, f.rows[id])
	}

	return rows
}

func rowNotFound(entity string, id catalog.ID) error {
	return errors.Join(catalog.ErrStorage, fmt.Errorf("%w: %s with id %d", catalog.ErrRowNotFound, entity, id))
}
