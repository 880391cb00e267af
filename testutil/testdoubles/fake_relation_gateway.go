package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

// FakeRelationGateway is an in-memory catalog.RelationGateway keeping rows in insertion order.
// It is safe for concurrent use.
type FakeRelationGateway struct {
	mu       sync.Mutex
	rows     []catalog.BookAuthor
	failures failures
}

// NewFakeRelationGateway creates a FakeRelationGateway holding the given rows.
func NewFakeRelationGateway(rows ...catalog.BookAuthor) *FakeRelationGateway {
	return &FakeRelationGateway{
		rows:     append([]catalog.BookAuthor(nil), rows...),
		failures: newFailures(),
	}
}

// FailOn makes every following call of op fail with cause (ErrInjected if cause is nil).
func (f *FakeRelationGateway) FailOn(op string, cause error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cause == nil {
		cause = ErrInjected
	}

	f.failures.errs[op] = cause
}

// Heal removes all injected failures.
func (f *FakeRelationGateway) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures.errs = make(map[string]error)
}

// Calls returns how often op was called.
func (f *FakeRelationGateway) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.failures.calls[op]
}

// Rows returns a copy of the stored rows.
func (f *FakeRelationGateway) Rows() []catalog.BookAuthor {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]catalog.BookAuthor(nil), f.rows...)
}

// Create implements catalog.RelationGateway.
func (f *FakeRelationGateway) Create(_ context.Context, relation catalog.BookAuthor) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failures.hit(OpCreate); err != nil {
		return err
	}

	f.rows = append(f.rows, relation)

	return nil
}

// ReadAll implements catalog.RelationGateway.
func (f *FakeRelationGateway) ReadAll(_ context.Context) ([]catalog.BookAuthor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failures.hit(OpReadAll); err != nil {
		return nil, err
	}

	return append([]catalog.BookAuthor(nil), f.rows...), nil
}

// ReadByBookID implements catalog.RelationGateway.
func (f *FakeRelationGateway) ReadByBookID(_ context.Context, bookID catalog.ID) ([]catalog.BookAuthor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failures.hit(OpReadByBookID); err != nil {
		return nil, err
	}

	return f.filter(func(r catalog.BookAuthor) bool { return r.BookID == bookID }), nil
}

// ReadByAuthorID implements catalog.RelationGateway.
func (f *FakeRelationGateway) ReadByAuthorID(_ context.Context, authorID catalog.ID) ([]catalog.BookAuthor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failures.hit(OpReadByAuthorID); err != nil {
		return nil, err
	}

	return f.filter(func(r catalog.BookAuthor) bool { return r.AuthorID == authorID }), nil
}

// DeleteByBookID implements catalog.RelationGateway.
func (f *FakeRelationGateway) DeleteByBookID(_ context.Context, bookID catalog.ID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failures.hit(OpDeleteByBookID); err != nil {
		return 0, err
	}

	return f.remove(func(r catalog.BookAuthor) bool { return r.BookID == bookID }), nil
}

// DeleteByAuthorID implements catalog.RelationGateway.
func (f *FakeRelationGateway) DeleteByAuthorID(_ context.Context, authorID catalog.ID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failures.hit(OpDeleteByAuthorID); err != nil {
		return 0, err
	}

	return f.remove(func(r catalog.BookAuthor) bool { return r.AuthorID == authorID }), nil
}

func (f *FakeRelationGateway) filter(match func(catalog.BookAuthor) bool) []catalog.BookAuthor {
	result := make([]catalog.BookAuthor, 0)

	for _, row := range f.rows {
		if match(row) {
			result = append(result, row)
		}
	}

	return result
}

func (f *FakeRelationGateway) remove(match func(catalog.BookAuthor) bool) int64 {
	kept := f.rows[:0]
	removed := int64(0)

	for _, row := range f.rows {
		if match(row) {
			removed++
			continue
		}

		kept = append(kept, row)
	}

	f.rows = kept

	return removed
}
