package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

// RelationService owns the in-memory book-author relations and keeps them consistent with the store.
type RelationService struct {
	gateway  catalog.RelationGateway
	settings settings

	mu    sync.RWMutex
	items []catalog.BookAuthor
}

// NewRelationService creates a RelationService and loads every relation from the store.
func NewRelationService(ctx context.Context, gateway catalog.RelationGateway, options ...Option) (*RelationService, error) {
	s, err := buildSettings(options...)
	if err != nil {
		return nil, err
	}

	return newRelationService(ctx, gateway, s)
}

func newRelationService(ctx context.Context, gateway catalog.RelationGateway, s settings) (*RelationService, error) {
	if gateway == nil {
		return nil, catalog.ErrNilGateway
	}

	r := &RelationService{gateway: gateway, settings: s}

	if err := r.Reload(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

// CreateBookAuthor persists a relation and appends it to memory.
// Neither side is checked for existence here; the store may reject unknown ids.
func (r *RelationService) CreateBookAuthor(ctx context.Context, bookID, authorID catalog.ID) (catalog.BookAuthor, error) {
	observer, ctx := r.settings.startOperation(ctx, catalog.BookAuthorEntityName, OperationCreate, map[string]string{
		logAttrBookID:   idAttr(bookID),
		logAttrAuthorID: idAttr(authorID),
	})

	relation := catalog.BuildBookAuthor(bookID, authorID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.gateway.Create(ctx, relation); err != nil {
		return catalog.BookAuthor{}, observer.finish(ctx, catalog.StorageFailure("create book_author", err))
	}

	r.items = append(r.items, relation)
	r.settings.recordCacheEntries(ctx, catalog.BookAuthorEntityName, len(r.items))
	r.settings.logOperation(ctx, "book_author created", logAttrBookID, bookID, logAttrAuthorID, authorID)

	return relation, observer.finish(ctx, nil)
}

// FindByBookID returns the relations of a book from memory. The result is empty, never nil, when there are none.
func (r *RelationService) FindByBookID(bookID catalog.ID) []catalog.BookAuthor {
	return r.filter(func(rel catalog.BookAuthor) bool { return rel.BookID == bookID })
}

// FindByAuthorID returns the relations of an author from memory. The result is empty, never nil, when there are none.
func (r *RelationService) FindByAuthorID(authorID catalog.ID) []catalog.BookAuthor {
	return r.filter(func(rel catalog.BookAuthor) bool { return rel.AuthorID == authorID })
}

// ReadByBookID reads the relations of a book directly from the store, bypassing memory.
func (r *RelationService) ReadByBookID(ctx context.Context, bookID catalog.ID) ([]catalog.BookAuthor, error) {
	relations, err := r.gateway.ReadByBookID(ctx, bookID)
	if err != nil {
		return nil, catalog.StorageFailure("read book_author by book", err)
	}

	return nonNil(relations), nil
}

// ReadByAuthorID reads the relations of an author directly from the store, bypassing memory.
func (r *RelationService) ReadByAuthorID(ctx context.Context, authorID catalog.ID) ([]catalog.BookAuthor, error) {
	relations, err := r.gateway.ReadByAuthorID(ctx, authorID)
	if err != nil {
		return nil, catalog.StorageFailure("read book_author by author", err)
	}

	return nonNil(relations), nil
}

// DeleteByBookID removes every relation of a book from the store and then from memory.
// It returns the number of relations removed from memory.
//
// With WithStrictBookCascade a book without relations fails with catalog.ErrNotFound
// and catalog.ErrNoRelationsForBook; otherwise that case is a no-op.
func (r *RelationService) DeleteByBookID(ctx context.Context, bookID catalog.ID) (int, error) {
	return r.deleteByBookID(ctx, bookID, r.settings.strictBookCascade)
}

// deleteByBookID fails on a book without relations only when strict is set.
// Book deletion passes false, so the empty case is reported once, by the cascade.
func (r *RelationService) deleteByBookID(ctx context.Context, bookID catalog.ID, strict bool) (int, error) {
	observer, ctx := r.settings.startOperation(ctx, catalog.BookAuthorEntityName, OperationDeleteByBook, map[string]string{
		logAttrBookID: idAttr(bookID),
	})

	removed, err := r.deleteWhere(
		ctx,
		func(ctx context.Context) (int64, error) { return r.gateway.DeleteByBookID(ctx, bookID) },
		func(rel catalog.BookAuthor) bool { return rel.BookID == bookID },
	)
	if err != nil {
		return 0, observer.finish(ctx, catalog.StorageFailure("delete book_author by book", err))
	}

	if removed == 0 && strict {
		err = fmt.Errorf("%w: %w: book id %d", catalog.ErrNotFound, catalog.ErrNoRelationsForBook, bookID)
		return 0, observer.finish(ctx, err)
	}

	r.settings.logOperation(ctx, "book_author deleted by book", logAttrBookID, bookID, logAttrRemoved, removed)

	return removed, observer.finish(ctx, nil)
}

// DeleteByAuthorID removes every relation of an author from the store and then from memory.
// It returns the number of relations removed from memory. An author without relations is a no-op.
func (r *RelationService) DeleteByAuthorID(ctx context.Context, authorID catalog.ID) (int, error) {
	observer, ctx := r.settings.startOperation(ctx, catalog.BookAuthorEntityName, OperationDeleteByAuthor, map[string]string{
		logAttrAuthorID: idAttr(authorID),
	})

	removed, err := r.deleteWhere(
		ctx,
		func(ctx context.Context) (int64, error) { return r.gateway.DeleteByAuthorID(ctx, authorID) },
		func(rel catalog.BookAuthor) bool { return rel.AuthorID == authorID },
	)
	if err != nil {
		return 0, observer.finish(ctx, catalog.StorageFailure("delete book_author by author", err))
	}

	r.settings.logOperation(ctx, "book_author deleted by author", logAttrAuthorID, authorID, logAttrRemoved, removed)

	return removed, observer.finish(ctx, nil)
}

// All returns a copy of every relation in insertion order.
func (r *RelationService) All() []catalog.BookAuthor {
	return r.filter(func(catalog.BookAuthor) bool { return true })
}

// Len returns the number of relations in memory.
func (r *RelationService) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// Reload replaces the relations with the store's current rows. On failure the relations are kept.
func (r *RelationService) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.gateway.ReadAll(ctx)
	if err != nil {
		return catalog.StorageFailure("load book_author entries", err)
	}

	r.items = items
	r.settings.recordCacheEntries(ctx, catalog.BookAuthorEntityName, len(r.items))

	return nil
}

// deleteWhere runs the store deletion and, only if it succeeded, drops the matching relations from memory.
func (r *RelationService) deleteWhere(
	ctx context.Context,
	deleteInStore func(ctx context.Context) (int64, error),
	match func(catalog.BookAuthor) bool,
) (int, error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := deleteInStore(ctx); err != nil {
		return 0, err
	}

	kept := make([]catalog.BookAuthor, 0, len(r.items))
	for _, rel := range r.items {
		if !match(rel) {
			kept = append(kept, rel)
		}
	}

	removed := len(r.items) - len(kept)
	r.items = kept
	r.settings.recordCacheEntries(ctx, catalog.BookAuthorEntityName, len(r.items))

	return removed, nil
}

func (r *RelationService) filter(match func(catalog.BookAuthor) bool) []catalog.BookAuthor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]catalog.BookAuthor, 0)
	for _, rel := range r.items {
		if match(rel) {
			matches = append(matches, rel)
		}
	}

	return matches
}

func nonNil(relations []catalog.BookAuthor) []catalog.BookAuthor {
	if relations == nil {
		return []catalog.BookAuthor{}
	}

	return relations
}
