package service

import (
	"context"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

// BookService manages the book collection. Deleting a book first removes its author relations.
type BookService struct {
	cache     *EntityCache[catalog.Book]
	relations *RelationService
	settings  settings
}

// NewBookService creates a BookService and loads every book from the store.
func NewBookService(
	ctx context.Context,
	gateway catalog.Gateway[catalog.Book],
	relations *RelationService,
	options ...Option,
) (*BookService, error) {

	s, err := buildSettings(options...)
	if err != nil {
		return nil, err
	}

	return newBookService(ctx, gateway, relations, s)
}

func newBookService(
	ctx context.Context,
	gateway catalog.Gateway[catalog.Book],
	relations *RelationService,
	s settings,
) (*BookService, error) {

	if relations == nil {
		return nil, ErrNilDependency
	}

	cache, err := newEntityCache(ctx, catalog.BookEntityName, gateway, s)
	if err != nil {
		return nil, err
	}

	return &BookService{cache: cache, relations: relations, settings: s}, nil
}

// CreateBook validates and persists a new book. The title must not be blank.
func (b *BookService) CreateBook(ctx context.Context, title, isbn string) (catalog.Book, error) {
	observer, ctx := b.settings.startOperation(ctx, catalog.BookEntityName, OperationCreate, nil)

	book, err := catalog.BuildBook(title, isbn)
	if err != nil {
		return catalog.Book{}, observer.finish(ctx, err)
	}

	book, err = b.cache.Create(ctx, book)
	if err != nil {
		return catalog.Book{}, observer.finish(ctx, err)
	}

	b.settings.logOperation(ctx, "book created", logAttrID, book.ID)

	return book, observer.finish(ctx, nil)
}

// FindBookByID returns a book from memory.
func (b *BookService) FindBookByID(id catalog.ID) (catalog.Book, error) {
	return b.cache.FindByID(id)
}

// ReadBook reads a book directly from the store, bypassing memory.
func (b *BookService) ReadBook(ctx context.Context, id catalog.ID) (catalog.Book, error) {
	return b.cache.ReadByID(ctx, id)
}

// UpdateBook overwrites every non-blank field and persists the result.
func (b *BookService) UpdateBook(ctx context.Context, id catalog.ID, title, isbn string) (catalog.Book, error) {
	observer, ctx := b.settings.startOperation(ctx, catalog.BookEntityName, OperationUpdate, map[string]string{logAttrID: idAttr(id)})

	book, err := b.cache.Update(ctx, id, func(current catalog.Book) (catalog.Book, error) {
		return current.Apply(title, isbn), nil
	})
	if err != nil {
		return catalog.Book{}, observer.finish(ctx, err)
	}

	b.settings.logOperation(ctx, "book updated", logAttrID, id)

	return book, observer.finish(ctx, nil)
}

// DeleteBook removes the book's author relations and then the book itself.
// A failed relation cleanup is logged and counted, but does not stop the book deletion.
// A book without relations is logged at warn level, also with WithStrictBookCascade.
func (b *BookService) DeleteBook(ctx context.Context, id catalog.ID) error {
	observer, ctx := b.settings.startOperation(ctx, catalog.BookEntityName, OperationDelete, map[string]string{logAttrID: idAttr(id)})

	if _, err := b.cache.FindByID(id); err != nil {
		return observer.finish(ctx, err)
	}

	removed, cascadeErr := b.relations.deleteByBookID(ctx, id, false)
	b.settings.observeCascade(ctx, catalog.BookEntityName, id, removed, cascadeErr)

	if err := b.cache.Delete(ctx, id); err != nil {
		return observer.finish(ctx, err)
	}

	b.settings.logOperation(ctx, "book deleted", logAttrID, id, logAttrRemoved, removed)

	return observer.finish(ctx, nil)
}

// Books returns every book in insertion order.
func (b *BookService) Books() []catalog.Book {
	return b.cache.All()
}

// Reload replaces the books in memory with the store's current rows.
func (b *BookService) Reload(ctx context.Context) error {
	observer, ctx := b.settings.startOperation(ctx, catalog.BookEntityName, OperationReload, nil)

	if err := b.cache.Reload(ctx); err != nil {
		return observer.finish(ctx, err)
	}

	b.settings.logOperation(ctx, "book reloaded", logAttrCount, b.cache.Len())

	return observer.finish(ctx, nil)
}

// observeCascade reports the outcome of a relation cleanup preceding a primary deletion.
func (s settings) observeCascade(ctx context.Context, entity string, id catalog.ID, removed int, err error) {
	if err != nil {
		s.recordOperationError(ctx, entity, OperationCascadeDelete, err)
		s.logWarn(ctx, logMsgCascadeFailed, logAttrEntity, entity, logAttrID, id, logAttrError, err.Error())

		return
	}

	if removed == 0 {
		s.logWarn(ctx, logMsgCascadeEmpty, logAttrEntity, entity, logAttrID, id)
	}
}
