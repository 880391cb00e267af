package service

import (
	"context"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

// AuthorService manages the author collection. Deleting an author first removes its book relations.
type AuthorService struct {
	cache     *EntityCache[catalog.Author]
	relations *RelationService
	settings  settings
}

// NewAuthorService creates an AuthorService and loads every author from the store.
func NewAuthorService(
	ctx context.Context,
	gateway catalog.Gateway[catalog.Author],
	relations *RelationService,
	options ...Option,
) (*AuthorService, error) {

	s, err := buildSettings(options...)
	if err != nil {
		return nil, err
	}

	return newAuthorService(ctx, gateway, relations, s)
}

func newAuthorService(
	ctx context.Context,
	gateway catalog.Gateway[catalog.Author],
	relations *RelationService,
	s settings,
) (*AuthorService, error) {

	if relations == nil {
		return nil, ErrNilDependency
	}

	cache, err := newEntityCache(ctx, catalog.AuthorEntityName, gateway, s)
	if err != nil {
		return nil, err
	}

	return &AuthorService{cache: cache, relations: relations, settings: s}, nil
}

// CreateAuthor validates and persists a new author. The name must not be blank.
func (a *AuthorService) CreateAuthor(ctx context.Context, name string) (catalog.Author, error) {
	observer, ctx := a.settings.startOperation(ctx, catalog.AuthorEntityName, OperationCreate, nil)

	author, err := catalog.BuildAuthor(name)
	if err != nil {
		return catalog.Author{}, observer.finish(ctx, err)
	}

	author, err = a.cache.Create(ctx, author)
	if err != nil {
		return catalog.Author{}, observer.finish(ctx, err)
	}

	a.settings.logOperation(ctx, "author created", logAttrID, author.ID)

	return author, observer.finish(ctx, nil)
}

// FindAuthorByID returns an author from memory.
func (a *AuthorService) FindAuthorByID(id catalog.ID) (catalog.Author, error) {
	return a.cache.FindByID(id)
}

// ReadAuthor reads an author directly from the store, bypassing memory.
func (a *AuthorService) ReadAuthor(ctx context.Context, id catalog.ID) (catalog.Author, error) {
	return a.cache.ReadByID(ctx, id)
}

// UpdateAuthor overwrites the name if it is not blank and persists the result.
func (a *AuthorService) UpdateAuthor(ctx context.Context, id catalog.ID, name string) (catalog.Author, error) {
	observer, ctx := a.settings.startOperation(ctx, catalog.AuthorEntityName, OperationUpdate, map[string]string{logAttrID: idAttr(id)})

	author, err := a.cache.Update(ctx, id, func(current catalog.Author) (catalog.Author, error) {
		return current.Apply(name), nil
	})
	if err != nil {
		return catalog.Author{}, observer.finish(ctx, err)
	}

	a.settings.logOperation(ctx, "author updated", logAttrID, id)

	return author, observer.finish(ctx, nil)
}

// DeleteAuthor removes the author's book relations and then the author itself.
// An author without relations is deleted without complaint.
func (a *AuthorService) DeleteAuthor(ctx context.Context, id catalog.ID) error {
	observer, ctx := a.settings.startOperation(ctx, catalog.AuthorEntityName, OperationDelete, map[string]string{logAttrID: idAttr(id)})

	if _, err := a.cache.FindByID(id); err != nil {
		return observer.finish(ctx, err)
	}

	removed, cascadeErr := a.relations.DeleteByAuthorID(ctx, id)
	if cascadeErr != nil {
		a.settings.observeCascade(ctx, catalog.AuthorEntityName, id, removed, cascadeErr)
	}

	if err := a.cache.Delete(ctx, id); err != nil {
		return observer.finish(ctx, err)
	}

	a.settings.logOperation(ctx, "author deleted", logAttrID, id, logAttrRemoved, removed)

	return observer.finish(ctx, nil)
}

// Authors returns every author in insertion order.
func (a *AuthorService) Authors() []catalog.Author {
	return a.cache.All()
}

// Reload replaces the authors in memory with the store's current rows.
func (a *AuthorService) Reload(ctx context.Context) error {
	observer, ctx := a.settings.startOperation(ctx, catalog.AuthorEntityName, OperationReload, nil)

	if err := a.cache.Reload(ctx); err != nil {
		return observer.finish(ctx, err)
	}

	a.settings.logOperation(ctx, "author reloaded", logAttrCount, a.cache.Len())

	return observer.finish(ctx, nil)
}
