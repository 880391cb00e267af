package service

import (
	"context"
	"slices"
	"sync"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

// EntityCache is the in-memory collection of one entity type, kept consistent with its Gateway.
//
// Writes go to the store first. Memory only changes after the store accepted the write,
// so a failed store call leaves the collection untouched.
// A write holds the write lock across its store call, which orders concurrent writes identically in store and memory.
type EntityCache[T catalog.Entity[T]] struct {
	name     string
	gateway  catalog.Gateway[T]
	settings settings

	mu    sync.RWMutex
	items []T
}

// NewEntityCache creates an EntityCache and loads every row of the gateway into it.
// A failed load is returned as a catalog.ErrStorage error.
func NewEntityCache[T catalog.Entity[T]](
	ctx context.Context,
	name string,
	gateway catalog.Gateway[T],
	options ...Option,
) (*EntityCache[T], error) {

	s, err := buildSettings(options...)
	if err != nil {
		return nil, err
	}

	return newEntityCache(ctx, name, gateway, s)
}

func newEntityCache[T catalog.Entity[T]](
	ctx context.Context,
	name string,
	gateway catalog.Gateway[T],
	s settings,
) (*EntityCache[T], error) {

	if gateway == nil {
		return nil, catalog.ErrNilGateway
	}

	c := &EntityCache[T]{name: name, gateway: gateway, settings: s}

	if err := c.loadAll(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *EntityCache[T]) loadAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.gateway.ReadAll(ctx)
	if err != nil {
		return catalog.StorageFailure("load "+c.name+" entries", err)
	}

	c.items = items
	c.settings.recordCacheEntries(ctx, c.name, len(c.items))

	return nil
}

// Create persists a transient entity and appends the stored copy, carrying its new ID.
func (c *EntityCache[T]) Create(ctx context.Context, entity T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.gateway.Create(ctx, entity)
	if err != nil {
		var empty T
		return empty, catalog.StorageFailure("create "+c.name, err)
	}

	stored := entity.WithID(id)
	c.items = append(c.items, stored)
	c.settings.recordCacheEntries(ctx, c.name, len(c.items))

	return stored, nil
}

// FindByID returns the entry with the given id from memory, or a catalog.ErrNotFound error.
func (c *EntityCache[T]) FindByID(id catalog.ID) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := c.indexOf(id)
	if idx < 0 {
		var empty T
		return empty, catalog.NotFound(c.name, id)
	}

	return c.items[idx], nil
}

// ReadByID reads the entry directly from the store, bypassing memory.
func (c *EntityCache[T]) ReadByID(ctx context.Context, id catalog.ID) (T, error) {
	entity, found, err := c.gateway.ReadByID(ctx, id)
	if err != nil {
		var empty T
		return empty, catalog.StorageFailure("read "+c.name, err)
	}

	if !found {
		var empty T
		return empty, catalog.NotFound(c.name, id)
	}

	return entity, nil
}

// Update applies mutate to the cached entry, persists the result, and then replaces the cached entry.
// The mutate function must not call back into this cache. An error from mutate aborts the update unchanged.
func (c *EntityCache[T]) Update(ctx context.Context, id catalog.ID, mutate func(current T) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var empty T

	idx := c.indexOf(id)
	if idx < 0 {
		return empty, catalog.NotFound(c.name, id)
	}

	updated, err := mutate(c.items[idx])
	if err != nil {
		return empty, err
	}

	updated = updated.WithID(id)

	if err = c.gateway.Update(ctx, updated); err != nil {
		return empty, catalog.StorageFailure("update "+c.name, err)
	}

	c.items[idx] = updated

	return updated, nil
}

// Delete removes the entry from the store and then from memory.
func (c *EntityCache[T]) Delete(ctx context.Context, id catalog.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return catalog.NotFound(c.name, id)
	}

	if err := c.gateway.Delete(ctx, id); err != nil {
		return catalog.StorageFailure("delete "+c.name, err)
	}

	c.items = slices.Delete(c.items, idx, idx+1)
	c.settings.recordCacheEntries(ctx, c.name, len(c.items))

	return nil
}

// All returns a copy of every entry in insertion order.
func (c *EntityCache[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append(make([]T, 0, len(c.items)), c.items...)
}

// Filter returns a copy of the entries matching the predicate, in insertion order. Never nil.
func (c *EntityCache[T]) Filter(match func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matches := make([]T, 0)
	for _, item := range c.items {
		if match(item) {
			matches = append(matches, item)
		}
	}

	return matches
}

// Len returns the number of entries.
func (c *EntityCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Reload replaces the collection with the store's current rows. On failure the collection is kept.
func (c *EntityCache[T]) Reload(ctx context.Context) error {
	return c.loadAll(ctx)
}

func (c *EntityCache[T]) indexOf(id catalog.ID) int {
	return slices.IndexFunc(c.items, func(item T) bool { return item.EntityID() == id })
}
