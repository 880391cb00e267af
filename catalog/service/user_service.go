package service

import (
	"context"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

// UserService manages the user collection.
type UserService struct {
	cache    *EntityCache[catalog.User]
	settings settings
}

// NewUserService creates a UserService and loads every user from the store.
func NewUserService(ctx context.Context, gateway catalog.Gateway[catalog.User], options ...Option) (*UserService, error) {
	s, err := buildSettings(options...)
	if err != nil {
		return nil, err
	}

	return newUserService(ctx, gateway, s)
}

func newUserService(ctx context.Context, gateway catalog.Gateway[catalog.User], s settings) (*UserService, error) {
	cache, err := newEntityCache(ctx, catalog.UserEntityName, gateway, s)
	if err != nil {
		return nil, err
	}

	return &UserService{cache: cache, settings: s}, nil
}

// CreateUser validates and persists a new user. The name must not be blank.
func (u *UserService) CreateUser(ctx context.Context, name string) (catalog.User, error) {
	observer, ctx := u.settings.startOperation(ctx, catalog.UserEntityName, OperationCreate, nil)

	user, err := catalog.BuildUser(name)
	if err != nil {
		return catalog.User{}, observer.finish(ctx, err)
	}

	user, err = u.cache.Create(ctx, user)
	if err != nil {
		return catalog.User{}, observer.finish(ctx, err)
	}

	u.settings.logOperation(ctx, "user created", logAttrID, user.ID)

	return user, observer.finish(ctx, nil)
}

// FindUserByID returns a user from memory.
func (u *UserService) FindUserByID(id catalog.ID) (catalog.User, error) {
	return u.cache.FindByID(id)
}

// ReadUser reads a user directly from the store, bypassing memory.
func (u *UserService) ReadUser(ctx context.Context, id catalog.ID) (catalog.User, error) {
	return u.cache.ReadByID(ctx, id)
}

// UpdateUser overwrites the name if it is not blank and persists the result.
func (u *UserService) UpdateUser(ctx context.Context, id catalog.ID, name string) (catalog.User, error) {
	observer, ctx := u.settings.startOperation(ctx, catalog.UserEntityName, OperationUpdate, map[string]string{logAttrID: idAttr(id)})

	user, err := u.cache.Update(ctx, id, func(current catalog.User) (catalog.User, error) {
		return current.Apply(name), nil
	})
	if err != nil {
		return catalog.User{}, observer.finish(ctx, err)
	}

	u.settings.logOperation(ctx, "user updated", logAttrID, id)

	return user, observer.finish(ctx, nil)
}

// DeleteUser removes a user. Loans referencing the user are left to the store's constraints.
func (u *UserService) DeleteUser(ctx context.Context, id catalog.ID) error {
	observer, ctx := u.settings.startOperation(ctx, catalog.UserEntityName, OperationDelete, map[string]string{logAttrID: idAttr(id)})

	if err := u.cache.Delete(ctx, id); err != nil {
		return observer.finish(ctx, err)
	}

	u.settings.logOperation(ctx, "user deleted", logAttrID, id)

	return observer.finish(ctx, nil)
}

// Users returns every user in insertion order.
func (u *UserService) Users() []catalog.User {
	return u.cache.All()
}

// Reload replaces the users in memory with the store's current rows.
func (u *UserService) Reload(ctx context.Context) error {
	observer, ctx := u.settings.startOperation(ctx, catalog.UserEntityName, OperationReload, nil)

	if err := u.cache.Reload(ctx); err != nil {
		return observer.finish(ctx, err)
	}

	u.settings.logOperation(ctx, "user reloaded", logAttrCount, u.cache.Len())

	return observer.finish(ctx, nil)
}
