package service

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

// Gateways bundles the store gateways a Library is built from.
type Gateways struct {
	Books       catalog.Gateway[catalog.Book]
	Authors     catalog.Gateway[catalog.Author]
	Users       catalog.Gateway[catalog.User]
	Loans       catalog.Gateway[catalog.Loan]
	BookAuthors catalog.RelationGateway
}

// Library holds every service of the catalog, wired in dependency order.
type Library struct {
	Relations *RelationService
	Books     *BookService
	Authors   *AuthorService
	Users     *UserService
	Loans     *BookingEngine
}

// NewLibrary builds all services from the given gateways, loading each collection from the store.
// The same options configure every service.
func NewLibrary(ctx context.Context, gateways Gateways, options ...Option) (*Library, error) {
	s, err := buildSettings(options...)
	if err != nil {
		return nil, err
	}

	l := &Library{}

	if l.Relations, err = newRelationService(ctx, gateways.BookAuthors, s); err != nil {
		return nil, err
	}

	if l.Books, err = newBookService(ctx, gateways.Books, l.Relations, s); err != nil {
		return nil, err
	}

	if l.Authors, err = newAuthorService(ctx, gateways.Authors, l.Relations, s); err != nil {
		return nil, err
	}

	if l.Users, err = newUserService(ctx, gateways.Users, s); err != nil {
		return nil, err
	}

	if l.Loans, err = newBookingEngine(ctx, gateways.Loans, l.Books, l.Users, s); err != nil {
		return nil, err
	}

	return l, nil
}

// Reload refreshes every collection from the store. It attempts all of them and returns the joined failures.
func (l *Library) Reload(ctx context.Context) error {
	return errors.Join(
		l.Relations.Reload(ctx),
		l.Books.Reload(ctx),
		l.Authors.Reload(ctx),
		l.Users.Reload(ctx),
		l.Loans.Reload(ctx),
	)
}
