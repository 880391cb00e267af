package catalog

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by this module matches exactly one of them via errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage operation failed")
)

var (
	ErrBlankTitle            = errors.New("title must not be blank")
	ErrBlankName             = errors.New("name must not be blank")
	ErrEndBeforeStart        = errors.New("end date must not precede start date")
	ErrBookAlreadyLoaned     = errors.New("book already loaned")
	ErrNoRelationsForBook    = errors.New("no author relations found for book")
	ErrNoLoansFound          = errors.New("no loans found")
	ErrRowNotFound           = errors.New("row does not exist in the store")
	ErrNilGateway            = errors.New("nil gateway supplied")
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrUnsupportedDialect    = errors.New("unsupported sql dialect")
	ErrEmptyTableName        = errors.New("empty table name supplied")
)

// ID is the store-assigned identifier of an entity. Zero means the entity was not persisted yet.
type ID = int64

// NotFound builds an ErrNotFound error naming the entity and the offending id.
func NotFound(entity string, id ID) error {
	return fmt.Errorf("%w: %s with id %d", ErrNotFound, entity, id)
}

// Invalid builds an ErrValidation error naming the offending field.
func Invalid(field string, reason error) error {
	return fmt.Errorf("%w: %s: %w", ErrValidation, field, reason)
}

// Conflict builds an ErrConflict error with the given reason and detail.
func Conflict(reason error, detail string) error {
	return fmt.Errorf("%w: %w: %s", ErrConflict, reason, detail)
}

// StorageFailure builds an ErrStorage error for the given operation, keeping the cause.
// Causes that already carry ErrStorage are returned unchanged.
func StorageFailure(operation string, cause error) error {
	if errors.Is(cause, ErrStorage) {
		return cause
	}

	return errors.Join(ErrStorage, fmt.Errorf("%s: %w", operation, cause))
}
