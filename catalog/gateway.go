package catalog

import "context"

// Entity is implemented by every entity type that carries a store-assigned ID.
type Entity[T any] interface {
	EntityID() ID
	WithID(id ID) T
	EntityName() string
}

// Gateway executes store operations for one entity type against one relational table.
// Implementations own no state beyond their database handle.
//
// Create persists a transient entity and returns the generated ID.
// ReadByID reports found=false (and no error) when no row matches.
// Every failure is returned as an ErrStorage error.
type Gateway[T any] interface {
	Create(ctx context.Context, entity T) (ID, error)
	ReadByID(ctx context.Context, id ID) (entity T, found bool, err error)
	ReadAll(ctx context.Context) ([]T, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, id ID) error
}

// RelationGateway executes store operations for the book-author join table.
// The delete operations return the number of removed rows.
type RelationGateway interface {
	Create(ctx context.Context, relation BookAuthor) error
	ReadAll(ctx context.Context) ([]BookAuthor, error)
	ReadByBookID(ctx context.Context, bookID ID) ([]BookAuthor, error)
	ReadByAuthorID(ctx context.Context, authorID ID) ([]BookAuthor, error)
	DeleteByBookID(ctx context.Context, bookID ID) (int64, error)
	DeleteByAuthorID(ctx context.Context, authorID ID) (int64, error)
}
