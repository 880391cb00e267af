package sqlgateway

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
	"github.com/AntonStoeckl/library-catalog-go/catalog/sqlgateway/internal/adapters"
)

// relationGateway implements catalog.RelationGateway for the book-author join table.
type relationGateway struct {
	store *Store
	table string
}

// Create inserts one relation row. Foreign key violations surface as catalog.ErrStorage.
func (g relationGateway) Create(ctx context.Context, relation catalog.BookAuthor) error {
	sqlQuery, args, buildErr := g.store.dialect.
		Insert(g.table).
		Rows(goqu.Record{colBookID: relation.BookID, colAuthorID: relation.AuthorID}).
		Prepared(true).
		ToSQL()

	if buildErr != nil {
		return g.store.buildFailed(ctx, actionInsert, g.table, buildErr)
	}

	if _, err := g.store.exec(ctx, actionInsert, g.table, ErrInsertFailed, sqlQuery, args); err != nil {
		return err
	}

	g.store.logOperation(
		ctx,
		logMsgRowCreated,
		logAttrTable, g.table,
		colBookID, relation.BookID,
		colAuthorID, relation.AuthorID,
	)

	return nil
}

// ReadAll reads all relation rows ordered by book id, then author id.
func (g relationGateway) ReadAll(ctx context.Context) ([]catalog.BookAuthor, error) {
	return g.selectWhere(ctx)
}

// ReadByBookID reads the relation rows of one book.
func (g relationGateway) ReadByBookID(ctx context.Context, bookID catalog.ID) ([]catalog.BookAuthor, error) {
	return g.selectWhere(ctx, goqu.C(colBookID).Eq(bookID))
}

// ReadByAuthorID reads the relation rows of one author.
func (g relationGateway) ReadByAuthorID(ctx context.Context, authorID catalog.ID) ([]catalog.BookAuthor, error) {
	return g.selectWhere(ctx, goqu.C(colAuthorID).Eq(authorID))
}

// DeleteByBookID removes all relation rows of one book and returns how many were removed.
func (g relationGateway) DeleteByBookID(ctx context.Context, bookID catalog.ID) (int64, error) {
	return g.deleteWhere(ctx, colBookID, bookID)
}

// DeleteByAuthorID removes all relation rows of one author and returns how many were removed.
func (g relationGateway) DeleteByAuthorID(ctx context.Context, authorID catalog.ID) (int64, error) {
	return g.deleteWhere(ctx, colAuthorID, authorID)
}

func (g relationGateway) selectWhere(ctx context.Context, conditions ...exp.Expression) ([]catalog.BookAuthor, error) {
	selectStmt := g.store.dialect.
		From(g.table).
		Select(colBookID, colAuthorID).
		Order(goqu.C(colBookID).Asc(), goqu.C(colAuthorID).Asc()).
		Prepared(true)

	if len(conditions) > 0 {
		selectStmt = selectStmt.Where(conditions...)
	}

	sqlQuery, args, buildErr := selectStmt.ToSQL()
	if buildErr != nil {
		return nil, g.store.buildFailed(ctx, actionSelect, g.table, buildErr)
	}

	rows, queryErr := g.store.query(ctx, actionSelect, g.table, ErrQueryingFailed, sqlQuery, args)
	if queryErr != nil {
		return nil, queryErr
	}
	defer g.store.closeRows(ctx, rows)

	return scanAll(ctx, g.store, g.table, rows, scanBookAuthor)
}

func (g relationGateway) deleteWhere(ctx context.Context, column string, id catalog.ID) (int64, error) {
	sqlQuery, args, buildErr := g.store.dialect.
		Delete(g.table).
		Where(goqu.C(column).Eq(id)).
		Prepared(true).
		ToSQL()

	if buildErr != nil {
		return 0, g.store.buildFailed(ctx, actionDelete, g.table, buildErr)
	}

	result, execErr := g.store.exec(ctx, actionDelete, g.table, ErrDeleteFailed, sqlQuery, args)
	if execErr != nil {
		return 0, execErr
	}

	affected, affectedErr := g.store.rowsAffected(ctx, actionDelete, g.table, result)
	if affectedErr != nil {
		return 0, affectedErr
	}

	g.store.logOperation(ctx, logMsgRowsDeleted, logAttrTable, g.table, column, id, logAttrRowsAffected, affected)

	return affected, nil
}

func scanBookAuthor(rows adapters.DBRows) (catalog.BookAuthor, error) {
	var relation catalog.BookAuthor
	err := rows.Scan(&relation.BookID, &relation.AuthorID)

	return relation, err
}
