package sqlgateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
	"github.com/AntonStoeckl/library-catalog-go/catalog/sqlgateway/internal/adapters"
)

// tableGateway implements catalog.Gateway for one entity table with a generated id column.
type tableGateway[T catalog.Entity[T]] struct {
	store   *Store
	table   string
	mapping entityMapping[T]
}

func newTableGateway[T catalog.Entity[T]](store *Store, table string, mapping entityMapping[T]) tableGateway[T] {
	return tableGateway[T]{store: store, table: table, mapping: mapping}
}

// Create inserts the entity and returns the id generated by the database.
func (g tableGateway[T]) Create(ctx context.Context, entity T) (catalog.ID, error) {
	insert := g.store.dialect.
		Insert(g.table).
		Rows(g.mapping.record(entity)).
		Prepared(true)

	var id catalog.ID
	var err error

	if g.store.returnsGeneratedIDs() {
		id, err = g.insertReturningID(ctx, insert)
	} else {
		id, err = g.insertWithLastInsertID(ctx, insert)
	}

	if err != nil {
		return 0, err
	}

	g.store.logOperation(ctx, logMsgRowCreated, logAttrTable, g.table, logAttrID, id)

	return id, nil
}

func (g tableGateway[T]) insertReturningID(ctx context.Context, insert *goqu.InsertDataset) (catalog.ID, error) {
	sqlQuery, args, buildErr := insert.Returning(goqu.C(colID)).ToSQL()
	if buildErr != nil {
		return 0, g.store.buildFailed(ctx, actionInsert, g.table, buildErr)
	}

	rows, queryErr := g.store.query(ctx, actionInsert, g.table, ErrInsertFailed, sqlQuery, args)
	if queryErr != nil {
		return 0, queryErr
	}
	defer g.store.closeRows(ctx, rows)

	if !rows.Next() {
		cause := rows.Err()
		if cause == nil {
			return 0, g.generatedIDFailed(ctx, errors.New("insert returned no row"))
		}

		// pgx reports constraint violations only once the result is consumed.
		g.store.logError(ctx, logMsgDBExecFailed, cause, logAttrQuery, sqlQuery, logAttrTable, g.table)
		g.store.recordStatementError(ctx, actionInsert, g.table)

		return 0, errors.Join(catalog.ErrStorage, ErrInsertFailed, cause)
	}

	var id catalog.ID
	if scanErr := rows.Scan(&id); scanErr != nil {
		return 0, g.generatedIDFailed(ctx, scanErr)
	}

	return id, nil
}

func (g tableGateway[T]) insertWithLastInsertID(ctx context.Context, insert *goqu.InsertDataset) (catalog.ID, error) {
	sqlQuery, args, buildErr := insert.ToSQL()
	if buildErr != nil {
		return 0, g.store.buildFailed(ctx, actionInsert, g.table, buildErr)
	}

	result, execErr := g.store.exec(ctx, actionInsert, g.table, ErrInsertFailed, sqlQuery, args)
	if execErr != nil {
		return 0, execErr
	}

	id, idErr := result.LastInsertId()
	if idErr != nil {
		return 0, g.generatedIDFailed(ctx, idErr)
	}

	return id, nil
}

func (g tableGateway[T]) generatedIDFailed(ctx context.Context, cause error) error {
	g.store.logError(ctx, logMsgGeneratedIDFailed, cause, logAttrTable, g.table)
	g.store.recordStatementError(ctx, actionInsert, g.table)

	return errors.Join(catalog.ErrStorage, ErrReadingGeneratedIDFailed, cause)
}

// ReadByID reads one row. found is false when no row has the id.
func (g tableGateway[T]) ReadByID(ctx context.Context, id catalog.ID) (T, bool, error) {
	var empty T

	entities, err := g.selectWhere(ctx, goqu.C(colID).Eq(id))
	if err != nil {
		return empty, false, err
	}

	if len(entities) == 0 {
		return empty, false, nil
	}

	return entities[0], true, nil
}

// ReadAll reads all rows ordered by id.
func (g tableGateway[T]) ReadAll(ctx context.Context) ([]T, error) {
	return g.selectWhere(ctx)
}

func (g tableGateway[T]) selectWhere(ctx context.Context, conditions ...exp.Expression) ([]T, error) {
	selectStmt := g.store.dialect.
		From(g.table).
		Select(g.mapping.selectColumns()...).
		Order(goqu.C(colID).Asc()).
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

	return scanAll(ctx, g.store, g.table, rows, g.mapping.scan)
}

// Update overwrites all mapped columns of the row with the entity's id.
func (g tableGateway[T]) Update(ctx context.Context, entity T) error {
	sqlQuery, args, buildErr := g.store.dialect.
		Update(g.table).
		Set(g.mapping.record(entity)).
		Where(goqu.C(colID).Eq(entity.EntityID())).
		Prepared(true).
		ToSQL()

	if buildErr != nil {
		return g.store.buildFailed(ctx, actionUpdate, g.table, buildErr)
	}

	if err := g.execForSingleRow(ctx, actionUpdate, ErrUpdateFailed, entity.EntityID(), sqlQuery, args); err != nil {
		return err
	}

	g.store.logOperation(ctx, logMsgRowUpdated, logAttrTable, g.table, logAttrID, entity.EntityID())

	return nil
}

// Delete removes the row with the given id.
func (g tableGateway[T]) Delete(ctx context.Context, id catalog.ID) error {
	sqlQuery, args, buildErr := g.store.dialect.
		Delete(g.table).
		Where(goqu.C(colID).Eq(id)).
		Prepared(true).
		ToSQL()

	if buildErr != nil {
		return g.store.buildFailed(ctx, actionDelete, g.table, buildErr)
	}

	if err := g.execForSingleRow(ctx, actionDelete, ErrDeleteFailed, id, sqlQuery, args); err != nil {
		return err
	}

	g.store.logOperation(ctx, logMsgRowsDeleted, logAttrTable, g.table, logAttrID, id, logAttrRowsAffected, 1)

	return nil
}

// execForSingleRow executes an update or delete and fails with catalog.ErrRowNotFound when no row matched.
func (g tableGateway[T]) execForSingleRow(
	ctx context.Context,
	action string,
	failure error,
	id catalog.ID,
	sqlQuery string,
	args []any,
) error {

	result, execErr := g.store.exec(ctx, action, g.table, failure, sqlQuery, args)
	if execErr != nil {
		return execErr
	}

	affected, affectedErr := g.store.rowsAffected(ctx, action, g.table, result)
	if affectedErr != nil {
		return affectedErr
	}

	if affected == 0 {
		var entity T
		g.store.logWarn(ctx, logMsgRowNotFound, logAttrTable, g.table, logAttrID, id)

		return errors.Join(
			catalog.ErrStorage,
			failure,
			fmt.Errorf("%w: %s with id %d", catalog.ErrRowNotFound, entity.EntityName(), id),
		)
	}

	return nil
}

// scanAll scans every remaining row with scan and checks the iteration error.
func scanAll[T any](
	ctx context.Context,
	store *Store,
	table string,
	rows adapters.DBRows,
	scan func(rows adapters.DBRows) (T, error),
) ([]T, error) {

	result := make([]T, 0)

	for rows.Next() {
		entity, scanErr := scan(rows)
		if scanErr != nil {
			store.logError(ctx, logMsgScanRowFailed, scanErr, logAttrTable, table)
			store.recordStatementError(ctx, actionSelect, table)

			return nil, errors.Join(catalog.ErrStorage, ErrScanningRowFailed, scanErr)
		}

		result = append(result, entity)
	}

	if iterErr := rows.Err(); iterErr != nil {
		store.logError(ctx, logMsgDBQueryFailed, iterErr, logAttrTable, table)
		store.recordStatementError(ctx, actionSelect, table)

		return nil, errors.Join(catalog.ErrStorage, ErrQueryingFailed, iterErr)
	}

	return result, nil
}
