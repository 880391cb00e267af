package sqlgateway

import "errors"

// Failures are returned joined with catalog.ErrStorage and the driver error, e.g.
// errors.Join(catalog.ErrStorage, ErrInsertFailed, driverErr).
var (
	ErrBuildingQueryFailed       = errors.New("building sql query failed")
	ErrQueryingFailed            = errors.New("querying rows failed")
	ErrScanningRowFailed         = errors.New("scanning database row failed")
	ErrInsertFailed              = errors.New("inserting row failed")
	ErrUpdateFailed              = errors.New("updating row failed")
	ErrDeleteFailed              = errors.New("deleting rows failed")
	ErrReadingGeneratedIDFailed  = errors.New("reading generated id failed")
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
	ErrCreatingSchemaFailed      = errors.New("creating schema failed")
	ErrPingFailed                = errors.New("pinging database failed")
)
