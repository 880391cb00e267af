package sqlgateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
	"github.com/AntonStoeckl/library-catalog-go/catalog/sqlgateway/internal/adapters"
)

// entityMapping maps one entity type to the non-id columns of its table.
type entityMapping[T any] struct {
	columns []string
	record  func(entity T) goqu.Record
	scan    func(rows adapters.DBRows) (T, error)
}

// selectColumns returns the id column followed by the mapped columns.
func (m entityMapping[T]) selectColumns() []any {
	cols := make([]any, 0, len(m.columns)+1)
	cols = append(cols, colID)

	for _, col := range m.columns {
		cols = append(cols, col)
	}

	return cols
}

var bookMapping = entityMapping[catalog.Book]{
	columns: []string{colTitle, colISBN},
	record: func(b catalog.Book) goqu.Record {
		return goqu.Record{colTitle: b.Title, colISBN: b.ISBN}
	},
	scan: func(rows adapters.DBRows) (catalog.Book, error) {
		var b catalog.Book
		err := rows.Scan(&b.ID, &b.Title, &b.ISBN)

		return b, err
	},
}

var authorMapping = entityMapping[catalog.Author]{
	columns: []string{colName},
	record: func(a catalog.Author) goqu.Record {
		return goqu.Record{colName: a.Name}
	},
	scan: func(rows adapters.DBRows) (catalog.Author, error) {
		var a catalog.Author
		err := rows.Scan(&a.ID, &a.Name)

		return a, err
	},
}

var userMapping = entityMapping[catalog.User]{
	columns: []string{colName},
	record: func(u catalog.User) goqu.Record {
		return goqu.Record{colName: u.Name}
	},
	scan: func(rows adapters.DBRows) (catalog.User, error) {
		var u catalog.User
		err := rows.Scan(&u.ID, &u.Name)

		return u, err
	},
}

var loanMapping = entityMapping[catalog.Loan]{
	columns: []string{colStartDate, colEndDate, colUserID, colBookID},
	record: func(l catalog.Loan) goqu.Record {
		return goqu.Record{
			colStartDate: catalog.ToDate(l.StartDate),
			colEndDate:   catalog.ToDate(l.EndDate),
			colUserID:    l.UserID,
			colBookID:    l.BookID,
		}
	},
	scan: func(rows adapters.DBRows) (catalog.Loan, error) {
		var l catalog.Loan
		var start, end dateColumn

		if err := rows.Scan(&l.ID, &start, &end, &l.UserID, &l.BookID); err != nil {
			return catalog.Loan{}, err
		}

		l.StartDate = start.Time
		l.EndDate = end.Time

		return l, nil
	},
}

var errUnsupportedDateValue = errors.New("unsupported date column value")

// dateColumn scans DATE columns into a calendar date at midnight UTC.
// Drivers differ in what they hand out for DATE: pgx and lib/pq return time.Time,
// sqlite returns time.Time or text depending on how the value was written.
type dateColumn struct {
	time.Time
}

// Scan implements sql.Scanner.
func (d *dateColumn) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = catalog.ToDate(v)
		return nil

	case string:
		return d.parse(v)

	case []byte:
		return d.parse(string(v))

	default:
		return fmt.Errorf("%w: %T", errUnsupportedDateValue, src)
	}
}

func (d *dateColumn) parse(value string) error {
	if len(value) < len(catalog.DateLayout) {
		return fmt.Errorf("%w: %q", errUnsupportedDateValue, value)
	}

	parsed, err := catalog.ParseDate(value[:len(catalog.DateLayout)])
	if err != nil {
		return err
	}

	d.Time = parsed

	return nil
}
