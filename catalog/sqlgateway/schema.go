package sqlgateway

import (
	"context"
	"fmt"
)

// EnsureSchema creates the five catalog tables if they do not exist yet.
// Relation and loan rows reference books, authors, and users through foreign keys.
// With sqlite3, foreign keys are only enforced when the connection enables them
// (e.g. the _pragma=foreign_keys(1) DSN parameter of modernc.org/sqlite).
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, statement := range s.schemaStatements() {
		if _, err := s.exec(ctx, actionDDL, "", ErrCreatingSchemaFailed, statement, nil); err != nil {
			return err
		}
	}

	s.logOperation(ctx, logMsgSchemaEnsured, logAttrDialect, s.dialectName)

	return nil
}

func (s *Store) schemaStatements() []string {
	idColumn := "id BIGSERIAL PRIMARY KEY"
	if s.dialectName == DialectSQLite3 {
		idColumn = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	t := s.tables

	return []string{
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %q (%s, title TEXT NOT NULL, isbn TEXT NOT NULL DEFAULT '')`,
			t.Books, idColumn,
		),
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %q (%s, name TEXT NOT NULL)`,
			t.Authors, idColumn,
		),
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %q (%s, name TEXT NOT NULL)`,
			t.Users, idColumn,
		),
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %q (`+
				`book_id BIGINT NOT NULL REFERENCES %q (id), `+
				`author_id BIGINT NOT NULL REFERENCES %q (id))`,
			t.BookAuthors, t.Books, t.Authors,
		),
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %q (%s, `+
				`start_date DATE NOT NULL, `+
				`end_date DATE NOT NULL, `+
				`user_id BIGINT NOT NULL REFERENCES %q (id), `+
				`book_id BIGINT NOT NULL REFERENCES %q (id), `+
				`CHECK (end_date >= start_date))`,
			t.Loans, idColumn, t.Users, t.Books,
		),
	}
}
