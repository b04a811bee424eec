// Package sqlite persists cleaned series into an SQLite database and reads raw
// rows back out of one.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/chrissnell/heartseries/internal/series"
	"github.com/chrissnell/heartseries/internal/storage"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store wraps an SQLite database. As a storage backend it replaces the
// contents of its table with each batch; as a source it reads every column
// of a table as text.
type Store struct {
	db     *sql.DB
	path   string
	table  string
	logger *zap.SugaredLogger
}

// Open opens (creating if needed) the database at path. table is the table
// batches are written to and rows are read from.
func Open(path, table string, logger *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	// A single connection keeps writes serialized
	db.SetMaxOpenConns(1)

	return &Store{
		db:     db,
		path:   path,
		table:  table,
		logger: logger,
	}, nil
}

// Name identifies the backend in logs and errors
func (s *Store) Name() string {
	return "sqlite"
}

// StoreBatch drops and recreates the table with one TEXT column per field,
// then inserts the readings in series order, all in one transaction. The
// table keeps the input row shape so it can be read back as a source.
func (s *Store) StoreBatch(ctx context.Context, b storage.Batch) error {
	header := b.Header()
	if header == nil {
		return fmt.Errorf("no readings to store")
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = quoteIdent(name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(s.table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", s.table, err)
	}

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = c + " TEXT"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(s.table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(s.table), strings.Join(columns, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for _, r := range b.Series.Readings {
		for i, name := range header {
			args[i], _ = r.Row.Get(name)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert reading: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infow("stored cleaned readings", "run_id", b.RunID, "readings", b.Series.Len(),
		"database", s.path, "table", s.table)
	return nil
}

// Rows reads every row of the table in insertion order. NULL columns become
// empty strings and non-text columns are rendered as text.
func (s *Store) Rows(ctx context.Context) ([]series.Row, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(s.table)+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", s.table, err)
	}

	var out []series.Row
	for rows.Next() {
		values := make([]sql.NullString, len(names))
		dest := make([]any, len(names))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		text := make([]string, len(names))
		for i, v := range values {
			text[i] = v.String
		}
		out = append(out, series.NewRow(names, text))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
