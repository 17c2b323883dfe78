// Package store persists arrest records in a single-file SQLite database.
//
// The database is recreated on every run: Create removes whatever file is at
// the configured path before building the arrests table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/arrests/internal/model"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

// TableName is the name of the arrests table
const TableName = "arrests"

// Store is a handle to a freshly created arrests database
type Store struct {
	db   *sql.DB
	path string
}

// Create deletes any existing database at path and creates an empty arrests
// table. The returned Store must be closed by the caller.
func Create(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is empty")
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove old database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer, one file
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createTableSQL()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	log.Debug().Str("db", path).Msg("created arrests table")

	return &Store{db: db, path: path}, nil
}

// Open opens an existing arrests database without recreating it
func Open(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Populate inserts all records in a single transaction. Either every row is
// written or none is.
func (s *Store) Populate(ctx context.Context, records []model.ArrestRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertSQL())
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err = stmt.ExecContext(ctx, fieldArgs(rec.Fields())...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Debug().Str("db", s.path).Int("records", len(records)).Msg("populated arrests table")
	return nil
}

// First returns the first row in storage order
func (s *Store) First(ctx context.Context) (model.ArrestRecord, error) {
	row := s.db.QueryRowContext(ctx, selectSQL()+" LIMIT 1")
	return scanRecord(row)
}

// Records returns every row in storage order
func (s *Store) Records(ctx context.Context) ([]model.ArrestRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectSQL())
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []model.ArrestRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Count returns the number of rows in the arrests table
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+TableName).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// DB exposes the underlying handle for ad-hoc queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (model.ArrestRecord, error) {
	fields := make([]string, model.FieldCount)
	dest := make([]any, model.FieldCount)
	for i := range fields {
		dest[i] = &fields[i]
	}

	if err := sc.Scan(dest...); err != nil {
		return model.ArrestRecord{}, fmt.Errorf("scan record: %w", err)
	}
	return model.RecordFromFields(fields)
}

func fieldArgs(fields []string) []any {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return args
}

func createTableSQL() string {
	cols := make([]string, 0, model.FieldCount)
	for _, c := range model.Columns {
		cols = append(cols, c+" TEXT")
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", TableName, strings.Join(cols, ",\n\t"))
}

func insertSQL() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", model.FieldCount), ",")
	return fmt.Sprintf("INSERT INTO %s VALUES(%s)", TableName, placeholders)
}

func selectSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(model.Columns[:], ", "), TableName)
}
