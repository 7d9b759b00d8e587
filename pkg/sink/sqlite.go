package sink

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/record"
	_ "modernc.org/sqlite"
)

// SQLite mirrors each saved table into a database table named after the
// prefix. A save replaces the previous contents.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // single writer

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Save replaces table prefix with t. Empty cells are stored as NULL.
func (s *SQLite) Save(t record.Table, prefix string) (string, error) {
	if len(t.Header) == 0 {
		return "", fmt.Errorf("sqlite: table %s has no columns", prefix)
	}

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	table := quoteIdent(prefix)
	cols := make([]string, len(t.Header))
	marks := make([]string, len(t.Header))
	for i, h := range t.Header {
		cols[i] = quoteIdent(h) + " TEXT"
		marks[i] = "?"
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return "", fmt.Errorf("sqlite: drop %s: %w", prefix, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))); err != nil {
		return "", fmt.Errorf("sqlite: create %s: %w", prefix, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, strings.Join(marks, ", ")))
	if err != nil {
		return "", fmt.Errorf("sqlite: prepare %s: %w", prefix, err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Header))
	for n, row := range t.Rows {
		for i := range args {
			args[i] = nil
			if i < len(row) && row[i] != "" {
				args[i] = row[i]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return "", fmt.Errorf("sqlite: insert %s row %d: %w", prefix, n+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("sqlite: commit %s: %w", prefix, err)
	}
	return s.path + "#" + prefix, nil
}

// Count returns the number of rows in table prefix.
func (s *SQLite) Count(prefix string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM " + quoteIdent(prefix)).Scan(&n)
	return n, err
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
