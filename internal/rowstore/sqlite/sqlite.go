// Package sqlite implements the row-store contract on a local SQLite file.
// Tuples are kept as JSON arrays in one generic table partitioned by logical
// table name, so the schema never has to change when a sheet gains a column.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"splitbot/internal/rowstore"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

var _ rowstore.Store = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) AppendRows(ctx context.Context, table string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), -1) + 1 FROM sheet_rows WHERE tbl = ?`, table,
	).Scan(&next); err != nil {
		return fmt.Errorf("next seq for %s: %w", table, err)
	}

	for i, row := range rows {
		fields, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshal row: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (tbl, seq, fields) VALUES (?, ?, ?)`,
			table, next+int64(i), string(fields),
		); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func (s *Store) ReadAllRows(ctx context.Context, table string) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fields FROM sheet_rows WHERE tbl = ? ORDER BY seq`, table)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		var fields []string
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", table, err)
		}
		out = append(out, fields)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRow(ctx context.Context, table string, index int, row []string) error {
	seq, err := s.seqAt(ctx, table, index)
	if err != nil {
		return err
	}
	fields, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE sheet_rows SET fields = ? WHERE tbl = ? AND seq = ?`,
		string(fields), table, seq)
	if err != nil {
		return fmt.Errorf("update %s row %d: %w", table, index, err)
	}
	return nil
}

func (s *Store) DeleteRow(ctx context.Context, table string, index int) error {
	seq, err := s.seqAt(ctx, table, index)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM sheet_rows WHERE tbl = ? AND seq = ?`, table, seq)
	if err != nil {
		return fmt.Errorf("delete %s row %d: %w", table, index, err)
	}
	return nil
}

// seqAt maps a zero-based positional index to the stored sequence number.
func (s *Store) seqAt(ctx context.Context, table string, index int) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx,
		`SELECT seq FROM sheet_rows WHERE tbl = ? ORDER BY seq LIMIT 1 OFFSET ?`,
		table, index,
	).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%s row %d: out of range", table, index)
	}
	if err != nil {
		return 0, fmt.Errorf("locate %s row %d: %w", table, index, err)
	}
	return seq, nil
}
