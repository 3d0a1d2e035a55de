// Package storage holds the durable collaborators of the pipeline: the
// relational sink receiving final tables and the sources that supply
// local paths for hierarchical telemetry objects.
package storage

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"energy-analysis/internal/frame"
)

// SQLiteSink persists final combined tables into a local SQLite file,
// one table per (file, group) artifact.
type SQLiteSink struct {
	db    *sql.DB
	mutex sync.Mutex
}

// NewSQLiteSink opens (creating if needed) the sink database.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_sync=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// StoreTable writes the frame into a table of the given name, replacing
// any previous contents. Column types follow the frame's storage kinds;
// missing values become SQL NULL.
func (s *SQLiteSink) StoreTable(name string, f *frame.Frame) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	table := sanitizeIdentifier(name)
	columns := make([]string, 0, 1+len(f.Columns))
	defs := make([]string, 0, 1+len(f.Columns))
	if f.Time != nil {
		columns = append(columns, "ElapsedTime")
		defs = append(defs, `"ElapsedTime" INTEGER`)
	}
	for _, col := range f.Columns {
		columns = append(columns, col.Name)
		defs = append(defs, fmt.Sprintf("%q %s", col.Name, sqlType(col.Kind)))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %q", table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	create := fmt.Sprintf("CREATE TABLE %q (%s)", table, strings.Join(defs, ", "))
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %q (%s) VALUES (%s)", table, strings.Join(quoted, ", "), placeholders,
	))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	rows := f.Rows()
	args := make([]any, len(columns))
	for r := 0; r < rows; r++ {
		i := 0
		if f.Time != nil {
			args[i] = int64(f.Time[r])
			i++
		}
		for _, col := range f.Columns {
			args[i] = sqlValue(col.Values[r], col.Kind)
			i++
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert row %d into %s: %w", r, table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteSink) Close() error { return s.db.Close() }

func sqlType(kind frame.Kind) string {
	switch kind {
	case frame.Int64, frame.Uint16, frame.Uint32, frame.Uint64:
		return "INTEGER"
	default:
		return "REAL"
	}
}

func sqlValue(v float64, kind frame.Kind) any {
	if math.IsNaN(v) {
		return nil
	}
	switch kind {
	case frame.Int64, frame.Uint16, frame.Uint32, frame.Uint64:
		return int64(v)
	default:
		return v
	}
}

func sanitizeIdentifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "table_"
	}
	return b.String()
}
