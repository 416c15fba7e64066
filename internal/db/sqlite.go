package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverCGO is github.com/mattn/go-sqlite3.
	DriverCGO = "sqlite3"
	// DriverPure is modernc.org/sqlite.
	DriverPure = "sqlite"

	DefaultPath = "./ghostwriter.db"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    value_hash TEXT NOT NULL,
    modified_at DATETIME NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

type SQLite struct {
	driver string
	path   string
	conn   *sql.DB
}

// NewSQLite returns an unopened database handle. Empty arguments select the
// cgo driver and DefaultPath.
func NewSQLite(driver, path string) *SQLite {
	if driver == "" {
		driver = DriverCGO
	}
	if path == "" {
		path = DefaultPath
	}
	return &SQLite{
		driver: driver,
		path:   path,
	}
}

func (s *SQLite) InitDB() error {
	switch s.driver {
	case DriverCGO, DriverPure:
	default:
		return fmt.Errorf("unsupported sqlite driver %q", s.driver)
	}

	conn, err := sql.Open(s.driver, s.path)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", s.path, err)
	}

	// One writer at a time; sqlite serializes writes anyway and this avoids
	// SQLITE_BUSY under concurrent requests.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return fmt.Errorf("error creating schema: %w", err)
	}

	s.conn = conn
	dbLogger.Info().Str("driver", s.driver).Str("path", s.path).Msg("Database initialized")
	return nil
}

func (s *SQLite) Get() *sql.DB {
	return s.conn
}

func (s *SQLite) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *SQLite) Query(query string, args ...any) (*sql.Rows, error) {
	dbLogger.Debug().Str("query", query).Msg("Query")
	return s.conn.Query(query, args...)
}

func (s *SQLite) QueryRow(query string, args ...any) *sql.Row {
	dbLogger.Debug().Str("query", query).Msg("QueryRow")
	return s.conn.QueryRow(query, args...)
}

func (s *SQLite) Exec(query string, args ...any) (sql.Result, error) {
	dbLogger.Debug().Str("query", query).Msg("Exec")
	return s.conn.Exec(query, args...)
}
