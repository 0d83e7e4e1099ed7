package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SchemaVersion is bumped whenever the session schema changes. Sessions are
// disposable, so an older session table is dropped instead of migrated.
const SchemaVersion = 2

// DSN returns the connection string for a session database file with the
// pragmas the stores rely on.
func DSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
}

// Open opens and initializes the session database at path. ":memory:" opens a
// private in-memory database limited to one connection.
// PRE: path is a writable file path or ":memory:"
// POST: Returns a pinged, initialized database
func Open(path string) (*sql.DB, error) {
	dsn := DSN(path)
	if path == ":memory:" {
		dsn = path
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(8)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("session db unreachable: %w", err)
	}
	if err := InitDB(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitDB creates the session schema. expires_at holds unix nanoseconds.
// PRE: db is a valid database connection
// POST: The session and schema_version tables exist at SchemaVersion
func InitDB(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}
	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > 0 && current < SchemaVersion {
		if _, err := db.Exec(`DROP TABLE IF EXISTS session`); err != nil {
			return fmt.Errorf("failed to drop old session table: %w", err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS session (
		token TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_session_expires_at ON session(expires_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if current != SchemaVersion {
		if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
			return fmt.Errorf("failed to reset schema version: %w", err)
		}
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}
	return nil
}

// CurrentSchemaVersion returns the recorded schema version.
func CurrentSchemaVersion(db *sql.DB) (int, error) {
	var v int
	err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v)
	return v, err
}
