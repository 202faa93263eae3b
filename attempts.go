package vitrine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteAttemptStore persists login failure records in a SQLite database so
// lockouts survive restarts and can be shared by instances pointed at the
// same file.
type SQLiteAttemptStore struct {
	db *sql.DB
}

// NewSQLiteAttemptStore opens (or creates) the database at path, ensures the
// parent directory exists, and runs schema setup.
func NewSQLiteAttemptStore(path string) (*SQLiteAttemptStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL plus a busy timeout so concurrent writers wait instead of failing
	// with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS login_attempts (
    ip TEXT PRIMARY KEY,
    count INTEGER NOT NULL,
    last_attempt INTEGER NOT NULL
);
`); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLiteAttemptStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteAttemptStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteAttemptStore) Get(ip string) (int, time.Time, error) {
	var count int
	var last int64
	err := s.db.QueryRow(`SELECT count, last_attempt FROM login_attempts WHERE ip = ?`, ip).
		Scan(&count, &last)
	if err == sql.ErrNoRows {
		return 0, time.Time{}, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return count, time.Unix(last, 0), nil
}

func (s *SQLiteAttemptStore) Increment(ip string, now time.Time) error {
	_, err := s.db.Exec(`
INSERT INTO login_attempts (ip, count, last_attempt) VALUES (?, 1, ?)
ON CONFLICT(ip) DO UPDATE SET count = count + 1, last_attempt = excluded.last_attempt`,
		ip, now.Unix())
	return err
}

func (s *SQLiteAttemptStore) Clear(ip string) error {
	_, err := s.db.Exec(`DELETE FROM login_attempts WHERE ip = ?`, ip)
	return err
}

func (s *SQLiteAttemptStore) PurgeBefore(cutoff time.Time) error {
	_, err := s.db.Exec(`DELETE FROM login_attempts WHERE last_attempt < ?`, cutoff.Unix())
	return err
}
