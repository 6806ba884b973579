package localcache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
	key       TEXT PRIMARY KEY,
	body      BLOB NOT NULL,
	stored_at INTEGER NOT NULL
);
`

// Store keeps the last successful backend response per key so the dashboard
// can keep rendering while the backend is unreachable.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the cache database at path. ":memory:" keeps the
// cache in process memory.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("localcache: open database: %w", err)
	}
	// a second connection to ":memory:" would see an empty database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("localcache: create table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores value as JSON under key, replacing any earlier snapshot.
func (s *Store) Put(key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("localcache: marshal %q: %w", key, err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO snapshots (key, body, stored_at) VALUES (?, ?, ?)`,
		key, body, s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("localcache: put %q: %w", key, err)
	}
	return nil
}

// Get decodes the snapshot stored under key into dst. found is false when
// no snapshot exists.
func (s *Store) Get(key string, dst any) (storedAt time.Time, found bool, err error) {
	var (
		body []byte
		ms   int64
	)
	err = s.db.QueryRow(
		`SELECT body, stored_at FROM snapshots WHERE key = ?`, key,
	).Scan(&body, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("localcache: get %q: %w", key, err)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return time.Time{}, false, fmt.Errorf("localcache: decode %q: %w", key, err)
	}
	return time.UnixMilli(ms), true, nil
}
