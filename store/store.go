package store

import (
	"database/sql"
	"encoding/json"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/promptdeck/promptdeck/internal/file"
)

// ErrNotFound is returned when a key has no record.
var ErrNotFound = errors.New("record not found")

// Store implements a SQLite-backed key/value store. Records are JSON blobs
// written whole; the last write for a key wins.
type Store struct {
	db *sql.DB
}

// New store.
func New(dbPath string) (*Store, error) {
	if err := file.CreateDirectoryIfNotExist(filepath.Dir(dbPath)); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	// Create records table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "creating records table")
	}

	return &Store{
		db: db,
	}, nil
}

// Put writes a record under the given key, replacing any previous record.
func (s *Store) Put(key string, record any) error {
	value, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshaling record")
	}

	// Use REPLACE INTO to handle both insert and update cases
	_, err = s.db.Exec(`
		REPLACE INTO records (key, value)
		VALUES (?, ?)
	`, key, string(value))
	if err != nil {
		return errors.Wrap(err, "writing record to database")
	}
	return nil
}

// Get reads the record stored under the given key into record.
func (s *Store) Get(key string, record any) error {
	var value string
	err := s.db.QueryRow(`
		SELECT value FROM records WHERE key = ?
	`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "querying record")
	}

	if err := json.Unmarshal([]byte(value), record); err != nil {
		return errors.Wrap(err, "unmarshaling record")
	}
	return nil
}

// GetAll returns the raw records whose keys start with the given prefix,
// ordered by key.
func (s *Store) GetAll(prefix string) ([][]byte, error) {
	rows, err := s.db.Query(`
		SELECT value FROM records
		WHERE key LIKE ? || '%'
		ORDER BY key
	`, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	defer rows.Close()

	var records [][]byte
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, errors.Wrap(err, "scanning record row")
		}
		records = append(records, []byte(value))
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating record rows")
	}

	return records, nil
}

// Delete removes the record stored under the given key, if any.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM records WHERE key = ?`, key)
	if err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
