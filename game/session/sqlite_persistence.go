package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wricardo/ludo-server/game/service"
)

const roomsSchema = `
CREATE TABLE IF NOT EXISTS rooms (
	id               TEXT PRIMARY KEY,
	preset_id        TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMP NOT NULL,
	last_accessed_at TIMESTAMP NOT NULL,
	document         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS rooms_last_accessed ON rooms(last_accessed_at);
`

// SQLitePersistence implements SessionPersistence on a SQLite table. Each
// row holds the same JSON document FilePersistence writes.
type SQLitePersistence struct {
	db            *sql.DB
	configManager service.ConfigManager
}

// NewSQLitePersistence opens (and creates if missing) the database at path
func NewSQLitePersistence(path string, configManager service.ConfigManager) (*SQLitePersistence, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(roomsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create rooms table: %w", err)
	}

	return &SQLitePersistence{db: db, configManager: configManager}, nil
}

// Save upserts the room document
func (sp *SQLitePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	doc, err := json.Marshal(toDocument(session))
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	_, err = sp.db.Exec(`
		INSERT INTO rooms (id, preset_id, created_at, last_accessed_at, document)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			preset_id = excluded.preset_id,
			last_accessed_at = excluded.last_accessed_at,
			document = excluded.document`,
		normalizeID(session.ID), session.PresetID, session.CreatedAt.UTC(), session.LastAccessedAt.UTC(), string(doc))
	if err != nil {
		return fmt.Errorf("save room %s: %w", session.ID, err)
	}
	return nil
}

// Load retrieves a room by code
func (sp *SQLitePersistence) Load(id string) (*service.Session, error) {
	var doc string
	err := sp.db.QueryRow(`SELECT document FROM rooms WHERE id = ?`, normalizeID(id)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", id, err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal([]byte(doc), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return fromDocument(data, sp.configManager)
}

// Delete removes a room row
func (sp *SQLitePersistence) Delete(id string) error {
	res, err := sp.db.Exec(`DELETE FROM rooms WHERE id = ?`, normalizeID(id))
	if err != nil {
		return fmt.Errorf("delete room %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all stored room codes, most recently used first
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.db.Query(`SELECT id FROM rooms ORDER BY last_accessed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan room id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a room row exists
func (sp *SQLitePersistence) Exists(id string) bool {
	var one int
	err := sp.db.QueryRow(`SELECT 1 FROM rooms WHERE id = ?`, normalizeID(id)).Scan(&one)
	return err == nil
}

// PurgeOlderThan deletes rooms not accessed since cutoff and returns how many went
func (sp *SQLitePersistence) PurgeOlderThan(cutoff time.Time) (int, error) {
	res, err := sp.db.Exec(`DELETE FROM rooms WHERE last_accessed_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge rooms: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Close closes the database
func (sp *SQLitePersistence) Close() error {
	return sp.db.Close()
}
