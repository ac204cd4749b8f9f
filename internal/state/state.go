package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultPath is the default state database location.
const DefaultPath = "/var/lib/ledctl/state.db"

// Store persists the last pattern applied per drive, so repeated writes of
// the same pattern can be suppressed across invocations, and an event log of
// LED changes.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens or creates the state database at the given path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to configure state database: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	var version int
	if err := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return err
	}

	migrations := []string{
		migrationV1,
	}

	for i, migration := range migrations {
		v := i + 1
		if v <= version {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migration); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration v%d failed: %w", v, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", v); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

const migrationV1 = `
-- Last pattern applied per drive (keyed by sysfs device path)
CREATE TABLE IF NOT EXISTS drive_patterns (
    device_path TEXT PRIMARY KEY,
    pattern TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- LED change history
CREATE TABLE IF NOT EXISTS led_events (
    id TEXT PRIMARY KEY,
    device_path TEXT NOT NULL,
    pattern TEXT NOT NULL,
    interface TEXT,
    timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_led_events_device ON led_events(device_path);
CREATE INDEX IF NOT EXISTS idx_led_events_time ON led_events(timestamp);
`

// Event is a single LED change record.
type Event struct {
	ID         string
	DevicePath string
	Pattern    string
	Interface  string
	Timestamp  time.Time
}

// LastPattern returns the last recorded pattern for a device, with ok=false
// when the device has never been written.
func (s *Store) LastPattern(devicePath string) (string, bool, error) {
	var pattern string
	err := s.conn.QueryRow(
		"SELECT pattern FROM drive_patterns WHERE device_path = ?", devicePath,
	).Scan(&pattern)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return pattern, true, nil
}

// RecordPattern stores the pattern just applied and appends an event record.
func (s *Store) RecordPattern(devicePath, pattern, iface string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO drive_patterns (device_path, pattern, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(device_path) DO UPDATE SET
			pattern = excluded.pattern,
			updated_at = CURRENT_TIMESTAMP
	`, devicePath, pattern)
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO led_events (id, device_path, pattern, interface)
		VALUES (?, ?, ?, ?)
	`, uuid.NewString(), devicePath, pattern, iface)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Patterns returns the last recorded pattern for every known device.
func (s *Store) Patterns() (map[string]string, error) {
	rows, err := s.conn.Query("SELECT device_path, pattern FROM drive_patterns")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patterns := make(map[string]string)
	for rows.Next() {
		var device, pattern string
		if err := rows.Scan(&device, &pattern); err != nil {
			return nil, err
		}
		patterns[device] = pattern
	}
	return patterns, rows.Err()
}

// Events returns the most recent LED events, newest first. devicePath
// filters to one device when non-empty.
func (s *Store) Events(devicePath string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, device_path, pattern, COALESCE(interface, ''), timestamp
		FROM led_events
	`
	args := []any{}
	if devicePath != "" {
		query += " WHERE device_path = ?"
		args = append(args, devicePath)
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.DevicePath, &e.Pattern, &e.Interface, &e.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
