package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrLogNotFound is returned when a call log record does not exist
var ErrLogNotFound = errors.New("call log not found")

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection
func Open(dbPath string) (*DB, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found at %s\nRun 'softphone-sync init' to create it", dbPath)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Toolkit calls complete on their own goroutines; one connection keeps
	// sqlite writers serialized.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}

	if err := db.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// SaveLog creates or updates a call log record and returns its ID. An
// empty id creates a record with a generated ID.
func (db *DB) SaveLog(id string, description string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO call_logs (id, description, save_count, created_at, updated_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			save_count = call_logs.save_count + 1,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := db.conn.Exec(query, id, description); err != nil {
		return "", fmt.Errorf("saving call log %s: %w", id, err)
	}

	return id, nil
}

// GetLog retrieves a single call log by ID
func (db *DB) GetLog(id string) (*CallLog, error) {
	query := `
		SELECT id, description, save_count, created_at, updated_at
		FROM call_logs
		WHERE id = ?
	`

	var l CallLog
	err := db.conn.QueryRow(query, id).Scan(
		&l.ID, &l.Description, &l.SaveCount, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrLogNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying call log %s: %w", id, err)
	}

	return &l, nil
}

// ListLogs returns the most recently updated call logs
func (db *DB) ListLogs(limit int) ([]CallLog, error) {
	query := `
		SELECT id, description, save_count, created_at, updated_at
		FROM call_logs
		ORDER BY updated_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying call logs: %w", err)
	}
	defer rows.Close()

	var logs []CallLog
	for rows.Next() {
		var l CallLog
		if err := rows.Scan(&l.ID, &l.Description, &l.SaveCount, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning call log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

// SetSoftphoneWidth stores the current softphone panel width
func (db *DB) SetSoftphoneWidth(widthPX int) error {
	query := `
		INSERT INTO softphone_state (id, width_px, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			width_px = excluded.width_px,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := db.conn.Exec(query, widthPX); err != nil {
		return fmt.Errorf("updating softphone width: %w", err)
	}
	return nil
}

// SoftphoneWidth returns the stored panel width; ok is false when no width
// has been set yet
func (db *DB) SoftphoneWidth() (width int, ok bool, err error) {
	err = db.conn.QueryRow(`SELECT width_px FROM softphone_state WHERE id = 1`).Scan(&width)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying softphone width: %w", err)
	}
	return width, true, nil
}

// RecordRefresh records a CRM view refresh
func (db *DB) RecordRefresh() error {
	if _, err := db.conn.Exec(`INSERT INTO view_refreshes (refreshed_at) VALUES (CURRENT_TIMESTAMP)`); err != nil {
		return fmt.Errorf("recording view refresh: %w", err)
	}
	return nil
}

// RefreshCount returns how many view refreshes have been recorded
func (db *DB) RefreshCount() (int, error) {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM view_refreshes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting view refreshes: %w", err)
	}
	return count, nil
}
