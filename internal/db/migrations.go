package db

import (
	"errors"
	"fmt"
	"log"
)

// ErrNotInitialized is returned when a database file lacks the CRM schema
var ErrNotInitialized = errors.New("database has no call_logs table\nRun 'softphone-sync init' to create it")

// RunMigrations applies any pending database migrations
func (db *DB) RunMigrations() error {
	if err := db.checkSchema(); err != nil {
		return err
	}
	return db.runSaveCountMigration()
}

// checkSchema makes sure the file was created by Initialize
func (db *DB) checkSchema() error {
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*)
		FROM sqlite_master
		WHERE type = 'table' AND name = 'call_logs'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking for call_logs table: %w", err)
	}
	if count == 0 {
		return ErrNotInitialized
	}
	return nil
}

// runSaveCountMigration adds call_logs.save_count to stores created before
// repeated saves were tracked
func (db *DB) runSaveCountMigration() error {
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*)
		FROM pragma_table_info('call_logs')
		WHERE name = 'save_count'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking for save_count column: %w", err)
	}

	if count > 0 {
		return nil
	}

	log.Println("Running migration: Adding call log save counts...")

	_, err = db.conn.Exec(`ALTER TABLE call_logs ADD COLUMN save_count INTEGER NOT NULL DEFAULT 1`)
	if err != nil && err.Error() != "duplicate column name: save_count" {
		return fmt.Errorf("adding save_count column: %w", err)
	}

	log.Println("Migration completed successfully")
	return nil
}
