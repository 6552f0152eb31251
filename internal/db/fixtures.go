package db

import (
	"fmt"
)

// DefaultRecordID is the record transcripts land on out of the box
const DefaultRecordID = "00T3C000006ZpkHUAS"

// CreateFixturesDatabase creates a database with sample call logs
func CreateFixturesDatabase(dbPath string) error {
	if err := Initialize(dbPath); err != nil {
		return fmt.Errorf("initializing fixtures database: %w", err)
	}

	database, err := Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening fixtures database: %w", err)
	}
	defer database.Close()

	fixtures := []CallLog{
		{
			ID: DefaultRecordID,
			Description: "2026-10-17T09:00:05Z\r\nCustomer\r\nHi, my order hasn't arrived yet.\r\n" +
				"2026-10-17T09:00:41Z\r\nAgent\r\nSorry to hear that, let me check the tracking number.\r\n" +
				"2026-10-17T09:02:10Z\r\nAgent\r\nIt's out for delivery today.\r\n",
		},
		{
			ID:          "00T3C000006ZpkIUAS",
			Description: "2026-10-16T15:12:00Z\r\nCustomer\r\nCan I change my billing address?\r\n",
		},
		{
			ID:          "00T3C000006ZpkJUAS",
			Description: "",
		},
	}

	for _, l := range fixtures {
		if _, err := database.SaveLog(l.ID, l.Description); err != nil {
			return fmt.Errorf("adding fixture call log %s: %w", l.ID, err)
		}
	}

	return database.SetSoftphoneWidth(433)
}
