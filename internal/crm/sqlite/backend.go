// Package sqlite implements the CRM telephony API on top of the local CRM
// store.
package sqlite

import (
	"fmt"

	"github.com/pdxmph/softphone-sync/internal/crm"
	"github.com/pdxmph/softphone-sync/internal/db"
)

// Backend implements crm.API against a *db.DB
type Backend struct {
	database *db.DB
}

// NewBackend creates a new sqlite-backed toolkit API
func NewBackend(database *db.DB) *Backend {
	return &Backend{database: database}
}

// SetSoftphonePanelWidth stores the requested width. The call completes
// asynchronously.
func (b *Backend) SetSoftphonePanelWidth(widthPX int) *crm.Call {
	return b.async(func() crm.Result {
		if widthPX <= 0 {
			return crm.Failed("widthPX must be a positive number")
		}
		if err := b.database.SetSoftphoneWidth(widthPX); err != nil {
			return crm.Failed(err.Error())
		}
		return crm.Succeeded(fmt.Sprint(widthPX))
	})
}

// SaveLog creates or updates a call log record. The return value is the
// record ID.
func (b *Backend) SaveLog(record crm.Record) *crm.Call {
	return b.async(func() crm.Result {
		id, err := b.database.SaveLog(record.ID, record.Description)
		if err != nil {
			return crm.Failed(err.Error())
		}
		return crm.Succeeded(id)
	})
}

// RefreshView records a view refresh
func (b *Backend) RefreshView() error {
	return b.database.RecordRefresh()
}

func (b *Backend) async(fn func() crm.Result) *crm.Call {
	call := crm.NewCall()
	go func() {
		call.Resolve(fn())
	}()
	return call
}

// Register makes the backend available under both toolkit script paths
func Register(registry *crm.Registry, database *db.DB) error {
	factory := func() (crm.API, error) {
		return NewBackend(database), nil
	}
	for _, script := range []string{crm.ClassicScript, crm.LightningScript} {
		if err := registry.Register(script, factory); err != nil {
			return fmt.Errorf("registering sqlite backend: %w", err)
		}
	}
	return nil
}
