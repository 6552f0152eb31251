package crm

import (
	"context"
	"fmt"

	"github.com/pdxmph/softphone-sync/internal/logging"
)

// ScriptLoader loads a toolkit script once and returns when it settles.
type ScriptLoader interface {
	Load(ctx context.Context, url string) error
}

// Loader makes sure the toolkit API is present in a Slot.
type Loader struct {
	slot       *Slot
	scripts    ScriptLoader
	apiVersion string
	log        *logging.Logger
}

// NewLoader creates a Loader for the given API version.
func NewLoader(slot *Slot, scripts ScriptLoader, apiVersion string, log *logging.Logger) *Loader {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Loader{
		slot:       slot,
		scripts:    scripts,
		apiVersion: apiVersion,
		log:        log.WithComponent("crm-loader"),
	}
}

// Ensure returns the loaded API, loading the toolkit script for origin when
// the slot is empty. It returns ErrNotHosted for origins outside the CRM and
// ErrUnavailable when the API is still missing after the load.
func (l *Loader) Ensure(ctx context.Context, origin string) (API, error) {
	if !IsHosted(origin) {
		return nil, ErrNotHosted
	}

	if api, ok := l.slot.Get(); ok {
		return api, nil
	}

	scriptURL := LoadURL(origin, l.apiVersion)
	l.log.Warn("CRM telephony API not loaded, loading it", "url", scriptURL)
	loadErr := l.scripts.Load(ctx, scriptURL)

	if api, ok := l.slot.Get(); ok {
		return api, nil
	}
	if loadErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, loadErr)
	}
	return nil, ErrUnavailable
}
