package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdxmph/softphone-sync/internal/config"
	"github.com/pdxmph/softphone-sync/internal/crm"
	"github.com/pdxmph/softphone-sync/internal/crm/sqlite"
	"github.com/pdxmph/softphone-sync/internal/db"
	"github.com/pdxmph/softphone-sync/internal/host"
	"github.com/pdxmph/softphone-sync/internal/lifecycle"
	"github.com/pdxmph/softphone-sync/internal/logging"
)

// session is one running agent desktop with its CRM integration
type session struct {
	database     *db.DB
	runtime      *host.Runtime
	orchestrator *lifecycle.Orchestrator
}

func newSession(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*session, error) {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	registry := crm.NewRegistry()
	if err := sqlite.Register(registry, database); err != nil {
		database.Close()
		return nil, err
	}
	slot := crm.NewSlot()
	loader := crm.NewLoader(slot, crm.NewRegistryScriptLoader(registry, slot), cfg.CRM.APIVersion, logger)

	dispatcher := host.NewDispatcher(logger)
	runtime := host.NewRuntime(dispatcher)

	orch := lifecycle.New(lifecycle.OptionsFromConfig(cfg), slot, loader, dispatcher, runtime, logger)
	if err := orch.Start(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("starting CRM integration: %w", err)
	}

	return &session{
		database:     database,
		runtime:      runtime,
		orchestrator: orch,
	}, nil
}

// drainTimeout bounds how long Close waits for CRM calls still in flight
const drainTimeout = 5 * time.Second

// Close tears down the integration and closes the database once pending CRM
// calls have landed
func (s *session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	return errors.Join(s.orchestrator.Close(ctx), s.database.Close())
}
