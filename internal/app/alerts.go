package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"carewatch/internal/storage"
)

// Acknowledge transitions an active alert to acknowledged. Alert status is
// operator-driven; the monitoring loop never changes it.
func (a *App) Acknowledge(ctx context.Context, alertID string) error {
	return a.updateAlert(ctx, alertID, (*storage.Store).AcknowledgeAlert)
}

// Resolve transitions an alert to its terminal resolved state.
func (a *App) Resolve(ctx context.Context, alertID string) error {
	return a.updateAlert(ctx, alertID, (*storage.Store).ResolveAlert)
}

func (a *App) updateAlert(ctx context.Context, alertID string, update func(*storage.Store, context.Context, uuid.UUID) error) error {
	id, err := uuid.Parse(alertID)
	if err != nil {
		return fmt.Errorf("invalid alert id %q: %w", alertID, err)
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured")
	}
	defer closeStore()

	return update(store, ctx, id)
}
