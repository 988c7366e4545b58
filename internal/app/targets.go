package app

import (
	"context"
	"fmt"
	"strconv"

	"pira/internal/storage"
	"pira/internal/storage/models"
)

// TargetFunc mutates one resolved target inside a transaction.
type TargetFunc func(ctx context.Context, tx storage.Transaction, target *models.Target) error

// ResolveTarget looks a saved target up by numeric ID or by name.
func ResolveTarget(ctx context.Context, store storage.Storage, identifier string) (*models.Target, error) {
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return store.GetTarget(ctx, id)
	}
	return store.GetTargetByName(ctx, identifier)
}

// ApplyToTargets resolves every identifier and applies fn in a single
// transaction. Nothing is committed if any lookup or fn fails.
func ApplyToTargets(ctx context.Context, store storage.Storage, identifiers []string, fn TargetFunc) ([]*models.Target, error) {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	targets := make([]*models.Target, 0, len(identifiers))
	for _, identifier := range identifiers {
		target, err := ResolveTarget(ctx, tx, identifier)
		if err == nil {
			err = fn(ctx, tx, target)
		}
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		targets = append(targets, target)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return targets, nil
}

// SetTargetsEnabled enables or disables every identified target atomically.
func SetTargetsEnabled(ctx context.Context, store storage.Storage, identifiers []string, enabled bool) ([]*models.Target, error) {
	return ApplyToTargets(ctx, store, identifiers, func(ctx context.Context, tx storage.Transaction, target *models.Target) error {
		target.Enabled = enabled
		return tx.UpdateTarget(ctx, target)
	})
}

// RemoveTargets deletes every identified target atomically.
func RemoveTargets(ctx context.Context, store storage.Storage, identifiers []string) ([]*models.Target, error) {
	return ApplyToTargets(ctx, store, identifiers, func(ctx context.Context, tx storage.Transaction, target *models.Target) error {
		return tx.DeleteTarget(ctx, target.ID)
	})
}
