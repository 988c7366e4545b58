package storage

import (
	"context"

	"pira/internal/storage/models"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Target operations
	CreateTarget(ctx context.Context, target *models.Target) error
	GetTarget(ctx context.Context, id int64) (*models.Target, error)
	GetTargetByName(ctx context.Context, name string) (*models.Target, error)
	GetAllTargets(ctx context.Context, filter TargetFilter) ([]*models.Target, error)
	UpdateTarget(ctx context.Context, target *models.Target) error
	DeleteTarget(ctx context.Context, id int64) error

	// Settings operations
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetAllSettings(ctx context.Context) (map[string]string, error)

	// Transactions
	BeginTx(ctx context.Context) (Transaction, error)

	// Close closes the storage connection
	Close() error
}

// TargetFilter represents filters for querying targets
type TargetFilter struct {
	Enabled    *bool
	SearchTerm string // Search in name, host, notes
	Tags       []string
}

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error
	Storage
}
