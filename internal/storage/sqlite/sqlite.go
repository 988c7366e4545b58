package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pira/internal/storage"
	"pira/internal/storage/models"
	perrors "pira/pkg/errors"
)

// dbHandle is the common interface between *sql.DB and *sql.Tx.
type dbHandle interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// DB implements the Storage interface using SQLite
type DB struct {
	db *sql.DB
}

// New creates a new SQLite storage instance
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	storage := &DB{db: db}

	// Run migrations
	if err := runMigrations(storage); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) handle() dbHandle { return d.db }

// BeginTx starts a new transaction
func (d *DB) BeginTx(ctx context.Context) (storage.Transaction, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// Tx implements the Transaction interface
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Commit() error    { return t.tx.Commit() }
func (t *Tx) Rollback() error  { return t.tx.Rollback() }
func (t *Tx) handle() dbHandle { return t.tx }

func (t *Tx) BeginTx(ctx context.Context) (storage.Transaction, error) {
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *Tx) Close() error { return nil }

// ─── Target operations ──────────────────────────────────────────────────────

const targetColumns = `id, name, host, port, timeout_ms, use_icmp, use_tcp, enabled, tags, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTarget(row rowScanner) (*models.Target, error) {
	target := &models.Target{}
	var tags []byte
	var notes sql.NullString
	err := row.Scan(
		&target.ID, &target.Name, &target.Host, &target.Port, &target.TimeoutMS,
		&target.UseICMP, &target.UseTCP, &target.Enabled, &tags, &notes,
		&target.CreatedAt, &target.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	target.Notes = notes.String
	if err := json.Unmarshal(tags, &target.Tags); err != nil || target.Tags == nil {
		target.Tags = []string{}
	}
	return target, nil
}

func (d *DB) CreateTarget(ctx context.Context, target *models.Target) error {
	return createTarget(ctx, d.handle(), target)
}
func (t *Tx) CreateTarget(ctx context.Context, target *models.Target) error {
	return createTarget(ctx, t.handle(), target)
}

func createTarget(ctx context.Context, h dbHandle, target *models.Target) error {
	tags, err := json.Marshal(target.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO targets (name, host, port, timeout_ms, use_icmp, use_tcp, enabled, tags, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := h.ExecContext(ctx, query,
		target.Name, target.Host, target.Port, target.TimeoutMS,
		target.UseICMP, target.UseTCP, target.Enabled, tags, target.Notes,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &perrors.TargetError{Name: target.Name, Err: perrors.ErrTargetExists}
		}
		return fmt.Errorf("failed to create target: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	target.ID = id
	return nil
}

func (d *DB) GetTarget(ctx context.Context, id int64) (*models.Target, error) {
	return getTarget(ctx, d.handle(), id)
}
func (t *Tx) GetTarget(ctx context.Context, id int64) (*models.Target, error) {
	return getTarget(ctx, t.handle(), id)
}

func getTarget(ctx context.Context, h dbHandle, id int64) (*models.Target, error) {
	query := `SELECT ` + targetColumns + ` FROM targets WHERE id = ?`
	target, err := scanTarget(h.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &perrors.TargetError{Name: fmt.Sprint(id), Err: perrors.ErrTargetNotFound}
	}
	if err != nil {
		return nil, err
	}
	return target, nil
}

func (d *DB) GetTargetByName(ctx context.Context, name string) (*models.Target, error) {
	return getTargetByName(ctx, d.handle(), name)
}
func (t *Tx) GetTargetByName(ctx context.Context, name string) (*models.Target, error) {
	return getTargetByName(ctx, t.handle(), name)
}

func getTargetByName(ctx context.Context, h dbHandle, name string) (*models.Target, error) {
	query := `SELECT ` + targetColumns + ` FROM targets WHERE name = ?`
	target, err := scanTarget(h.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &perrors.TargetError{Name: name, Err: perrors.ErrTargetNotFound}
	}
	if err != nil {
		return nil, err
	}
	return target, nil
}

func (d *DB) GetAllTargets(ctx context.Context, filter storage.TargetFilter) ([]*models.Target, error) {
	return getAllTargets(ctx, d.handle(), filter)
}
func (t *Tx) GetAllTargets(ctx context.Context, filter storage.TargetFilter) ([]*models.Target, error) {
	return getAllTargets(ctx, t.handle(), filter)
}

func getAllTargets(ctx context.Context, h dbHandle, filter storage.TargetFilter) ([]*models.Target, error) {
	query := `SELECT ` + targetColumns + ` FROM targets WHERE 1=1`
	args := []interface{}{}

	if filter.Enabled != nil {
		query += " AND enabled = ?"
		args = append(args, *filter.Enabled)
	}
	if filter.SearchTerm != "" {
		query += " AND (name LIKE ? OR host LIKE ? OR notes LIKE ?)"
		searchPattern := "%" + filter.SearchTerm + "%"
		args = append(args, searchPattern, searchPattern, searchPattern)
	}
	query += " ORDER BY name ASC"

	rows, err := h.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []*models.Target
	for rows.Next() {
		target, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		if !hasAllTags(target.Tags, filter.Tags) {
			continue
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

func hasAllTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, tag := range have {
			if strings.EqualFold(tag, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (d *DB) UpdateTarget(ctx context.Context, target *models.Target) error {
	return updateTarget(ctx, d.handle(), target)
}
func (t *Tx) UpdateTarget(ctx context.Context, target *models.Target) error {
	return updateTarget(ctx, t.handle(), target)
}

func updateTarget(ctx context.Context, h dbHandle, target *models.Target) error {
	tags, err := json.Marshal(target.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		UPDATE targets
		SET name = ?, host = ?, port = ?, timeout_ms = ?, use_icmp = ?, use_tcp = ?,
		    enabled = ?, tags = ?, notes = ?
		WHERE id = ?
	`
	result, err := h.ExecContext(ctx, query,
		target.Name, target.Host, target.Port, target.TimeoutMS, target.UseICMP, target.UseTCP,
		target.Enabled, tags, target.Notes, target.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update target: %w", err)
	}
	return requireAffected(result, target.Name)
}

func (d *DB) DeleteTarget(ctx context.Context, id int64) error {
	return deleteTarget(ctx, d.handle(), id)
}
func (t *Tx) DeleteTarget(ctx context.Context, id int64) error {
	return deleteTarget(ctx, t.handle(), id)
}

func deleteTarget(ctx context.Context, h dbHandle, id int64) error {
	result, err := h.ExecContext(ctx, "DELETE FROM targets WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result, fmt.Sprint(id))
}

func requireAffected(result sql.Result, name string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &perrors.TargetError{Name: name, Err: perrors.ErrTargetNotFound}
	}
	return nil
}

// ─── Settings operations ────────────────────────────────────────────────────

func (d *DB) GetSetting(ctx context.Context, key string) (string, error) {
	return getSetting(ctx, d.handle(), key)
}
func (t *Tx) GetSetting(ctx context.Context, key string) (string, error) {
	return getSetting(ctx, t.handle(), key)
}

func getSetting(ctx context.Context, h dbHandle, key string) (string, error) {
	var value string
	err := h.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting not found: %s", key)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (d *DB) SetSetting(ctx context.Context, key, value string) error {
	return setSetting(ctx, d.handle(), key, value)
}
func (t *Tx) SetSetting(ctx context.Context, key, value string) error {
	return setSetting(ctx, t.handle(), key, value)
}

func setSetting(ctx context.Context, h dbHandle, key, value string) error {
	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	_, err := h.ExecContext(ctx, query, key, value)
	return err
}

func (d *DB) GetAllSettings(ctx context.Context) (map[string]string, error) {
	return getAllSettings(ctx, d.handle())
}
func (t *Tx) GetAllSettings(ctx context.Context) (map[string]string, error) {
	return getAllSettings(ctx, t.handle())
}

func getAllSettings(ctx context.Context, h dbHandle) (map[string]string, error) {
	rows, err := h.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}
