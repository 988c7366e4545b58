package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pira/internal/storage"
	"pira/internal/storage/models"
	"pira/internal/storage/sqlite"
	perrors "pira/pkg/errors"
)

func seedTargets(t *testing.T, names ...string) *sqlite.DB {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "pira.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	for i, name := range names {
		require.NoError(t, store.CreateTarget(context.Background(), &models.Target{
			Name:      name,
			Host:      fmt.Sprintf("10.0.0.%d", i+1),
			Port:      80,
			TimeoutMS: 5000,
			Enabled:   true,
		}))
	}
	return store
}

func TestResolveTargetByIDOrName(t *testing.T) {
	ctx := context.Background()
	store := seedTargets(t, "web")

	byName, err := ResolveTarget(ctx, store, "web")
	require.NoError(t, err)

	byID, err := ResolveTarget(ctx, store, "1")
	require.NoError(t, err)
	assert.Equal(t, byName.ID, byID.ID)

	_, err = ResolveTarget(ctx, store, "api")
	assert.ErrorIs(t, err, perrors.ErrTargetNotFound)
}

func TestSetTargetsEnabled(t *testing.T) {
	ctx := context.Background()
	store := seedTargets(t, "web", "dns", "ssh")

	changed, err := SetTargetsEnabled(ctx, store, []string{"web", "3"}, false)
	require.NoError(t, err)
	require.Len(t, changed, 2)

	enabled := true
	left, err := store.GetAllTargets(ctx, storage.TargetFilter{Enabled: &enabled})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "dns", left[0].Name)
}

func TestSetTargetsEnabledRollsBackOnUnknownTarget(t *testing.T) {
	ctx := context.Background()
	store := seedTargets(t, "web", "dns")

	_, err := SetTargetsEnabled(ctx, store, []string{"web", "missing", "dns"}, false)
	assert.ErrorIs(t, err, perrors.ErrTargetNotFound)

	for _, name := range []string{"web", "dns"} {
		target, err := store.GetTargetByName(ctx, name)
		require.NoError(t, err)
		assert.True(t, target.Enabled, name)
	}
}

func TestRemoveTargets(t *testing.T) {
	ctx := context.Background()
	store := seedTargets(t, "web", "dns", "ssh")

	removed, err := RemoveTargets(ctx, store, []string{"web", "ssh"})
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	all, err := store.GetAllTargets(ctx, storage.TargetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "dns", all[0].Name)
}

func TestRemoveTargetsRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	store := seedTargets(t, "web", "dns")

	boom := errors.New("disk full")
	calls := 0
	_, err := ApplyToTargets(ctx, store, []string{"web", "dns"}, func(ctx context.Context, tx storage.Transaction, target *models.Target) error {
		calls++
		if calls == 2 {
			return boom
		}
		return tx.DeleteTarget(ctx, target.ID)
	})
	assert.ErrorIs(t, err, boom)

	all, err := store.GetAllTargets(ctx, storage.TargetFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
