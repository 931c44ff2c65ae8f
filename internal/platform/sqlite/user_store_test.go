package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/phrazzld/task-manager-api/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db, slog.New(slog.NewTextHandler(io.Discard, nil))))
	return db
}

func TestUserStoreContract(t *testing.T) {
	storetest.RunUserStoreTests(t, func(t *testing.T) store.UserStore {
		return NewUserStore(openTestDB(t))
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(context.Background(), db, slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(sql.ErrNoRows), store.ErrUserNotFound)

	username := errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)")
	assert.ErrorIs(t, mapError(username), store.ErrUsernameExists)

	email := errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")
	assert.ErrorIs(t, mapError(email), store.ErrEmailExists)

	other := errors.New("disk I/O error")
	assert.Equal(t, other, mapError(other))
}

func TestUserStoreErrorsCarryOperation(t *testing.T) {
	users := NewUserStore(openTestDB(t))

	_, err := users.FindByID(context.Background(), uuid.New())
	require.Error(t, err)

	var storeErr *store.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "user", storeErr.Entity)
	assert.Equal(t, "find_by_id", storeErr.Operation)
	assert.True(t, store.IsNotFoundError(err))

	_, err = users.FindByUsername(context.Background(), "nobody")
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "find_by_username", storeErr.Operation)
	assert.True(t, store.IsNotFoundError(err))
}
