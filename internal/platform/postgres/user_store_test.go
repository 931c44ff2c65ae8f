//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/phrazzld/task-manager-api/internal/store/storetest"
	"github.com/phrazzld/task-manager-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresUserStoreContract(t *testing.T) {
	db := testdb.GetTestDB(t)

	storetest.RunUserStoreTests(t, func(t *testing.T) store.UserStore {
		testdb.ResetUsers(t, db)
		return postgres.NewPostgresUserStore(db)
	})
}

func TestPostgresUserStoreInTransaction(t *testing.T) {
	db := testdb.GetTestDB(t)
	testdb.ResetUsers(t, db)
	ctx := context.Background()

	var id uuid.UUID
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		txStore := postgres.NewPostgresUserStore(tx)

		account, err := domain.NewAccount("tx-user", "tx@example.com", "$2a$04$hash", time.Now())
		require.NoError(t, err)

		saved, err := txStore.Save(ctx, account)
		require.NoError(t, err)
		id = saved.ID

		found, err := txStore.FindByUsername(ctx, "tx-user")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, found.ID)
	})

	_, err := postgres.NewPostgresUserStore(db).FindByID(ctx, id)
	assert.True(t, errors.Is(err, store.ErrNotFound), "rolled back insert must not be visible")
}

func TestPostgresUniqueViolationMapping(t *testing.T) {
	db := testdb.GetTestDB(t)
	testdb.ResetUsers(t, db)
	ctx := context.Background()
	users := postgres.NewPostgresUserStore(db)

	first, err := domain.NewAccount("alice", "a@example.com", "$2a$04$hash", time.Now())
	require.NoError(t, err)
	_, err = users.Save(ctx, first)
	require.NoError(t, err)

	clash, err := domain.NewAccount("alice", "other@example.com", "$2a$04$hash", time.Now())
	require.NoError(t, err)
	_, err = users.Save(ctx, clash)
	assert.ErrorIs(t, err, store.ErrUsernameExists)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	clash, err = domain.NewAccount("bob", "a@example.com", "$2a$04$hash", time.Now())
	require.NoError(t, err)
	_, err = users.Save(ctx, clash)
	assert.ErrorIs(t, err, store.ErrEmailExists)
}
