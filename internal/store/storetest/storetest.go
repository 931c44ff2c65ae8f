// Package storetest provides a behavioural test suite that every
// store.UserStore implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store for a single subtest.
type Factory func(t *testing.T) store.UserStore

// NewAccount returns an unsaved account with a fixed creation time.
func NewAccount(username, email string) *domain.Account {
	return &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderplaceh",
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// RunUserStoreTests exercises the store.UserStore contract against newStore.
func RunUserStoreTests(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("save assigns id on insert", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		saved, err := s.Save(ctx, NewAccount("alice", "alice@example.com"))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, saved.ID)
		assert.Equal(t, "alice", saved.Username)
		assert.True(t, saved.CreatedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))

		found, err := s.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, found.ID)
		assert.Equal(t, "alice@example.com", found.Email)
		assert.Equal(t, saved.PasswordHash, found.PasswordHash)
	})

	t.Run("exists and find by username", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Save(ctx, NewAccount("bob", "bob@example.com"))
		require.NoError(t, err)

		exists, err := s.ExistsByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = s.ExistsByUsername(ctx, "carol")
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = s.ExistsByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = s.ExistsByEmail(ctx, "carol@example.com")
		require.NoError(t, err)
		assert.False(t, exists)

		found, err := s.FindByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", found.Email)

		_, err = s.FindByUsername(ctx, "carol")
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		_, err = s.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("uniqueness is enforced on insert", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Save(ctx, NewAccount("dave", "dave@example.com"))
		require.NoError(t, err)

		_, err = s.Save(ctx, NewAccount("dave", "other@example.com"))
		assert.ErrorIs(t, err, store.ErrUsernameExists)
		assert.ErrorIs(t, err, store.ErrDuplicate)

		_, err = s.Save(ctx, NewAccount("other", "dave@example.com"))
		assert.ErrorIs(t, err, store.ErrEmailExists)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1, "failed saves must leave the store unchanged")
	})

	t.Run("update keeps id and created_at", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		saved, err := s.Save(ctx, NewAccount("erin", "erin@example.com"))
		require.NoError(t, err)

		saved.Username = "erin2"
		saved.FirstName = "Erin"
		saved.CreatedAt = time.Now().Add(72 * time.Hour)
		updated, err := s.Save(ctx, saved)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, updated.ID)

		found, err := s.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "erin2", found.Username)
		assert.Equal(t, "Erin", found.FirstName)
		assert.True(t, found.CreatedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)),
			"created_at must not change on update, got %s", found.CreatedAt)

		exists, err := s.ExistsByUsername(ctx, "erin")
		require.NoError(t, err)
		assert.False(t, exists, "old username must be released")

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("update conflicting with another account fails", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Save(ctx, NewAccount("frank", "frank@example.com"))
		require.NoError(t, err)
		grace, err := s.Save(ctx, NewAccount("grace", "grace@example.com"))
		require.NoError(t, err)

		grace.Username = "frank"
		_, err = s.Save(ctx, grace)
		assert.ErrorIs(t, err, store.ErrUsernameExists)

		found, err := s.FindByID(ctx, grace.ID)
		require.NoError(t, err)
		assert.Equal(t, "grace", found.Username)
	})

	t.Run("returned accounts are copies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		saved, err := s.Save(ctx, NewAccount("heidi", "heidi@example.com"))
		require.NoError(t, err)

		found, err := s.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		found.Username = "mallory"

		again, err := s.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "heidi", again.Username)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		saved, err := s.Save(ctx, NewAccount("ivan", "ivan@example.com"))
		require.NoError(t, err)

		require.NoError(t, s.DeleteByID(ctx, saved.ID))
		_, err = s.FindByID(ctx, saved.ID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		require.NoError(t, s.DeleteByID(ctx, saved.ID))
		require.NoError(t, s.DeleteByID(ctx, uuid.New()))

		exists, err := s.ExistsByUsername(ctx, "ivan")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("find all on empty store is an empty slice", func(t *testing.T) {
		s := newStore(t)

		all, err := s.FindAll(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("find all is stable", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			_, err := s.Save(ctx, NewAccount(fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i)))
			require.NoError(t, err)
		}

		first, err := s.FindAll(ctx)
		require.NoError(t, err)
		second, err := s.FindAll(ctx)
		require.NoError(t, err)

		assert.ElementsMatch(t, ids(first), ids(second))
		assert.Len(t, first, 3)
	})

	t.Run("concurrent inserts of one username", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.Save(ctx, NewAccount("race", fmt.Sprintf("race%d@example.com", i)))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case store.IsDuplicateError(err):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, workers-1, conflicts)
	})
}

func ids(accounts []*domain.Account) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.ID)
	}
	return out
}
