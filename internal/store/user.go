package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
)

// UserStore defines the interface for account persistence.
// Implementations must enforce username and email uniqueness atomically on Save,
// independent of any existence checks performed by callers.
type UserStore interface {
	// ExistsByUsername reports whether an account with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether an account with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindByUsername retrieves an account by its username.
	// Returns ErrUserNotFound if no such account exists.
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)

	// FindByID retrieves an account by its ID.
	// Returns ErrUserNotFound if no such account exists.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// FindAll returns every account. Order is not guaranteed.
	FindAll(ctx context.Context) ([]*domain.Account, error)

	// Save inserts the account when its ID is uuid.Nil, assigning a new ID,
	// and updates it in place otherwise. CreatedAt is never changed by an update.
	// Returns ErrUsernameExists or ErrEmailExists (both wrapping ErrDuplicate)
	// if the write would break a uniqueness constraint.
	// The returned account is a copy of what was persisted.
	Save(ctx context.Context, account *domain.Account) (*domain.Account, error)

	// DeleteByID removes an account. Deleting a missing ID is not an error.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}
