package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
)

const accountColumns = `id, username, email, password_hash, first_name, last_name, created_at`

// UserStore implements store.UserStore using SQLite.
type UserStore struct {
	db store.DBTX
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a new SQLite-backed UserStore.
func NewUserStore(db store.DBTX) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username)
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email)
}

func (s *UserStore) exists(ctx context.Context, query, arg string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, store.NewStoreError("user", "exists", "existence check failed", mapError(err))
	}
	return exists, nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM users WHERE username = ?`, username)
	account, err := scanAccount(row)
	if err != nil {
		return nil, store.NewStoreError("user", "find_by_username", "query failed", mapError(err))
	}
	return account, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM users WHERE id = ?`, id.String())
	account, err := scanAccount(row)
	if err != nil {
		return nil, store.NewStoreError("user", "find_by_id", "query failed", mapError(err))
	}
	return account, nil
}

func (s *UserStore) FindAll(ctx context.Context) ([]*domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, store.NewStoreError("user", "find_all", "query failed", mapError(err))
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, store.NewStoreError("user", "find_all", "scan failed", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("user", "find_all", "row iteration failed", mapError(err))
	}
	return accounts, nil
}

// Save upserts on id. The UNIQUE constraints reject username and email collisions
// atomically; created_at is only written by the insert branch.
func (s *UserStore) Save(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := account.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	id := account.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username      = excluded.username,
			email         = excluded.email,
			password_hash = excluded.password_hash,
			first_name    = excluded.first_name,
			last_name     = excluded.last_name
		RETURNING `+accountColumns,
		id.String(),
		account.Username,
		account.Email,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.CreatedAt.UTC(),
	)

	saved, err := scanAccount(row)
	if err != nil {
		return nil, store.NewStoreError("user", "save", "upsert failed", mapError(err))
	}
	return saved, nil
}

func (s *UserStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String()); err != nil {
		return store.NewStoreError("user", "delete", "delete failed", mapError(err))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
