package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// UserStore keeps accounts in maps guarded by a single RWMutex.
// The write lock covers the uniqueness check and the write together.
type UserStore struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*domain.Account
	byUsername map[string]uuid.UUID
	byEmail    map[string]uuid.UUID
	newID      func() uuid.UUID
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates an empty in-memory store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:       make(map[uuid.UUID]*domain.Account),
		byUsername: make(map[string]uuid.UUID),
		byEmail:    make(map[string]uuid.UUID),
		newID:      uuid.New,
	}
}

// ExistsByUsername implements store.UserStore.ExistsByUsername
func (s *UserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byUsername[username]
	return ok, nil
}

// ExistsByEmail implements store.UserStore.ExistsByEmail
func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

// FindByUsername implements store.UserStore.FindByUsername
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return s.byID[id].Clone(), nil
}

// FindByID implements store.UserStore.FindByID
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return account.Clone(), nil
}

// FindAll implements store.UserStore.FindAll
func (s *UserStore) FindAll(ctx context.Context) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(s.byID))
	for _, account := range s.byID {
		accounts = append(accounts, account.Clone())
	}
	return accounts, nil
}

// Save implements store.UserStore.Save
func (s *UserStore) Save(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := account.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	toSave := account.Clone()
	if toSave.IsNew() {
		toSave.ID = s.newID()
	}

	if owner, ok := s.byUsername[toSave.Username]; ok && owner != toSave.ID {
		return nil, store.ErrUsernameExists
	}
	if owner, ok := s.byEmail[toSave.Email]; ok && owner != toSave.ID {
		return nil, store.ErrEmailExists
	}

	if existing, ok := s.byID[toSave.ID]; ok {
		toSave.CreatedAt = existing.CreatedAt
		delete(s.byUsername, existing.Username)
		delete(s.byEmail, existing.Email)
	}

	s.byID[toSave.ID] = toSave
	s.byUsername[toSave.Username] = toSave.ID
	s.byEmail[toSave.Email] = toSave.ID

	return toSave.Clone(), nil
}

// DeleteByID implements store.UserStore.DeleteByID
func (s *UserStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byUsername, existing.Username)
	delete(s.byEmail, existing.Email)
	delete(s.byID, id)
	return nil
}
