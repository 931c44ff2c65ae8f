package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// dummyPassword is hashed once at construction so that authenticating an
// unknown username performs the same bcrypt work as a wrong password.
const dummyPassword = "task-manager-api/no-such-account"

// AccountService provides registration, authentication and account management.
type AccountService interface {
	// Register creates a new account. It fails with ErrDuplicateUsername or
	// ErrDuplicateEmail when either value is taken, and with a
	// domain.ErrValidation error when the input is malformed.
	Register(ctx context.Context, username, email, password string) (*domain.Account, error)

	// Authenticate returns the account id and true when the credentials match.
	// Unknown usernames and wrong passwords both yield uuid.Nil and false.
	Authenticate(ctx context.Context, username, password string) (uuid.UUID, bool, error)

	// UpdateUsername renames an account. It returns false when no account has
	// the id and ErrDuplicateUsername when another account owns newUsername.
	UpdateUsername(ctx context.Context, id uuid.UUID, newUsername string) (bool, error)

	// UpdatePassword replaces the password after checking the current one.
	// It returns ErrNotFound for an unknown id and false when current does not
	// match, in which case nothing is changed.
	UpdatePassword(ctx context.Context, id uuid.UUID, current, next string) (bool, error)

	// UpdateProfile sets the optional display names. It returns false when no
	// account has the id.
	UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string) (bool, error)

	// FindByID returns the account or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// FindAll returns every account in no guaranteed order.
	FindAll(ctx context.Context) ([]*domain.Account, error)

	// DeleteByID removes the account. Deleting an unknown id is not an error.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// accountServiceImpl implements AccountService on top of a UserStore and a
// PasswordHasher. It holds no per-account state between calls.
type accountServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	logger    *slog.Logger
	now       func() time.Time
	dummyHash string
}

var _ AccountService = (*accountServiceImpl)(nil)

// NewAccountService creates a new AccountService.
func NewAccountService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) (AccountService, error) {
	if userStore == nil {
		return nil, fmt.Errorf("userStore cannot be nil")
	}
	if hasher == nil {
		return nil, fmt.Errorf("hasher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare timing-equalization hash: %w", err)
	}

	return &accountServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		logger:    logger.With("component", "account_service"),
		now:       time.Now,
		dummyHash: dummyHash,
	}, nil
}

// Register creates a new account.
func (s *accountServiceImpl) Register(
	ctx context.Context,
	username, email, password string,
) (*domain.Account, error) {
	if err := validateRegistration(username, email, password); err != nil {
		s.logger.Debug("registration rejected by validation",
			"username", username,
			"error", err)
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	taken, err := s.userStore.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, s.fault(ctx, "register", err, "username", username)
	}
	if taken {
		s.logger.Debug("registration rejected: username taken", "username", username)
		return nil, ErrDuplicateUsername
	}

	taken, err = s.userStore.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, s.fault(ctx, "register", err, "username", username)
	}
	if taken {
		s.logger.Debug("registration rejected: email taken", "username", username)
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hashPassword(ctx, "register", password)
	if err != nil {
		return nil, err
	}

	account, err := domain.NewAccount(username, email, hash, s.now())
	if err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	saved, err := s.userStore.Save(ctx, account)
	if err != nil {
		// Another registration can win the race between the checks and the insert.
		return nil, s.translate(ctx, "register", err, "username", username)
	}

	s.logger.Info("account registered",
		"user_id", saved.ID,
		"username", saved.Username)

	return saved, nil
}

// Authenticate checks username and password.
func (s *accountServiceImpl) Authenticate(
	ctx context.Context,
	username, password string,
) (uuid.UUID, bool, error) {
	account, err := s.userStore.FindByUsername(ctx, username)
	if err != nil {
		if store.IsNotFoundError(err) {
			s.hasher.Verify(password, s.dummyHash)
			s.logger.Debug("authentication failed", "username", username)
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, s.fault(ctx, "authenticate", err, "username", username)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		s.logger.Debug("authentication failed", "username", username)
		return uuid.Nil, false, nil
	}

	s.logger.Debug("authentication succeeded", "user_id", account.ID)
	return account.ID, true, nil
}

// UpdateUsername renames the account with the given id.
func (s *accountServiceImpl) UpdateUsername(
	ctx context.Context,
	id uuid.UUID,
	newUsername string,
) (bool, error) {
	if err := domain.ValidateUsername(newUsername); err != nil {
		return false, fmt.Errorf("invalid username: %w", err)
	}

	account, found, err := s.load(ctx, "update_username", id)
	if err != nil || !found {
		return false, err
	}

	owner, err := s.userStore.FindByUsername(ctx, newUsername)
	switch {
	case err == nil && owner.ID != id:
		s.logger.Debug("username update rejected: username taken",
			"user_id", id,
			"username", newUsername)
		return false, ErrDuplicateUsername
	case err != nil && !store.IsNotFoundError(err):
		return false, s.fault(ctx, "update_username", err, "user_id", id)
	}

	previous := account.Username
	account.Username = newUsername
	if _, err := s.userStore.Save(ctx, account); err != nil {
		return false, s.translate(ctx, "update_username", err, "user_id", id)
	}

	s.logger.Info("username updated",
		"user_id", id,
		"previous_username", previous,
		"username", newUsername)

	return true, nil
}

// UpdatePassword changes the password after verifying the current one.
func (s *accountServiceImpl) UpdatePassword(
	ctx context.Context,
	id uuid.UUID,
	current, next string,
) (bool, error) {
	account, found, err := s.load(ctx, "update_password", id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, ErrNotFound
	}

	if err := domain.ValidatePassword(next); err != nil {
		return false, fmt.Errorf("invalid password: %w", err)
	}

	if !s.hasher.Verify(current, account.PasswordHash) {
		s.logger.Debug("password update rejected: current password mismatch", "user_id", id)
		return false, nil
	}

	hash, err := s.hashPassword(ctx, "update_password", next)
	if err != nil {
		return false, err
	}

	account.PasswordHash = hash
	if _, err := s.userStore.Save(ctx, account); err != nil {
		return false, s.translate(ctx, "update_password", err, "user_id", id)
	}

	s.logger.Info("password updated", "user_id", id)
	return true, nil
}

// UpdateProfile sets the first and last name of the account.
func (s *accountServiceImpl) UpdateProfile(
	ctx context.Context,
	id uuid.UUID,
	firstName, lastName string,
) (bool, error) {
	account, found, err := s.load(ctx, "update_profile", id)
	if err != nil || !found {
		return false, err
	}

	account.FirstName = firstName
	account.LastName = lastName
	if _, err := s.userStore.Save(ctx, account); err != nil {
		return false, s.translate(ctx, "update_profile", err, "user_id", id)
	}

	s.logger.Info("profile updated", "user_id", id)
	return true, nil
}

// FindByID returns the account with the given id.
func (s *accountServiceImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, found, err := s.load(ctx, "find_by_id", id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return account, nil
}

// FindAll returns all accounts.
func (s *accountServiceImpl) FindAll(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := s.userStore.FindAll(ctx)
	if err != nil {
		return nil, s.fault(ctx, "find_all", err)
	}
	return accounts, nil
}

// DeleteByID removes the account with the given id.
func (s *accountServiceImpl) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := s.userStore.DeleteByID(ctx, id); err != nil {
		return s.fault(ctx, "delete", err, "user_id", id)
	}
	s.logger.Info("account deleted", "user_id", id)
	return nil
}

// load fetches an account, reporting absence as found=false.
func (s *accountServiceImpl) load(
	ctx context.Context,
	op string,
	id uuid.UUID,
) (*domain.Account, bool, error) {
	account, err := s.userStore.FindByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			s.logger.Debug("account not found", "operation", op, "user_id", id)
			return nil, false, nil
		}
		return nil, false, s.fault(ctx, op, err, "user_id", id)
	}
	return account, true, nil
}

func (s *accountServiceImpl) hashPassword(ctx context.Context, op, password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", fmt.Errorf("invalid password: %w",
				domain.NewValidationError("password", "must be at most 72 bytes", domain.ErrInvalidPassword))
		}
		return "", s.fault(ctx, op, err)
	}
	return hash, nil
}

// translate maps a Save failure onto the service outcomes. Store conflicts
// never leave this package.
func (s *accountServiceImpl) translate(ctx context.Context, op string, err error, attrs ...any) error {
	switch {
	case errors.Is(err, store.ErrUsernameExists):
		s.logger.Debug("save rejected: username taken", append([]any{"operation", op}, attrs...)...)
		return ErrDuplicateUsername
	case errors.Is(err, store.ErrEmailExists):
		s.logger.Debug("save rejected: email taken", append([]any{"operation", op}, attrs...)...)
		return ErrDuplicateEmail
	case errors.Is(err, store.ErrInvalidEntity):
		s.logger.Debug("save rejected: invalid account", append([]any{"operation", op, "error", err}, attrs...)...)
		return NewServiceError("account", op, domain.ErrValidation)
	default:
		return s.fault(ctx, op, err, attrs...)
	}
}

// fault logs an unexpected failure and hides it behind ErrUnavailable.
func (s *accountServiceImpl) fault(ctx context.Context, op string, err error, attrs ...any) error {
	s.logger.ErrorContext(ctx, "account store operation failed",
		append([]any{"operation", op, "error", err}, attrs...)...)
	return unavailable(op, err)
}

func validateRegistration(username, email, password string) error {
	if err := domain.ValidateUsername(username); err != nil {
		return err
	}
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}
	return domain.ValidatePassword(password)
}
