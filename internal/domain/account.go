package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Account validation errors
var (
	ErrEmptyUsername     = NewValidationError("username", "cannot be empty", ErrValidation)
	ErrUsernameTooLong   = NewValidationError("username", "must be at most 64 characters long", ErrValidation)
	ErrUsernameSpaces    = NewValidationError("username", "must not start or end with whitespace", ErrValidation)
	ErrEmptyEmail        = NewValidationError("email", "cannot be empty", ErrValidation)
	ErrMalformedEmail    = NewValidationError("email", "has invalid format", ErrInvalidEmail)
	ErrEmailTooLong      = NewValidationError("email", "must be at most 254 characters long", ErrInvalidEmail)
	ErrEmptyPassword     = NewValidationError("password", "cannot be empty", ErrInvalidPassword)
	ErrEmptyPasswordHash = errors.New("password hash cannot be empty")
)

// MaxUsernameLength bounds usernames; it matches the users.username column width.
const MaxUsernameLength = 64

// MaxEmailLength is the longest address SMTP can carry (RFC 5321) and fits
// the users.email column.
const MaxEmailLength = 254

var validate = validator.New()

// Account is a registered user's identity and credential record.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose the hash
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAccount builds an unsaved Account. The ID stays uuid.Nil until a store assigns one.
func NewAccount(username, email, passwordHash string, createdAt time.Time) (*Account, error) {
	account := &Account{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt.UTC(),
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	return account, nil
}

// Validate checks the fields every persisted account must satisfy.
func (a *Account) Validate() error {
	if err := ValidateUsername(a.Username); err != nil {
		return err
	}

	if err := ValidateEmail(a.Email); err != nil {
		return err
	}

	if a.PasswordHash == "" {
		return ErrEmptyPasswordHash
	}

	return nil
}

// IsNew reports whether the account has not been assigned an ID yet.
func (a *Account) IsNew() bool {
	return a.ID == uuid.Nil
}

// Clone returns a copy that shares no state with a.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// ValidateUsername checks a login name.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	if strings.TrimSpace(username) != username {
		return ErrUsernameSpaces
	}
	if len(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	return nil
}

// ValidateEmail checks an email address using the validator email rule.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if err := validate.Var(email, "email"); err != nil {
		return ErrMalformedEmail
	}
	return nil
}

// ValidatePassword checks a plaintext password before hashing.
// Length limits beyond non-empty are enforced by the hasher.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	return nil
}
