package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		SchemaName:     "public",
		TableName:      "users",
		ColumnName:     "username",
		ConstraintName: constraint,
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantIs  []error
		wantNot []error
	}{
		{
			name:   "no rows",
			err:    sql.ErrNoRows,
			wantIs: []error{store.ErrUserNotFound, store.ErrNotFound},
		},
		{
			name:    "username unique violation",
			err:     newPgError("23505", "users_username_key"),
			wantIs:  []error{store.ErrUsernameExists, store.ErrDuplicate},
			wantNot: []error{store.ErrEmailExists},
		},
		{
			name:    "email unique violation",
			err:     fmt.Errorf("exec: %w", newPgError("23505", "users_email_key")),
			wantIs:  []error{store.ErrEmailExists, store.ErrDuplicate},
			wantNot: []error{store.ErrUsernameExists},
		},
		{
			name:    "unknown unique violation",
			err:     newPgError("23505", "users_pkey"),
			wantIs:  []error{store.ErrDuplicate},
			wantNot: []error{store.ErrUsernameExists, store.ErrEmailExists},
		},
		{
			name:   "foreign key violation",
			err:    newPgError("23503", "fk"),
			wantIs: []error{store.ErrInvalidEntity},
		},
		{
			name:   "check violation",
			err:    newPgError("23514", "chk"),
			wantIs: []error{store.ErrInvalidEntity},
		},
		{
			name:    "value too long for column",
			err:     newPgError("22001", ""),
			wantIs:  []error{store.ErrInvalidEntity},
			wantNot: []error{store.ErrDuplicate},
		},
		{
			name:   "not null violation",
			err:    newPgError("23502", ""),
			wantIs: []error{store.ErrInvalidEntity},
		},
		{
			name:    "other error passes through",
			err:     errors.New("connection refused"),
			wantNot: []error{store.ErrDuplicate, store.ErrNotFound, store.ErrInvalidEntity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := postgres.MapError(tt.err)
			for _, target := range tt.wantIs {
				assert.ErrorIs(t, mapped, target)
			}
			for _, target := range tt.wantNot {
				assert.NotErrorIs(t, mapped, target)
			}
		})
	}

	assert.NoError(t, postgres.MapError(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, postgres.IsUniqueViolation(newPgError("23505", "")))
	assert.True(t, postgres.IsUniqueViolation(fmt.Errorf("wrapped: %w", newPgError("23505", ""))))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503", "")))
	assert.False(t, postgres.IsUniqueViolation(errors.New("plain")))
}
