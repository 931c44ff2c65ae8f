package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
)

// BasicRealm is advertised in WWW-Authenticate challenges.
const BasicRealm = "task-manager"

// CredentialChecker verifies a username and password pair.
// service.AccountService satisfies it.
type CredentialChecker interface {
	Authenticate(ctx context.Context, username, password string) (uuid.UUID, bool, error)
}

// AuthMiddleware authenticates requests with HTTP Basic credentials or a
// Bearer access token and stores the account id in the request context.
type AuthMiddleware struct {
	jwtService  auth.JWTService
	credentials CredentialChecker
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, credentials CredentialChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		credentials: credentials,
	}
}

// Authenticate rejects requests without valid credentials with 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.challenge(w, r, "Authorization header required")
			return
		}

		scheme, _, _ := strings.Cut(authHeader, " ")
		var (
			userID uuid.UUID
			ok     bool
		)
		switch strings.ToLower(scheme) {
		case "basic":
			userID, ok = m.authenticateBasic(w, r)
		case "bearer":
			userID, ok = m.authenticateBearer(w, r, authHeader)
		default:
			m.challenge(w, r, "Invalid authorization format")
			return
		}
		if !ok {
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithUserID(r.Context(), userID)))
	})
}

func (m *AuthMiddleware) authenticateBasic(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	username, password, ok := r.BasicAuth()
	if !ok {
		m.challenge(w, r, "Invalid authorization format")
		return uuid.Nil, false
	}

	userID, matched, err := m.credentials.Authenticate(r.Context(), username, password)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), nil).Error("failed to check credentials",
			"error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
		return uuid.Nil, false
	}
	if !matched {
		m.challenge(w, r, "Invalid credentials", shared.WithElevatedLogLevel())
		return uuid.Nil, false
	}
	return userID, true
}

func (m *AuthMiddleware) authenticateBearer(
	w http.ResponseWriter,
	r *http.Request,
	authHeader string,
) (uuid.UUID, bool) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
		return uuid.Nil, false
	}

	claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
		case errors.Is(err, auth.ErrInvalidToken),
			errors.Is(err, auth.ErrMissingToken),
			errors.Is(err, auth.ErrTokenNotYetValid),
			errors.Is(err, auth.ErrWrongTokenType):
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
		default:
			logger.FromContextOrDefault(r.Context(), nil).Error("failed to validate token",
				"error", redact.Error(err))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
		}
		return uuid.Nil, false
	}

	return claims.UserID, true
}

func (m *AuthMiddleware) challenge(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	opts ...shared.ResponseOption,
) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+BasicRealm+`", charset="UTF-8"`)
	shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, message, nil, opts...)
}

// GetUserID extracts the authenticated account id from the request context.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	return shared.GetUserID(r.Context())
}
