package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
)

// AccountHandler handles the /api/users endpoints.
type AccountHandler struct {
	accounts   service.AccountService
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAccountHandler creates a new AccountHandler with the given dependencies.
func NewAccountHandler(
	accounts service.AccountService,
	jwtService auth.JWTService,
	logger *slog.Logger,
) *AccountHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountHandler{
		accounts:   accounts,
		jwtService: jwtService,
		logger:     logger.With("component", "account_handler"),
	}
}

func (h *AccountHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}

// decodeAndValidate parses the JSON body into req and runs struct validation,
// writing a 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// Register handles POST /api/users/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	h.log(r).Info("account registered via API", "user_id", account.ID)
	shared.RespondWithJSON(w, r, http.StatusCreated, accountToResponse(account))
}

// Login handles POST /api/users/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID, ok, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}
	if !ok {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", nil,
			shared.WithElevatedLogLevel())
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Message:   "Login successful",
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// List handles GET /api/users.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.FindAll(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, accountsToResponse(accounts))
}

// Get handles GET /api/users/{id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	account, err := h.accounts.FindByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, accountToResponse(account))
}

// Delete handles DELETE /api/users/{id}.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := handleSelfOnly(w, r, "id")
	if !ok {
		return
	}

	if err := h.accounts.DeleteByID(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateUsername handles PUT /api/users/{id}/username.
func (h *AccountHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	id, ok := handleSelfOnly(w, r, "id")
	if !ok {
		return
	}

	var req UpdateUsernameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.accounts.UpdateUsername(r.Context(), id, req.Username)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !updated {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Failed to update username")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Username updated successfully"})
}

// UpdatePassword handles PUT /api/users/{id}/password.
func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := handleSelfOnly(w, r, "id")
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.accounts.UpdatePassword(r.Context(), id, req.CurrentPassword, req.NewPassword)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !updated {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid current password")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}

// UpdateProfile handles PUT /api/users/{id}/profile.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := handleSelfOnly(w, r, "id")
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), id, req.FirstName, req.LastName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !updated {
		HandleAPIError(w, r, service.ErrNotFound, "")
		return
	}

	account, err := h.accounts.FindByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, accountToResponse(account))
}
