package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/replydesk/internal/auth"
	"github.com/crucial707/replydesk/internal/metrics"
	"github.com/crucial707/replydesk/internal/middleware"
	"github.com/crucial707/replydesk/internal/store"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Auth   *auth.Authenticator
	Logger *slog.Logger
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	user, err := h.Auth.Authenticate(r.Context(), input.Username, input.Password)
	if err != nil {
		metrics.RecordLogin("failed")
		if errors.Is(err, auth.ErrNotAuthenticated) {
			// Same message for unknown user and wrong password.
			JSONError(w, "incorrect username or password", http.StatusUnauthorized)
			return
		}
		h.Logger.Error("login", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	token, err := h.Auth.IssueToken(user.Username, user.Role)
	if err != nil {
		h.Logger.Error("issue token", "error", err)
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	metrics.RecordLogin("ok")
	h.Logger.Info("login", "user", user.Username, "role", user.Role)

	JSON(w, map[string]interface{}{
		"token": token,
		"user":  user,
	}, http.StatusOK)
}

// ==========================
// Logout (revokes the presented token)
// ==========================
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetToken(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Auth.Revoke(token); err != nil {
		// Already invalid or expired; logout is still a success for the client.
		h.Logger.Info("logout of invalid token")
	}

	username, _ := middleware.GetUsername(r.Context())
	h.Logger.Info("logout", "user", username)

	JSON(w, map[string]string{"status": "logged out"}, http.StatusOK)
}

// ==========================
// Me (current session info)
// ==========================
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsername(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Auth.Store.Get(r.Context(), username)
	if err != nil {
		// The account may have been removed after the token was issued.
		if errors.Is(err, store.ErrUserNotFound) {
			JSONError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.Logger.Error("me", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, user, http.StatusOK)
}
