package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/replydesk/internal/models"
	"github.com/crucial707/replydesk/internal/store"
)

// ==========================
// UserHandler (admin only)
// ==========================
type UserHandler struct {
	Store  store.Store
	Logger *slog.Logger
}

// ==========================
// Create User
// ==========================
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	if input.Username == "" {
		fields["username"] = "required"
	}
	if input.Password == "" {
		fields["password"] = "required"
	}
	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		fields["role"] = "must be user or admin"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	user, err := h.Store.Create(r.Context(), input.Username, input.Password, input.DisplayName, role)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			JSONError(w, "user already exists", http.StatusConflict)
			return
		}
		h.Logger.Error("create user", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Logger.Info("user created", "user", user.Username, "role", user.Role)
	JSON(w, user, http.StatusCreated)
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.List(r.Context())
	if err != nil {
		h.Logger.Error("list users", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, map[string]interface{}{
		"users": users,
		"total": len(users),
	}, http.StatusOK)
}
