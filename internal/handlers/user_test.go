package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crucial707/replydesk/internal/models"
	"github.com/crucial707/replydesk/internal/store"
)

func newTestUserHandler(t *testing.T) *UserHandler {
	t.Helper()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "users.json"), "admin-secret")
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("load store: %v", err)
	}
	return &UserHandler{Store: st, Logger: testLogger()}
}

func TestUserHandler_CreateUser(t *testing.T) {
	h := newTestUserHandler(t)

	body, _ := json.Marshal(map[string]string{
		"username":     "alice",
		"password":     "hunter2",
		"display_name": "Alice",
		"role":         "user",
	})
	req := httptest.NewRequest("POST", "/v1/users", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateUser(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("CreateUser status: got %d, want 201", rr.Code)
	}
	var user models.User
	if err := json.NewDecoder(rr.Body).Decode(&user); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if user.Username != "alice" || user.Role != "user" {
		t.Errorf("unexpected user: %+v", user)
	}
	// The hash must never appear in a response.
	if strings.Contains(rr.Body.String(), "hash") || strings.Contains(rr.Body.String(), "hunter2") {
		t.Errorf("response leaks password material: %s", rr.Body.String())
	}
}

func TestUserHandler_CreateUser_DefaultRole(t *testing.T) {
	h := newTestUserHandler(t)

	body, _ := json.Marshal(map[string]string{"username": "bob", "password": "pw"})
	req := httptest.NewRequest("POST", "/v1/users", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateUser(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("CreateUser status: got %d, want 201", rr.Code)
	}
	var user models.User
	json.NewDecoder(rr.Body).Decode(&user)
	if user.Role != models.RoleUser {
		t.Errorf("default role: got %q, want %q", user.Role, models.RoleUser)
	}
}

func TestUserHandler_CreateUser_Duplicate(t *testing.T) {
	h := newTestUserHandler(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "pw"})
	req := httptest.NewRequest("POST", "/v1/users", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateUser(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate create status: got %d, want 409", rr.Code)
	}
}

func TestUserHandler_CreateUser_Validation(t *testing.T) {
	h := newTestUserHandler(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing username", map[string]string{"password": "pw"}},
		{"missing password", map[string]string{"username": "x"}},
		{"bad role", map[string]string{"username": "x", "password": "pw", "role": "superuser"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.body)
			req := httptest.NewRequest("POST", "/v1/users", bytes.NewReader(body))
			rr := httptest.NewRecorder()
			h.CreateUser(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rr.Code)
			}
		})
	}
}

func TestUserHandler_ListUsers(t *testing.T) {
	h := newTestUserHandler(t)
	if _, err := h.Store.Create(context.Background(), "alice", "pw", "Alice", models.RoleUser); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	req := httptest.NewRequest("GET", "/v1/users", nil)
	rr := httptest.NewRecorder()
	h.ListUsers(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ListUsers status: got %d, want 200", rr.Code)
	}
	var out struct {
		Users []models.User `json:"users"`
		Total int           `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Total != 2 || len(out.Users) != 2 {
		t.Errorf("expected default admin + alice, got: %+v", out)
	}
	if out.Users[0].Username != "admin" || out.Users[1].Username != "alice" {
		t.Errorf("unexpected order: %+v", out.Users)
	}
}
