package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/crucial707/replydesk/internal/auth"
	"github.com/crucial707/replydesk/internal/completion"
	"github.com/crucial707/replydesk/internal/config"
	"github.com/crucial707/replydesk/internal/models"
	"github.com/crucial707/replydesk/internal/store"
)

// newTestServer builds the full router over a temp file store and a stub
// completion upstream, mirroring the real wiring in main.
func newTestServer(t *testing.T, cfg config.Config) (*httptest.Server, store.Store) {
	t.Helper()

	st := store.NewFileStore(filepath.Join(t.TempDir(), "users.json"), "admin-secret")
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("load store: %v", err)
	}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Caro cliente, obrigado."}},
			},
		})
	}))
	t.Cleanup(upstream.Close)

	authenticator := auth.NewAuthenticator(st, []byte("test-secret-for-integration"), 30*time.Minute)
	client := completion.NewClient(completion.Config{
		BaseURL: upstream.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
	}, nil)

	srv := httptest.NewServer(newRouter(st, authenticator, client, cfg))
	t.Cleanup(srv.Close)
	return srv, st
}

func login(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(srv.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d, want 200", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Token == "" {
		t.Fatalf("login response: %v", err)
	}
	return out.Token
}

// TestAPI_LoginThenGenerate is an integration test: it logs in as the seeded
// admin, then generates a reply with the token.
func TestAPI_LoginThenGenerate(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{AuthRequired: true})

	token := login(t, srv, "admin", "admin-secret")

	body, _ := json.Marshal(map[string]any{
		"customer_email": "A encomenda não chegou.",
		"intents":        []string{"explain_cause"},
	})
	req, _ := http.NewRequest("POST", srv.URL+"/v1/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("generate request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /v1/generate status: got %d, want 200", resp.StatusCode)
	}
	var out struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode generate: %v", err)
	}
	if out.Reply != "Caro cliente, obrigado." {
		t.Errorf("unexpected reply: %q", out.Reply)
	}
}

func TestAPI_GenerateRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{AuthRequired: true})

	body, _ := json.Marshal(map[string]any{
		"customer_email": "olá",
		"intents":        []string{"explain_cause"},
	})
	resp, err := http.Post(srv.URL+"/v1/generate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("generate request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without token: got %d, want 401", resp.StatusCode)
	}
}

func TestAPI_GenerateWithoutLoginWhenDisabled(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{AuthRequired: false})

	body, _ := json.Marshal(map[string]any{
		"customer_email": "olá",
		"intents":        []string{"offer_discount"},
	})
	resp, err := http.Post(srv.URL+"/v1/generate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("generate request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status with AUTH_REQUIRED=false: got %d, want 200", resp.StatusCode)
	}
}

func TestAPI_UserManagementIsAdminOnly(t *testing.T) {
	srv, st := newTestServer(t, config.Config{AuthRequired: true})

	if _, err := st.Create(context.Background(), "alice", "hunter2", "Alice", models.RoleUser); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	agentToken := login(t, srv, "alice", "hunter2")
	req, _ := http.NewRequest("GET", srv.URL+"/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+agentToken)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("list users request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("agent list users: got %d, want 403", resp.StatusCode)
	}

	adminToken := login(t, srv, "admin", "admin-secret")
	req, _ = http.NewRequest("GET", srv.URL+"/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = srv.Client().Do(req)
	if err != nil {
		t.Fatalf("list users request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin list users: got %d, want 200", resp.StatusCode)
	}
}

func TestAPI_LogoutInvalidatesToken(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{AuthRequired: true})

	token := login(t, srv, "admin", "admin-secret")

	req, _ := http.NewRequest("POST", srv.URL+"/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("logout request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status: got %d, want 200", resp.StatusCode)
	}

	// The revoked token no longer opens any protected route.
	req, _ = http.NewRequest("GET", srv.URL+"/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = srv.Client().Do(req)
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me after logout: got %d, want 401", resp.StatusCode)
	}
}

func TestAPI_Health(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{AuthRequired: true})

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status: got %d, want 200", resp.StatusCode)
	}
}

func TestAPI_Options(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{AuthRequired: true})

	resp, err := http.Get(srv.URL + "/v1/options")
	if err != nil {
		t.Fatalf("options request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /v1/options status: got %d, want 200", resp.StatusCode)
	}
	var out struct {
		Intents []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"intents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode options: %v", err)
	}
	if len(out.Intents) != 4 {
		t.Errorf("expected 4 intents, got %d", len(out.Intents))
	}
}
