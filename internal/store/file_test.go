package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/replydesk/internal/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	s := NewFileStore(path, "default-admin-secret")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestFileStore_SeedsDefaultAdmin(t *testing.T) {
	s := newTestStore(t)

	admin, err := s.Get(context.Background(), "admin")
	if err != nil {
		t.Fatalf("Get admin: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Errorf("admin role: got %q, want %q", admin.Role, models.RoleAdmin)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("default-admin-secret")); err != nil {
		t.Errorf("admin password does not match configured default: %v", err)
	}

	users, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected only the default admin after first load, got %d users", len(users))
	}
}

func TestFileStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t)

	user, err := s.Create(context.Background(), "alice", "hunter2", "Alice", models.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.Username != "alice" || user.DisplayName != "Alice" || user.Role != models.RoleUser {
		t.Errorf("unexpected user: %+v", user)
	}

	got, err := s.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DisplayName != "Alice" || got.Role != models.RoleUser {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestFileStore_NeverStoresPlaintext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	s := NewFileStore(path, "default-admin-secret")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := s.Create(context.Background(), "alice", "hunter2", "Alice", models.RoleUser); err != nil {
		t.Fatalf("Create: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read backing file: %v", err)
	}
	if strings.Contains(string(data), "hunter2") || strings.Contains(string(data), "default-admin-secret") {
		t.Error("backing file contains a plaintext password")
	}

	got, _ := s.Get(context.Background(), "alice")
	if got.PasswordHash == "hunter2" {
		t.Error("record stores the plaintext password")
	}
}

func TestFileStore_DuplicateCreate(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Create(context.Background(), "alice", "hunter2", "Alice", models.RoleUser); err != nil {
		t.Fatalf("Create: %v", err)
	}

	before, _ := s.Get(context.Background(), "alice")

	_, err := s.Create(context.Background(), "alice", "other", "Impostor", models.RoleAdmin)
	if err != ErrDuplicateUser {
		t.Fatalf("duplicate create: got %v, want ErrDuplicateUser", err)
	}

	// Existing record must be unchanged.
	after, _ := s.Get(context.Background(), "alice")
	if after.PasswordHash != before.PasswordHash || after.DisplayName != "Alice" || after.Role != models.RoleUser {
		t.Errorf("existing record changed by failed create: %+v", after)
	}
}

func TestFileStore_GetUnknownUser(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Get(context.Background(), "bob"); err != ErrUserNotFound {
		t.Errorf("Get unknown: got %v, want ErrUserNotFound", err)
	}
}

func TestFileStore_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	s1 := NewFileStore(path, "default-admin-secret")
	if err := s1.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := s1.Create(context.Background(), "alice", "hunter2", "Alice", models.RoleUser); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Fresh store over the same file sees the record.
	s2 := NewFileStore(path, "default-admin-secret")
	if err := s2.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := s2.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if got.DisplayName != "Alice" {
		t.Errorf("unexpected record after reload: %+v", got)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s := NewFileStore(path, "x")
	if err := s.Load(context.Background()); err == nil {
		t.Error("expected error loading corrupt credential file")
	}
}
