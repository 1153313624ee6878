package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/replydesk/internal/models"
)

// ==========================
// File Store
// ==========================

// fileRecord is the on-disk shape of one user entry.
type fileRecord struct {
	PasswordHash string `json:"password_hash"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
}

// FileStore keeps the username -> record mapping in a single JSON file,
// rewritten wholesale on each mutation. Mutations are serialized with a
// mutex; cross-process writers are not protected, which is acceptable at
// the tool's single-operator scale.
type FileStore struct {
	path          string
	adminPassword string

	mu    sync.RWMutex
	users map[string]fileRecord
}

// NewFileStore creates a store backed by the JSON file at path. adminPassword
// seeds the default admin record when the file does not exist yet.
func NewFileStore(path, adminPassword string) *FileStore {
	return &FileStore{
		path:          path,
		adminPassword: adminPassword,
		users:         make(map[string]fileRecord),
	}
}

func (s *FileStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s.seedDefaultAdmin()
	}
	if err != nil {
		return fmt.Errorf("read credential file: %w", err)
	}

	users := make(map[string]fileRecord)
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("parse credential file: %w", err)
	}
	s.users = users
	return nil
}

func (s *FileStore) Get(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return toUser(username, rec), nil
}

func (s *FileStore) Create(ctx context.Context, username, password, displayName, role string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return nil, ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rec := fileRecord{
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         role,
	}
	s.users[username] = rec

	if err := s.persist(); err != nil {
		// Keep the in-memory state consistent with disk on failure.
		delete(s.users, username)
		return nil, err
	}
	return toUser(username, rec), nil
}

func (s *FileStore) List(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.User, 0, len(names))
	for _, name := range names {
		out = append(out, *toUser(name, s.users[name]))
	}
	return out, nil
}

// seedDefaultAdmin creates the initial admin record and writes the file.
// Callers must hold the write lock.
func (s *FileStore) seedDefaultAdmin() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	s.users = map[string]fileRecord{
		"admin": {
			PasswordHash: string(hash),
			DisplayName:  "Administrator",
			Role:         models.RoleAdmin,
		},
	}
	return s.persist()
}

// persist rewrites the whole file. Callers must hold the write lock.
func (s *FileStore) persist() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}

func toUser(username string, rec fileRecord) *models.User {
	return &models.User{
		Username:     username,
		PasswordHash: rec.PasswordHash,
		DisplayName:  rec.DisplayName,
		Role:         rec.Role,
	}
}
