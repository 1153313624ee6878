package store

import (
	"context"
	"errors"

	"github.com/crucial707/replydesk/internal/models"
)

// ==========================
// Credential Store
// ==========================

var (
	// ErrDuplicateUser is returned by Create when the username is taken.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrUserNotFound is returned by Get for unknown usernames.
	ErrUserNotFound = errors.New("user not found")
)

// Store persists the username -> UserRecord mapping. The default backing is
// a flat JSON file; a postgres backend exists for shared deployments. The
// Authenticator only sees this interface.
type Store interface {
	// Load reads the backing store, seeding a default admin record on first
	// use if no data exists.
	Load(ctx context.Context) error
	// Get returns the record for username or ErrUserNotFound.
	Get(ctx context.Context, username string) (*models.User, error)
	// Create hashes password and persists a new record, or fails with
	// ErrDuplicateUser.
	Create(ctx context.Context, username, password, displayName, role string) (*models.User, error)
	// List returns all records sorted by username.
	List(ctx context.Context) ([]models.User, error)
}
