package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/replydesk/internal/models"
	"github.com/crucial707/replydesk/internal/store"
)

// ErrNotAuthenticated covers both unknown usernames and wrong passwords so
// callers cannot enumerate accounts.
var ErrNotAuthenticated = errors.New("not authenticated")

// ==========================
// Authenticator
// ==========================
type Authenticator struct {
	Store  store.Store
	secret []byte
	ttl    time.Duration

	revoked *RevocationSet

	// now is swappable for expiry tests.
	now func() time.Time
}

func NewAuthenticator(st store.Store, secret []byte, ttl time.Duration) *Authenticator {
	return &Authenticator{
		Store:   st,
		secret:  secret,
		ttl:     ttl,
		revoked: NewRevocationSet(),
		now:     time.Now,
	}
}

// Authenticate verifies a username/password pair against the credential
// store and returns the matching record on success.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := a.Store.Get(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrNotAuthenticated
	}

	return user, nil
}
