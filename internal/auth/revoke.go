package auth

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ==========================
// Revocation Set
// ==========================

// RevocationSet is an in-memory set of revoked token IDs. Entries only need
// to live until the token's own expiry, so the set stays small and a process
// restart losing it is harmless (restart invalidates nothing that the
// signature check would have accepted anyway).
type RevocationSet struct {
	mu      sync.RWMutex
	expires map[string]time.Time // jti -> token expiry
}

func NewRevocationSet() *RevocationSet {
	return &RevocationSet{expires: make(map[string]time.Time)}
}

func (s *RevocationSet) Add(jti string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expires[jti] = expiresAt
}

func (s *RevocationSet) Contains(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.expires[jti]
	return ok
}

// Purge drops entries whose tokens have expired on their own and returns the
// number removed.
func (s *RevocationSet) Purge(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for jti, exp := range s.expires {
		if exp.Before(now) {
			delete(s.expires, jti)
			n++
		}
	}
	return n
}

// StartJanitor purges expired revocations every 5 minutes in the background.
// The returned cron can be stopped on shutdown.
func (a *Authenticator) StartJanitor(logger *slog.Logger) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("@every 5m", func() {
		if n := a.revoked.Purge(a.now()); n > 0 {
			logger.Info("purged expired revocations", "count", n)
		}
	})
	if err != nil {
		logger.Error("failed to schedule revocation janitor", "error", err)
		return c
	}
	c.Start()
	return c
}
