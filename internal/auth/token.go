package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers signature mismatch, expiry, and revocation; the
// middleware treats all three as "no session".
var ErrInvalidToken = errors.New("invalid token")

// Claims embeds the registered JWT claims plus the verified role. Subject
// carries the username; ID (jti) keys the revocation set.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// IssueToken returns a signed HS256 token for username with the configured
// lifetime.
func (a *Authenticator) IssueToken(username, role string) (string, error) {
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		Role: role,
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken returns the decoded claims if the signature verifies, the
// token has not expired, and it has not been revoked.
func (a *Authenticator) VerifyToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())

	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	if a.revoked.Contains(claims.ID) {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Revoke marks the token's jti invalid until its natural expiry. Logout
// calls this so a stolen token does not outlive the session.
func (a *Authenticator) Revoke(tokenStr string) error {
	claims, err := a.VerifyToken(tokenStr)
	if err != nil {
		return err
	}
	a.revoked.Add(claims.ID, claims.ExpiresAt.Time)
	return nil
}
