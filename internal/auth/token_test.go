package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/replydesk/internal/models"
)

func TestIssueAndVerifyToken(t *testing.T) {
	a := newTestAuthenticator(t)

	token, err := a.IssueToken("alice", models.RoleUser)
	require.NoError(t, err)

	claims, err := a.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, models.RoleUser, claims.Role)
	require.NotEmpty(t, claims.ID)
}

func TestVerifyToken_Expired(t *testing.T) {
	a := newTestAuthenticator(t)

	issued := time.Now()
	a.now = func() time.Time { return issued }

	token, err := a.IssueToken("alice", models.RoleUser)
	require.NoError(t, err)

	// Still valid just before the 30 minute expiry.
	a.now = func() time.Time { return issued.Add(29 * time.Minute) }
	_, err = a.VerifyToken(token)
	require.NoError(t, err)

	// Invalid once the expiry has passed.
	a.now = func() time.Time { return issued.Add(31 * time.Minute) }
	_, err = a.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	a := newTestAuthenticator(t)
	other := NewAuthenticator(a.Store, []byte("different-secret"), 30*time.Minute)

	token, err := other.IssueToken("alice", models.RoleUser)
	require.NoError(t, err)

	_, err = a.VerifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_TamperedPayload(t *testing.T) {
	a := newTestAuthenticator(t)

	userToken, err := a.IssueToken("alice", models.RoleUser)
	require.NoError(t, err)
	adminToken, err := a.IssueToken("alice", models.RoleAdmin)
	require.NoError(t, err)

	// Graft the admin payload onto the user token's signature; the signature
	// no longer covers the payload, so verification must fail.
	userParts := strings.Split(userToken, ".")
	adminParts := strings.Split(adminToken, ".")
	require.Len(t, userParts, 3)
	require.Len(t, adminParts, 3)
	tampered := adminParts[0] + "." + adminParts[1] + "." + userParts[2]

	_, err = a.VerifyToken(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Garbage(t *testing.T) {
	a := newTestAuthenticator(t)

	_, err := a.VerifyToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_MissingExpiry(t *testing.T) {
	a := newTestAuthenticator(t)

	// A correctly signed token without an exp claim would never expire, so
	// it must be rejected outright. Revoke must refuse it too instead of
	// reading the absent expiry.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "alice",
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		Role: models.RoleUser,
	})
	signed, err := token.SignedString(a.secret)
	require.NoError(t, err)

	_, err = a.VerifyToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
	require.ErrorIs(t, a.Revoke(signed), ErrInvalidToken)
}
