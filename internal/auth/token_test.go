package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lexdesk/backoffice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func testUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Email:    "admin@acme.test",
		TenantID: uuid.New(),
		RoleID:   uuid.New(),
	}
}

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer(secret, "backoffice", 8*time.Hour)
	user := testUser()

	token, expiresAt, err := issuer.Issue(user, "Admin", []string{"users:read", "roles:read"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), expiresAt, 5*time.Second)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.TenantID, claims.TenantID)
	assert.Equal(t, user.RoleID, claims.RoleID)
	assert.Equal(t, "Admin", claims.Role)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.ElementsMatch(t, []string{"users:read", "roles:read"}, claims.Permissions)
}

func TestParseRejects(t *testing.T) {
	issuer := NewTokenIssuer(secret, "backoffice", time.Hour)
	user := testUser()
	valid, _, err := issuer.Issue(user, "Admin", nil)
	require.NoError(t, err)

	otherSecret, _, err := NewTokenIssuer("ffffffffffffffffffffffffffffffff", "backoffice", time.Hour).Issue(user, "Admin", nil)
	require.NoError(t, err)

	otherIssuer, _, err := NewTokenIssuer(secret, "someone-else", time.Hour).Issue(user, "Admin", nil)
	require.NoError(t, err)

	past := issuer.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, _, err := past.Issue(user, "Admin", nil)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &models.Claims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "backoffice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	// valid header and signature around another token's claims
	parts, foreign := strings.Split(valid, "."), strings.Split(otherIssuer, ".")
	spliced := parts[0] + "." + foreign[1] + "." + parts[2]

	tests := map[string]string{
		"garbage":       "not.a.token",
		"empty":         "",
		"wrong secret":  otherSecret,
		"wrong issuer":  otherIssuer,
		"expired":       expired,
		"alg none":      unsigned,
		"tampered body": spliced,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, h.Compare(hash, "s3cret-pass"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrPasswordMismatch)
	assert.Error(t, h.Compare("not-a-hash", "s3cret-pass"))

	h.CompareDummy("anything")
}
