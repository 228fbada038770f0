package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pasargamex-chat/pkg/errors"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestInspectTokenReadsUserAndExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signedToken(t, jwt.MapClaims{"user_id": "buyer-1", "sub": "ignored", "exp": exp.Unix()})

	info, err := InspectToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", info.UserID)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.False(t, info.Expired(exp.Add(-time.Second)))
	assert.True(t, info.Expired(exp))
}

func TestInspectTokenFallsBackToSubject(t *testing.T) {
	info, err := InspectToken(signedToken(t, jwt.MapClaims{"sub": "seller-9"}))
	require.NoError(t, err)
	assert.Equal(t, "seller-9", info.UserID)
	assert.True(t, info.ExpiresAt.IsZero())
}

func TestInspectTokenRejectsGarbage(t *testing.T) {
	_, err := InspectToken("not-a-jwt")
	assert.True(t, apperrors.Is(err, "UNAUTHORIZED"))

	_, err = InspectToken(signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}))
	assert.True(t, apperrors.Is(err, "UNAUTHORIZED"))
}

func TestResolveUser(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	valid := signedToken(t, jwt.MapClaims{"user_id": "buyer-1", "exp": now.Add(time.Hour).Unix()})
	expired := signedToken(t, jwt.MapClaims{"user_id": "buyer-1", "exp": now.Add(-time.Hour).Unix()})

	uid, err := ResolveUser(valid, "", now)
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", uid)

	_, err = ResolveUser(expired, "", now)
	assert.True(t, apperrors.Is(err, "UNAUTHORIZED"))

	_, err = ResolveUser(valid, "someone-else", now)
	assert.True(t, apperrors.Is(err, "UNAUTHORIZED"))

	uid, err = ResolveUser("", "local-dev", now)
	require.NoError(t, err)
	assert.Equal(t, "local-dev", uid)
}
