package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "pasargamex-chat/pkg/errors"
)

// TokenInfo is what the chat core needs to know about its bearer token.
type TokenInfo struct {
	UserID    string
	ExpiresAt time.Time
}

func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// InspectToken reads the user id and expiry from a Firebase-style ID token.
// The signature is not checked.
func InspectToken(token string) (TokenInfo, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return TokenInfo{}, apperrors.Unauthorized("Missing auth token", nil)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, apperrors.Unauthorized("Malformed auth token", err)
	}

	info := TokenInfo{}
	if uid, ok := claims["user_id"].(string); ok && uid != "" {
		info.UserID = uid
	} else if sub, ok := claims["sub"].(string); ok {
		info.UserID = sub
	}
	if exp, ok := claims["exp"].(float64); ok {
		info.ExpiresAt = time.Unix(int64(exp), 0)
	}

	if info.UserID == "" {
		return TokenInfo{}, apperrors.Unauthorized("Auth token carries no user id", nil)
	}
	return info, nil
}

// ResolveUser picks the session user: the configured id wins when set, but
// must agree with the token when the token names one.
func ResolveUser(token, configuredUserID string, now time.Time) (string, error) {
	info, err := InspectToken(token)
	if err != nil {
		if configuredUserID != "" && token == "" {
			return configuredUserID, nil
		}
		return "", err
	}
	if info.Expired(now) {
		return "", apperrors.Unauthorized("Auth token has expired", nil)
	}
	if configuredUserID != "" && configuredUserID != info.UserID {
		return "", apperrors.Unauthorized("USER_ID does not match the auth token", nil)
	}
	return info.UserID, nil
}
