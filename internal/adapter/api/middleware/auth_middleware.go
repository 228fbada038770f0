package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "pasargamex-chat/pkg/errors"
	"pasargamex-chat/pkg/response"
)

// AuthMiddleware admits callers presenting the session's own bearer token.
type AuthMiddleware struct {
	token  string
	userID string
}

func NewAuthMiddleware(token, userID string) *AuthMiddleware {
	return &AuthMiddleware{token: token, userID: userID}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// No token configured: local development without auth.
		if m.token == "" {
			c.Set("uid", m.userID)
			return next(c)
		}

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Error(c, apperrors.Unauthorized("Authorization header is required", nil))
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Error(c, apperrors.Unauthorized("Invalid authorization format", nil))
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(m.token)) != 1 {
			return response.Error(c, apperrors.Unauthorized("Invalid or expired token", nil))
		}

		c.Set("uid", m.userID)
		return next(c)
	}
}
