package middleware

import (
	"github.com/labstack/echo/v4"

	"pasargamex-chat/internal/infrastructure/ratelimit"
	apperrors "pasargamex-chat/pkg/errors"
	"pasargamex-chat/pkg/logger"
	"pasargamex-chat/pkg/response"
)

// RateLimit throttles local API callers by client IP.
func RateLimit(limiter *ratelimit.RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if allowed, wait := limiter.Allow(ip, ratelimit.ActionLocalAPI); !allowed {
				logger.Warn("RATE LIMIT: blocked request from %s (retry in %s)", ip, wait)
				return response.Error(c, apperrors.TooManyRequests("Rate limit exceeded", wait))
			}
			return next(c)
		}
	}
}
