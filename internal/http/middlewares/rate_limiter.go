package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"tacly.com/taskboard/internal/exceptions"
	"tacly.com/taskboard/internal/ratelimit"
)

// RateLimiter counts requests per client IP. When the limiter backend
// fails the request is let through and the failure is logged.
func RateLimiter(limiter ratelimit.Limiter, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()

			allowed, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				logger.Error().
					Err(err).
					Str("client_ip", key).
					Msg("rate limiter unavailable")
				return next(c)
			}
			if !allowed {
				return exceptions.ErrRateLimited
			}

			return next(c)
		}
	}
}
