package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"tacly.com/taskboard/internal/exceptions"
)

const userIDKey = "user_id"

type TokenParser interface {
	ParseToken(token string) (string, error)
}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the token's user id on the context.
func Authenticate(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return exceptions.ErrUnauthorized
			}

			userID, err := parser.ParseToken(strings.TrimSpace(token))
			if err != nil {
				return exceptions.ErrUnauthorized
			}

			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id, or "" outside Authenticate.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
