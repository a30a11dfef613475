package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clientdesk/clientdesk/internal/api/handler"
	"github.com/clientdesk/clientdesk/internal/core/domain"
	"github.com/clientdesk/clientdesk/internal/core/ports"
)

// Session resolves the session token carried by the request, from the
// session cookie or an "Authorization: Bearer" header, and attaches the
// resulting principal to the context. Requests without a valid token pass
// through anonymously; Authorize decides whether that is acceptable.
func Session(sessions ports.SessionManager, cookieName string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c, cookieName)
			if token == "" {
				return next(c)
			}

			p, err := sessions.Parse(c.Request().Context(), token)
			switch {
			case errors.Is(err, domain.ErrUnauthenticated):
				log.Debug().Err(err).Str("path", c.Request().URL.Path).Msg("ignoring invalid session token")
				return next(c)
			case err != nil:
				return err
			}

			c.Set(handler.PrincipalKey, p)
			return next(c)
		}
	}
}

func sessionToken(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
