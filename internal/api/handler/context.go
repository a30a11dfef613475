package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

// PrincipalKey is the echo context key the session middleware stores the
// *domain.Principal under.
const PrincipalKey = "principal"

// OptionalPrincipal returns the request's principal, or nil for anonymous
// requests.
func OptionalPrincipal(c echo.Context) *domain.Principal {
	p, _ := c.Get(PrincipalKey).(*domain.Principal)
	return p
}

// ctxPrincipal fails fast with 401 when no principal is attached; its
// presence proves the session middleware ran.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p := OptionalPrincipal(c)
	if p == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return p, nil
}
