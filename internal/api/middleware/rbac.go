package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/clientdesk/clientdesk/internal/api/handler"
	"github.com/clientdesk/clientdesk/internal/api/metrics"
	"github.com/clientdesk/clientdesk/internal/core/domain"
	"github.com/clientdesk/clientdesk/internal/core/service"
)

// Policy decides whether roles may perform an action on a resource.
type Policy interface {
	IsAllowed(roles []string, action service.Action, resource string) bool
	IsPublic(action service.Action, resource string) bool
}

// Authorize enforces policy on every request. Public resources pass
// untouched; everything else needs a principal (401 otherwise) whose roles
// the policy accepts (403 otherwise).
func Authorize(policy Policy, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			action := service.ActionForMethod(c.Request().Method)
			resource := c.Request().URL.Path

			if policy.IsPublic(action, resource) {
				return next(c)
			}

			p := handler.OptionalPrincipal(c)
			if p == nil {
				m.AuthorizationDecisionsTotal.WithLabelValues(string(action), "unauthenticated").Inc()
				return domain.ErrUnauthenticated
			}

			if !policy.IsAllowed(p.Roles, action, resource) {
				m.AuthorizationDecisionsTotal.WithLabelValues(string(action), "deny").Inc()
				return domain.ErrForbidden
			}

			m.AuthorizationDecisionsTotal.WithLabelValues(string(action), "allow").Inc()
			return next(c)
		}
	}
}
