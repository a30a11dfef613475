package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clientdesk/clientdesk/internal/api/metrics"
	"github.com/clientdesk/clientdesk/internal/core/ports"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	auth     ports.Authenticator
	sessions ports.SessionManager
	cookie   CookieConfig
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func NewAuthHandler(auth ports.Authenticator, sessions ports.SessionManager, cookie CookieConfig, m *metrics.Metrics, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, cookie: cookie, metrics: m, log: log}
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
}

const invalidCredentials = "invalid username or password"

// Login authenticates a user and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	acct, err := h.auth.Principal(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}
	if acct == nil {
		h.metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, invalidCredentials)
	}

	token, expiresAt, err := h.sessions.Issue(acct)
	if err != nil {
		h.metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}
	h.metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.log.Info().Str("account_id", acct.ID).Str("username", acct.Username).Msg("login succeeded")

	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Username:  acct.Username,
		Roles:     acct.RoleNames(),
	})
}

// Logout revokes the current session, if any, and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200   {object}  map[string]string
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if p := OptionalPrincipal(c); p != nil {
		if err := h.sessions.Revoke(c.Request().Context(), p); err != nil {
			return err
		}
		h.metrics.LogoutsTotal.Inc()
		h.log.Info().Str("account_id", p.AccountID).Msg("session revoked")
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

type homeResponse struct {
	Message  string   `json:"message"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// Home greets the signed-in user.
//
// @Summary      Landing page
// @Tags         auth
// @Produce      json
// @Success      200   {object}  homeResponse
// @Failure      401   {object}  map[string]string
// @Router       /home [get]
func (h *AuthHandler) Home(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, homeResponse{
		Message:  "Welcome, " + p.Username,
		Username: p.Username,
		Roles:    p.Roles,
	})
}
