package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clientdesk/clientdesk/internal/api/metrics"
	"github.com/clientdesk/clientdesk/internal/core/domain"
	"github.com/clientdesk/clientdesk/internal/core/ports"
)

type UserHandler struct {
	registrar ports.Registrar
	metrics   *metrics.Metrics
}

func NewUserHandler(registrar ports.Registrar, m *metrics.Metrics) *UserHandler {
	return &UserHandler{registrar: registrar, metrics: m}
}

type registerRequest struct {
	Username        string `json:"username" form:"username" validate:"required,notblank,nopad,max=50"`
	Password        string `json:"password" form:"password" validate:"required,notblank,min=4,max=100"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"required"`
}

type accountResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Enabled  bool     `json:"enabled"`
	Roles    []string `json:"roles"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{ID: a.ID, Username: a.Username, Enabled: a.Enabled, Roles: a.RoleNames()}
}

// Register creates a new account holding the USER role.
//
// @Summary      Register a user
// @Tags         users
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		h.metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	acct, err := h.registrar.Register(c.Request().Context(), req.Username, req.Password, req.ConfirmPassword)
	switch {
	case errors.Is(err, domain.ErrUsernameExists):
		h.metrics.RegistrationsTotal.WithLabelValues("username_exists").Inc()
		return domain.NewValidationError("username", "There is already an account registered with that username")
	case errors.Is(err, domain.ErrPasswordMismatch):
		h.metrics.RegistrationsTotal.WithLabelValues("password_mismatch").Inc()
		return domain.NewValidationError("confirmPassword", "Passwords do not match")
	case err != nil:
		h.metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return err
	}

	h.metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, toAccountResponse(acct))
}

// List returns every account.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200   {array}   accountResponse
// @Failure      403   {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	accounts, err := h.registrar.Accounts(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return c.JSON(http.StatusOK, out)
}
