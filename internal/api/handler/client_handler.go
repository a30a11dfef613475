package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clientdesk/clientdesk/internal/api/metrics"
	"github.com/clientdesk/clientdesk/internal/core/domain"
	"github.com/clientdesk/clientdesk/internal/core/ports"
)

type ClientHandler struct {
	clients ports.ClientService
	metrics *metrics.Metrics
}

func NewClientHandler(clients ports.ClientService, m *metrics.Metrics) *ClientHandler {
	return &ClientHandler{clients: clients, metrics: m}
}

type clientRequest struct {
	Name    string `json:"name" form:"name" validate:"required,notblank,max=150"`
	Email   string `json:"email" form:"email" validate:"omitempty,email,max=150"`
	Phone   string `json:"phone" form:"phone" validate:"max=50"`
	Address string `json:"address" form:"address" validate:"max=255"`
}

func (r clientRequest) input() ports.ClientInput {
	return ports.ClientInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address}
}

func clientID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid client id")
	}
	return id, nil
}

// List returns every client.
//
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Success      200   {array}   domain.Client
// @Failure      401   {object}  map[string]string
// @Router       /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	clients, err := h.clients.List(c.Request().Context())
	if err != nil {
		return err
	}
	if clients == nil {
		clients = []*domain.Client{}
	}
	return c.JSON(http.StatusOK, clients)
}

// Get returns a single client.
//
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Param        id    path      int  true  "Client ID"
// @Success      200   {object}  domain.Client
// @Failure      404   {object}  map[string]string
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	id, err := clientID(c)
	if err != nil {
		return err
	}
	client, err := h.clients.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// Create stores a new client.
//
// @Summary      Create client
// @Tags         clients
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      clientRequest  true  "Client"
// @Success      201   {object}  domain.Client
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Router       /clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.clients.Create(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	h.metrics.ClientMutationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, client)
}

// Update overwrites a client's fields.
//
// @Summary      Update client
// @Tags         clients
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id    path      int            true  "Client ID"
// @Param        body  body      clientRequest  true  "Client"
// @Success      200   {object}  domain.Client
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Router       /clients/{id} [post]
func (h *ClientHandler) Update(c echo.Context) error {
	id, err := clientID(c)
	if err != nil {
		return err
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.clients.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return err
	}
	h.metrics.ClientMutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, client)
}

// Delete removes a client.
//
// @Summary      Delete client
// @Tags         clients
// @Param        id    path      int  true  "Client ID"
// @Success      204
// @Failure      404   {object}  map[string]string
// @Router       /clients/{id}/delete [post]
func (h *ClientHandler) Delete(c echo.Context) error {
	id, err := clientID(c)
	if err != nil {
		return err
	}
	if err := h.clients.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	h.metrics.ClientMutationsTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
