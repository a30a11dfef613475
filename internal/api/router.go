package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/clientdesk/clientdesk/docs"
	"github.com/clientdesk/clientdesk/internal/api/handler"
	"github.com/clientdesk/clientdesk/internal/api/metrics"
	"github.com/clientdesk/clientdesk/internal/api/middleware"
	"github.com/clientdesk/clientdesk/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Authenticator ports.Authenticator
	Registrar     ports.Registrar
	Sessions      ports.SessionManager
	Clients       ports.ClientService
	Policy        middleware.Policy

	// Health maps dependency names to readiness checks for /health/ready.
	Health map[string]handler.Pinger

	Cookie handler.CookieConfig

	// Registry receives the HTTP and domain metrics and backs /metrics.
	Registry *prometheus.Registry
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	v, err := handler.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("build validator: %w", err)
	}
	e.Validator = v

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.New(reg)

	promMW, err := echoprometheus.MiddlewareConfig{
		Namespace:  "clientdesk",
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
		StatusCodeResolver: func(c echo.Context, err error) int {
			if err == nil {
				return c.Response().Status
			}
			code, _ := resolveError(err, zerolog.Nop(), c)
			return code
		},
	}.ToMiddleware()
	if err != nil {
		return nil, fmt.Errorf("build metrics middleware: %w", err)
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(promMW)
	e.Use(middleware.Session(deps.Sessions, deps.Cookie.Name, deps.Logger))
	e.Use(middleware.Authorize(deps.Policy, m))

	authHandler := handler.NewAuthHandler(deps.Authenticator, deps.Sessions, deps.Cookie, m, deps.Logger)
	userHandler := handler.NewUserHandler(deps.Registrar, m)
	clientHandler := handler.NewClientHandler(deps.Clients, m)
	healthHandler := handler.NewHealthHandler(deps.Health)

	// --- Auth routes ---
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)
	e.GET("/home", authHandler.Home)

	// --- Accounts (ADMIN) ---
	e.GET("/users", userHandler.List)
	e.POST("/users", userHandler.Register)

	// --- Clients (read: USER/ADMIN, write: ADMIN) ---
	e.GET("/clients", clientHandler.List)
	e.POST("/clients", clientHandler.Create)
	e.GET("/clients/:id", clientHandler.Get)
	e.POST("/clients/:id", clientHandler.Update)
	e.POST("/clients/:id/delete", clientHandler.Delete)

	// --- Probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness: is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
