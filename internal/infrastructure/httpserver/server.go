package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/lumenops/identity/configs"
	"github.com/lumenops/identity/internal/core/domain/account"
	"github.com/lumenops/identity/internal/core/ports"
	customMiddleware "github.com/lumenops/identity/internal/infrastructure/httpserver/middleware"
)

// ServerDeps bundles the services the HTTP surface exposes.
type ServerDeps struct {
	SignupService  ports.SignupService
	Authenticator  ports.Authenticator
	EmailService   ports.EmailService
	TokenService   ports.TokenService
	Delivery       ports.DeliveryService
	Display        ports.DisplayResolver
	Accounts       ports.AccountRepository
	Policy         account.Policy
	HealthCheckers []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *configs.ServerConfig
	jwtConfig      *configs.JWTConfig
	logger         *logrus.Logger
	signupSvc      ports.SignupService
	authenticator  ports.Authenticator
	emailSvc       ports.EmailService
	tokenSvc       ports.TokenService
	delivery       ports.DeliveryService
	display        ports.DisplayResolver
	accounts       ports.AccountRepository
	policy         account.Policy
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *configs.ServerConfig, jwtConfig *configs.JWTConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:           e,
		config:         serverConfig,
		jwtConfig:      jwtConfig,
		logger:         logger,
		signupSvc:      deps.SignupService,
		authenticator:  deps.Authenticator,
		emailSvc:       deps.EmailService,
		tokenSvc:       deps.TokenService,
		delivery:       deps.Delivery,
		display:        deps.Display,
		accounts:       deps.Accounts,
		policy:         deps.Policy,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			logger,
			jwtConfig.Secret,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.echo.Use(echoMiddleware.Logger())
	s.echo.Use(echoMiddleware.Recover())
	s.echo.Use(echoMiddleware.CORS())
	s.echo.Use(echoMiddleware.RequestID())

	s.echo.Use(s.middleware.Metrics.CollectHTTPMetrics())
	s.echo.Use(s.middleware.Logging.RequestLogging())
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")
	auth := api.Group("/auth")
	auth.POST("/signup", s.signup)
	auth.POST("/login", s.login)
	auth.GET("/confirm", s.confirmEmail)
	auth.POST("/confirm", s.confirmEmail)
	auth.POST("/resend-confirmation", s.resendConfirmation)

	protected := api.Group("")
	protected.Use(s.middleware.JWT.RequireJWT())

	protected.GET("/users/me", s.getOwnProfile)
	protected.POST("/users/me/password", s.changePassword)

	emails := protected.Group("/emails")
	emails.GET("", s.listEmails)
	emails.POST("", s.addEmail)
	emails.DELETE("", s.removeEmail)
	emails.PUT("/primary", s.setPrimaryEmail)
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)

	server := &http.Server{
		Addr:         addr,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	if s.config.TLSCertFile != "" && s.config.TLSKeyFile != "" {
		s.logger.Infof("Starting HTTPS server on %s", addr)
		return s.echo.StartTLS(addr, s.config.TLSCertFile, s.config.TLSKeyFile)
	}
	s.logger.Infof("Starting HTTP server on %s", addr)
	s.logger.Warn("Running in HTTP mode - TLS certificates not configured")
	return s.echo.StartServer(server)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Health check handler
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	overall := "healthy"
	for _, hc := range s.healthCheckers {
		if hc == nil {
			continue
		}
		if err := hc.Check(ctx); err != nil {
			deps[hc.Name()] = "unhealthy"
			if overall == "healthy" {
				overall = "degraded"
			}
		} else {
			deps[hc.Name()] = "healthy"
		}
	}
	health := map[string]interface{}{
		"status":       overall,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"service":      "identity",
		"dependencies": deps,
	}
	code := http.StatusOK
	if overall != "healthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, health)
}
