package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/booknest/catalog-service/internal/core/ports"
	customMiddleware "github.com/booknest/catalog-service/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
	Environment    string
	JWTSecret      string
	JWTIssuer      string
	AdminRole      string
}

type ServerDeps struct {
	CatalogService     ports.CatalogService
	CacheInspector     ports.CacheInspector
	AuditService       ports.AuditService
	RateLimiterService ports.RateLimiterService
	HealthCheckers     []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	catalog        ports.CatalogService
	cache          ports.CacheInspector
	audit          ports.AuditService
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewRequestValidator()

	if serverConfig.AdminRole == "" {
		serverConfig.AdminRole = "admin"
	}

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		catalog:        deps.CatalogService,
		cache:          deps.CacheInspector,
		audit:          deps.AuditService,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.RateLimiterService,
			logger,
			serverConfig.JWTSecret,
			serverConfig.JWTIssuer,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
