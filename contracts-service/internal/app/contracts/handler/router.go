package handler

import (
	"net/http"

	"gamarriando/pkg/contracts"
	"gamarriando/pkg/logger"
	"gamarriando/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type route struct {
	method      string
	path        string
	description string
}

// routes - публичный список эндпоинтов, он же попадает в ServiceInfo
var routes = []route{
	{http.MethodGet, "/health", "Dependency health snapshot"},
	{http.MethodGet, "/health/liveness", "Liveness probe"},
	{http.MethodGet, "/info", "Service descriptor"},
	{http.MethodGet, "/metrics", "Prometheus metrics"},
	{http.MethodPost, "/api/v1/validate/:schema", "Validate a payload against a named schema"},
	{http.MethodGet, "/api/v1/schemas", "List registered schemas"},
	{http.MethodGet, "/api/v1/violations", "List rejected payloads (admin)"},
	{http.MethodPost, "/api/v1/auth/introspect", "Verify a bearer token and return its claims"},
}

// Endpoints возвращает эндпоинты сервиса для ServiceInfo
func Endpoints() []contracts.ServiceEndpoint {
	endpoints := make([]contracts.ServiceEndpoint, len(routes))
	for i, r := range routes {
		description := r.description
		endpoints[i] = contracts.ServiceEndpoint{Path: r.path, Method: r.method, Description: &description}
	}
	return endpoints
}

// SetupRoutes настраивает все маршруты приложения
func SetupRoutes(
	serviceName string,
	contractHandler *ContractHandler,
	healthHandler *HealthHandler,
	authMiddleware *AuthMiddleware,
	rateLimiter *RateLimiter,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Verdict-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", healthHandler.Health)
	router.GET("/health/liveness", healthHandler.Liveness)
	router.GET("/info", healthHandler.Info)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/schemas", contractHandler.ListSchemas)

		// Проверка доступна анонимно; с токеном лимит считается по subject
		api.POST("/validate/:schema", authMiddleware.Identify(), rateLimiter.Middleware(), contractHandler.Validate)

		api.POST("/auth/introspect", authMiddleware.Authenticate(), contractHandler.Introspect)

		admin := api.Group("")
		admin.Use(authMiddleware.Authenticate())
		admin.Use(authMiddleware.RequireRole(contracts.RoleAdmin))
		{
			admin.GET("/violations", contractHandler.ListViolations)
		}
	}

	return router
}
