// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, authentication, idempotency, and rate limiting.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-shelter-backend/internal/config"
	"github.com/tbourn/go-shelter-backend/internal/docs"
	"github.com/tbourn/go-shelter-backend/internal/domain"
	"github.com/tbourn/go-shelter-backend/internal/http/handlers"
	"github.com/tbourn/go-shelter-backend/internal/http/middleware"
	"github.com/tbourn/go-shelter-backend/internal/repo"
	"github.com/tbourn/go-shelter-backend/internal/services"
)

// Services bundles the application services behind the API.
type Services struct {
	Animals  *services.AnimalService
	Adoption *services.AdoptionService
	Users    *services.UserService
}

// NewServices builds the services over db according to cfg.
func NewServices(db *gorm.DB, cfg config.Config) (Services, error) {
	scheme, err := services.ParsePasswordScheme(cfg.PasswordScheme)
	if err != nil {
		return Services{}, err
	}
	adoption := services.NewAdoptionService(db)
	adoption.Strict = cfg.AdoptionStrict
	adoption.IdempotencyTTL = cfg.IdempotencyTTL

	return Services{
		Animals:  services.NewAnimalService(db),
		Adoption: adoption,
		Users:    &services.UserService{DB: db, Scheme: scheme},
	}, nil
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the API under cfg.APIBasePath.
//
// Global middleware order:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS and security headers
//
// Per group:
//   - /auth:   rate limiter keyed by client IP
//   - /admin:  BasicAuth(admin), then the per-user rate limiter
//   - /client: BasicAuth(client), idempotency validator, then the per-user
//     rate limiter (replays bypass it)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) error {
	svcs, err := NewServices(db, cfg)
	if err != nil {
		return err
	}
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{middleware.HeaderIdempotencyKey},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture and security headers
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:    cfg.Security.EnableHSTS,
		HSTSMaxAge:    cfg.Security.HSTSMaxAge,
		EnablePolicy:  true,
		CacheControl:  middleware.CachePrivateRevalidate,
		ExposeHeaders: []string{"ETag", "Location", handlers.HeaderIdempotencyReplayed},
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(svcs.Animals, svcs.Adoption, svcs.Users)
	authn := middleware.Authenticator(svcs.Users.Authenticate)

	// Idempotency lookups are scoped to the authenticated client.
	lookup := func(ctx context.Context, userID uint, key string, now time.Time) (bool, error) {
		rec, err := repo.GetIdempotency(ctx, db, userID, key, now)
		if err != nil || rec == nil {
			return false, nil
		}
		return true, nil
	}

	// Token buckets: one per IP for login, one per user for the rest.
	loginRL := middleware.NewRateLimiter(middleware.RateLimitOptions{Scope: "login", RPS: cfg.RateRPS, Burst: cfg.RateBurst})
	userRL := middleware.NewRateLimiter(middleware.RateLimitOptions{Scope: "user", RPS: cfg.RateRPS, Burst: cfg.RateBurst})

	api := groupWithPrefix(r, cfg.APIBasePath)

	auth := api.Group("/auth", loginRL.Handler())
	{
		auth.POST("/login", h.Login)
	}

	admin := api.Group("/admin",
		middleware.BasicAuth(authn, domain.RoleAdmin),
		userRL.Handler(),
	)
	{
		admin.GET("/animals", h.ListAnimals)
		admin.POST("/animals", h.CreateAnimal)
		admin.PUT("/animals/:id/status", h.UpdateAnimalStatus)

		admin.GET("/requests", h.ListRequests)
		admin.POST("/requests/:id/approve", h.ApproveRequest)
		admin.POST("/requests/:id/reject", h.RejectRequest)
	}

	client := api.Group("/client",
		middleware.BasicAuth(authn, domain.RoleClient),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, lookup),
		userRL.Handler(),
	)
	{
		client.GET("/animals", h.ListAvailableAnimals)
		client.POST("/requests", h.CreateRequest)
		client.GET("/requests", h.ListMyRequests)
		client.POST("/requests/:id/cancel", h.CancelRequest)
	}
	return nil
}

// corsMiddleware returns the CORS chain. With no allowlist every origin is
// accepted without credentials; otherwise allowed origins are echoed back.
func corsMiddleware(allowedOrigins []string) []gin.HandlerFunc {
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match", middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Location", handlers.HeaderIdempotencyReplayed}
	methods := []string{"GET", "POST", "PUT", "OPTIONS"}

	if len(allowedOrigins) == 0 {
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     methods,
				AllowHeaders:     allowHeaders,
				ExposeHeaders:    exposeHeaders,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
