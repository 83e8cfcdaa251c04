// Package httpapi wires the HTTP transport (Gin) to the governance core:
// the failure pipeline, the route walker, access logging and the overload
// enforcer, plus the cross-cutting concerns around them (tracing,
// correlation IDs, redacted logging, metrics, CORS, security headers and
// the global rate limiter).
//
// Every failure, whichever layer raises it, ends in the same pipeline and is
// answered in-band as 200 {"errorCode","errorMsg"}.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-http-governance/internal/config"
	_ "github.com/tbourn/go-http-governance/internal/docs"
	"github.com/tbourn/go-http-governance/internal/http/handlers"
	"github.com/tbourn/go-http-governance/internal/http/middleware"
	"github.com/tbourn/go-http-governance/internal/routes"
	"github.com/tbourn/go-http-governance/internal/services"
)

// VersionStore is both the registry the walker fills and the lister the
// versions endpoint reads.
type VersionStore interface {
	routes.VersionRegistry
	handlers.VersionLister
}

// OverloadStore is both the registry the walker fills and the enforcer the
// overload middleware consults.
type OverloadStore interface {
	routes.OverloadRegistry
	middleware.OverloadEnforcer
}

// Deps are the collaborators RegisterRoutes wires together. Every field is
// optional: a nil DB disables the access log endpoints, a nil Overloads
// disables overload enforcement and a nil Pipeline answers failures with the
// default classifier.
type Deps struct {
	DB        *gorm.DB
	Versions  VersionStore
	Overloads OverloadStore
	Pipeline  *handlers.Pipeline
	Emitter   middleware.Emitter
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the governance controllers through the route walker.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID + start marker
//  3. Compression, wrapping every body the pipeline writes
//  4. Logger: structured logs with PII scrubbing, sees the stashed error code
//  5. AccessLog: success-path emission, skipped when the pipeline emitted
//  6. Errors + Recovery: route every failure into the pipeline
//  7. Body size limiter, metrics, rate limiter (per user/IP)
//  8. CORS and security headers
//  9. Overload enforcer keyed by the matched route
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	handlers.ConfigureBinding()

	p := d.Pipeline
	if p == nil {
		p = handlers.NewPipeline(nil, d.Emitter)
	}

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID(), middleware.StartTimer())

	// 3) Compression
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 4) Structured logging with redaction
	r.Use(middleware.Logger(middleware.RedactOptions{
		MaskHeaders: []string{middleware.UserIDHeader},
	}))

	// 5) Access log for requests that never reach the pipeline
	r.Use(middleware.AccessLog(d.Emitter))

	// 6) Failure pipeline
	r.Use(middleware.Errors(p), middleware.Recovery(p))

	// 7) Body cap, metrics, token-bucket rate limiter per user/IP
	r.Use(limitBody(1 << 20))
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture and security headers
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
		Expose:       []string{middleware.RequestIDHeader},
	}))

	// 9) Per-path admission control
	if d.Overloads != nil {
		r.Use(middleware.Overload(d.Overloads))
	}

	// Fallbacks feed the pipeline like any other fault
	r.NoRoute(p.NoRoute)
	r.NoMethod(p.NoMethod)

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Governance controllers
	var (
		versions  routes.VersionRegistry
		lister    handlers.VersionLister
		overloads routes.OverloadRegistry
	)
	if d.Versions != nil {
		versions, lister = d.Versions, d.Versions
	}
	if d.Overloads != nil {
		overloads = d.Overloads
	}
	w := routes.NewWalker(versions, overloads)
	spec := &routes.OverloadSpec{
		Threshold: cfg.Governance.OverloadThreshold,
		Window:    cfg.Governance.OverloadWindow,
	}
	auth := middleware.Authenticate(nil)
	logs := services.NewAccessLogService(d.DB, nil)

	w.Mount(r, handlers.VersionsController{Versions: lister, Overload: spec})
	w.Mount(r, handlers.AccessLogsController{Logs: logs, Auth: auth, Overload: spec})
	w.Mount(r, handlers.AccessLogController{Logs: logs, Auth: auth, Overload: spec})
}

// corsMiddleware returns the CORS handlers: allow-all when no origins are
// configured, otherwise an allowlist that echoes the matching Origin.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.UserIDHeader, middleware.RequestIDHeader}
	exposeHeaders := []string{middleware.RequestIDHeader, "Content-Length"}

	if len(origins) == 0 {
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     []string{"GET", "OPTIONS"},
				AllowHeaders:     allowHeaders,
				ExposeHeaders:    exposeHeaders,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
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
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// limitBody caps the request body size for all endpoints to maxBytes using
// http.MaxBytesReader. Requests exceeding the cap fail on read.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
