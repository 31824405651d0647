package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/config"
	"github.com/persistorai/degrees/internal/middleware"
	"github.com/persistorai/degrees/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log          *logrus.Logger
	Crawls       CrawlRunner
	Hub          *ws.Hub
	Provider     string
	Version      string
	APIKey       config.Secret
	CORSOrigins  []string
	CrawlTimeout time.Duration
}

// Router-level limits.
const (
	maxBodySize         = 1 << 20 // crawl requests
	rateLimit           = 20      // requests per second per IP
	rateBurst           = 40      // token bucket burst size
	defaultCrawlTimeout = 2 * time.Minute
	defaultMaxStreams   = 32
)

func setupMiddleware(r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(middleware.Logger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{middleware.RequestIDHeader, WarningsHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(rateLimit, rateBurst).Handler())
	r.Use(middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerRoutes(api *gin.RouterGroup, deps *RouterDeps) {
	timeout := deps.CrawlTimeout
	if timeout <= 0 {
		timeout = defaultCrawlTimeout
	}

	if deps.Hub == nil {
		deps.Hub = ws.NewHub(defaultMaxStreams, deps.Log)
	}

	health := NewHealthHandler(deps.Hub, deps.Version, deps.Provider)
	crawls := NewCrawlHandler(deps.Crawls, deps.Log, timeout)
	stream := NewStreamHandler(deps.Crawls, deps.Hub, deps.Log, timeout, deps.CORSOrigins)
	docs := NewGraphMLHandler(deps.Log)

	api.GET("/health", health.Health)

	api.Use(middleware.APIKey(deps.APIKey, deps.Log))

	api.POST("/crawls", limitBody(maxBodySize), crawls.Create)
	api.GET("/crawls/stream", stream.Stream)
	api.POST("/graphml/validate", docs.Validate)
}

// limitBody caps the request body at n bytes.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(r, deps)
	registerRoutes(r.Group("/api/v1"), deps)

	return r
}
