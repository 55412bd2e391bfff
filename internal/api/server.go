package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lysyi3m/pitki/internal/metrics"
)

const (
	ownerHeader = "X-User-ID"
	ownerKey    = "owner_id"
)

// NewServer creates a new HTTP server with all routes configured. When webDir
// is set the built web app is served for every non-API path.
func NewServer(handler *Handler, webDir string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health", "/metrics"},
	}))

	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	r.Use(metricsMiddleware())

	setupRoutes(r, handler, webDir)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, webDir string) {
	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(ownerMiddleware())
	{
		api.GET("/categories", handler.ListCategories)
		api.POST("/categories", handler.CreateCategory)
		api.DELETE("/categories/:id", handler.DeleteCategory)

		api.GET("/articles", handler.ListArticles)
		api.POST("/articles", handler.CreateArticle)
		api.PUT("/articles/:id", handler.UpdateArticle)
		api.DELETE("/articles/:id", handler.DeleteArticle)

		api.GET("/stats", handler.GetStats)
	}

	if webDir == "" {
		r.GET("/", handler.GetInfo)
	} else {
		slog.Info("Serving web app", "dir", webDir)
	}

	r.NoRoute(func(c *gin.Context) {
		if isAPIPath(c.Request.URL.Path) {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		if webDir == "" || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.Status(http.StatusNotFound)
			return
		}
		serveWebApp(c, webDir)
	})
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// serveWebApp serves a file from the web app build, falling back to
// index.html so client-side routes resolve.
func serveWebApp(c *gin.Context, webDir string) {
	rel := filepath.FromSlash(strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+c.Request.URL.Path)), "/"))
	if rel != "" && rel != "." {
		path := filepath.Join(webDir, rel)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			c.File(path)
			return
		}
	}

	index := filepath.Join(webDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(index)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+ownerHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// ownerMiddleware scopes every API request to the owner named in the
// X-User-ID header.
func ownerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := strings.TrimSpace(c.GetHeader(ownerHeader))
		if owner == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required in headers"})
			c.Abort()
			return
		}

		c.Set(ownerKey, owner)
		c.Next()
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		timer := prometheus.NewTimer(metrics.APIRequestDuration.WithLabelValues(method, route))

		c.Next()

		timer.ObserveDuration()
		metrics.APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}
