package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docindex/internal/adapters/driving/toolcall"
	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/logger"
)

// Config configures the HTTP API server.
type Config struct {
	// Services are the driving ports exposed through the API.
	Services toolcall.Services

	// Version is reported by /health.
	Version string

	// MaxContentBytes bounds inline document content. Defaults to
	// domain.DefaultMaxFileBytes.
	MaxContentBytes int64
}

// bodyOverhead is the room left in a request body for JSON framing
// and escapes around inline content.
const bodyOverhead = 64 * 1024

// Server is the HTTP API server.
type Server struct {
	services toolcall.Services
	executor *toolcall.Executor
	engine   *gin.Engine
	version  string
	maxBytes int64
}

// NewServer creates a server and registers its routes.
func NewServer(cfg Config) (*Server, error) {
	executor, err := toolcall.NewExecutor(cfg.Services)
	if err != nil {
		return nil, fmt.Errorf("creating tool executor: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	maxBytes := cfg.MaxContentBytes
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxFileBytes
	}

	s := &Server{
		services: cfg.Services,
		executor: executor,
		engine:   engine,
		version:  cfg.Version,
		maxBytes: maxBytes,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api", limitBody(2*s.maxBytes+bodyOverhead))
	{
		api.GET("/tools", s.handleListTools)
		api.POST("/tools/:name", s.handleExecuteTool)

		api.POST("/documents", s.handleIndexDocument)
		api.GET("/documents", s.handleListDocuments)
		api.GET("/search", s.handleSearch)
	}
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the API on addr until the context is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	close(done)
	wg.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// limitBody caps the bytes handlers may read from a request body.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// requestLogger logs one line per request with structured fields.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logger.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}
