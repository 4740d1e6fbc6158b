// Package server exposes the dashboard service over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/dashboard"
)

// Config holds HTTP server settings
type Config struct {
	Addr        string
	CORSOrigins []string
	Stage       string
}

// Server wraps the HTTP server and its router
type Server struct {
	http *http.Server
	log  *zap.Logger
}

// New creates a server for the dashboard service
func New(cfg Config, svc *dashboard.Service, log *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(cfg, svc, log),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// NewRouter builds the gin engine with middleware and routes
func NewRouter(cfg Config, svc *dashboard.Service, log *zap.Logger) *gin.Engine {
	if cfg.Stage == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CorrelationIDMiddleware())
	r.Use(RequestLogger(log))
	r.Use(corsMiddleware(cfg.CORSOrigins))

	h := NewHandler(svc, log)
	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ranges", h.ListRanges)
		v1.GET("/ranges/:range/similar", h.Similar)
		v1.GET("/series", h.Series)
		v1.GET("/summary", h.Summary)
		v1.GET("/transactions", h.Transactions)
		v1.GET("/overview", h.Overview)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	corsConfig.ExposeHeaders = []string{CorrelationIDHeader}
	return cors.New(corsConfig)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("Shutting down HTTP server")
	return s.http.Shutdown(shutdownCtx)
}
