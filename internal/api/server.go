// Package api exposes the claim reconciler and turnover workflow over JSON
// HTTP for the web and mobile clients.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uniclaim/claimsync/internal/campus"
	"github.com/uniclaim/claimsync/internal/claims"
	"github.com/uniclaim/claimsync/internal/model"
	"github.com/uniclaim/claimsync/internal/store"
	"github.com/uniclaim/claimsync/internal/turnover"
)

const shutdownTimeout = 5 * time.Second

// RequestIDHeader carries the request correlation ID. A client-supplied
// value is kept; otherwise one is generated.
const RequestIDHeader = "X-Request-ID"

// Server is the UniClaim HTTP API.
type Server struct {
	store    *store.Store
	claims   *claims.Service
	turnover *turnover.Service
	campus   *campus.Table
	logger   *slog.Logger
	ids      model.IDGenerator
	router   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithIDGenerator sets the generator for request IDs. Defaults to UUIDv7.
func WithIDGenerator(g model.IDGenerator) Option {
	return func(s *Server) { s.ids = g }
}

// NewServer wires the routes. campusTable may be nil, in which case /locate
// reports every point as off campus.
func NewServer(st *store.Store, cs *claims.Service, ts *turnover.Service, campusTable *campus.Table, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if campusTable == nil {
		campusTable = &campus.Table{}
	}

	router := gin.New()

	s := &Server{
		store:    st,
		claims:   cs,
		turnover: ts,
		campus:   campusTable,
		logger:   logger,
		ids:      model.UUIDv7Generator{},
		router:   router,
	}
	for _, opt := range opts {
		opt(s)
	}

	router.Use(gin.Recovery(), requestLogger(logger, s.ids))

	router.GET("/healthz", s.handleHealth)
	router.GET("/locate", s.handleLocate)

	posts := router.Group("/posts/:id")
	{
		posts.GET("", s.handleGetPost)
		posts.GET("/claims", s.handleListClaims)
		posts.POST("/claims", s.handleAddClaim)
		posts.PATCH("/claims/:messageId", s.handleUpdateClaim)
		posts.POST("/sync", s.handleSync)
		posts.POST("/turnover", s.handleInitiateTurnover)
		posts.POST("/turnover/confirm", s.handleConfirmTurnover)
		posts.POST("/collect", s.handleCollect)
	}

	router.DELETE("/conversations/:id", s.handleDeleteConversation)
	router.GET("/ghosts", s.handleListGhosts)
	router.POST("/ghosts/cleanup", s.handleCleanupGhosts)

	return s
}

// Handler returns the router for use with httptest or a custom server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.logger.Info("http server listening", "addr", ln.Addr().String())
	return s.Serve(ctx, ln)
}

func requestLogger(logger *slog.Logger, ids model.IDGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = ids.Generate()
		}
		c.Header(RequestIDHeader, id)

		c.Next()
		logger.Debug("http request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
