// Package gin exposes llmfetch jobs and scraping as a REST API using
// gin-gonic/gin.
package gin

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/llmfetch"
	"github.com/gin-gonic/gin"
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before shutdown.
const ShutdownTimeout = 5 * time.Second

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// Server is the HTTP API server.
type Server struct {
	ln     net.Listener
	server *http.Server
	router *gin.Engine

	// Addr is the bind address, e.g. ":3000".
	Addr string

	JobService llmfetch.JobService
	Scraper    llmfetch.Scraper
	Logger     *slog.Logger
}

// NewServer returns a Server with all routes registered. Dependencies are
// read at request time and must be set before Open.
func NewServer() *Server {
	s := &Server{
		router: gin.New(),
		Logger: slog.New(slog.DiscardHandler),
	}
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.router.Use(requestID())
	s.router.Use(s.logRequests())
	s.router.Use(s.recoverPanics())

	s.router.GET("/health", s.handleHealth)
	s.registerJobRoutes(s.router.Group("/jobs"))
	s.router.NoRoute(func(c *gin.Context) {
		renderError(c, llmfetch.Errorf(llmfetch.ENOTFOUND, "not found"))
	})

	return s
}

// Open listens on Addr and serves requests in the background.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("server stopped", "error", err)
		}
	}()
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port returns the TCP port of the running server. Useful when Addr is ":0".
func (s *Server) Port() int {
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// ServeHTTP routes a request through the gin engine.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
