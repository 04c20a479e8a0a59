package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ChicagoDave/klaro/internal/gateway"
	"github.com/ChicagoDave/klaro/internal/metrics"
	"github.com/ChicagoDave/klaro/pkg/catalogue"
)

// Options wires a Server.
type Options struct {
	Addr         string
	PortAttempts int
	Gateway      *gateway.Gateway
	Catalogue    *catalogue.Registry
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
}

// Server is the HTTP surface of the gateway.
type Server struct {
	addr     string
	attempts int
	gw       *gateway.Gateway
	cat      *catalogue.Registry
	metrics  *metrics.Metrics
	log      *zap.Logger
	engine   *gin.Engine
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	s := &Server{
		addr:     opts.Addr,
		attempts: max(opts.PortAttempts, 1),
		gw:       opts.Gateway,
		cat:      opts.Catalogue,
		metrics:  opts.Metrics,
		log:      opts.Logger,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.POST("/save", s.handleSave)
	r.GET("/Data/ToSend.json", s.handleDocument)
	r.GET("/api/catalogue", s.handleCatalogue)
	r.GET("/api/summary", s.handleSummary)
	r.GET("/api/results", s.handleResults)
	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.engine = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start listens and serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Listen binds the configured address. A busy port moves on to the next one,
// up to PortAttempts tries.
func (s *Server) Listen() (net.Listener, error) {
	host, portStr, err := net.SplitHostPort(s.addr)
	if err != nil {
		return nil, fmt.Errorf("server address %q: %w", s.addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("server port %q: %w", portStr, err)
	}

	var tried []string
	for i := 0; i < s.attempts; i++ {
		addr := net.JoinHostPort(host, strconv.Itoa(port+i))
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return ln, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) || port == 0 {
			return nil, err
		}
		s.log.Warn("port in use, trying next", zap.String("addr", addr))
		tried = append(tried, addr)
	}
	return nil, fmt.Errorf("no available port; tried %s", strings.Join(tried, ", "))
}

// Serve runs the HTTP server on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("klaro server started", zap.String("url", "http://"+ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
