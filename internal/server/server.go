package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/lineup/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers.
// Implementations serve every pattern they list in Routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the method patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

const shutdownTimeout = 5 * time.Second

// Server serves the REST API until its context is cancelled.
type Server struct {
	http   *http.Server
	logger *log.Logger
}

// New assembles the router: recovery, logging, metrics and CORS middleware around the API handler and /metrics.
func New(cfg shared.ServerConfig, api Handler, metrics *Metrics, logger *log.Logger) *Server {
	logger = shared.WithLogger(logger, "component", "server")

	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger), metrics.Middleware, CORS(cfg.AllowedOrigins))
	router.Handle(http.MethodGet, "/metrics", metrics.Handler())
	router.Handler(api)

	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start listens on the configured address and shuts down gracefully when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down")
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
