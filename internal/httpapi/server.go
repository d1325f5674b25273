// Package httpapi exposes the catalog over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-catalog-cache/item"
)

// Catalog is the read/write surface the handlers need.
// *repositorycache.CachedStore implements it.
type Catalog interface {
	List(ctx context.Context, q item.Query) (item.Page, error)
	GetByID(ctx context.Context, id int64) (item.Item, error)
	Create(ctx context.Context, candidate item.Candidate) (item.Item, error)
	Stats(ctx context.Context) (item.Stats, error)
}

// Server serves the catalog API.
type Server struct {
	Logger     zerolog.Logger
	Addr       string
	httpServer *http.Server
	mux        *http.ServeMux
	actualAddr string
	mu         sync.RWMutex
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	basePath          string
	readHeaderTimeout time.Duration
}

// WithBasePath mounts the API routes below prefix, e.g. "/api".
func WithBasePath(prefix string) Option {
	return func(o *serverOptions) {
		o.basePath = strings.TrimRight(prefix, "/")
	}
}

// WithReadHeaderTimeout bounds how long a client may take to send request headers.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(o *serverOptions) {
		o.readHeaderTimeout = d
	}
}

// NewServer wires the routes for catalog on addr.
func NewServer(catalog Catalog, addr string, logger zerolog.Logger, opts ...Option) *Server {
	options := serverOptions{readHeaderTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&options)
	}

	logger = logger.With().Str("component", "httpapi").Logger()
	h := &handlers{catalog: catalog, logger: logger}

	api := http.NewServeMux()
	api.HandleFunc("GET /items", h.listItems)
	api.HandleFunc("GET /items/{id}", h.getItem)
	api.HandleFunc("POST /items", h.createItem)
	api.HandleFunc("GET /stats", h.stats)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", HealthzHandler)
	if options.basePath == "" {
		mux.Handle("/", api)
	} else {
		mux.Handle(options.basePath+"/", http.StripPrefix(options.basePath, api))
	}

	return &Server{
		Logger: logger,
		Addr:   addr,
		mux:    mux,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           chain(mux, requestID, accessLog(logger), recoverPanics(logger)),
			ReadHeaderTimeout: options.readHeaderTimeout,
		},
	}
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on Addr and serves in a background goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}

	s.mu.Lock()
	s.actualAddr = listener.Addr().String()
	s.mu.Unlock()

	s.Logger.Info().Str("address", s.actualAddr).Msg("HTTP server starting to listen")

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()
	return nil
}

// Shutdown gracefully stops the server within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info().Msg("shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.Logger.Error().Err(err).Msg("error during HTTP server shutdown")
		return err
	}
	s.Logger.Info().Msg("HTTP server stopped")
	return nil
}

// ListenAddr returns the address the server is bound to, or Addr before Start.
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.actualAddr == "" {
		return s.Addr
	}
	return s.actualAddr
}

// HealthzHandler responds to health check probes.
func HealthzHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
