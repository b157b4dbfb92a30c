package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/majorcontext/sluice/internal/config"
	"github.com/majorcontext/sluice/internal/log"
	"golang.org/x/time/rate"
)

// Server serves the generate API on a TCP address.
type Server struct {
	addr     string
	server   *http.Server
	listener net.Listener
	done     chan error
}

// New creates a server for cfg. RateLimit <= 0 disables rate limiting.
func New(cfg config.ServeConfig, r Responder, source string) *Server {
	return &Server{
		addr: cfg.Addr,
		server: &http.Server{
			Handler:           NewRouter(cfg, NewHandler(r, source)),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter builds the chi router with middleware around h.
func NewRouter(cfg config.ServeConfig, h *Handler) chi.Router {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r, rateLimit(limiter))
	return r
}

// Start begins listening. It returns once the listener is bound.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.done = make(chan error, 1)
	go func() {
		err := s.server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	log.Info("serving", "addr", listener.Addr().String())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Done returns a channel that receives the serve loop's error when it exits.
func (s *Server) Done() <-chan error {
	return s.done
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
