package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/baryc/quote-service/config"
)

// ShutdownHook releases a resource once the server stopped accepting requests.
type ShutdownHook func(ctx context.Context)

// Server is the HTTP listener of the quote service.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	hooks           []ShutdownHook
}

// NewServer creates a Server listening on cfg.Port. Zero timeouts take the
// defaults.
func NewServer(handler http.Handler, cfg config.ServerConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadTimeout:       orDefault(cfg.ReadTimeout, 10*time.Second),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      orDefault(cfg.WriteTimeout, 15*time.Second),
			IdleTimeout:       orDefault(cfg.IdleTimeout, time.Minute),
			MaxHeaderBytes:    1 << 20,
		},
		shutdownTimeout: orDefault(cfg.ShutdownTimeout, 10*time.Second),
	}
}

// OnShutdown registers hooks run in order after the listener closed.
func (s *Server) OnShutdown(hooks ...ShutdownHook) {
	s.hooks = append(s.hooks, hooks...)
}

// Run serves until SIGINT or SIGTERM.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve listens until ctx is done, then shuts down gracefully. A listen
// error is returned after the hooks ran.
func (s *Server) Serve(ctx context.Context) error {
	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("Server starting")
		listenErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		hookCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.runHooks(hookCtx)
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests, then runs the hooks. The hooks share
// the shutdown deadline and run at most once.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Forced shutdown, requests were still running")
	}
	s.runHooks(ctx)
	if err == nil {
		log.Info().Msg("Server stopped")
	}
	return err
}

func (s *Server) runHooks(ctx context.Context) {
	hooks := s.hooks
	s.hooks = nil
	for _, hook := range hooks {
		hook(ctx)
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
