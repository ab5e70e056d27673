package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Server runs the HTTP API until its context is cancelled.
type Server struct {
	Addr            string
	Handler         http.Handler
	ReusePort       bool
	ShutdownTimeout time.Duration
	Logger          *slog.Logger

	ready chan net.Addr
}

func NewServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Addr:            addr,
		Handler:         handler,
		ShutdownTimeout: 10 * time.Second,
		Logger:          logger,
		ready:           make(chan net.Addr, 1),
	}
}

// Ready yields the bound address once the listener is open.
func (s *Server) Ready() <-chan net.Addr {
	return s.ready
}

func (s *Server) listen(ctx context.Context) (net.Listener, error) {
	lc := net.ListenConfig{}
	if s.ReusePort {
		lc.Control = func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) { sockErr = setReusePort(fd) }); err != nil {
				return err
			}
			return sockErr
		}
	}
	return lc.Listen(ctx, "tcp", s.Addr)
}

// Run serves until ctx is done, then drains in-flight requests. Lookups hold
// no state, so abandoned requests need no cleanup.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.listen(ctx)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		// Requests keep ctx values but outlive its cancellation so Shutdown can drain them.
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	s.Logger.Info("lookup API listening", "addr", ln.Addr().String(), "reuseport", s.ReusePort)
	s.ready <- ln.Addr()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down lookup API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
