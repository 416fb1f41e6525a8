// Package chassis runs the HTTP listener: plain TCP, or TLS with either
// certificate files or a generated self-signed certificate for development.
// Every response carries the standard security headers.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// TLS modes.
const (
	TLSOff        = "off"
	TLSSelfSigned = "self_signed"
	TLSFiles      = "files"
)

// Config holds configuration for the chassis server.
type Config struct {
	Addr     string       // listen address (e.g. ":8430")
	TLSMode  string       // TLSOff (default), TLSSelfSigned or TLSFiles
	CertFile string       // used with TLSFiles
	KeyFile  string       // used with TLSFiles
	Handler  http.Handler // API router
	Logger   *slog.Logger
}

// Server wraps an http.Server with the chassis defaults.
type Server struct {
	addr   string
	logger *slog.Logger
	tlsCfg *tls.Config
	srv    *http.Server
	mu     sync.Mutex
	ln     net.Listener
}

func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Handler == nil {
		return nil, errors.New("chassis: nil handler")
	}

	var tlsCfg *tls.Config
	var err error
	switch cfg.TLSMode {
	case "", TLSOff:
	case TLSSelfSigned:
		if tlsCfg, err = DevelopmentTLSConfig(); err != nil {
			return nil, fmt.Errorf("generate dev TLS: %w", err)
		}
		cfg.Logger.Warn("TLS: self-signed dev cert generated")
	case TLSFiles:
		if tlsCfg, err = ProductionTLSConfig(cfg.CertFile, cfg.KeyFile); err != nil {
			return nil, fmt.Errorf("load TLS cert: %w", err)
		}
		cfg.Logger.Info("TLS: certs loaded", "cert", cfg.CertFile)
	default:
		return nil, fmt.Errorf("chassis: unknown tls mode %q", cfg.TLSMode)
	}

	return &Server{
		addr:   cfg.Addr,
		logger: cfg.Logger,
		tlsCfg: tlsCfg,
		srv: &http.Server{
			Handler:           securityHeaders(cfg.Handler),
			TLSConfig:         tlsCfg,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}, nil
}

// securityHeaders adds the standard security headers. The API serves JSON
// only, so the content security policy forbids everything.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000")
		}
		next.ServeHTTP(w, r)
	})
}

// Start listens on the configured address and serves until ctx is done or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln, wrapping it in TLS when configured.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.tlsCfg != nil {
		ln = tls.NewListener(ln, s.tlsCfg)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("chassis started", "addr", ln.Addr().String(), "tls", s.tlsCfg != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr returns the bound address once serving, or the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("chassis stopping")
	return s.srv.Shutdown(ctx)
}
