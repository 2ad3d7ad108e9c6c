package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wonny/signalscan/pkg/config"
	"github.com/wonny/signalscan/pkg/logger"
)

// Server serves the dashboard and JSON API
// ⭐ SSOT: API 서버 설정은 이 파일에서만
// Listen 으로 포트를 먼저 확보한 뒤 Serve (포트 충돌은 Listen 에서 바로 반환)
type Server struct {
	http     *http.Server
	listener net.Listener
	env      string
	logger   *logger.Logger
}

// New creates a server bound to cfg.Port once Listen is called
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// POST /api/scan 은 동기 실행 (페이지당 수십 종목 순차 조회)
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		env:    cfg.Env,
		logger: log,
	}
}

// Listen binds the TCP port
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	s.listener = ln
	return nil
}

// Addr is the bound address (empty before Listen)
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve blocks until Shutdown; nil after a graceful shutdown
func (s *Server) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"addr": s.Addr(),
		"env":  s.env,
	}).Info("Dashboard server listening")

	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", s.Addr(), err)
	}
	return nil
}

// Shutdown waits for in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down dashboard server")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
