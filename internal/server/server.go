package server

import (
	"context"
	"net/http"
	"time"

	"nutrition-tracker/config"
	"nutrition-tracker/pkg/logger"
)

type Server struct {
	server *http.Server
	logger *logger.Logger
}

// NewServer wraps handler in an http.Server. A zero write timeout is
// allowed so streamed coach replies are not cut off.
func NewServer(cfg config.Config, handler http.Handler, logger *logger.Logger) *Server {
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		server: httpServer,
		logger: logger.Named("http"),
	}
}

func (s *Server) Start() error {
	s.logger.Infow("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}
