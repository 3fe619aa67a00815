package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"user-admin-console/internal/adapter/gin/router"
	"user-admin-console/internal/config"
)

const healthInterval = 10 * time.Second

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
	GRPC   *grpc.Server
	Health *HealthReporter
}

// New creates the HTTP console server and, when a port is configured, the
// gRPC health server.
func New(cfg *config.Config, l *zap.Logger, opts router.Options) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
		HTTP:   SetupHTTPServer(opts, ":"+cfg.App.HTTPPort, l),
	}

	if cfg.App.GRPCHealthPort != "" {
		s.Health = NewHealthReporter(opts.ServiceName, opts.Probes, healthInterval, l)
		s.GRPC = SetupGRPCHealth(s.Health)
	}

	return s
}

// SetupHTTPServer wraps the console router in an http.Server with timeouts.
func SetupHTTPServer(opts router.Options, addr string, l *zap.Logger) *http.Server {
	l.Info("HTTP console configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router.SetupRouter(opts),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Start serves gRPC health in the background and blocks on the HTTP server.
// It returns nil once the HTTP server is shut down.
func (s *Server) Start(ctx context.Context) error {
	if s.GRPC != nil {
		lis, err := s.listenGRPC(ctx)
		if err != nil {
			return fmt.Errorf("failed to start gRPC health server: %w", err)
		}

		go s.Health.Run(ctx)
		go func() {
			if err := s.GRPC.Serve(lis); err != nil {
				s.Logger.Error("gRPC health server stopped", zap.Error(err))
			}
		}()
	}

	s.Logger.Info("HTTP console running", zap.String("address", s.HTTP.Addr))
	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

func (s *Server) listenGRPC(ctx context.Context) (net.Listener, error) {
	addr := ":" + s.Config.App.GRPCHealthPort

	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	s.Logger.Info("gRPC health server running", zap.String("address", addr))
	return lis, nil
}

// Shutdown stops the HTTP server within ctx, then drains the gRPC server.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.HTTP != nil {
		s.Logger.Info("shutting down HTTP server...")
		if err := s.HTTP.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC health server...")
		s.Health.Shutdown()
		s.GRPC.GracefulStop()
	}

	return errors.Join(errs...)
}
