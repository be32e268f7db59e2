package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/GoSim-25-26J-441/platform-dse/internal/search"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
	"github.com/GoSim-25-26J-441/platform-dse/pkg/logger"
)

// SearchService is the health service name that reports SERVING while a
// search is running
const SearchService = "dse.Search"

// Server exposes search progress over HTTP and the gRPC health protocol.
// It is a search.Observer.
type Server struct {
	cfg    config.Server
	store  *StatusStore
	health *health.Server
	http   *HTTPServer
	log    *slog.Logger

	mu       sync.Mutex
	grpcSrv  *grpc.Server
	httpSrv  *http.Server
	grpcAddr net.Addr
	httpAddr net.Addr
}

func New(cfg config.Server, registry *prometheus.Registry) *Server {
	store := NewStatusStore()
	hs := health.NewServer()
	hs.SetServingStatus(SearchService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{
		cfg:    cfg,
		store:  store,
		health: hs,
		http:   NewHTTPServer(store, registry),
		log:    logger.Component("server"),
	}
}

// Store returns the status store behind the HTTP endpoints
func (s *Server) Store() *StatusStore { return s.store }

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler { return s.http.Handler() }

// Health returns the gRPC health service
func (s *Server) Health() *health.Server { return s.health }

// Update records a search status and flips the search health status
func (s *Server) Update(st search.Status) {
	s.store.Put(st)
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if s.store.Active() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(SearchService, status)
}

// Start listens on the configured addresses and serves in the background.
// An empty address disables that listener. Serve errors call onError.
func (s *Server) Start(onError func(error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if onError == nil {
		onError = func(error) {}
	}

	if s.cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", s.cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("failed to listen for gRPC on %s: %w", s.cfg.GRPCAddr, err)
		}
		s.grpcSrv = grpc.NewServer()
		healthpb.RegisterHealthServer(s.grpcSrv, s.health)
		s.grpcAddr = lis.Addr()

		go func(srv *grpc.Server) {
			s.log.Info("gRPC server listening", "addr", lis.Addr().String())
			if err := srv.Serve(lis); err != nil {
				s.log.Error("gRPC server error", "error", err)
				onError(err)
			}
		}(s.grpcSrv)
	}

	if s.cfg.HTTPAddr != "" {
		lis, err := net.Listen("tcp", s.cfg.HTTPAddr)
		if err != nil {
			if s.grpcSrv != nil {
				s.grpcSrv.Stop()
				s.grpcSrv = nil
			}
			return fmt.Errorf("failed to listen for HTTP on %s: %w", s.cfg.HTTPAddr, err)
		}
		s.httpSrv = &http.Server{
			Handler:           s.http.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		}
		s.httpAddr = lis.Addr()

		go func(srv *http.Server) {
			s.log.Info("HTTP server listening", "addr", lis.Addr().String())
			if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("HTTP server error", "error", err)
				onError(err)
			}
		}(s.httpSrv)
	}
	return nil
}

// HTTPAddr returns the bound HTTP address, nil when HTTP is not serving
func (s *Server) HTTPAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpAddr
}

// GRPCAddr returns the bound gRPC address, nil when gRPC is not serving
func (s *Server) GRPCAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grpcAddr
}

// Shutdown stops both listeners
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.health.Shutdown()
	if s.grpcSrv != nil {
		s.grpcSrv.GracefulStop()
		s.grpcSrv = nil
	}
	if s.httpSrv != nil {
		err := s.httpSrv.Shutdown(ctx)
		s.httpSrv = nil
		if err != nil {
			return fmt.Errorf("HTTP shutdown: %w", err)
		}
	}
	return nil
}
