// Package health provides HTTP and gRPC health endpoints for orchestrators.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckFunc adapts a function to the Checker interface.
type CheckFunc func(ctx context.Context) error

// Ping calls f(ctx).
func (f CheckFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Server serves /health, /ready and /live over HTTP and the standard gRPC
// health service. Readiness is mirrored to the gRPC serving status.
type Server struct {
	serviceName string
	version     string
	port        int
	grpcPort    int
	logger      *logrus.Logger
	checks      map[string]Checker
	extra       map[string]http.Handler

	httpServer *http.Server
	grpcServer *grpc.Server
	grpcHealth *grpchealth.Server

	mu    sync.RWMutex
	ready bool
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Port        int
	// GRPCPort enables the gRPC health service when positive
	GRPCPort int
	Logger   *logrus.Logger
	Checks   map[string]Checker
}

// NewServer creates a new health check server.
func NewServer(cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = 8081
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	s := &Server{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		port:        cfg.Port,
		grpcPort:    cfg.GRPCPort,
		logger:      cfg.Logger,
		checks:      cfg.Checks,
		extra:       make(map[string]http.Handler),
		grpcHealth:  grpchealth.NewServer(),
	}
	s.grpcHealth.SetServingStatus(s.serviceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Mount adds another handler to the HTTP mux, e.g. /metrics or /ws. Call before Start.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.extra[pattern] = h
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()

	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.grpcHealth.SetServingStatus("", status)
	s.grpcHealth.SetServingStatus(s.serviceName, status)
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the HTTP mux serving the health endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)
	for pattern, h := range s.extra {
		mux.Handle(pattern, h)
	}
	return mux
}

// GRPCHealth exposes the gRPC health implementation for registration on another server.
func (s *Server) GRPCHealth() healthpb.HealthServer {
	return s.grpcHealth
}

// Start starts the HTTP and, when configured, gRPC servers in the background.
// Both shut down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"port":    s.port,
			"service": s.serviceName,
		}).Info("Health check server starting")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("Health check server error")
		}
	}()

	if s.grpcPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.grpcPort))
		if err != nil {
			return fmt.Errorf("failed to listen on grpc port %d: %w", s.grpcPort, err)
		}
		s.grpcServer = grpc.NewServer()
		healthpb.RegisterHealthServer(s.grpcServer, s.grpcHealth)

		go func() {
			s.logger.WithField("port", s.grpcPort).Info("gRPC health service starting")
			if err := s.grpcServer.Serve(lis); err != nil {
				s.logger.WithError(err).Error("gRPC health service error")
			}
		}()
	}

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down both servers.
func (s *Server) Shutdown() error {
	s.grpcHealth.Shutdown()
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Health check server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleHealth handles the /health endpoint - basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
	})
}

// handleLive handles the /live endpoint - kubernetes liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: s.serviceName})
}

// handleReady handles the /ready endpoint - runs every dependency check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	if !s.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		err := s.checks[name].Ping(ctx)
		cancel()
		if err != nil {
			allHealthy = false
			checks[name] = fmt.Sprintf("error: %v", err)
		} else {
			checks[name] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  s.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	if allHealthy {
		response.Status = "ok"
		writeJSON(w, http.StatusOK, response)
		return
	}
	response.Status = "not_ready"
	writeJSON(w, http.StatusServiceUnavailable, response)
}
