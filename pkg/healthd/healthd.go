/*
Package healthd runs the liveness surface of a peer daemon: a gRPC server
exposing the standard grpc_health_v1 health-checking protocol so process
supervisors and orchestrators can probe a running peer the same way they
would probe any other long-lived gRPC service. It intentionally carries
no patch-exchange RPCs of its own — the reconciliation driver in
pkg/reconcile is defined purely over the abstract Fetcher interface, and
no concrete wire transport for it ships in this module (see DESIGN.md).
*/
package healthd

import (
	"context"
	"fmt"
	"net"

	"github.com/latticewire/peerdag/pkg/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// serviceName is the health-checked service identity peers and operators
// probe for; an empty service name ("") is also kept SERVING, matching
// the overall-server convention most grpc_health_v1 clients default to.
const serviceName = "peerdag.Peer"

// Server wraps a gRPC listener exposing grpc_health_v1.Health.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
}

// Listen binds addr and constructs a Server ready to Serve. The health
// status starts NOT_SERVING for both the overall server and serviceName;
// call SetServing once peer startup (keystore load, store open) succeeds.
func Listen(addr string) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("healthd: listen %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return &Server{grpcServer: grpcServer, health: healthServer, listener: lis}, nil
}

// SetServing flips the health status to SERVING. Called once a peer has
// finished loading its identity and opening its store.
func (s *Server) SetServing() {
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
}

// Serve blocks, accepting connections until the server is stopped or the
// listener fails. Callers typically run it in its own goroutine.
func (s *Server) Serve() error {
	log.Info(fmt.Sprintf("healthd: serving on %s", s.listener.Addr()))
	return s.grpcServer.Serve(s.listener)
}

// Stop gracefully shuts down the server, marking both the overall server
// and serviceName NOT_SERVING first so in-flight health checks observe the
// transition rather than a connection reset.
func (s *Server) Stop(_ context.Context) {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// Addr returns the address the server is bound to.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}
