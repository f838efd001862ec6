package grpcserver

import (
	"context"
	"errors"
	"net"
	"time"

	"golang.org/x/exp/slog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"noteminder/internal/auth"
	"noteminder/internal/config"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// NewServer builds a gRPC server with the note service, the health service
// and the authentication interceptor. Register, Login and health checks are
// reachable without a token.
func NewServer(s *Server, log *slog.Logger) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		loggingInterceptor(log),
		auth.NewUnaryAuthInterceptor(s.Secret, RegisterMethod, LoginMethod, healthCheckMethod),
	))
	RegisterNoteServiceServer(srv, s)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return srv, hs
}

// StartGRPC starts the gRPC server on the configured address and returns a shutdown function.
func StartGRPC(cfg *config.Config, s *Server, log *slog.Logger) (func(context.Context) error, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	addr := cfg.GRPC.Address
	if addr == "" {
		addr = "127.0.0.1:50551"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv, hs := NewServer(s, log)
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("grpc serve", "error", err)
		}
	}()
	log.Info("grpc server listening", "address", lis.Addr().String())

	return func(ctx context.Context) error {
		hs.Shutdown()
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}

func loggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	log = log.With("component", "grpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("rpc", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
		return resp, err
	}
}
