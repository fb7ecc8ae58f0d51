package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/pixil98/hamlet/internal/game"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	WorldService = "hamlet.World"

	DefaultInterval = 5 * time.Second
	DefaultTimeout  = time.Second
)

// Prober reports whether a dependency is answering.
type Prober func(ctx context.Context) error

// LoopProbe succeeds when the loop runs an empty closure.
func LoopProbe(loop *game.Loop) Prober {
	return func(ctx context.Context) error {
		return loop.Do(ctx, func(context.Context) {})
	}
}

// Server exposes grpc.health.v1.Health and keeps the world service status
// in step with a periodic probe.
type Server struct {
	host     string
	port     uint16
	probe    Prober
	interval time.Duration
	timeout  time.Duration

	status *health.Server
	addr   net.Addr
	ready  chan struct{}
}

func NewServer(probe Prober, opts ...ServerOpt) *Server {
	s := &Server{
		probe:    probe,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		status:   health.NewServer(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.status.SetServingStatus(WorldService, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Addr blocks until the server is bound.
func (s *Server) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case <-s.ready:
		return s.addr, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(int(s.port))))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", s.port, err)
	}
	s.addr = lis.Addr()
	close(s.ready)

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, s.status)
	reflection.Register(gs)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- gs.Serve(lis)
	}()
	slog.InfoContext(ctx, "serving grpc health", "addr", s.addr.String())

	s.check(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.status.Shutdown()
			gs.GracefulStop()
			<-serveErr
			return nil
		case err := <-serveErr:
			if errors.Is(err, grpc.ErrServerStopped) {
				return nil
			}
			return fmt.Errorf("serving grpc: %w", err)
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *Server) check(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.probe(probeCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.WarnContext(ctx, "health probe failed", "service", WorldService, "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.status.SetServingStatus(WorldService, status)
}
