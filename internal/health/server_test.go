package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/hamlet/internal/game"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func startServer(t *testing.T, probe Prober) healthpb.HealthClient {
	t.Helper()

	s := NewServer(probe, WithHost("127.0.0.1"), WithInterval(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("health server: %v", err)
		}
	})

	addrCtx, addrCancel := context.WithTimeout(ctx, 5*time.Second)
	defer addrCancel()
	addr, err := s.Addr(addrCtx)
	if err != nil {
		t.Fatalf("waiting for server: %v", err)
	}

	conn, err := grpc.NewClient(addr.String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func waitForStatus(t *testing.T, client healthpb.HealthClient, exp healthpb.HealthCheckResponse_ServingStatus) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := client.Check(t.Context(), &healthpb.HealthCheckRequest{Service: WorldService})
		if err == nil && resp.GetStatus() == exp {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("status never became %s (last %v, err %v)", exp, resp.GetStatus(), err)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServer_TracksProbe(t *testing.T) {
	var failing atomic.Bool
	client := startServer(t, func(context.Context) error {
		if failing.Load() {
			return errors.New("loop stalled")
		}
		return nil
	})

	waitForStatus(t, client, healthpb.HealthCheckResponse_SERVING)

	failing.Store(true)
	waitForStatus(t, client, healthpb.HealthCheckResponse_NOT_SERVING)

	failing.Store(false)
	waitForStatus(t, client, healthpb.HealthCheckResponse_SERVING)
}

func TestServer_UnknownService(t *testing.T) {
	client := startServer(t, func(context.Context) error { return nil })

	_, err := client.Check(t.Context(), &healthpb.HealthCheckRequest{Service: "hamlet.Nothing"})
	testutil.AssertEqual(t, "code", status.Code(err), codes.NotFound)
}

func TestLoopProbe(t *testing.T) {
	loop := game.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Start(ctx)
	}()

	probe := LoopProbe(loop)
	if err := probe(t.Context()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancel()
	<-done
	err := probe(t.Context())
	if !errors.Is(err, game.ErrLoopStopped) {
		t.Fatalf("expected ErrLoopStopped, got %v", err)
	}
}
