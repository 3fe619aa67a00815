package server

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"user-admin-console/internal/adapter/gin/router"
)

// dialHealth serves reporter over an in-memory listener and returns a client.
func dialHealth(t *testing.T, reporter *HealthReporter) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := SetupGRPCHealth(reporter)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func status(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthReporter_FollowsProbes(t *testing.T) {
	var dbDown atomic.Bool
	probes := map[string]router.Probe{
		"database": func(context.Context) error {
			if dbDown.Load() {
				return errors.New("connection refused")
			}
			return nil
		},
	}

	reporter := NewHealthReporter("user-admin-console", probes, time.Hour, zaptest.NewLogger(t))
	client := dialHealth(t, reporter)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client, ""))

	assert.True(t, reporter.Check(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client, "user-admin-console"))

	dbDown.Store(true)
	assert.False(t, reporter.Check(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client, "user-admin-console"))
}

func TestHealthReporter_Shutdown(t *testing.T) {
	reporter := NewHealthReporter("user-admin-console", nil, time.Hour, zaptest.NewLogger(t))
	client := dialHealth(t, reporter)

	require.True(t, reporter.Check(context.Background()))
	reporter.Shutdown()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client, ""))

	// Updates after shutdown are ignored.
	reporter.Check(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client, ""))
}

func TestHealthReporter_RunStopsWithContext(t *testing.T) {
	var calls atomic.Int32
	probes := map[string]router.Probe{
		"database": func(context.Context) error {
			calls.Add(1)
			return nil
		},
	}
	reporter := NewHealthReporter("svc", probes, 10*time.Millisecond, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reporter.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
