//go:build integration_rds
// +build integration_rds

package rds

import (
	"context"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedis launches a disposable Redis and returns addr + stop func
func startRedis(t *testing.T) (addr string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)

	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("6379/tcp"),
			wait.ForLog("Ready to accept connections"),
		).WithDeadline(time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start redis container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "6379/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	addr = fmt.Sprintf("%s:%s", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return addr, stop
}

func TestRDS_Integration_DedupKeyLifecycle(t *testing.T) {
	addr, stop := startRedis(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r, err := Open(ctx, Config{Addr: addr})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	if err := r.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	const key = "seen:-104882:5512"

	// first observation claims the key
	ok, err := r.SetNX(ctx, key, "1", time.Minute)
	if err != nil {
		t.Fatalf("SetNX failed: %v", err)
	}
	if !ok {
		t.Fatalf("first SetNX should claim the key")
	}

	// second observation is a duplicate
	ok, err = r.SetNX(ctx, key, "1", time.Minute)
	if err != nil {
		t.Fatalf("second SetNX failed: %v", err)
	}
	if ok {
		t.Fatalf("second SetNX should see the existing key")
	}

	v, err := r.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "1" {
		t.Fatalf("Get mismatch got=%q", v)
	}

	if err := r.Expire(ctx, key, time.Hour); err != nil {
		t.Fatalf("Expire failed: %v", err)
	}

	if err := r.Del(ctx, key); err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	v, err = r.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after Del failed: %v", err)
	}
	if v != "" {
		t.Fatalf("expected empty value after Del, got %q", v)
	}

	// key can be claimed again after deletion
	ok, err = r.SetNX(ctx, key, "1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("SetNX after Del: ok=%v err=%v", ok, err)
	}
}
