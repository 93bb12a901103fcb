package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"slipway/internal/adapter/fake"
	"slipway/internal/health"
	"slipway/internal/launch"
)

func fastSpec(endpoint string) launch.VerifySpec {
	return launch.VerifySpec{
		Grace:    0,
		Interval: 10 * time.Millisecond,
		Timeout:  500 * time.Millisecond,
		Endpoint: endpoint,
	}
}

func TestWaitHealthyImmediate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := health.NewVerifier(nil)
	if err := v.WaitHealthy(context.Background(), "app", fastSpec(srv.URL)); err != nil {
		t.Fatalf("WaitHealthy() error = %v", err)
	}
}

func TestWaitHealthyAfterWarmup(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := health.NewVerifier(nil)
	if err := v.WaitHealthy(context.Background(), "app", fastSpec(srv.URL)); err != nil {
		t.Fatalf("WaitHealthy() error = %v", err)
	}
	if got := calls.Load(); got < 3 {
		t.Fatalf("probe calls = %d, want at least 3", got)
	}
}

func TestWaitHealthyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rt := fake.NewContainerRuntime()
	if err := rt.InstanceCreate(context.Background(), launch.CreateSpec{Name: "app"}); err != nil {
		t.Fatalf("InstanceCreate() error = %v", err)
	}
	if err := rt.InstanceStart(context.Background(), "app"); err != nil {
		t.Fatalf("InstanceStart() error = %v", err)
	}
	rt.SetHealth("app", launch.HealthStarting)

	v := health.NewVerifier(rt)
	spec := fastSpec(srv.URL)
	spec.Timeout = 100 * time.Millisecond

	err := v.WaitHealthy(context.Background(), "app", spec)
	var ht *launch.HealthTimeoutError
	if !errors.As(err, &ht) {
		t.Fatalf("error = %T (%v), want *HealthTimeoutError", err, err)
	}
	if ht.LastState != "starting" {
		t.Fatalf("LastState = %q, want starting", ht.LastState)
	}
}

func TestWaitHealthyAbsentInstanceFailsFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rt := fake.NewContainerRuntime()
	v := health.NewVerifier(rt)
	spec := fastSpec(srv.URL)
	spec.Timeout = 10 * time.Second

	begun := time.Now()
	err := v.WaitHealthy(context.Background(), "gone", spec)
	var ht *launch.HealthTimeoutError
	if !errors.As(err, &ht) {
		t.Fatalf("error = %T (%v), want *HealthTimeoutError", err, err)
	}
	if elapsed := time.Since(begun); elapsed > 5*time.Second {
		t.Fatalf("waited %s for an absent instance, want fast failure", elapsed)
	}
}

func TestWaitHealthyEndpointUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	v := health.NewVerifier(nil)
	spec := fastSpec(endpoint)
	spec.Timeout = 100 * time.Millisecond

	err := v.WaitHealthy(context.Background(), "app", spec)
	var ht *launch.HealthTimeoutError
	if !errors.As(err, &ht) {
		t.Fatalf("error = %T (%v), want *HealthTimeoutError", err, err)
	}
}

func TestWaitHealthyContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	v := health.NewVerifier(nil)
	spec := fastSpec(srv.URL)
	spec.Timeout = 10 * time.Second

	if err := v.WaitHealthy(ctx, "app", spec); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestWaitHealthyGraceBoundedByTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := health.NewVerifier(nil)
	spec := launch.VerifySpec{
		Grace:    time.Second,
		Interval: 10 * time.Millisecond,
		Timeout:  50 * time.Millisecond,
		Endpoint: srv.URL,
	}

	err := v.WaitHealthy(context.Background(), "app", spec)
	var ht *launch.HealthTimeoutError
	if !errors.As(err, &ht) {
		t.Fatalf("error = %T (%v), want *HealthTimeoutError", err, err)
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("probe calls = %d, want 0 while still in grace", got)
	}
}
