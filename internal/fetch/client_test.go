package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(maxRetries int) (*Client, *[]time.Duration) {
	c := NewClient(Config{
		UserAgent:  "redline-test",
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
		Backoff:    time.Millisecond,
	})
	var waits []time.Duration
	c.pause = func(_ context.Context, d time.Duration) {
		waits = append(waits, d)
	}
	return c, &waits
}

func TestClientFetchSuccess(t *testing.T) {
	t.Parallel()

	var gotAgent, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c, _ := testClient(3)
	resp, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "<html><body>ok</body></html>" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
	if gotAgent != "redline-test" {
		t.Fatalf("expected user agent to be sent, got %q", gotAgent)
	}
	if gotAccept == "" {
		t.Fatalf("expected browser-like Accept header to be sent")
	}
}

func TestClientFetchRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	c, waits := testClient(3)
	resp, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(resp.Body) != "recovered" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
	// Linear backoff: attempt*base.
	if len(*waits) != 2 || (*waits)[0] != time.Millisecond || (*waits)[1] != 2*time.Millisecond {
		t.Fatalf("unexpected backoff waits %v", *waits)
	}
}

func TestClientFetchExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := testClient(3)
	_, err := c.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetch.Error, got %T", err)
	}
	if fetchErr.Attempts != 3 {
		t.Fatalf("expected 3 attempts recorded, got %d", fetchErr.Attempts)
	}
	if fetchErr.URL != srv.URL {
		t.Fatalf("expected error to carry URL %q, got %q", srv.URL, fetchErr.URL)
	}
	if fetchErr.Unwrap() == nil {
		t.Fatalf("expected wrapped underlying error")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClientFetchHonorsContextCancel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	c, _ := testClient(3)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Fetch(ctx, srv.URL)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}
