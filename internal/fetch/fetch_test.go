package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func fastFetcher(opts ...Option) *Fetcher {
	base := []Option{WithInitialInterval(time.Millisecond), WithTimeout(5 * time.Second)}
	return New(append(base, opts...)...)
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "sadb-tools") {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	body, err := fastFetcher().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q, want %q", body, "hello")
	}
}

func TestGetNotFoundIsPermanent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := fastFetcher().Get(context.Background(), srv.URL)
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if serr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", serr.StatusCode)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("hits = %d, want 1 (no retry on 404)", got)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := fastFetcher(WithRetries(5)).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != "ok" || hits.Load() != 3 {
		t.Errorf("body = %q after %d hits", body, hits.Load())
	}
}

func TestGetRetriesExhausted(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := fastFetcher(WithRetries(2)).Get(context.Background(), srv.URL)
	var serr *StatusError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 StatusError, got %v", err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("hits = %d, want 3", got)
	}
}

func TestGetNoRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := fastFetcher(WithRetries(0)).Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}
}

func TestGetMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 1024))
	}))
	defer srv.Close()

	_, err := fastFetcher(WithMaxBytes(100)).Get(context.Background(), srv.URL)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	body, err := fastFetcher(WithMaxBytes(1024)).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get at exact limit: %v", err)
	}
	if len(body) != 1024 {
		t.Errorf("len(body) = %d, want 1024", len(body))
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	n, err := fastFetcher().Download(context.Background(), srv.URL, &buf)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if n != int64(len("image-bytes")) || buf.String() != "image-bytes" {
		t.Errorf("Download wrote %d bytes %q", n, buf.String())
	}
}

func TestGetCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fastFetcher().Get(ctx, srv.URL); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestRateLimitOption(t *testing.T) {
	f := New(WithRateLimit(0, 1))
	if f.limiter != nil {
		t.Error("expected no limiter for zero rate")
	}
	f = New(WithRateLimit(2, 0))
	if f.limiter == nil || f.limiter.Burst() != 1 {
		t.Error("expected limiter with burst 1")
	}
}

func TestNewDefaults(t *testing.T) {
	f := New()
	if f.client.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", f.client.Timeout, DefaultTimeout)
	}
	if f.retries != DefaultRetries {
		t.Errorf("retries = %d, want %d", f.retries, DefaultRetries)
	}
	if f.maxBytes != DefaultMaxBytes {
		t.Errorf("maxBytes = %d, want %d", f.maxBytes, DefaultMaxBytes)
	}
	if f.limiter != nil {
		t.Error("expected no rate limit by default")
	}
}
