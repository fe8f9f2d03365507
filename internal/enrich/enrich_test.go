package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mohammad-safakhou/briefer/config"
)

func testClient(url, key string) *Client {
	return NewClient(config.ImagesConfig{
		Enabled: true,
		APIKey:  key,
		BaseURL: url,
		Model:   "gpt-image-1",
		Size:    "1024x1024",
		Timeout: time.Second,
	})
}

func TestIllustrate(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"url":"https://img.example.com/1.png"}]}`))
	}))
	t.Cleanup(srv.Close)

	url, err := testClient(srv.URL, "key").Illustrate(context.Background(), "a newspaper sketch")
	if err != nil {
		t.Fatalf("Illustrate() error = %v", err)
	}
	if url != "https://img.example.com/1.png" {
		t.Fatalf("url = %q", url)
	}
}

func TestIllustrateNoKey(t *testing.T) {
	t.Parallel()
	_, err := testClient("http://unused", "").Illustrate(context.Background(), "x")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("error = %v, want ErrMissingCredentials", err)
	}
}

func TestIllustrateCredentialSignal(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	t.Cleanup(srv.Close)

	_, err := testClient(srv.URL, "bad").Illustrate(context.Background(), "x")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("error = %v, want ErrMissingCredentials", err)
	}
}

func TestIllustrateOtherFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	t.Cleanup(srv.Close)

	_, err := testClient(srv.URL, "key").Illustrate(context.Background(), "x")
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("rate limit must not read as a credential failure: %v", err)
	}
}
