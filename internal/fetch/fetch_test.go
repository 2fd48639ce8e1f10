package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDownloadSuccess(t *testing.T) {
	payload := []byte("png-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	c := New(&http.Client{Timeout: 5 * time.Second}, "test")
	data, err := c.Download(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("got %q, want %q", data, payload)
	}
}

func TestDownloadNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(&http.Client{Timeout: 5 * time.Second}, "test")
	_, err := c.Download(context.Background(), srv.URL)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", se.StatusCode)
	}
}

func TestDownloadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(&http.Client{}, "test")
	if _, err := c.Download(ctx, "http://127.0.0.1:0/never"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
