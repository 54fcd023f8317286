package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoaderReadsLocalURLs(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatal(err)
	}
	url, err := store.Put(context.Background(), "logos/a.png", "image/png", []byte("logo"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := NewLoader(store, 0).Load(context.Background(), url)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "logo" {
		t.Errorf("got %q", got)
	}
}

func TestLoaderFetchesRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	loader := NewLoader(nil, 20)
	got, err := loader.Load(context.Background(), srv.URL+"/logo.png")
	if err != nil || string(got) != "0123456789" {
		t.Fatalf("Load = %q, %v", got, err)
	}

	if _, err := loader.Load(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Error("expected error for 404")
	}

	small := NewLoader(nil, 5)
	if _, err := small.Load(context.Background(), srv.URL+"/logo.png"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}
