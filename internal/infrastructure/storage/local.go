package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalPathPrefix is the URL path local blobs are served under
const LocalPathPrefix = "/uploads"

// LocalStore writes blobs under a directory that the HTTP server exposes at /uploads
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates a disk-backed store rooted at root
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	return s.baseURL + LocalPathPrefix + "/" + key, nil
}

func (s *LocalStore) Kind() string {
	return "local"
}

// Root returns the directory blobs are written to
func (s *LocalStore) Root() string {
	return s.root
}
