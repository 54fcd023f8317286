// Package storage puts uploaded blobs somewhere they can be served from.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidKey is returned for empty keys or keys that escape the store root
var ErrInvalidKey = errors.New("invalid object key")

// Store writes a blob under key and returns its public URL
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Kind() string
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
