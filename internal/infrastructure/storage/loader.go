package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrTooLarge is returned when a blob exceeds the loader's size limit
var ErrTooLarge = errors.New("blob exceeds size limit")

// Loader reads back a blob by the URL a Store returned for it
type Loader struct {
	local   *LocalStore
	client  *http.Client
	maxSize int64
}

// NewLoader creates a loader. URLs issued by local are read from disk;
// anything else is fetched over HTTP. local may be nil.
func NewLoader(local *LocalStore, maxSize int64) *Loader {
	return &Loader{
		local:   local,
		client:  &http.Client{Timeout: 10 * time.Second},
		maxSize: maxSize,
	}
}

// Load returns the blob behind url
func (l *Loader) Load(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, ErrInvalidKey
	}
	if key, ok := l.localKey(url); ok {
		return l.readLocal(key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return l.readLimited(resp.Body)
}

func (l *Loader) localKey(url string) (string, bool) {
	if l.local == nil {
		return "", false
	}
	prefix := l.local.baseURL + LocalPathPrefix + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, validKey(key)
}

func (l *Loader) readLocal(key string) ([]byte, error) {
	f, err := os.Open(filepath.Join(l.local.root, filepath.FromSlash(key)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.readLimited(f)
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	if l.maxSize <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, l.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
