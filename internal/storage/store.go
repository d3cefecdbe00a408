package storage

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrInvalidKey = errors.New("invalid record key")
)

// Store is a flat key/value record store. Values are opaque bytes; callers
// own the encoding. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Keys enumerates stored keys in backend order. The order is not stable.
	Keys(ctx context.Context) ([]string, error)
}

// Pinger is implemented by stores that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ValidKey reports whether key can name a record in every backend. Keys
// double as file names, so separators and dot segments are refused.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." || len(key) > 255 {
		return false
	}
	return !strings.ContainsAny(key, "/\\\x00")
}
