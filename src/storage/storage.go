package storage

import (
	"context"
	"io"

	"shirodl/src/config"
)

// Store keeps copies of completed downloads under content-derived keys.
type Store interface {
	// Exists reports whether key is already stored.
	Exists(ctx context.Context, key string) (bool, error)

	// Put uploads the content read from r under key.
	Put(ctx context.Context, key string, r io.Reader) error
}

// NewStore creates a Store for the given alias.
func NewStore(ctx context.Context, alias config.Alias) (Store, error) {
	return NewS3Store(ctx, alias)
}
