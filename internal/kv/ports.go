// Package kv is the string key/value port the repository persists through.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Ports for outbound adapters.
type (
	Reader interface {
		// Get returns ErrNotFound when key was never written or was deleted.
		Get(ctx context.Context, key string) (string, error)
	}

	Writer interface {
		Put(ctx context.Context, key, value string) error
		Delete(ctx context.Context, key string) error
	}

	Store interface {
		Reader
		Writer
		Close() error
	}
)
