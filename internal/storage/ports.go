// Package storage defines the durable key-value port used by the transaction
// store, and hosts its implementations in sub-packages.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("storage closed")

// KV persists opaque values under string keys.
type KV interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}

// Closer is implemented by backends holding connections or handles.
type Closer interface {
	Close() error
}
