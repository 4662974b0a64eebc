// Package storage keeps uploaded article images.
package storage

import (
	"context"
	"errors"
)

var (
	ErrInvalidKey = errors.New("invalid storage key")
	ErrNotFound   = errors.New("storage key not found")
)

// System stores and serves binary objects by key.
type System interface {
	// Store writes data at key, replacing any existing object.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns the object at key or ErrNotFound.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object at key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Root is the directory served at /uploads.
	Root() string
}
