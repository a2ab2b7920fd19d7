// Package storage is the durable key/value store behind the session. It
// plays the part a browser's local storage plays for a web front end: it
// survives restarts and is read once at startup.
package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
)

// Storage holds string values by key. Put and Delete apply all of their keys
// together or none of them.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, entries map[string]string) error
	// Delete removes keys. Keys that are not present are ignored.
	Delete(ctx context.Context, keys ...string) error
}
