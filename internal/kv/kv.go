// Package kv provides the persistent key-value area that holds the
// serialized shortcut collection. Values are opaque bytes; every backend
// overwrites the whole value on Set.
package kv

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Storage is a small persistent key-value area.
type Storage interface {
	// Get returns the value stored under key. found is false when the
	// key has never been written.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Name identifies the backend in logs and status output.
	Name() string

	Close() error
}

// ErrInvalidKey is returned for keys outside [A-Za-z0-9_.-]+.
var ErrInvalidKey = errors.New("kv: invalid key")

var keyRegexp = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func checkKey(key string) error {
	if !keyRegexp.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
