package storage

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrKeyIsRequired                       = errors.New("the storage key is required")
	ErrKeyCannotStartWithDot               = errors.New("the storage key cannot start with a dot (\".\") character")
	ErrKeyCannotContainSlashCharacters     = errors.New("the storage key cannot contain slash (\"/\", \"\\\") characters")
	ErrStorageUnavailable                  = errors.New("the storage is unavailable")
	ErrWatchingIsNotSupportedByThisBackend = errors.New("watching is not supported by this storage backend")
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/storage_mock.go -package mocks github.com/abstract-foundation/agw-session-keys/storage Storage

// Storage is a string key to string value store that survives restarts.
type Storage interface {
	// Get returns the value stored under the key, and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores the value under the key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes the key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	Close() error
}

// Watcher is implemented by the backends able to report changes made to
// the storage, including the ones made by other processes.
type Watcher interface {
	// Watch calls the callback with the key of every entry that changes
	// until the context is cancelled.
	Watch(ctx context.Context, callbackFn func(key string)) error
}

// ValidateKey verifies the key can be used by every backend. Keys map to
// file names in the file backend, so hidden names and path separators are
// rejected.
func ValidateKey(key string) error {
	if key == "" {
		return ErrKeyIsRequired
	}

	if strings.HasPrefix(key, ".") {
		return ErrKeyCannotStartWithDot
	}

	if strings.ContainsAny(key, "/\\") {
		return ErrKeyCannotContainSlashCharacters
	}

	return nil
}

func checkContextStatus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}
