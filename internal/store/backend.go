package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no value is stored under a key.
	ErrNotFound = errors.New("no value stored for key")
)

// Backend is a minimal key/value store standing in for browser local storage.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Close() error
}

// Backend kinds accepted by OpenBackend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// OpenBackend creates the backend named by kind. path is a directory for
// the file backend and a database file for sqlite.
func OpenBackend(kind, path string) (Backend, error) {
	switch kind {
	case BackendMemory:
		return NewMemoryBackend(), nil
	case BackendFile:
		return NewFileBackend(path), nil
	case BackendSQLite:
		return OpenSQLiteBackend(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
