package records

import (
	"context"
	"fmt"
	"path/filepath"
)

// Backend stores opaque values by key. Get returns nil, nil for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend kinds accepted by NewBackend
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// NewBackend creates a record backend by kind. File and sqlite backends
// without a directory fall back to memory.
func NewBackend(kind, dir string) (Backend, error) {
	if kind == "" {
		kind = BackendFile
	}

	switch kind {
	case BackendFile:
		if dir == "" {
			return NewMemoryBackend(), nil
		}
		return NewFileBackend(dir), nil
	case BackendSQLite:
		if dir == "" {
			return NewMemoryBackend(), nil
		}
		return NewSQLiteBackend(filepath.Join(dir, "records.sqlite"))
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown record backend: %s (supported: file, sqlite, memory)", kind)
	}
}
