package storage

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Storage is the interface combining all storage interfaces.
type Storage interface {
	ReadWriter
	Remover
	List
}

// ReadWriter interface combines the Reader and Writer interface.
type ReadWriter interface {
	Reader
	Writer
}

// Reader interface is for retrieving items from the store.
type Reader interface {
	Read(context.Context, string) ([]byte, error)
}

// Writer interface is for adding or updating an item to the store.
type Writer interface {
	Write(context.Context, string, []byte, *Options) error
}

// Remover interface is for removing an item from storage.
type Remover interface {
	Remove(context.Context, string) error
}

// List interface is for returning a list of items in the store from the given key.
type List interface {
	List(context.Context, string) ([]string, error)
}

// CreateStorage builds an appropriate Storage from the config.
//
// A disabled config returns ErrDisabled.
func CreateStorage(config Config) (Storage, error) {
	if config.Disabled() {
		return nil, errors.Wrap(ErrDisabled, config.Bucket)
	}

	bucket := strings.ToLower(config.Bucket)
	switch {
	case bucket == "standalone":
		return NewFilesystemStorage(config), nil
	case bucket == "mock":
		return NewMockStorage(), nil
	case strings.HasPrefix(bucket, "redis://") || strings.HasPrefix(bucket, "rediss://"):
		return NewRedisStorageFromURL(config.Bucket), nil
	default:
		return NewS3Storage(config), nil
	}
}
