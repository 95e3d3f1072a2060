package storage

import "github.com/pkg/errors"

var (
	// ErrNotFound should be returned if the item was not found.
	ErrNotFound = errors.New("Not found")

	// ErrUnknownPayload is returned if an unexpected payload is returned by the store.
	ErrUnknownPayload = errors.New("Unknown payload")

	// ErrDisabled is returned when creating storage from a config without a backend.
	ErrDisabled = errors.New("Storage disabled")
)
