package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// SaveJSON writes the json encoding of the object to the key.
func SaveJSON(ctx context.Context, store Writer, key string, object interface{},
	options *Options) error {

	b, err := json.Marshal(object)
	if err != nil {
		return errors.Wrap(err, "marshal")
	}

	if err := store.Write(ctx, key, b, options); err != nil {
		return errors.Wrap(err, "write")
	}

	return nil
}

// LoadJSON reads the key and decodes it into the object. ErrNotFound is returned as the cause
// when the key doesn't exist.
func LoadJSON(ctx context.Context, store Reader, key string, object interface{}) error {
	b, err := store.Read(ctx, key)
	if err != nil {
		return errors.Wrap(err, "read")
	}

	if err := json.Unmarshal(b, object); err != nil {
		return errors.Wrap(err, "unmarshal")
	}

	return nil
}
