package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// FilesystemStorage implements the Storage interface for interacting with
// the local filesystem.
type FilesystemStorage struct {
	Config Config
}

// NewFilesystemStorage implements the Storage interface for simple S3 like
// file system interactions.
func NewFilesystemStorage(config Config) *FilesystemStorage {
	return &FilesystemStorage{
		Config: config,
	}
}

// Write writes the data to the file for the key. The data is written to a temporary file first
// and then renamed so readers never see a partial item. TTL is not supported.
func (f *FilesystemStorage) Write(ctx context.Context, key string, body []byte,
	options *Options) error {

	// make sure that the Options argument is valid
	if options == nil {
		opts := NewOptions()
		options = &opts
	}

	filename := f.buildPath(key)

	// make sure directory exists.
	dir := filepath.Dir(filename)
	if err := f.ensureExists(dir, options); err != nil {
		return errors.Wrap(err, "directory")
	}

	file, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create")
	}
	tmpName := file.Name()

	if _, err := file.Write(body); err != nil {
		file.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "write")
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close")
	}

	if err := os.Chmod(tmpName, options.Mode); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "chmod")
	}

	if err := os.Rename(tmpName, filename); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "rename")
	}

	return nil
}

// Read reads the data from a file on the local filesystem.
func (f *FilesystemStorage) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.buildPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "key: %s", key)
	}

	return data, nil
}

// Remove removes the file stored at key.
func (f *FilesystemStorage) Remove(ctx context.Context, key string) error {
	filename := f.buildPath(key)

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return ErrNotFound
	}

	return os.RemoveAll(filename)
}

// List returns the keys of the items directly under the path.
func (f *FilesystemStorage) List(ctx context.Context, path string) ([]string, error) {
	dir := f.buildPath(path)

	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "path: %s", path)
	}

	var keys []string
	for _, info := range files {
		if strings.HasPrefix(info.Name(), ".tmp-") {
			continue
		}

		if len(path) > 0 {
			keys = append(keys, strings.Join([]string{strings.TrimSuffix(path, "/"),
				info.Name()}, "/"))
		} else {
			keys = append(keys, info.Name())
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func (f *FilesystemStorage) buildPath(key string) string {
	parts := []string{
		f.Config.Root,
		f.Config.Bucket,
	}

	if len(key) > 0 {
		parts = append(parts, key)
	}

	s := strings.Join(parts, "/")

	return filepath.FromSlash(s)
}

func (f *FilesystemStorage) ensureExists(dir string, options *Options) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, options.DirMode); err != nil {
			return err
		}
	}

	return nil
}
