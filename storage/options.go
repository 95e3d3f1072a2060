package storage

import "os"

// Options for writing data. Not all Storage implementations will support
// all options.
//
// For example, writing a file doesn't support TTL.
type Options struct {
	TTL     int64 // seconds
	Mode    os.FileMode
	DirMode os.FileMode
}

// NewOptions returns an Options struct with defaults set.
//
// TTL with zero value means never expire.
func NewOptions() Options {
	return Options{
		TTL:     0,
		Mode:    0644,
		DirMode: 0755,
	}
}

// WithTTL returns options with the expiry set in seconds.
func WithTTL(seconds int64) *Options {
	result := NewOptions()
	result.TTL = seconds
	return &result
}
