package storage

import (
	"fmt"
	"strings"
)

const (
	// DefaultMaxRetries is the number of retries for a remote read or write.
	DefaultMaxRetries = 4

	// DefaultRetryDelay is the milliseconds to wait between remote retries.
	DefaultRetryDelay = 2000

	// BucketNone disables storage entirely.
	BucketNone = "none"
)

// Config selects a backend by its bucket. "standalone" is the local filesystem under Root,
// "mock" is in memory, a redis:// url is a Redis server, and anything else is an S3 bucket.
type Config struct {
	Bucket     string
	Root       string
	MaxRetries int
	RetryDelay int // milliseconds
}

func NewConfig(bucket, root string) Config {
	return Config{
		Bucket:     bucket,
		Root:       root,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

// SetupRetry overrides the retry policy for remote backends. Negative values are ignored.
func (c *Config) SetupRetry(max, delay int) {
	if max >= 0 {
		c.MaxRetries = max
	}
	if delay >= 0 {
		c.RetryDelay = delay
	}
}

// Disabled returns true when no backend is configured.
func (c Config) Disabled() bool {
	bucket := strings.TrimSpace(c.Bucket)
	return len(bucket) == 0 || strings.EqualFold(bucket, BucketNone)
}

func (c Config) String() string {
	if c.Disabled() {
		return "{Disabled}"
	}

	if len(c.Root) > 0 {
		return fmt.Sprintf("{Bucket:%s Root:%s Retries:%d/%dms}", c.Bucket, c.Root,
			c.MaxRetries, c.RetryDelay)
	}

	return fmt.Sprintf("{Bucket:%s Retries:%d/%dms}", c.Bucket, c.MaxRetries, c.RetryDelay)
}
