package assets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tokenized/liquid/liquid"
	"github.com/tokenized/liquid/storage"

	"github.com/pkg/errors"
	"github.com/tokenized/logger"
)

// Cache is a Fetcher that keeps asset metadata in storage. Items older than the max age are
// fetched again. Only one fetch per asset is in progress at once, other callers wait for its
// result.
type Cache struct {
	fetcher Fetcher
	store   storage.Storage
	net     liquid.Network
	maxAge  time.Duration

	pending     map[AssetID]*pendingFetch
	pendingLock sync.Mutex

	now func() time.Time
}

type pendingFetch struct {
	done  chan struct{}
	asset *Asset
	err   error

	// abandoned is set when the fetching caller's context ended before the fetch completed.
	abandoned bool
}

type cacheEntry struct {
	FetchedAt time.Time `json:"fetched_at"`
	Asset     *Asset    `json:"asset"`
}

// NewCache returns a cache in front of the fetcher. A max age of zero means items never expire.
func NewCache(fetcher Fetcher, store storage.Storage, net liquid.Network,
	maxAge time.Duration) *Cache {

	return &Cache{
		fetcher: fetcher,
		store:   store,
		net:     net,
		maxAge:  maxAge,
		pending: make(map[AssetID]*pendingFetch),
		now:     time.Now,
	}
}

// CachePath returns the storage key for an asset.
func CachePath(net liquid.Network, id AssetID) string {
	return fmt.Sprintf("assets/%s/%s", net, id)
}

// GetAsset returns the asset from storage when it is present and fresh, otherwise it is fetched and
// saved. The returned asset is shared and must not be modified.
//
// Callers waiting on another caller's fetch get its result. If that caller's context ended before
// the fetch completed then the waiter fetches again with its own context.
func (c *Cache) GetAsset(ctx context.Context, id AssetID) (*Asset, error) {
	start := time.Now()
	path := CachePath(c.net, id)

	for {
		asset := c.read(ctx, path)
		if asset != nil {
			logger.VerboseWithFields(ctx, []logger.Field{
				logger.Stringer("asset_id", id),
				logger.MillisecondsFromNano("elapsed_ms", time.Since(start).Nanoseconds()),
			}, "Asset cache hit")
			return asset, nil
		}

		c.pendingLock.Lock()
		p, exists := c.pending[id]
		if !exists {
			break // lock still held
		}
		c.pendingLock.Unlock()

		select {
		case <-p.done:
			if p.err != nil && p.abandoned && ctx.Err() == nil {
				logger.VerboseWithFields(ctx, []logger.Field{
					logger.Stringer("asset_id", id),
				}, "Retrying abandoned asset fetch")
				continue
			}
			return p.asset, p.err
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "wait for fetch")
		}
	}

	p := &pendingFetch{
		done: make(chan struct{}),
	}
	c.pending[id] = p
	c.pendingLock.Unlock()

	p.asset, p.err = c.fetch(ctx, id, path)
	p.abandoned = ctx.Err() != nil

	c.pendingLock.Lock()
	delete(c.pending, id)
	c.pendingLock.Unlock()
	close(p.done)

	if p.err != nil {
		return nil, p.err
	}

	logger.VerboseWithFields(ctx, []logger.Field{
		logger.Stringer("asset_id", id),
		logger.MillisecondsFromNano("elapsed_ms", time.Since(start).Nanoseconds()),
	}, "Asset cache miss")
	return p.asset, nil
}

// Remove deletes an asset from storage so the next request fetches it again.
func (c *Cache) Remove(ctx context.Context, id AssetID) error {
	if err := c.store.Remove(ctx, CachePath(c.net, id)); err != nil &&
		errors.Cause(err) != storage.ErrNotFound {
		return errors.Wrap(err, "remove")
	}

	return nil
}

// List returns the ids of the assets in storage.
func (c *Cache) List(ctx context.Context) ([]AssetID, error) {
	prefix := fmt.Sprintf("assets/%s/", c.net)
	paths, err := c.store.List(ctx, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "list")
	}

	var result []AssetID
	for _, path := range paths {
		if len(path) <= len(prefix) {
			continue
		}

		id, err := NewAssetIDFromStr(path[len(prefix):])
		if err != nil {
			logger.Warn(ctx, "Invalid asset cache path %s : %s", path, err)
			continue
		}

		result = append(result, id)
	}

	return result, nil
}

// read returns the stored asset or nil if it is missing, expired, or can't be read.
func (c *Cache) read(ctx context.Context, path string) *Asset {
	entry := &cacheEntry{}
	if err := storage.LoadJSON(ctx, c.store, path, entry); err != nil {
		if errors.Cause(err) != storage.ErrNotFound {
			logger.WarnWithFields(ctx, []logger.Field{
				logger.String("path", path),
			}, "Failed to read asset from cache : %s", err)
		}
		return nil
	}

	if entry.Asset == nil {
		return nil
	}

	if c.maxAge > 0 && c.now().Sub(entry.FetchedAt) > c.maxAge {
		logger.VerboseWithFields(ctx, []logger.Field{
			logger.String("path", path),
		}, "Asset cache item expired")
		return nil
	}

	return entry.Asset
}

// ttlSeconds rounds up so storage never drops an item before the max age.
func ttlSeconds(maxAge time.Duration) int64 {
	return int64((maxAge + time.Second - 1) / time.Second)
}

func (c *Cache) fetch(ctx context.Context, id AssetID, path string) (*Asset, error) {
	asset, err := c.fetcher.GetAsset(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "fetch")
	}

	entry := cacheEntry{
		FetchedAt: c.now(),
		Asset:     asset,
	}

	var options *storage.Options
	if c.maxAge > 0 {
		options = storage.WithTTL(ttlSeconds(c.maxAge))
	}

	// The asset is still returned when it can't be saved.
	if err := storage.SaveJSON(ctx, c.store, path, entry, options); err != nil {
		logger.ErrorWithFields(ctx, []logger.Field{
			logger.String("path", path),
		}, "Failed to write asset to cache : %s", err)
	}

	return asset, nil
}
