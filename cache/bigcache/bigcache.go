// Package bigcache implements the session cache capability on an embedded
// BigCache instance, for single-process deployments and tests.
//
// BigCache has no per-entry TTL; entries age out with the global LifeWindow,
// so the session TTL is fixed at construction rather than per write. Locks
// and counter atomicity are in-process, which is exactly the reach a
// single-process backend needs.
package bigcache

import (
	"context"
	"errors"
	"sync"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/sessionstore/cache"
	"github.com/unkn0wn-root/sessionstore/internal/keys"
	"github.com/unkn0wn-root/sessionstore/internal/locks"
)

type Config struct {
	LifeWindow         time.Duration // session lifetime; also the only TTL
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

type BigCache struct {
	c     *bc.BigCache
	table *locks.Table

	// serializes counter read-modify-write; within one process this keeps
	// Incr atomic without a remote primitive
	incrMu sync.Mutex
}

var _ cache.Client = (*BigCache)(nil)

func New(ctx context.Context, cfg Config) (*BigCache, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &BigCache{c: c, table: locks.NewTable()}, nil
}

func (b *BigCache) GetMulti(_ context.Context, prefix string, ks []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(ks))
	for _, k := range ks {
		v, err := b.c.Get(prefix + k)
		if err != nil {
			if errors.Is(err, bc.ErrEntryNotFound) {
				continue
			}
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (b *BigCache) SetMulti(_ context.Context, prefix string, entries map[string][]byte, _ time.Duration, noreply bool) error {
	for k, v := range entries {
		if err := b.c.Set(prefix+k, v); err != nil && !noreply {
			return err
		}
	}
	return nil
}

func (b *BigCache) Incr(_ context.Context, key string, noreply bool) (uint64, bool, error) {
	b.incrMu.Lock()
	defer b.incrMu.Unlock()

	raw, err := b.c.Get(key)
	if err != nil {
		if errors.Is(err, bc.ErrEntryNotFound) {
			return 0, false, nil // missing counter, session gone
		}
		if noreply {
			return 0, true, nil
		}
		return 0, false, err
	}
	cur, err := keys.ParseCounter(raw)
	if err != nil {
		if noreply {
			return 0, true, nil
		}
		return 0, false, err
	}
	next := cur + 1
	if err := b.c.Set(key, keys.FormatCounter(next)); err != nil {
		if noreply {
			return 0, true, nil
		}
		return 0, false, err
	}
	return next, true, nil
}

func (b *BigCache) Delete(_ context.Context, key string, noreply bool) error {
	err := b.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	if noreply {
		return nil
	}
	return err
}

func (b *BigCache) FlushAll(context.Context) error {
	return b.c.Reset()
}

func (b *BigCache) AcquireLock(ctx context.Context, key string, opts cache.LockOptions) (cache.Lock, error) {
	return b.table.Acquire(ctx, key, opts)
}

func (b *BigCache) Close(context.Context) error {
	return b.c.Close()
}
