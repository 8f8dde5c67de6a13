// Package ristretto implements the session cache capability on an embedded
// Ristretto cache. Unlike BigCache it honors a per-entry TTL, at the cost of
// admission-policy evictions: under memory pressure a session key can be
// dropped early, which the session protocol already treats as expiry.
package ristretto

import (
	"context"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/sessionstore/cache"
	"github.com/unkn0wn-root/sessionstore/internal/keys"
	"github.com/unkn0wn-root/sessionstore/internal/locks"
)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64

	// CounterTTL is reapplied to the snapshot counter on every increment.
	// Ristretto cannot preserve a key's remaining TTL across a rewrite, so
	// the counter's clock restarts on each store, like memcached's touch.
	CounterTTL time.Duration
}

type Ristretto struct {
	c     *rc.Cache
	table *locks.Table

	counterTTL time.Duration

	// serializes counter read-modify-write
	incrMu sync.Mutex
}

var _ cache.Client = (*Ristretto)(nil)

func New(cfg Config) (*Ristretto, error) {
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &Ristretto{c: c, table: locks.NewTable(), counterTTL: cfg.CounterTTL}, nil
}

func (r *Ristretto) GetMulti(_ context.Context, prefix string, ks []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(ks))
	for _, k := range ks {
		v, ok := r.c.Get(prefix + k)
		if !ok {
			continue
		}
		b, ok := v.([]byte)
		if !ok {
			// unexpected entry shape; self-heal
			r.c.Del(prefix + k)
			continue
		}
		out[k] = b
	}
	return out, nil
}

func (r *Ristretto) SetMulti(_ context.Context, prefix string, entries map[string][]byte, ttl time.Duration, noreply bool) error {
	for k, v := range entries {
		r.set(prefix+k, v, ttl)
	}
	// make writes visible to an immediate read; Set is buffered otherwise
	r.c.Wait()
	return nil
}

func (r *Ristretto) set(key string, v []byte, ttl time.Duration) {
	cost := int64(len(v)) + 1
	if ttl > 0 {
		r.c.SetWithTTL(key, v, cost, ttl)
	} else {
		r.c.Set(key, v, cost)
	}
}

func (r *Ristretto) Incr(_ context.Context, key string, noreply bool) (uint64, bool, error) {
	r.incrMu.Lock()
	defer r.incrMu.Unlock()

	v, ok := r.c.Get(key)
	if !ok {
		return 0, false, nil
	}
	raw, _ := v.([]byte)
	cur, err := keys.ParseCounter(raw)
	if err != nil {
		if noreply {
			return 0, true, nil
		}
		return 0, false, err
	}
	next := cur + 1
	r.set(key, keys.FormatCounter(next), r.counterTTL)
	r.c.Wait()
	return next, true, nil
}

func (r *Ristretto) Delete(_ context.Context, key string, _ bool) error {
	r.c.Del(key)
	return nil
}

func (r *Ristretto) FlushAll(context.Context) error {
	r.c.Clear()
	return nil
}

func (r *Ristretto) AcquireLock(ctx context.Context, key string, opts cache.LockOptions) (cache.Lock, error) {
	return r.table.Acquire(ctx, key, opts)
}

func (r *Ristretto) Close(context.Context) error {
	r.c.Wait()
	r.c.Close()
	return nil
}
