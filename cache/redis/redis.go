// Package redis implements the session cache capability on Redis via
// go-redis. It is the backend of choice when sessions are shared across
// processes and hosts.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/sessionstore/cache"
)

var ErrNilClient = errors.New("redis cache: nil client")

// incrScript increments an existing counter only. A missing key means the
// session is gone; creating the counter implicitly would resurrect it.
var incrScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return redis.call('INCR', KEYS[1])
end
return -1
`)

// unlockScript releases a lock only while we still own it, so a holder that
// outlived its TTL never frees the next holder's lock.
var unlockScript = goredis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

type Redis struct {
	rdb          goredis.UniversalClient
	flushPattern string
	closeClient  bool
}

var _ cache.Client = (*Redis)(nil)

type Config struct {
	Client goredis.UniversalClient

	// FlushPattern scopes FlushAll to a key glob (e.g. "sessions_*").
	// Empty means FLUSHDB: the whole logical database is session storage.
	FlushPattern string

	// CloseClient releases the client on Close. Set only when this backend
	// exclusively owns it.
	CloseClient bool
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{
		rdb:          cfg.Client,
		flushPattern: cfg.FlushPattern,
		closeClient:  cfg.CloseClient,
	}, nil
}

func (r *Redis) GetMulti(ctx context.Context, prefix string, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = prefix + k
	}
	vals, err := r.rdb.MGet(ctx, full...).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(keys))
	for i, v := range vals {
		switch vv := v.(type) {
		case nil:
			// missing; not an error
		case string:
			out[keys[i]] = []byte(vv)
		case []byte:
			out[keys[i]] = vv
		}
	}
	return out, nil
}

func (r *Redis) SetMulti(ctx context.Context, prefix string, entries map[string][]byte, ttl time.Duration, noreply bool) error {
	if ttl < 0 {
		ttl = 0 // non-positive TTL means "no expiry"
	}
	_, err := r.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for k, v := range entries {
			p.Set(ctx, prefix+k, v, ttl)
		}
		return nil
	})
	if noreply {
		return nil // fire-and-forget: outcome is unobservable by design
	}
	return err
}

func (r *Redis) Incr(ctx context.Context, key string, noreply bool) (uint64, bool, error) {
	n, err := incrScript.Run(ctx, r.rdb, []string{key}).Int64()
	if err != nil {
		if noreply {
			return 0, true, nil
		}
		return 0, false, err
	}
	if n < 0 {
		return 0, false, nil // counter key missing
	}
	return uint64(n), true, nil
}

func (r *Redis) Delete(ctx context.Context, key string, noreply bool) error {
	err := r.rdb.Del(ctx, key).Err()
	if noreply {
		return nil
	}
	return err
}

// FlushAll clears the session namespace. With a FlushPattern it SCANs and
// deletes matching keys in batches; otherwise it flushes the whole database.
func (r *Redis) FlushAll(ctx context.Context) error {
	if r.flushPattern == "" {
		return r.rdb.FlushDB(ctx).Err()
	}

	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, r.flushPattern, 512).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (r *Redis) AcquireLock(ctx context.Context, key string, opts cache.LockOptions) (cache.Lock, error) {
	token := uuid.NewString()
	poll := opts.PollInterval
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	deadline := time.Now().Add(opts.MaxWait)

	for {
		ok, err := r.rdb.SetNX(ctx, key, token, opts.TTL).Result()
		if err != nil && !opts.Noreply {
			return nil, err
		}
		if ok {
			return &lock{rdb: r.rdb, key: key, token: token}, nil
		}
		if opts.MaxWait <= 0 || !time.Now().Add(poll).Before(deadline) {
			return nil, cache.ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(poll):
		}
	}
}

func (r *Redis) Close(context.Context) error {
	if r.closeClient {
		if err := r.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

type lock struct {
	rdb   goredis.UniversalClient
	key   string
	token string
}

var _ cache.Lock = (*lock)(nil)

func (l *lock) Release(ctx context.Context) error {
	return unlockScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err()
}
