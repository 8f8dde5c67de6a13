package locks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unkn0wn-root/sessionstore/cache"
)

func TestAcquireRelease(t *testing.T) {
	ctx := context.Background()
	tab := NewTable()

	l1, err := tab.Acquire(ctx, "s1", cache.LockOptions{MaxWait: time.Second, PollInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l1.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}

	// Re-acquirable after release.
	l2, err := tab.Acquire(ctx, "s1", cache.LockOptions{MaxWait: time.Second, PollInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	_ = l2.Release(ctx)
}

func TestContendedTimesOut(t *testing.T) {
	ctx := context.Background()
	tab := NewTable()

	l1, err := tab.Acquire(ctx, "s1", cache.LockOptions{MaxWait: time.Second, PollInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer l1.Release(ctx)

	start := time.Now()
	_, err = tab.Acquire(ctx, "s1", cache.LockOptions{MaxWait: 50 * time.Millisecond, PollInterval: 5 * time.Millisecond})
	if !errors.Is(err, cache.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("waited far past MaxWait")
	}
}

func TestExpiredHolderIsReclaimed(t *testing.T) {
	ctx := context.Background()
	tab := NewTable()

	l1, err := tab.Acquire(ctx, "s1", cache.LockOptions{TTL: 10 * time.Millisecond, MaxWait: time.Second, PollInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// Second waiter succeeds once the first holder's TTL elapses.
	l2, err := tab.Acquire(ctx, "s1", cache.LockOptions{MaxWait: time.Second, PollInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("Acquire after TTL: %v", err)
	}

	// Late release by the reclaimed holder must not free the new one.
	_ = l1.Release(ctx)
	if _, err := tab.Acquire(ctx, "s1", cache.LockOptions{MaxWait: 30 * time.Millisecond, PollInterval: 5 * time.Millisecond}); !errors.Is(err, cache.ErrLockTimeout) {
		t.Fatalf("stale release freed a reclaimed lock: %v", err)
	}
	_ = l2.Release(ctx)
}

func TestContextCancelAborts(t *testing.T) {
	tab := NewTable()
	ctx := context.Background()

	l1, _ := tab.Acquire(ctx, "s1", cache.LockOptions{MaxWait: time.Second, PollInterval: time.Millisecond})
	defer l1.Release(ctx)

	cctx, cancel := context.WithCancel(ctx)
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := tab.Acquire(cctx, "s1", cache.LockOptions{MaxWait: 10 * time.Second, PollInterval: 5 * time.Millisecond})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
