// Package asynchook decouples hook sinks from the store's hot paths: events
// are queued and delivered by worker goroutines, and dropped when the queue
// is full rather than ever blocking a request.
//
// usage:
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	store, _ := sessionstore.New(sessionstore.Options{
//	    Cache: backend,
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/sessionstore"
)

type Hooks struct {
	inner sessionstore.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ sessionstore.Hooks = (*Hooks)(nil)

func New(inner sessionstore.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) VersionMismatch(sid, stored, current string) {
	h.try(func() { h.inner.VersionMismatch(sid, stored, current) })
}

func (h *Hooks) SessionMissing(sid string, present int) {
	h.try(func() { h.inner.SessionMissing(sid, present) })
}

func (h *Hooks) CounterMissing(sid string)   { h.try(func() { h.inner.CounterMissing(sid) }) }
func (h *Hooks) NoreplyWrite(op, sid string) { h.try(func() { h.inner.NoreplyWrite(op, sid) }) }
