// Package local provides an in-process AccountLocker.
package local

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wallet-ledger/internal/adapter/lock"
	"wallet-ledger/internal/core/ports"
)

type entry struct {
	ch   chan struct{} // capacity 1: a send takes the lock
	refs int
}

// Locker hands out per-key mutexes that support a bounded wait.
// Entries are reference counted and dropped once no goroutine holds or waits on them.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
	timeout time.Duration
}

// New creates a Locker that waits at most timeout for the full key set.
func New(timeout time.Duration) *Locker {
	return &Locker{
		entries: make(map[string]*entry),
		timeout: timeout,
	}
}

// Acquire locks keys in canonical order. On timeout every key taken so far is released.
func (l *Locker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = lock.CanonicalKeys(keys)

	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	held := make([]string, 0, len(keys))
	for _, k := range keys {
		e := l.ref(k)
		select {
		case e.ch <- struct{}{}:
			held = append(held, k)
		case <-waitCtx.Done():
			l.unref(k)
			l.release(held)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s after %s", ports.ErrLockTimeout, k, l.timeout)
		}
	}

	var once sync.Once
	return func() { once.Do(func() { l.release(held) }) }, nil
}

func (l *Locker) ref(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *Locker) release(held []string) {
	for i := len(held) - 1; i >= 0; i-- {
		l.mu.Lock()
		e := l.entries[held[i]]
		l.mu.Unlock()
		<-e.ch
		l.unref(held[i])
	}
}

// size reports how many keys are tracked.
func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
