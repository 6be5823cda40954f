// Package redislock provides an AccountLocker shared by every API replica through Redis.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wallet-ledger/internal/adapter/lock"
	"wallet-ledger/internal/core/ports"

	"github.com/go-redsync/redsync/v4"
	redsyncgoredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultExpiry     = 30 * time.Second
	defaultRetryDelay = 50 * time.Millisecond
	keyPrefix         = "lock:"
)

// Option tunes a Locker.
type Option func(*Locker)

// WithExpiry sets the lease after which Redis drops a lock whose holder died.
func WithExpiry(d time.Duration) Option {
	return func(l *Locker) { l.expiry = d }
}

// WithRetryDelay sets the pause between acquisition attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(l *Locker) { l.retryDelay = d }
}

// Locker implements ports.AccountLocker with one redsync mutex per key.
type Locker struct {
	rs         *redsync.Redsync
	timeout    time.Duration
	expiry     time.Duration
	retryDelay time.Duration
	log        zerolog.Logger
}

// New creates a Locker that waits at most timeout for the full key set.
func New(client goredis.UniversalClient, timeout time.Duration, log zerolog.Logger, opts ...Option) *Locker {
	l := &Locker{
		rs:         redsync.New(redsyncgoredis.NewPool(client)),
		timeout:    timeout,
		expiry:     defaultExpiry,
		retryDelay: defaultRetryDelay,
		log:        log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Locker) tries() int {
	n := int(l.timeout / l.retryDelay)
	if n < 1 {
		n = 1
	}
	return n
}

// Acquire locks keys in canonical order, retrying each until the shared deadline.
func (l *Locker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = lock.CanonicalKeys(keys)

	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	held := make([]*redsync.Mutex, 0, len(keys))
	for _, k := range keys {
		m := l.rs.NewMutex(keyPrefix+k,
			redsync.WithExpiry(l.expiry),
			redsync.WithTries(l.tries()),
			redsync.WithRetryDelay(l.retryDelay),
		)
		if err := m.LockContext(waitCtx); err != nil {
			l.release(held)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if waitCtx.Err() != nil || isContention(err) {
				return nil, fmt.Errorf("%w: %s after %s", ports.ErrLockTimeout, k, l.timeout)
			}
			return nil, fmt.Errorf("acquiring redis lock %s: %w", k, err)
		}
		held = append(held, m)
	}

	var once sync.Once
	return func() { once.Do(func() { l.release(held) }) }, nil
}

func isContention(err error) bool {
	var taken *redsync.ErrTaken
	return errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken)
}

func (l *Locker) release(held []*redsync.Mutex) {
	for i := len(held) - 1; i >= 0; i-- {
		ok, err := held[i].UnlockContext(context.Background())
		if err != nil || !ok {
			l.log.Warn().Err(err).Str("lock_key", held[i].Name()).Msg("failed to release lock, lease will expire")
		}
	}
}
