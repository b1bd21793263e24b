// Package lock provides keyed mutual exclusion. The table service holds one
// key per channel so that a channel's game is never touched by two commands
// at once.
package lock

import (
	"context"
	"sync"
	"time"
)

// slot is a one-element semaphore with a count of the goroutines holding
// or waiting for it.
type slot struct {
	sem      chan struct{}
	refCount int
}

// Keyed hands out one lock per key. A key's slot is dropped once nobody
// holds or waits for it. The zero value is ready to use.
type Keyed[K comparable] struct {
	mu    sync.Mutex
	slots map[K]*slot
}

// New creates a Keyed lock.
func New[K comparable]() *Keyed[K] {
	return &Keyed[K]{}
}

// acquire returns the slot for key, creating it on first use, and counts
// the caller in. Every acquire is paired with a release.
func (k *Keyed[K]) acquire(key K) *slot {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.slots == nil {
		k.slots = make(map[K]*slot)
	}
	s, ok := k.slots[key]
	if !ok {
		s = &slot{sem: make(chan struct{}, 1)}
		k.slots[key] = s
	}
	s.refCount++
	return s
}

func (k *Keyed[K]) release(key K) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.slots[key]
	if !ok {
		return
	}
	s.refCount--
	if s.refCount <= 0 {
		delete(k.slots, key)
	}
}

// Lock blocks until key is held.
func (k *Keyed[K]) Lock(key K) {
	k.acquire(key).sem <- struct{}{}
}

// Unlock releases key. Unlocking a key that is not held is a no-op.
func (k *Keyed[K]) Unlock(key K) {
	k.mu.Lock()
	s, ok := k.slots[key]
	k.mu.Unlock()
	if !ok {
		return
	}
	select {
	case <-s.sem:
		k.release(key)
	default:
	}
}

// TryLock takes key if it is free.
func (k *Keyed[K]) TryLock(key K) bool {
	s := k.acquire(key)
	select {
	case s.sem <- struct{}{}:
		return true
	default:
		k.release(key)
		return false
	}
}

// LockWithTimeout waits up to timeout, or until ctx is done, for key.
func (k *Keyed[K]) LockWithTimeout(ctx context.Context, key K, timeout time.Duration) bool {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s := k.acquire(key)
	select {
	case s.sem <- struct{}{}:
		return true
	case <-timeoutCtx.Done():
		k.release(key)
		return false
	}
}

// WithLock runs fn while holding key.
func (k *Keyed[K]) WithLock(key K, fn func() error) error {
	k.Lock(key)
	defer k.Unlock(key)
	return fn()
}

// WithLockContext runs fn while holding key, giving up with ErrLockTimeout
// if key cannot be taken within timeout.
func (k *Keyed[K]) WithLockContext(ctx context.Context, key K, timeout time.Duration, fn func() error) error {
	if !k.LockWithTimeout(ctx, key, timeout) {
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrLockTimeout
	}
	defer k.Unlock(key)
	return fn()
}

// IsLocked reports whether key is currently held. The answer may be stale
// by the time it is used.
func (k *Keyed[K]) IsLocked(key K) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.slots[key]
	return ok && len(s.sem) == 1
}

// size is the number of keys with a holder or waiter.
func (k *Keyed[K]) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}
