// Package session owns the lifecycle of in-memory game sessions.
//
// Sessions live only for the lifetime of one process; a restart loses
// in-flight games. The store's single concurrency job is per-id
// serialization: at most one mutation runs against a session id at a
// time, so two concurrent guesses can never read the same attempt
// counter. There is no global lock around all sessions; each entry
// carries its own mutex under a map guard.
package session

import (
	"log"
	"sync"
	"time"

	"aniguess/pkg/models"
)

// Cloner is implemented by session values. Clone must return a copy
// that shares no mutable state with the receiver, so a value handed out
// by Get stays valid while the store keeps mutating the original.
type Cloner[T any] interface {
	Clone() T
}

type entry[T any] struct {
	mu      sync.Mutex
	val     T
	touched time.Time
	removed bool
}

// Store is a keyed in-memory session store with idle expiry.
type Store[T Cloner[T]] struct {
	mu      sync.RWMutex
	entries map[string]*entry[T]
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

// New creates a store whose sessions expire after ttl of inactivity.
func New[T Cloner[T]](ttl time.Duration) *Store[T] {
	return &Store[T]{
		entries: make(map[string]*entry[T]),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
}

// Create registers a new session under id. The caller must not retain a
// reference to v's pointer fields; the store owns the session from here.
func (s *Store[T]) Create(id string, v T) {
	s.mu.Lock()
	s.entries[id] = &entry[T]{val: v, touched: time.Now()}
	s.mu.Unlock()
}

// Get returns a detached clone of the session. Mutating it has no
// effect and it never races with later Updates; use Update for
// transitions.
func (s *Store[T]) Get(id string) (T, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	var zero T
	if !ok {
		return zero, models.ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return zero, models.ErrSessionNotFound
	}
	return e.val.Clone(), nil
}

// Update applies fn to the session under its exclusive lock and marks it
// touched. fn runs with no other mutation in flight for this id; it must
// not block on I/O, and anything it copies out for use after it returns
// must be detached with Clone. An error from fn is returned unchanged
// and the touch still counts (a rejected guess is still activity).
func (s *Store[T]) Update(id string, fn func(*T) error) error {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return models.ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		// swept between lookup and lock
		return models.ErrSessionNotFound
	}
	e.touched = time.Now()
	return fn(&e.val)
}

// Remove deletes a session. Waits for any in-flight mutation to finish
// before the entry disappears. Lock order is always map then entry.
func (s *Store[T]) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return
	}
	e.mu.Lock()
	e.removed = true
	delete(s.entries, id)
	e.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartSweeper launches the background expiry sweep. Close stops it.
func (s *Store[T]) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.sweep(); n > 0 {
					log.Printf("[session] swept %d idle sessions", n)
				}
			case <-s.done:
				return
			}
		}
	}()
}

// Close stops the sweeper.
func (s *Store[T]) Close() {
	s.once.Do(func() { close(s.done) })
}

// sweep removes sessions idle beyond the ttl. The entry lock is taken
// before deletion, so a sweep never interleaves with a mutation for the
// same id, and the idle check is re-done under the lock.
func (s *Store[T]) sweep() int {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.RLock()
	stale := make([]string, 0)
	for id, e := range s.entries {
		e.mu.Lock()
		idle := e.touched.Before(cutoff)
		e.mu.Unlock()
		if idle {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		s.mu.Lock()
		e, ok := s.entries[id]
		if !ok {
			s.mu.Unlock()
			continue
		}
		e.mu.Lock()
		// re-check: a mutation may have landed since the scan
		if e.touched.Before(cutoff) {
			e.removed = true
			delete(s.entries, id)
			removed++
		}
		e.mu.Unlock()
		s.mu.Unlock()
	}
	return removed
}
