// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
	prev      *memoryEntry
	next      *memoryEntry
}

// MemoryStore is a thread-safe LRU cache with per-entry TTL.
//
// Entries live in a doubly-linked list (head.next is most recently used) indexed
// by a map, so Get, Set and eviction are O(1). Expired entries are removed
// lazily on Get and by a background sweep every cleanupInterval.
type MemoryStore struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration

	items map[string]*memoryEntry
	head  *memoryEntry
	tail  *memoryEntry

	stats  Stats
	closed bool
	stop   chan struct{}
	done   chan struct{}
}

// Stats tracks cache activity.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

const cleanupInterval = 5 * time.Minute

// NewMemoryStore creates a store holding at most capacity entries.
// Defaults: 10000 entries, 5 minute TTL.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	s := &MemoryStore{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*memoryEntry),
		head:     &memoryEntry{},
		tail:     &memoryEntry{},
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		stats:    Stats{LastCleanup: time.Now()},
	}
	s.head.next = s.tail
	s.tail.prev = s.head

	go s.cleanupLoop()
	return s
}

// Name implements Store.
func (s *MemoryStore) Name() string { return BackendMemory }

// Get implements Store. Hits move the entry to the front.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, ErrClosed
	}

	e, ok := s.items[key]
	if !ok {
		s.stats.Misses++
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		s.removeEntry(e)
		s.stats.Misses++
		s.stats.Evictions++
		return nil, false, nil
	}

	s.moveToFront(e)
	s.stats.Hits++
	return e.value, true, nil
}

// Set implements Store. The value is copied.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	buf := make([]byte, len(value))
	copy(buf, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	expiresAt := time.Now().Add(ttl)
	if e, ok := s.items[key]; ok {
		e.value = buf
		e.expiresAt = expiresAt
		s.moveToFront(e)
		return nil
	}

	if len(s.items) >= s.capacity {
		s.evictOldest()
	}

	e := &memoryEntry{key: key, value: buf, expiresAt: expiresAt}
	s.items[key] = e
	s.addToFront(e)
	s.stats.TotalKeys = int64(len(s.items))
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	for _, key := range keys {
		if e, ok := s.items[key]; ok {
			s.removeEntry(e)
			s.stats.Evictions++
		}
	}
	return nil
}

// DeletePrefix implements Store.
func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	n := 0
	for key, e := range s.items {
		if strings.HasPrefix(key, prefix) {
			s.removeEntry(e)
			n++
		}
	}
	s.stats.Evictions += int64(n)
	return n, nil
}

// Len returns the number of entries, expired ones included until swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// GetStats returns a snapshot of the counters.
func (s *MemoryStore) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// HitRate returns hits as a percentage of lookups.
func (s *MemoryStore) HitRate() float64 {
	st := s.GetStats()
	total := st.Hits + st.Misses
	if total == 0 {
		return 0.0
	}
	return float64(st.Hits) / float64(total) * 100.0
}

// Close stops the sweep goroutine and drops all entries.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.items = make(map[string]*memoryEntry)
	s.head.next = s.tail
	s.tail.prev = s.head
	s.mu.Unlock()

	close(s.stop)
	<-s.done
	return nil
}

func (s *MemoryStore) cleanupLoop() {
	defer close(s.done)

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes all expired entries.
func (s *MemoryStore) cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.items {
		if now.After(e.expiresAt) {
			s.removeEntry(e)
			s.stats.Evictions++
		}
	}
	s.stats.LastCleanup = now
}

// List helpers. Callers hold s.mu.

func (s *MemoryStore) addToFront(e *memoryEntry) {
	e.prev = s.head
	e.next = s.head.next
	s.head.next.prev = e
	s.head.next = e
}

func (s *MemoryStore) unlink(e *memoryEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

func (s *MemoryStore) moveToFront(e *memoryEntry) {
	s.unlink(e)
	s.addToFront(e)
}

func (s *MemoryStore) removeEntry(e *memoryEntry) {
	s.unlink(e)
	delete(s.items, e.key)
	s.stats.TotalKeys = int64(len(s.items))
}

func (s *MemoryStore) evictOldest() {
	if oldest := s.tail.prev; oldest != s.head {
		s.removeEntry(oldest)
		s.stats.Evictions++
	}
}
