// Package cache is a small in-process LRU with per-entry TTL. The API
// layer uses it to avoid re-requesting AI insights for months that have
// not changed.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type Store[V any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

func New[V any](maxSize int, ttl time.Duration) *Store[V] {
	return &Store[V]{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached value for key. Expired entries are evicted on
// access.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	elem, ok := s.entries[key]
	if !ok {
		return zero, false
	}

	ent := elem.Value.(*entry[V])
	if time.Now().After(ent.expiresAt) {
		s.remove(elem)
		return zero, false
	}

	s.order.MoveToFront(elem)
	return ent.value, true
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (s *Store[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent := &entry[V]{key: key, value: value, expiresAt: time.Now().Add(s.ttl)}

	if elem, ok := s.entries[key]; ok {
		elem.Value = ent
		s.order.MoveToFront(elem)
		return
	}

	s.entries[key] = s.order.PushFront(ent)
	if s.order.Len() > s.maxSize {
		if oldest := s.order.Back(); oldest != nil {
			s.remove(oldest)
		}
	}
}

func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.entries[key]; ok {
		s.remove(elem)
	}
}

func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store[V]) remove(elem *list.Element) {
	ent := elem.Value.(*entry[V])
	delete(s.entries, ent.key)
	s.order.Remove(elem)
}
