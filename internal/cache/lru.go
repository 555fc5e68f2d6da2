package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// defaultLRUSize bounds the number of cached documents held in process.
const defaultLRUSize = 64

// LRUBackend is an in-process expiring LRU.
type LRUBackend struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, []byte]
}

// NewLRUBackend creates an LRUBackend holding size entries for ttl each.
// size <= 0 selects a small default.
func NewLRUBackend(size int, ttl time.Duration) *LRUBackend {
	if size <= 0 {
		size = defaultLRUSize
	}

	return &LRUBackend{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get implements Backend.
func (b *LRUBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := b.lru.Get(key)
	return val, ok, nil
}

// Set implements Backend.
func (b *LRUBackend) Set(_ context.Context, key string, val []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lru.Add(key, val)

	return nil
}

// SetIfAbsent implements Backend.
func (b *LRUBackend) SetIfAbsent(_ context.Context, key string, val []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.lru.Peek(key); !ok {
		b.lru.Add(key, val)
	}

	return nil
}

// Del implements Backend.
func (b *LRUBackend) Del(_ context.Context, key string) error {
	b.lru.Remove(key)
	return nil
}
