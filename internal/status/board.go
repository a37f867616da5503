// Package status holds the StatusBoard, the shared key/value view of
// environmental and security readings. The monitor writes it; the API and
// publishers read it. Each key keeps only its latest value.
package status

import (
	"maps"
	"sync"
)

// Well-known keys written by the monitor.
const (
	KeySecurity    = "security_status"
	KeyTemperature = "temperature"
	KeyLastCheck   = "last_check"
)

// Board is a concurrency-safe string map. The zero value is ready to use.
type Board struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewBoard returns an empty Board.
func NewBoard() *Board {
	return &Board{values: make(map[string]string)}
}

// Put sets key to value, replacing any previous value.
func (b *Board) Put(key, value string) {
	b.mu.Lock()
	if b.values == nil {
		b.values = make(map[string]string)
	}
	b.values[key] = value
	b.mu.Unlock()
}

// PutAll sets several keys under one lock so readers of Snapshot see them
// change together.
func (b *Board) PutAll(values map[string]string) {
	b.mu.Lock()
	if b.values == nil {
		b.values = make(map[string]string, len(values))
	}
	maps.Copy(b.values, values)
	b.mu.Unlock()
}

// Get returns the value for key, or def when the key has never been written.
func (b *Board) Get(key, def string) string {
	b.mu.RLock()
	v, ok := b.values[key]
	b.mu.RUnlock()
	if !ok {
		return def
	}
	return v
}

// Snapshot returns a copy of every key and value.
func (b *Board) Snapshot() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]string, len(b.values))
	maps.Copy(out, b.values)
	return out
}

// Len returns the number of keys.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.values)
}
