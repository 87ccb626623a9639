// Package catalog provides the reference catalog implementations the
// decode core resolves against: an in-memory store, a PAK archive loader
// and the recursive transitive-dependency walker.
package catalog

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samcharles93/relic/pkg/asset"
)

type memoryEntry struct {
	tag  asset.TypeTag
	data []byte
}

// Memory is a thread-safe in-memory catalog.
type Memory struct {
	mu        sync.RWMutex
	entries   map[asset.AssetID]memoryEntry
	container map[asset.AssetID]struct{}
}

// NewMemory returns an empty catalog.
func NewMemory() *Memory {
	return &Memory{
		entries:   make(map[asset.AssetID]memoryEntry),
		container: make(map[asset.AssetID]struct{}),
	}
}

// Add registers an asset. The payload is retained as-is, not copied.
func (m *Memory) Add(id asset.AssetID, tag asset.TypeTag, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = memoryEntry{tag: tag, data: data}
}

// AddContainerID registers an identifier that only counts as plausible in
// container context (level/world descriptors referencing other
// containers); it has no payload of its own here.
func (m *Memory) AddContainerID(id asset.AssetID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.container[id] = struct{}{}
}

// Len returns the number of resolvable assets.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// IDs returns every resolvable identifier in ascending order.
func (m *Memory) IDs() []asset.AssetID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]asset.AssetID, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Resolve implements asset.Catalog.
func (m *Memory) Resolve(id asset.AssetID) (asset.RawAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return asset.RawAsset{}, fmt.Errorf("%w: %s", asset.ErrUnknownAsset, id)
	}
	return asset.RawAsset{Type: e.tag, Data: e.data}, nil
}

// TypeOf implements asset.Catalog.
func (m *Memory) TypeOf(id asset.AssetID) (asset.TypeTag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", asset.ErrUnknownAsset, id)
	}
	return e.tag, nil
}

// IsValid implements asset.Catalog. It never fails: arbitrary probe
// integers simply answer false.
func (m *Memory) IsValid(id asset.AssetID, container bool) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.entries[id]; ok {
		return true
	}
	if container {
		_, ok := m.container[id]
		return ok
	}
	return false
}
