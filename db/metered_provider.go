package db

import (
	"fmt"
	"sync"
)

// MeteredProvider wraps an IterableProvider and keeps a byte-usage index of
// the backing store: for every live key it tracks len(key)+len(value). The
// index makes storage growth of a staged batch computable before the batch is
// committed, which is what lets mutating verbs settle storage costs without
// compensation writes.
type MeteredProvider struct {
	mu    sync.RWMutex
	inner IterableProvider
	sizes map[string]uint64
	used  uint64
}

// NewMeteredProvider builds the usage index by scanning the underlying store
// once at open time. The index is maintained incrementally afterwards, so all
// writes must go through this wrapper.
func NewMeteredProvider(inner IterableProvider) (*MeteredProvider, error) {
	p := &MeteredProvider{
		inner: inner,
		sizes: make(map[string]uint64),
	}

	err := inner.IteratePrefix(nil, func(key, value []byte) bool {
		size := uint64(len(key) + len(value))
		p.sizes[string(key)] = size
		p.used += size
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build storage usage index: %w", err)
	}

	return p, nil
}

// UsedBytes returns the tracked byte usage of the backing store.
func (p *MeteredProvider) UsedBytes() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.used
}

// SizeOf returns the tracked size of a live key.
func (p *MeteredProvider) SizeOf(key []byte) (uint64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	size, ok := p.sizes[string(key)]
	return size, ok
}

// Get retrieves a value by key
func (p *MeteredProvider) Get(key []byte) ([]byte, error) {
	return p.inner.Get(key)
}

// Put stores a key-value pair and updates the usage index
func (p *MeteredProvider) Put(key, value []byte) error {
	if err := p.inner.Put(key, value); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyPut(key, value)
	return nil
}

// Delete removes a key-value pair and updates the usage index
func (p *MeteredProvider) Delete(key []byte) error {
	if err := p.inner.Delete(key); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyDelete(key)
	return nil
}

// Has checks if a key exists
func (p *MeteredProvider) Has(key []byte) (bool, error) {
	return p.inner.Has(key)
}

// Close closes the database connection
func (p *MeteredProvider) Close() error {
	return p.inner.Close()
}

// Batch returns a metered batch for atomic operations
func (p *MeteredProvider) Batch() DatabaseBatch {
	return p.MeteredBatch()
}

// MeteredBatch returns a batch that exposes the pending byte delta of its
// staged operations.
func (p *MeteredProvider) MeteredBatch() *MeteredBatch {
	return &MeteredBatch{
		provider: p,
		inner:    p.inner.Batch(),
		staged:   make(map[string]int64),
	}
}

// IteratePrefix iterates over all key-value pairs with the given prefix
func (p *MeteredProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	return p.inner.IteratePrefix(prefix, callback)
}

// applyPut and applyDelete assume p.mu is held.
func (p *MeteredProvider) applyPut(key, value []byte) {
	size := uint64(len(key) + len(value))
	if old, ok := p.sizes[string(key)]; ok {
		p.used -= old
	}
	p.sizes[string(key)] = size
	p.used += size
}

func (p *MeteredProvider) applyDelete(key []byte) {
	if old, ok := p.sizes[string(key)]; ok {
		p.used -= old
		delete(p.sizes, string(key))
	}
}

// MeteredBatch implements DatabaseBatch and accumulates the byte delta its
// operations would cause. Staging the same key twice accounts against the
// staged size, not the committed one.
type MeteredBatch struct {
	provider *MeteredProvider
	inner    DatabaseBatch
	staged   map[string]int64 // key -> staged size, -1 for deletion
	delta    int64
	ops      []memOp
}

// Put adds a key-value pair to the batch
func (b *MeteredBatch) Put(key, value []byte) {
	size := int64(len(key) + len(value))
	b.delta += size - b.effectiveSize(key)
	b.staged[string(key)] = size
	b.ops = append(b.ops, memOp{key: string(key), value: append([]byte(nil), value...)})
	b.inner.Put(key, value)
}

// Delete adds a deletion to the batch
func (b *MeteredBatch) Delete(key []byte) {
	b.delta -= b.effectiveSize(key)
	b.staged[string(key)] = -1
	b.ops = append(b.ops, memOp{key: string(key), delete: true})
	b.inner.Delete(key)
}

// PendingDelta returns the net byte-usage change the staged operations will
// cause once committed. Negative values mean the store shrinks.
func (b *MeteredBatch) PendingDelta() int64 {
	return b.delta
}

// Write commits all operations in the batch and folds the staged sizes into
// the provider's usage index.
func (b *MeteredBatch) Write() error {
	if err := b.inner.Write(); err != nil {
		return err
	}

	b.provider.mu.Lock()
	defer b.provider.mu.Unlock()
	for _, op := range b.ops {
		if op.delete {
			b.provider.applyDelete([]byte(op.key))
			continue
		}
		b.provider.applyPut([]byte(op.key), op.value)
	}
	return nil
}

// Reset clears the batch
func (b *MeteredBatch) Reset() {
	b.inner.Reset()
	b.staged = make(map[string]int64)
	b.ops = b.ops[:0]
	b.delta = 0
}

// Close releases batch resources
func (b *MeteredBatch) Close() {
	b.inner.Close()
	b.staged = nil
	b.ops = nil
}

func (b *MeteredBatch) effectiveSize(key []byte) int64 {
	if staged, ok := b.staged[string(key)]; ok {
		if staged < 0 {
			return 0
		}
		return staged
	}
	if size, ok := b.provider.SizeOf(key); ok {
		return int64(size)
	}
	return 0
}
