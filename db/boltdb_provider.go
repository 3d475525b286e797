package db

import (
	"bytes"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"
)

// ledgerBucket is the single bucket holding all ledger key-value pairs.
var ledgerBucket = []byte("ledger")

// BoltDBProvider implements DatabaseProvider for bbolt
type BoltDBProvider struct {
	once sync.Once
	db   *bolt.DB
}

// NewBoltDBProvider creates a new bbolt provider backed by a single file
func NewBoltDBProvider(path string) (IterableProvider, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(ledgerBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger bucket: %w", err)
	}

	return &BoltDBProvider{db: db}, nil
}

// Get retrieves a value by key
func (p *BoltDBProvider) Get(key []byte) ([]byte, error) {
	var value []byte
	err := p.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(ledgerBucket).Get(key); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put stores a key-value pair
func (p *BoltDBProvider) Put(key, value []byte) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ledgerBucket).Put(key, value)
	})
}

// Delete removes a key-value pair
func (p *BoltDBProvider) Delete(key []byte) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ledgerBucket).Delete(key)
	})
}

// Has checks if a key exists
func (p *BoltDBProvider) Has(key []byte) (bool, error) {
	var exists bool
	err := p.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(ledgerBucket).Get(key) != nil
		return nil
	})
	return exists, err
}

// Close closes the database connection
func (p *BoltDBProvider) Close() error {
	// avoid double close when being used for multiple stores
	var err error
	p.once.Do(func() {
		err = p.db.Close()
	})
	return err
}

// Batch returns a new batch for atomic operations
func (p *BoltDBProvider) Batch() DatabaseBatch {
	return &BoltDBBatch{db: p.db}
}

// IteratePrefix iterates over all key-value pairs with the given prefix
func (p *BoltDBProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	return p.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(ledgerBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil; k, v = c.Next() {
			if len(prefix) > 0 && !bytes.HasPrefix(k, prefix) {
				break
			}
			if !callback(k, v) {
				break
			}
		}
		return nil
	})
}

type boltOp struct {
	key    []byte
	value  []byte
	delete bool
}

// BoltDBBatch implements DatabaseBatch for bbolt. Operations are buffered and
// committed inside a single update transaction on Write.
type BoltDBBatch struct {
	db  *bolt.DB
	ops []boltOp
}

// Put adds a key-value pair to the batch
func (b *BoltDBBatch) Put(key, value []byte) {
	b.ops = append(b.ops, boltOp{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	})
}

// Delete adds a deletion to the batch
func (b *BoltDBBatch) Delete(key []byte) {
	b.ops = append(b.ops, boltOp{
		key:    append([]byte(nil), key...),
		delete: true,
	})
}

// Write commits all operations in the batch
func (b *BoltDBBatch) Write() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(ledgerBucket)
		for _, op := range b.ops {
			if op.delete {
				if err := bucket.Delete(op.key); err != nil {
					return err
				}
				continue
			}
			if err := bucket.Put(op.key, op.value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reset clears the batch
func (b *BoltDBBatch) Reset() {
	b.ops = b.ops[:0]
}

// Close releases batch resources
func (b *BoltDBBatch) Close() {
	b.ops = nil
}
