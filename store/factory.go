package store

import (
	"fmt"
	"path/filepath"

	"ftn/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// BoltDBStoreType uses the bbolt implementation
	BoltDBStoreType StoreType = "boltdb"

	// MemDBStoreType uses the in-memory implementation (tests and tooling)
	MemDBStoreType StoreType = "memdb"
)

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	// Type specifies which store implementation to use
	Type StoreType `json:"type" yaml:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `json:"directory" yaml:"directory"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	if sc.Type == "" {
		return fmt.Errorf("store type cannot be empty")
	}

	switch sc.Type {
	case LevelDBStoreType, BoltDBStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty")
		}
		return nil
	case MemDBStoreType:
		return nil
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// StoreFactory take responsibility to create store instances
type StoreFactory struct{}

// NewStoreFactory creates a new store factory
func NewStoreFactory() *StoreFactory {
	return &StoreFactory{}
}

// CreateStoreWithProvider creates store instances sharing one metered provider
func (sf *StoreFactory) CreateStoreWithProvider(config *StoreConfig) (AccountStore, StateStore, *db.MeteredProvider, error) {
	if config == nil {
		return nil, nil, nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	provider, err := sf.CreateProvider(config)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create provider: %w", err)
	}

	accStore, err := NewGenericAccountStore(provider)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create account store: %w", err)
	}

	stateStore, err := NewGenericStateStore(provider)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create state store: %w", err)
	}

	return accStore, stateStore, provider, nil
}

// CreateProvider creates a metered database provider based on the
// configuration. All ledger writes must go through the metered wrapper so the
// storage usage index stays exact.
func (sf *StoreFactory) CreateProvider(config *StoreConfig) (*db.MeteredProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		inner db.IterableProvider
		err   error
	)
	switch config.Type {
	case LevelDBStoreType:
		inner, err = db.NewLevelDBProvider(config.Directory)

	case BoltDBStoreType:
		inner, err = db.NewBoltDBProvider(filepath.Join(config.Directory, "ledger.db"))

	case MemDBStoreType:
		inner = db.NewMemDBProvider()

	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	return db.NewMeteredProvider(inner)
}

// Global factory instance
var globalFactory = NewStoreFactory()

// CreateStore creates new store instances using the global factory
func CreateStore(config *StoreConfig) (AccountStore, StateStore, *db.MeteredProvider, error) {
	return globalFactory.CreateStoreWithProvider(config)
}
