package store

import (
	"fmt"
	"sync"

	"ftn/db"
	"ftn/jsonx"
	"ftn/logx"
	"ftn/types"
	"ftn/utils"
)

// StateStore persists the singleton ledger state (owner, supply counters) and
// the immutable metadata record.
type StateStore interface {
	GetState() (*types.LedgerState, error)
	PutStateInBatch(batch db.DatabaseBatch, state *types.LedgerState) error
	GetMetadata() (*types.Metadata, error)
	PutMetadataInBatch(batch db.DatabaseBatch, metadata *types.Metadata) error
	MustClose()
}

// stateRecord is the persisted form of the ledger state. Supply counters are
// fixed-width so mint and burn never change the record's byte size.
type stateRecord struct {
	Owner       string `json:"owner"`
	TotalSupply string `json:"total_supply"`
	MaxSupply   string `json:"max_supply"`
}

type GenericStateStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericStateStore(dbProvider db.DatabaseProvider) (*GenericStateStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericStateStore{
		dbProvider: dbProvider,
	}, nil
}

// GetState returns the ledger state, or both nil when the ledger has not been
// initialized yet.
func (ss *GenericStateStore) GetState() (*types.LedgerState, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	data, err := ss.dbProvider.Get(ss.getDbKey(StateKeyLedger))
	if err != nil {
		return nil, fmt.Errorf("could not get ledger state from db: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var record stateRecord
	if err := jsonx.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger state: %w", err)
	}

	total, err := utils.Uint256FromHex64(record.TotalSupply)
	if err != nil {
		return nil, fmt.Errorf("failed to decode total supply: %w", err)
	}
	max, err := utils.Uint256FromHex64(record.MaxSupply)
	if err != nil {
		return nil, fmt.Errorf("failed to decode max supply: %w", err)
	}

	return &types.LedgerState{
		Owner:       record.Owner,
		TotalSupply: total,
		MaxSupply:   max,
	}, nil
}

// PutStateInBatch stages a ledger state write into the given batch
func (ss *GenericStateStore) PutStateInBatch(batch db.DatabaseBatch, state *types.LedgerState) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	record := stateRecord{
		Owner:       state.Owner,
		TotalSupply: utils.Uint256ToHex64(state.TotalSupply),
		MaxSupply:   utils.Uint256ToHex64(state.MaxSupply),
	}
	data, err := jsonx.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger state: %w", err)
	}

	batch.Put(ss.getDbKey(StateKeyLedger), data)
	return nil
}

// GetMetadata returns the metadata record, or both nil when absent
func (ss *GenericStateStore) GetMetadata() (*types.Metadata, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	data, err := ss.dbProvider.Get(ss.getDbKey(StateKeyMetadata))
	if err != nil {
		return nil, fmt.Errorf("could not get metadata from db: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var metadata types.Metadata
	if err := jsonx.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &metadata, nil
}

// PutMetadataInBatch stages the metadata record into the given batch
func (ss *GenericStateStore) PutMetadataInBatch(batch db.DatabaseBatch, metadata *types.Metadata) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	data, err := jsonx.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	batch.Put(ss.getDbKey(StateKeyMetadata), data)
	return nil
}

func (ss *GenericStateStore) MustClose() {
	err := ss.dbProvider.Close()
	if err != nil {
		logx.Error("STATE_STORE", "Failed to close db provider:", err.Error())
	}
}

func (ss *GenericStateStore) getDbKey(key string) []byte {
	return []byte(PrefixState + key)
}
