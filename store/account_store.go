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

// AccountStore owns the registered-account-to-balance mapping. Mutations are
// staged into a caller-supplied batch so a verb can commit all of its writes
// atomically, or none at all.
type AccountStore interface {
	GetByAddr(addr string) (*types.Account, error)
	ExistsByAddr(addr string) (bool, error)
	GetAll() ([]*types.Account, error)
	PutInBatch(batch db.DatabaseBatch, account *types.Account) error
	DeleteInBatch(batch db.DatabaseBatch, addr string)
	MustClose()
}

// accountRecord is the persisted form of an account. The balance is encoded
// fixed-width so the entry's byte size depends only on the address.
type accountRecord struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type GenericAccountStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericAccountStore(dbProvider db.DatabaseProvider) (*GenericAccountStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericAccountStore{
		dbProvider: dbProvider,
	}, nil
}

// GetByAddr returns account instance from db, return both nil if not exist
func (as *GenericAccountStore) GetByAddr(addr string) (*types.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	data, err := as.dbProvider.Get(as.getDbKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get account %s from db: %w", addr, err)
	}

	// Account is not registered
	if data == nil {
		return nil, nil
	}

	return decodeAccount(addr, data)
}

func (as *GenericAccountStore) ExistsByAddr(addr string) (bool, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.dbProvider.Has(as.getDbKey(addr))
}

// GetAll returns every registered account, used by invariant checks and the
// supply reconciliation surface.
func (as *GenericAccountStore) GetAll() ([]*types.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	iterable, ok := as.dbProvider.(db.IterableProvider)
	if !ok {
		return nil, fmt.Errorf("provider does not support iteration")
	}

	accounts := make([]*types.Account, 0)
	var iterErr error
	err := iterable.IteratePrefix([]byte(PrefixAccount), func(key, value []byte) bool {
		addr := string(key[len(PrefixAccount):])
		account, err := decodeAccount(addr, value)
		if err != nil {
			iterErr = err
			return false
		}
		accounts = append(accounts, account)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	if iterErr != nil {
		return nil, iterErr
	}
	return accounts, nil
}

// PutInBatch stages an account write into the given batch
func (as *GenericAccountStore) PutInBatch(batch db.DatabaseBatch, account *types.Account) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	record := accountRecord{
		Address: account.Address,
		Balance: utils.Uint256ToHex64(account.Balance),
	}
	data, err := jsonx.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal account %s: %w", account.Address, err)
	}

	batch.Put(as.getDbKey(account.Address), data)
	return nil
}

// DeleteInBatch stages an account removal into the given batch
func (as *GenericAccountStore) DeleteInBatch(batch db.DatabaseBatch, addr string) {
	as.mu.Lock()
	defer as.mu.Unlock()

	batch.Delete(as.getDbKey(addr))
}

func (as *GenericAccountStore) MustClose() {
	err := as.dbProvider.Close()
	if err != nil {
		logx.Error("ACCOUNT_STORE", "Failed to close db provider:", err.Error())
	}
}

func (as *GenericAccountStore) getDbKey(addr string) []byte {
	return []byte(PrefixAccount + addr)
}

func decodeAccount(addr string, data []byte) (*types.Account, error) {
	var record accountRecord
	if err := jsonx.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account %s: %w", addr, err)
	}
	balance, err := utils.Uint256FromHex64(record.Balance)
	if err != nil {
		return nil, fmt.Errorf("failed to decode balance of account %s: %w", addr, err)
	}
	return &types.Account{
		Address: record.Address,
		Balance: balance,
	}, nil
}
