package store

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftn/common"
	"ftn/db"
	"ftn/types"
)

func testAddr(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return common.EncodeBytesToBase58(pub)
}

func newTestStores(t *testing.T) (AccountStore, StateStore, *db.MeteredProvider) {
	t.Helper()
	accounts, state, provider, err := CreateStore(&StoreConfig{Type: MemDBStoreType})
	require.NoError(t, err)
	return accounts, state, provider
}

func TestAccountStoreRoundTrip(t *testing.T) {
	accounts, _, provider := newTestStores(t)
	addr := testAddr(t)

	got, err := accounts.GetByAddr(addr)
	require.NoError(t, err)
	assert.Nil(t, got)

	batch := provider.MeteredBatch()
	require.NoError(t, accounts.PutInBatch(batch, &types.Account{
		Address: addr,
		Balance: uint256.NewInt(12345),
	}))
	require.NoError(t, batch.Write())
	batch.Close()

	got, err = accounts.GetByAddr(addr)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, addr, got.Address)
	assert.Equal(t, uint256.NewInt(12345), got.Balance)

	exists, err := accounts.ExistsByAddr(addr)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAccountStoreDelete(t *testing.T) {
	accounts, _, provider := newTestStores(t)
	addr := testAddr(t)

	batch := provider.MeteredBatch()
	require.NoError(t, accounts.PutInBatch(batch, &types.Account{Address: addr, Balance: uint256.NewInt(1)}))
	require.NoError(t, batch.Write())
	batch.Close()

	batch = provider.MeteredBatch()
	accounts.DeleteInBatch(batch, addr)
	require.NoError(t, batch.Write())
	batch.Close()

	got, err := accounts.GetByAddr(addr)
	require.NoError(t, err)
	assert.Nil(t, got)

	exists, err := accounts.ExistsByAddr(addr)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAccountStoreGetAll(t *testing.T) {
	accounts, _, provider := newTestStores(t)

	batch := provider.MeteredBatch()
	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, accounts.PutInBatch(batch, &types.Account{
			Address: testAddr(t),
			Balance: uint256.NewInt(i * 100),
		}))
	}
	require.NoError(t, batch.Write())
	batch.Close()

	all, err := accounts.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// Entry sizes must depend only on the address, never on the balance value.
// Storage settlement relies on this to keep balance changes byte-neutral.
func TestAccountRecordSizeIsBalanceIndependent(t *testing.T) {
	accounts, _, provider := newTestStores(t)
	addr := testAddr(t)

	batch := provider.MeteredBatch()
	require.NoError(t, accounts.PutInBatch(batch, &types.Account{Address: addr, Balance: uint256.NewInt(1)}))
	require.NoError(t, batch.Write())
	batch.Close()
	usage := provider.UsedBytes()

	huge := types.MaxU128()
	batch = provider.MeteredBatch()
	require.NoError(t, accounts.PutInBatch(batch, &types.Account{Address: addr, Balance: huge}))
	assert.Zero(t, batch.PendingDelta())
	require.NoError(t, batch.Write())
	batch.Close()

	assert.Equal(t, usage, provider.UsedBytes())
}

func TestStateStoreRoundTrip(t *testing.T) {
	_, state, provider := newTestStores(t)

	got, err := state.GetState()
	require.NoError(t, err)
	assert.Nil(t, got)

	owner := testAddr(t)
	batch := provider.MeteredBatch()
	require.NoError(t, state.PutStateInBatch(batch, &types.LedgerState{
		Owner:       owner,
		TotalSupply: uint256.NewInt(777),
		MaxSupply:   uint256.NewInt(1_000_000),
	}))
	require.NoError(t, batch.Write())
	batch.Close()

	got, err = state.GetState()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, owner, got.Owner)
	assert.Equal(t, uint256.NewInt(777), got.TotalSupply)
	assert.Equal(t, uint256.NewInt(1_000_000), got.MaxSupply)
}

func TestStateStoreSupplyChangesAreByteNeutral(t *testing.T) {
	_, state, provider := newTestStores(t)
	owner := testAddr(t)

	batch := provider.MeteredBatch()
	require.NoError(t, state.PutStateInBatch(batch, &types.LedgerState{
		Owner:       owner,
		TotalSupply: uint256.NewInt(0),
		MaxSupply:   uint256.NewInt(1),
	}))
	require.NoError(t, batch.Write())
	batch.Close()

	batch = provider.MeteredBatch()
	require.NoError(t, state.PutStateInBatch(batch, &types.LedgerState{
		Owner:       owner,
		TotalSupply: types.MaxU128(),
		MaxSupply:   types.MaxU128(),
	}))
	assert.Zero(t, batch.PendingDelta())
	require.NoError(t, batch.Write())
	batch.Close()
}

func TestStateStoreMetadataRoundTrip(t *testing.T) {
	_, state, provider := newTestStores(t)

	got, err := state.GetMetadata()
	require.NoError(t, err)
	assert.Nil(t, got)

	md := &types.Metadata{
		Spec:     types.MetadataSpec,
		Name:     "Test Token",
		Symbol:   "TST",
		Decimals: 8,
	}
	batch := provider.MeteredBatch()
	require.NoError(t, state.PutMetadataInBatch(batch, md))
	require.NoError(t, batch.Write())
	batch.Close()

	got, err = state.GetMetadata()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, md, got)
}

func TestStoreConfigValidate(t *testing.T) {
	require.Error(t, (&StoreConfig{}).Validate())
	require.Error(t, (&StoreConfig{Type: LevelDBStoreType}).Validate())
	require.Error(t, (&StoreConfig{Type: "cassandra", Directory: "/tmp/x"}).Validate())
	require.NoError(t, (&StoreConfig{Type: LevelDBStoreType, Directory: t.TempDir()}).Validate())
	require.NoError(t, (&StoreConfig{Type: MemDBStoreType}).Validate())
}

func TestCreateStoreWithLevelDB(t *testing.T) {
	dir := t.TempDir()
	accounts, state, provider, err := CreateStore(&StoreConfig{Type: LevelDBStoreType, Directory: dir})
	require.NoError(t, err)
	defer state.MustClose()

	addr := testAddr(t)
	batch := provider.MeteredBatch()
	require.NoError(t, accounts.PutInBatch(batch, &types.Account{Address: addr, Balance: uint256.NewInt(9)}))
	require.NoError(t, batch.Write())
	batch.Close()

	got, err := accounts.GetByAddr(addr)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint256.NewInt(9), got.Balance)
}
