package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftn/common"
	"ftn/errors"
	"ftn/events"
	"ftn/store"
	"ftn/types"
)

// ----------------- Helpers / Mocks -----------------

var addrStore = map[string]string{}
var addrMu sync.Mutex

// testAddr returns a stable, valid base58 account address per name.
func testAddr(name string) string {
	addrMu.Lock()
	defer addrMu.Unlock()
	if addr, ok := addrStore[name]; ok {
		return addr
	}
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	addr := common.EncodeBytesToBase58(pub)
	addrStore[name] = addr
	return addr
}

// recordingRefunder captures every refund for assertions.
type recordingRefunder struct {
	mu      sync.Mutex
	refunds []*uint256.Int
}

func (r *recordingRefunder) Refund(account string, amount *uint256.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunds = append(r.refunds, new(uint256.Int).Set(amount))
}

func (r *recordingRefunder) last() *uint256.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.refunds) == 0 {
		return nil
	}
	return r.refunds[len(r.refunds)-1]
}

func (r *recordingRefunder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refunds)
}

func testMetadata() *types.Metadata {
	return &types.Metadata{
		Spec:     types.MetadataSpec,
		Name:     "Test Token",
		Symbol:   "TST",
		Decimals: 8,
	}
}

// newTestLedger initializes a fresh in-memory ledger with the given cap.
func newTestLedger(t *testing.T, maxSupply uint64, opts *Options) (*Token, *recordingRefunder) {
	t.Helper()

	accounts, state, provider, err := store.CreateStore(&store.StoreConfig{Type: store.MemDBStoreType})
	require.NoError(t, err)

	refunder := &recordingRefunder{}
	if opts == nil {
		opts = &Options{}
	}
	opts.Refunder = refunder

	tok, err := Init(accounts, state, provider, testAddr("owner"), testMetadata(), uint256.NewInt(maxSupply), opts)
	require.NoError(t, err)
	return tok, refunder
}

func ownerCall(attached uint64) CallContext {
	return NewCallContext(testAddr("owner"), uint256.NewInt(attached))
}

func callAs(name string, attached uint64) CallContext {
	return NewCallContext(testAddr(name), uint256.NewInt(attached))
}

// registrationCost measures the storage cost of registering account by
// attaching a surplus payment and reading back the refund.
func registrationCost(t *testing.T, tok *Token, refunder *recordingRefunder, account string) uint64 {
	t.Helper()
	surplus := uint256.NewInt(100_000_000)
	require.NoError(t, tok.Register(NewCallContext(testAddr("payer"), surplus), account))
	refund := refunder.last()
	require.NotNil(t, refund)
	cost := new(uint256.Int).Sub(surplus, refund)
	return cost.Uint64()
}

// ----------------- Construction -----------------

func TestInitRejectsReinitialization(t *testing.T) {
	accounts, state, provider, err := store.CreateStore(&store.StoreConfig{Type: store.MemDBStoreType})
	require.NoError(t, err)

	_, err = Init(accounts, state, provider, testAddr("owner"), testMetadata(), uint256.NewInt(1000), nil)
	require.NoError(t, err)

	_, err = Init(accounts, state, provider, testAddr("owner"), testMetadata(), uint256.NewInt(2000), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAlreadyInitialized))
}

func TestOpenRequiresInitializedState(t *testing.T) {
	accounts, state, provider, err := store.CreateStore(&store.StoreConfig{Type: store.MemDBStoreType})
	require.NoError(t, err)

	_, err = Open(accounts, state, provider, nil)
	require.Error(t, err)
}

func TestOpenLoadsPersistedState(t *testing.T) {
	accounts, state, provider, err := store.CreateStore(&store.StoreConfig{Type: store.MemDBStoreType})
	require.NoError(t, err)

	_, err = Init(accounts, state, provider, testAddr("owner"), testMetadata(), uint256.NewInt(5000), nil)
	require.NoError(t, err)

	tok, err := Open(accounts, state, provider, nil)
	require.NoError(t, err)

	owner, err := tok.Owner()
	require.NoError(t, err)
	assert.Equal(t, testAddr("owner"), owner)
	assert.Equal(t, uint256.NewInt(5000), tok.MaxSupply())
	assert.Equal(t, "TST", tok.Metadata().Symbol)
}

// ----------------- Mint -----------------

func TestMintIncreasesSupplyAndBalance(t *testing.T) {
	tok, _ := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")

	minted, err := tok.Mint(ownerCall(100_000_000), alice, uint256.NewInt(700_000))
	require.NoError(t, err)

	assert.Equal(t, uint256.NewInt(700_000), minted)
	assert.Equal(t, uint256.NewInt(700_000), tok.BalanceOf(alice))
	assert.Equal(t, uint256.NewInt(700_000), tok.TotalSupply())
	require.NoError(t, tok.VerifySupply())
}

func TestMintEnforcesSupplyCap(t *testing.T) {
	tok, _ := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")

	_, err := tok.Mint(ownerCall(100_000_000), alice, uint256.NewInt(700_000))
	require.NoError(t, err)

	// 700k + 400k exceeds the 1M cap; nothing may change.
	_, err = tok.Mint(ownerCall(100_000_000), alice, uint256.NewInt(400_000))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeOverflow))
	assert.Equal(t, uint256.NewInt(700_000), tok.TotalSupply())
	assert.Equal(t, uint256.NewInt(700_000), tok.BalanceOf(alice))
	require.NoError(t, tok.VerifySupply())

	// Minting exactly up to the cap is allowed.
	_, err = tok.Mint(ownerCall(100_000_000), alice, uint256.NewInt(300_000))
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1_000_000), tok.TotalSupply())
}

func TestMintRequiresOwner(t *testing.T) {
	tok, _ := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")

	_, err := tok.Mint(callAs("alice", 100_000_000), alice, uint256.NewInt(100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotAuthorized))
	assert.True(t, tok.TotalSupply().IsZero())
	assert.True(t, tok.BalanceOf(alice).IsZero())
}

func TestMintToRegisteredAccountNeedsNoDeposit(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)

	// Amount records are fixed-width, so minting to an existing account does
	// not grow storage and settles cleanly with nothing attached.
	before := tok.StorageUsage()
	_, err := tok.Mint(ownerCall(0), alice, uint256.NewInt(500))
	require.NoError(t, err)
	assert.Equal(t, before, tok.StorageUsage())
	assert.Equal(t, uint256.NewInt(500), tok.BalanceOf(alice))
}

func TestMintRejectsInvalidAddress(t *testing.T) {
	tok, _ := newTestLedger(t, 1_000_000, nil)

	_, err := tok.Mint(ownerCall(100_000_000), "not-a-valid-address", uint256.NewInt(100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAddress))
}

// ----------------- Transfer -----------------

func TestTransferConservesSupply(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice, bob := testAddr("alice"), testAddr("bob")
	registrationCost(t, tok, refunder, alice)
	registrationCost(t, tok, refunder, bob)

	_, err := tok.Mint(ownerCall(0), alice, uint256.NewInt(1000))
	require.NoError(t, err)

	require.NoError(t, tok.Transfer(callAs("alice", 0), bob, uint256.NewInt(400)))

	assert.Equal(t, uint256.NewInt(600), tok.BalanceOf(alice))
	assert.Equal(t, uint256.NewInt(400), tok.BalanceOf(bob))
	assert.Equal(t, uint256.NewInt(1000), tok.TotalSupply())
	require.NoError(t, tok.VerifySupply())
}

func TestTransferRejectsSelf(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)

	err := tok.Transfer(callAs("alice", 0), alice, uint256.NewInt(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSelfTransfer))
}

func TestTransferRejectsZeroAmount(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice, bob := testAddr("alice"), testAddr("bob")
	registrationCost(t, tok, refunder, alice)
	registrationCost(t, tok, refunder, bob)

	err := tok.Transfer(callAs("alice", 0), bob, uint256.NewInt(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeZeroAmount))
}

func TestTransferRejectsInsufficientBalance(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice, bob := testAddr("alice"), testAddr("bob")
	registrationCost(t, tok, refunder, alice)
	registrationCost(t, tok, refunder, bob)

	_, err := tok.Mint(ownerCall(0), alice, uint256.NewInt(100))
	require.NoError(t, err)

	err = tok.Transfer(callAs("alice", 0), bob, uint256.NewInt(101))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInsufficientBalance))
	assert.Equal(t, uint256.NewInt(100), tok.BalanceOf(alice))
	assert.True(t, tok.BalanceOf(bob).IsZero())
}

func TestTransferRejectsUnregisteredParties(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice, bob := testAddr("alice"), testAddr("bob")

	// Unregistered sender.
	err := tok.Transfer(callAs("alice", 0), bob, uint256.NewInt(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAccountNotRegistered))

	// Registered sender, unregistered recipient.
	registrationCost(t, tok, refunder, alice)
	_, err = tok.Mint(ownerCall(0), alice, uint256.NewInt(100))
	require.NoError(t, err)

	err = tok.Transfer(callAs("alice", 0), bob, uint256.NewInt(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAccountNotRegistered))
}

func TestTransferAutoRegistersRecipientWhenEnabled(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, &Options{AutoRegisterRecipients: true})
	alice, bob := testAddr("alice"), testAddr("bob")
	registrationCost(t, tok, refunder, alice)

	_, err := tok.Mint(ownerCall(0), alice, uint256.NewInt(100))
	require.NoError(t, err)

	// The sender pays for the recipient's new entry.
	require.NoError(t, tok.Transfer(callAs("alice", 100_000_000), bob, uint256.NewInt(40)))
	assert.Equal(t, uint256.NewInt(40), tok.BalanceOf(bob))
	require.NoError(t, tok.VerifySupply())

	// Without a covering deposit the auto-registration is rejected whole.
	carol := testAddr("carol")
	err = tok.Transfer(callAs("alice", 0), carol, uint256.NewInt(10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStorageDepositInsufficient))
	assert.True(t, tok.BalanceOf(carol).IsZero())
	assert.Equal(t, uint256.NewInt(60), tok.BalanceOf(alice))
}

// ----------------- Burn -----------------

func TestBurnReducesSupply(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)

	_, err := tok.Mint(ownerCall(0), alice, uint256.NewInt(1000))
	require.NoError(t, err)

	require.NoError(t, tok.Burn(ownerCall(1), alice, uint256.NewInt(300)))
	assert.Equal(t, uint256.NewInt(700), tok.BalanceOf(alice))
	assert.Equal(t, uint256.NewInt(700), tok.TotalSupply())
	require.NoError(t, tok.VerifySupply())
}

func TestBurnRequiresConfirmUnit(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)
	_, err := tok.Mint(ownerCall(0), alice, uint256.NewInt(1000))
	require.NoError(t, err)

	for _, attached := range []uint64{0, 2, 100} {
		err = tok.Burn(ownerCall(attached), alice, uint256.NewInt(100))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidAttachedDeposit))
	}
	assert.Equal(t, uint256.NewInt(1000), tok.TotalSupply())
}

func TestBurnRequiresOwner(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)
	_, err := tok.Mint(ownerCall(0), alice, uint256.NewInt(1000))
	require.NoError(t, err)

	err = tok.Burn(callAs("alice", 1), alice, uint256.NewInt(100))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotAuthorized))
}

func TestBurnRejectsOverdraw(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)
	_, err := tok.Mint(ownerCall(0), alice, uint256.NewInt(100))
	require.NoError(t, err)

	err = tok.Burn(ownerCall(1), alice, uint256.NewInt(101))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInsufficientBalance))
	assert.Equal(t, uint256.NewInt(100), tok.TotalSupply())
}

func TestBurnFiresTokensBurnedEvent(t *testing.T) {
	bus := events.NewEventBus()
	_, ch := bus.Subscribe()

	tok, refunder := newTestLedger(t, 1_000_000, &Options{EventBus: bus})
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)
	_, err := tok.Mint(ownerCall(0), alice, uint256.NewInt(1000))
	require.NoError(t, err)

	require.NoError(t, tok.Burn(ownerCall(1), alice, uint256.NewInt(250)))

	select {
	case ev := <-ch:
		require.Equal(t, events.EventTokensBurned, ev.Type())
		assert.Equal(t, alice, ev.Account())
		burned := ev.(*events.TokensBurned)
		assert.Equal(t, uint256.NewInt(250), burned.Amount())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for tokens-burned event")
	}
}

// ----------------- Storage accounting -----------------

func TestRegisterSettlesStorageExactly(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")

	cost := registrationCost(t, tok, refunder, alice)
	require.NotZero(t, cost)

	// Empty the entry again so it can be re-registered at a known cost.
	require.NoError(t, tok.Unregister(callAs("alice", 1)))

	// Attaching cost+50 must refund exactly 50.
	require.NoError(t, tok.Register(callAs("alice", cost+50), alice))
	assert.Equal(t, uint256.NewInt(50), refunder.last())
}

func TestRegisterRejectsInsufficientDeposit(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice, bob := testAddr("alice"), testAddr("bob")

	cost := registrationCost(t, tok, refunder, alice)

	before := tok.StorageUsage()
	err := tok.Register(callAs("bob", cost/2), bob)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStorageDepositInsufficient))
	assert.Equal(t, before, tok.StorageUsage())

	accounts, err := tok.RegisteredAccounts()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestRegisterIsIdempotent(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)

	// Re-registering causes no growth; the whole attachment comes back.
	before := tok.StorageUsage()
	require.NoError(t, tok.Register(callAs("alice", 12345), alice))
	assert.Equal(t, before, tok.StorageUsage())
	assert.Equal(t, uint256.NewInt(12345), refunder.last())
}

func TestUnregisterRefundsReleasedBytes(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")

	cost := registrationCost(t, tok, refunder, alice)
	before := tok.StorageUsage()

	require.NoError(t, tok.Unregister(callAs("alice", 1)))

	// The refund matches the registration cost and the usage shrinks by the
	// entry size.
	assert.Equal(t, uint256.NewInt(cost), refunder.last())
	assert.Less(t, tok.StorageUsage(), before)
	assert.True(t, tok.BalanceOf(alice).IsZero())

	accounts, err := tok.RegisteredAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestUnregisterRejectsNonEmptyAccount(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)
	_, err := tok.Mint(ownerCall(0), alice, uint256.NewInt(1))
	require.NoError(t, err)

	err = tok.Unregister(callAs("alice", 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAccountNotEmpty))
	assert.Equal(t, uint256.NewInt(1), tok.BalanceOf(alice))
}

func TestUnregisterRequiresConfirmUnit(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)

	err := tok.Unregister(callAs("alice", 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAttachedDeposit))
}

func TestUnregisterFiresAccountClosedEvent(t *testing.T) {
	bus := events.NewEventBus()
	_, ch := bus.Subscribe()

	tok, refunder := newTestLedger(t, 1_000_000, &Options{EventBus: bus})
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)

	require.NoError(t, tok.Unregister(callAs("alice", 1)))

	select {
	case ev := <-ch:
		require.Equal(t, events.EventAccountClosed, ev.Type())
		assert.Equal(t, alice, ev.Account())
		closed := ev.(*events.AccountClosed)
		assert.True(t, closed.FinalBalance().IsZero())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for account-closed event")
	}
}

// ----------------- Administration -----------------

func TestSetOwnerTransfersControl(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)

	newOwner, err := tok.SetOwner(ownerCall(0), testAddr("successor"))
	require.NoError(t, err)
	assert.Equal(t, testAddr("successor"), newOwner)

	// The previous owner has no rights left.
	_, err = tok.Mint(ownerCall(0), alice, uint256.NewInt(10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotAuthorized))

	_, err = tok.Mint(callAs("successor", 0), alice, uint256.NewInt(10))
	require.NoError(t, err)
}

func TestSetOwnerRequiresOwner(t *testing.T) {
	tok, _ := newTestLedger(t, 1_000_000, nil)

	_, err := tok.SetOwner(callAs("alice", 0), testAddr("bob"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotAuthorized))

	owner, err := tok.Owner()
	require.NoError(t, err)
	assert.Equal(t, testAddr("owner"), owner)
}

func TestSetMaxSupplyRequiresConfirmUnit(t *testing.T) {
	tok, _ := newTestLedger(t, 1_000_000, nil)

	err := tok.SetMaxSupply(ownerCall(0), uint256.NewInt(2_000_000))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAttachedDeposit))
	assert.Equal(t, uint256.NewInt(1_000_000), tok.MaxSupply())

	require.NoError(t, tok.SetMaxSupply(ownerCall(1), uint256.NewInt(2_000_000)))
	assert.Equal(t, uint256.NewInt(2_000_000), tok.MaxSupply())
}

func TestSetMaxSupplyBelowTotalDisablesMinting(t *testing.T) {
	tok, refunder := newTestLedger(t, 1_000_000, nil)
	alice := testAddr("alice")
	registrationCost(t, tok, refunder, alice)
	_, err := tok.Mint(ownerCall(0), alice, uint256.NewInt(500_000))
	require.NoError(t, err)

	// Lowering the cap below the circulating total is allowed and leaves the
	// ledger in a non-mintable state.
	require.NoError(t, tok.SetMaxSupply(ownerCall(1), uint256.NewInt(100_000)))
	assert.Equal(t, uint256.NewInt(500_000), tok.TotalSupply())

	_, err = tok.Mint(ownerCall(0), alice, uint256.NewInt(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeOverflow))

	// Burning back under the cap re-enables minting.
	require.NoError(t, tok.Burn(ownerCall(1), alice, uint256.NewInt(450_000)))
	_, err = tok.Mint(ownerCall(0), alice, uint256.NewInt(1))
	require.NoError(t, err)
}

// ----------------- Reads -----------------

func TestBalanceOfUnregisteredIsZero(t *testing.T) {
	tok, _ := newTestLedger(t, 1_000_000, nil)
	assert.True(t, tok.BalanceOf(testAddr("nobody")).IsZero())
	assert.True(t, tok.BalanceOf("garbage").IsZero())
}

func TestMetadataIsCopied(t *testing.T) {
	tok, _ := newTestLedger(t, 1_000_000, nil)
	md := tok.Metadata()
	md.Symbol = "HAX"
	assert.Equal(t, "TST", tok.Metadata().Symbol)
}
