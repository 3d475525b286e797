package token

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/holiman/uint256"

	"ftn/db"
	"ftn/errors"
	"ftn/events"
	"ftn/ledger"
	"ftn/logx"
	"ftn/monitoring"
	"ftn/store"
	"ftn/types"
	"ftn/utils"
	"ftn/validation"
)

// Token is the capped-supply fungible token engine. It composes the account
// store and the supply ledger into atomic balance-changing verbs, wraps every
// mutating verb in storage settlement, and fires observational events after
// irreversible mutations commit.
//
// There is exactly one live instance per deployed ledger. The hosting
// environment serializes verb invocations; the mutex restates that guarantee
// in-process.
type Token struct {
	mu       sync.Mutex
	accounts store.AccountStore
	state    store.StateStore
	provider *db.MeteredProvider
	metadata *types.Metadata
	eventBus *events.EventBus
	refunder Refunder

	storagePrice           *uint256.Int
	autoRegisterRecipients bool
}

// Options carries the collaborator wiring for a token instance.
type Options struct {
	// StoragePricePerByte is the payment owed per byte of backing-store
	// growth. Defaults to DefaultStoragePricePerByte.
	StoragePricePerByte *uint256.Int

	// AutoRegisterRecipients makes transfer create missing recipient
	// accounts, charging the sender for the storage growth. When false a
	// transfer to an unregistered account is rejected.
	AutoRegisterRecipients bool

	// Refunder receives unused attached payments. Defaults to LogRefunder.
	Refunder Refunder

	// EventBus receives post-commit events. Optional.
	EventBus *events.EventBus
}

func (o *Options) withDefaults() *Options {
	opts := &Options{}
	if o != nil {
		*opts = *o
	}
	if opts.StoragePricePerByte == nil {
		opts.StoragePricePerByte = uint256.NewInt(DefaultStoragePricePerByte)
	}
	if opts.Refunder == nil {
		opts.Refunder = LogRefunder{}
	}
	return opts
}

// Init constructs the singleton ledger state: owner, metadata and supply cap.
// It fails with already_initialized when a state record exists, so a deployed
// ledger can never be re-initialized over.
func Init(accounts store.AccountStore, stateStore store.StateStore, provider *db.MeteredProvider,
	owner string, metadata *types.Metadata, maxSupply *uint256.Int, opts *Options) (*Token, error) {

	existing, err := stateStore.GetState()
	if err != nil {
		return nil, fmt.Errorf("could not check for existing ledger state: %w", err)
	}
	if existing != nil {
		return nil, errors.NewError(errors.ErrCodeAlreadyInitialized, errors.ErrMsgAlreadyInitialized)
	}

	if err := validation.ValidateAddress(owner); err != nil {
		return nil, err
	}
	if err := metadata.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}
	if !types.FitsU128(maxSupply) {
		return nil, errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow)
	}

	st := &types.LedgerState{
		Owner:       owner,
		TotalSupply: uint256.NewInt(0),
		MaxSupply:   new(uint256.Int).Set(maxSupply),
	}

	batch := provider.MeteredBatch()
	defer batch.Close()
	if err := stateStore.PutStateInBatch(batch, st); err != nil {
		return nil, err
	}
	if err := stateStore.PutMetadataInBatch(batch, metadata); err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, fmt.Errorf("failed to commit initial ledger state: %w", err)
	}

	logx.Info("TOKEN", fmt.Sprintf("Initialized ledger | owner=%s | symbol=%s | max_supply=%s",
		owner, metadata.Symbol, utils.Uint256ToString(maxSupply)))

	return open(accounts, stateStore, provider, metadata, opts)
}

// Open attaches to an already initialized ledger.
func Open(accounts store.AccountStore, stateStore store.StateStore, provider *db.MeteredProvider, opts *Options) (*Token, error) {
	st, err := stateStore.GetState()
	if err != nil {
		return nil, fmt.Errorf("could not load ledger state: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("ledger state not initialized, run init first")
	}

	metadata, err := stateStore.GetMetadata()
	if err != nil {
		return nil, fmt.Errorf("could not load metadata: %w", err)
	}
	if metadata == nil {
		return nil, fmt.Errorf("metadata record missing, ledger state is corrupt")
	}

	return open(accounts, stateStore, provider, metadata, opts)
}

func open(accounts store.AccountStore, stateStore store.StateStore, provider *db.MeteredProvider,
	metadata *types.Metadata, opts *Options) (*Token, error) {

	o := opts.withDefaults()
	t := &Token{
		accounts:               accounts,
		state:                  stateStore,
		provider:               provider,
		metadata:               metadata,
		eventBus:               o.EventBus,
		refunder:               o.Refunder,
		storagePrice:           o.StoragePricePerByte,
		autoRegisterRecipients: o.AutoRegisterRecipients,
	}
	t.publishGauges()
	return t, nil
}

// --- Public mutating verbs ---

// Mint creates amount new tokens on account, registering it first when
// absent. Owner-only. The supply-cap check runs before any balance is staged,
// so a cap failure never touches balances. Returns the minted amount as an
// acknowledgment echo.
func (t *Token) Mint(ctx CallContext, account string, amount *uint256.Int) (*uint256.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.loadState()
	if err != nil {
		return nil, t.reject(monitoring.VerbMint, err)
	}
	if err := t.assertOwner(st, ctx.Caller); err != nil {
		return nil, t.reject(monitoring.VerbMint, err)
	}
	if err := validation.ValidateAddress(account); err != nil {
		return nil, t.reject(monitoring.VerbMint, err)
	}

	supply := ledger.NewSupply(st.TotalSupply, st.MaxSupply)
	newTotal, err := supply.Mint(amount)
	if err != nil {
		return nil, t.reject(monitoring.VerbMint, err)
	}

	acct, err := t.accounts.GetByAddr(account)
	if err != nil {
		return nil, t.reject(monitoring.VerbMint, t.internal(err))
	}
	if acct == nil {
		acct = &types.Account{Address: account, Balance: uint256.NewInt(0)}
	}
	newBalance, ok := types.AddU128(acct.Balance, amount)
	if !ok {
		return nil, t.reject(monitoring.VerbMint, errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow))
	}

	batch := t.provider.MeteredBatch()
	defer batch.Close()

	acct.Balance = newBalance
	if err := t.accounts.PutInBatch(batch, acct); err != nil {
		return nil, t.reject(monitoring.VerbMint, t.internal(err))
	}
	st.TotalSupply = newTotal
	if err := t.state.PutStateInBatch(batch, st); err != nil {
		return nil, t.reject(monitoring.VerbMint, t.internal(err))
	}

	refund, err := t.settleAndCommit(batch, ctx.attached())
	if err != nil {
		return nil, t.reject(monitoring.VerbMint, err)
	}
	t.issueRefund(ctx.Caller, refund)

	logx.Info("TOKEN", fmt.Sprintf("Minted %s to @%s | total_supply=%s",
		utils.Uint256ToString(amount), account, utils.Uint256ToString(newTotal)))
	monitoring.RecordVerb(monitoring.VerbMint)
	t.publishGauges()

	return new(uint256.Int).Set(amount), nil
}

// Burn removes amount tokens from account and the total supply. Owner-only
// and gated on the confirm-unit attachment since the destruction is
// irreversible. Fires the tokens-burned hook after commit.
func (t *Token) Burn(ctx CallContext, account string, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.loadState()
	if err != nil {
		return t.reject(monitoring.VerbBurn, err)
	}
	if err := t.assertOwner(st, ctx.Caller); err != nil {
		return t.reject(monitoring.VerbBurn, err)
	}
	if err := requireConfirmUnit(ctx); err != nil {
		return t.reject(monitoring.VerbBurn, err)
	}
	if err := validation.ValidateAddress(account); err != nil {
		return t.reject(monitoring.VerbBurn, err)
	}

	acct, err := t.accounts.GetByAddr(account)
	if err != nil {
		return t.reject(monitoring.VerbBurn, t.internal(err))
	}
	if acct == nil {
		return t.reject(monitoring.VerbBurn, errors.NewError(errors.ErrCodeAccountNotRegistered, errors.ErrMsgAccountNotRegistered))
	}
	if amount.Cmp(acct.Balance) > 0 {
		return t.reject(monitoring.VerbBurn, errors.NewError(errors.ErrCodeInsufficientBalance, errors.ErrMsgInsufficientBalance))
	}

	// The withdrawal succeeded, so a supply underflow here is an internal
	// consistency violation.
	supply := ledger.NewSupply(st.TotalSupply, st.MaxSupply)
	if err := supply.Burn(amount); err != nil {
		return t.reject(monitoring.VerbBurn, err)
	}

	batch := t.provider.MeteredBatch()
	defer batch.Close()

	acct.Balance = new(uint256.Int).Sub(acct.Balance, amount)
	if err := t.accounts.PutInBatch(batch, acct); err != nil {
		return t.reject(monitoring.VerbBurn, t.internal(err))
	}
	st.TotalSupply = supply.Total()
	if err := t.state.PutStateInBatch(batch, st); err != nil {
		return t.reject(monitoring.VerbBurn, t.internal(err))
	}

	// The confirm unit is consumed as the intent signal and excluded from
	// storage settlement.
	refund, err := t.settleAndCommit(batch, uint256.NewInt(0))
	if err != nil {
		return t.reject(monitoring.VerbBurn, err)
	}
	t.issueRefund(ctx.Caller, refund)

	logx.Info("TOKEN", fmt.Sprintf("Account @%s burned %s | total_supply=%s",
		account, utils.Uint256ToString(amount), utils.Uint256ToString(st.TotalSupply)))
	monitoring.RecordVerb(monitoring.VerbBurn)
	t.publishGauges()

	if t.eventBus != nil {
		t.eventBus.Publish(events.NewTokensBurned(account, amount))
	}
	return nil
}

// Transfer moves amount from the caller to another registered account. Both
// legs are staged together: a receiver-side overflow aborts the whole verb
// before anything is written.
func (t *Token) Transfer(ctx CallContext, to string, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	from := ctx.Caller
	if err := validation.ValidateAddress(from); err != nil {
		return t.reject(monitoring.VerbTransfer, err)
	}
	if err := validation.ValidateAddress(to); err != nil {
		return t.reject(monitoring.VerbTransfer, err)
	}
	if from == to {
		return t.reject(monitoring.VerbTransfer, errors.NewError(errors.ErrCodeSelfTransfer, errors.ErrMsgSelfTransfer))
	}
	if amount == nil || amount.IsZero() {
		return t.reject(monitoring.VerbTransfer, errors.NewError(errors.ErrCodeZeroAmount, errors.ErrMsgZeroAmount))
	}

	sender, err := t.accounts.GetByAddr(from)
	if err != nil {
		return t.reject(monitoring.VerbTransfer, t.internal(err))
	}
	if sender == nil {
		return t.reject(monitoring.VerbTransfer, errors.NewError(errors.ErrCodeAccountNotRegistered, errors.ErrMsgAccountNotRegistered))
	}

	recipient, err := t.accounts.GetByAddr(to)
	if err != nil {
		return t.reject(monitoring.VerbTransfer, t.internal(err))
	}
	if recipient == nil {
		if !t.autoRegisterRecipients {
			return t.reject(monitoring.VerbTransfer, errors.NewError(errors.ErrCodeAccountNotRegistered, errors.ErrMsgAccountNotRegistered))
		}
		recipient = &types.Account{Address: to, Balance: uint256.NewInt(0)}
	}

	if amount.Cmp(sender.Balance) > 0 {
		return t.reject(monitoring.VerbTransfer, errors.NewError(errors.ErrCodeInsufficientBalance, errors.ErrMsgInsufficientBalance))
	}
	newRecipientBalance, ok := types.AddU128(recipient.Balance, amount)
	if !ok {
		return t.reject(monitoring.VerbTransfer, errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow))
	}

	batch := t.provider.MeteredBatch()
	defer batch.Close()

	sender.Balance = new(uint256.Int).Sub(sender.Balance, amount)
	recipient.Balance = newRecipientBalance
	if err := t.accounts.PutInBatch(batch, sender); err != nil {
		return t.reject(monitoring.VerbTransfer, t.internal(err))
	}
	if err := t.accounts.PutInBatch(batch, recipient); err != nil {
		return t.reject(monitoring.VerbTransfer, t.internal(err))
	}

	refund, err := t.settleAndCommit(batch, ctx.attached())
	if err != nil {
		return t.reject(monitoring.VerbTransfer, err)
	}
	t.issueRefund(from, refund)

	logx.Info("TOKEN", fmt.Sprintf("Transferred %s from @%s to @%s",
		utils.Uint256ToString(amount), from, to))
	monitoring.RecordVerb(monitoring.VerbTransfer)
	t.publishGauges()

	return nil
}

// Register creates a zero-balance entry for account. Idempotent: registering
// an already registered account only settles the (zero-growth) storage and
// refunds the full attachment. Anyone may pay to register any account.
func (t *Token) Register(ctx CallContext, account string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := validation.ValidateAddress(account); err != nil {
		return t.reject(monitoring.VerbRegister, err)
	}

	existing, err := t.accounts.GetByAddr(account)
	if err != nil {
		return t.reject(monitoring.VerbRegister, t.internal(err))
	}

	batch := t.provider.MeteredBatch()
	defer batch.Close()

	if existing == nil {
		acct := &types.Account{Address: account, Balance: uint256.NewInt(0)}
		if err := t.accounts.PutInBatch(batch, acct); err != nil {
			return t.reject(monitoring.VerbRegister, t.internal(err))
		}
	}

	refund, err := t.settleAndCommit(batch, ctx.attached())
	if err != nil {
		return t.reject(monitoring.VerbRegister, err)
	}
	t.issueRefund(ctx.Caller, refund)

	if existing == nil {
		logx.Info("TOKEN", fmt.Sprintf("Registered account @%s", account))
	}
	monitoring.RecordVerb(monitoring.VerbRegister)
	t.publishGauges()

	return nil
}

// Unregister removes the caller's own zero-balance entry, refunding its
// storage share. Gated on the confirm-unit attachment. Fires the
// account-closed hook after commit.
func (t *Token) Unregister(ctx CallContext) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	account := ctx.Caller
	if err := validation.ValidateAddress(account); err != nil {
		return t.reject(monitoring.VerbUnregister, err)
	}
	if err := requireConfirmUnit(ctx); err != nil {
		return t.reject(monitoring.VerbUnregister, err)
	}

	acct, err := t.accounts.GetByAddr(account)
	if err != nil {
		return t.reject(monitoring.VerbUnregister, t.internal(err))
	}
	if acct == nil {
		return t.reject(monitoring.VerbUnregister, errors.NewError(errors.ErrCodeAccountNotRegistered, errors.ErrMsgAccountNotRegistered))
	}
	if !acct.Balance.IsZero() {
		return t.reject(monitoring.VerbUnregister, errors.NewError(errors.ErrCodeAccountNotEmpty, errors.ErrMsgAccountNotEmpty))
	}

	batch := t.provider.MeteredBatch()
	defer batch.Close()
	t.accounts.DeleteInBatch(batch, account)

	// The confirm unit is consumed; the refund covers the released bytes.
	refund, err := t.settleAndCommit(batch, uint256.NewInt(0))
	if err != nil {
		return t.reject(monitoring.VerbUnregister, err)
	}
	t.issueRefund(account, refund)

	logx.Info("TOKEN", fmt.Sprintf("Closed @%s with %s", account, utils.Uint256ToString(acct.Balance)))
	monitoring.RecordVerb(monitoring.VerbUnregister)
	t.publishGauges()

	if t.eventBus != nil {
		t.eventBus.Publish(events.NewAccountClosed(account, acct.Balance))
	}
	return nil
}

// SetOwner transfers ownership unconditionally. Owner-only. Returns the new
// owner for confirmation.
func (t *Token) SetOwner(ctx CallContext, newOwner string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.loadState()
	if err != nil {
		return "", t.reject(monitoring.VerbSetOwner, err)
	}
	if err := t.assertOwner(st, ctx.Caller); err != nil {
		return "", t.reject(monitoring.VerbSetOwner, err)
	}
	if err := validation.ValidateAddress(newOwner); err != nil {
		return "", t.reject(monitoring.VerbSetOwner, err)
	}

	batch := t.provider.MeteredBatch()
	defer batch.Close()

	st.Owner = newOwner
	if err := t.state.PutStateInBatch(batch, st); err != nil {
		return "", t.reject(monitoring.VerbSetOwner, t.internal(err))
	}
	if err := batch.Write(); err != nil {
		return "", t.reject(monitoring.VerbSetOwner, t.internal(err))
	}

	logx.Info("TOKEN", fmt.Sprintf("Ownership transferred to @%s", newOwner))
	monitoring.RecordVerb(monitoring.VerbSetOwner)

	return newOwner, nil
}

// SetMaxSupply replaces the supply cap. Owner-only, confirm-unit gated. A cap
// below the current total stands as a latent non-mintable state.
func (t *Token) SetMaxSupply(ctx CallContext, newCap *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, err := t.loadState()
	if err != nil {
		return t.reject(monitoring.VerbSetMaxSupply, err)
	}
	if err := t.assertOwner(st, ctx.Caller); err != nil {
		return t.reject(monitoring.VerbSetMaxSupply, err)
	}
	if err := requireConfirmUnit(ctx); err != nil {
		return t.reject(monitoring.VerbSetMaxSupply, err)
	}
	if !types.FitsU128(newCap) {
		return t.reject(monitoring.VerbSetMaxSupply, errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow))
	}

	supply := ledger.NewSupply(st.TotalSupply, st.MaxSupply)
	supply.SetCap(newCap)

	batch := t.provider.MeteredBatch()
	defer batch.Close()

	st.MaxSupply = supply.Cap()
	if err := t.state.PutStateInBatch(batch, st); err != nil {
		return t.reject(monitoring.VerbSetMaxSupply, t.internal(err))
	}
	if err := batch.Write(); err != nil {
		return t.reject(monitoring.VerbSetMaxSupply, t.internal(err))
	}

	logx.Info("TOKEN", fmt.Sprintf("Supply cap set to %s", utils.Uint256ToString(newCap)))
	monitoring.RecordVerb(monitoring.VerbSetMaxSupply)

	return nil
}

// --- Read-only verbs ---

// BalanceOf returns the balance of account, zero for unregistered accounts.
// Never errors.
func (t *Token) BalanceOf(account string) *uint256.Int {
	acct, err := t.accounts.GetByAddr(account)
	if err != nil || acct == nil {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(acct.Balance)
}

// TotalSupply returns the current total supply
func (t *Token) TotalSupply() *uint256.Int {
	st, err := t.loadState()
	if err != nil {
		return uint256.NewInt(0)
	}
	return st.TotalSupply
}

// MaxSupply returns the current supply cap
func (t *Token) MaxSupply() *uint256.Int {
	st, err := t.loadState()
	if err != nil {
		return uint256.NewInt(0)
	}
	return st.MaxSupply
}

// Owner returns the current contract owner
func (t *Token) Owner() (string, error) {
	st, err := t.loadState()
	if err != nil {
		return "", err
	}
	return st.Owner, nil
}

// Metadata returns the immutable token metadata record
func (t *Token) Metadata() *types.Metadata {
	m := *t.metadata
	return &m
}

// StorageUsage returns the tracked byte usage of the backing store
func (t *Token) StorageUsage() uint64 {
	return t.provider.UsedBytes()
}

// RegisteredAccounts returns every registered account
func (t *Token) RegisteredAccounts() ([]*types.Account, error) {
	return t.accounts.GetAll()
}

// VerifySupply checks the conservation invariant: the total supply must equal
// the sum of all balances. Used by tests and the health surface.
func (t *Token) VerifySupply() error {
	accounts, err := t.accounts.GetAll()
	if err != nil {
		return fmt.Errorf("could not enumerate accounts: %w", err)
	}

	sum := uint256.NewInt(0)
	for _, acct := range accounts {
		var ok bool
		sum, ok = types.AddU128(sum, acct.Balance)
		if !ok {
			return errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow)
		}
	}

	total := t.TotalSupply()
	if sum.Cmp(total) != 0 {
		return fmt.Errorf("supply mismatch: total_supply=%s, sum_of_balances=%s",
			utils.Uint256ToString(total), utils.Uint256ToString(sum))
	}
	return nil
}

// --- Internals ---

func (t *Token) loadState() (*types.LedgerState, error) {
	st, err := t.state.GetState()
	if err != nil {
		return nil, t.internal(err)
	}
	if st == nil {
		return nil, t.internal(fmt.Errorf("ledger state missing"))
	}
	return st, nil
}

// assertOwner runs before any other step of a privileged verb, so
// unauthorized calls never reach storage measurement.
func (t *Token) assertOwner(st *types.LedgerState, caller string) error {
	if caller != st.Owner {
		return errors.NewError(errors.ErrCodeNotAuthorized, errors.ErrMsgNotAuthorized)
	}
	return nil
}

// settleAndCommit measures the staged byte delta, settles it against the
// attached payment and commits the batch. On a settlement failure the batch
// is discarded and no state is written.
func (t *Token) settleAndCommit(batch *db.MeteredBatch, attached *uint256.Int) (*uint256.Int, error) {
	_, refund, err := settleStorage(batch.PendingDelta(), attached, t.storagePrice)
	if err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, t.internal(err)
	}
	return refund, nil
}

func (t *Token) issueRefund(account string, amount *uint256.Int) {
	if amount == nil || amount.IsZero() {
		return
	}
	t.refunder.Refund(account, amount)
	monitoring.IncreaseRefundCount()
}

func (t *Token) reject(verb string, err error) error {
	monitoring.RecordRejectedVerb(verb, string(errors.CodeOf(err)))
	return err
}

func (t *Token) internal(err error) error {
	logx.Error("TOKEN", err.Error())
	return errors.NewError(errors.ErrCodeInternal, errors.ErrMsgInternal)
}

func (t *Token) publishGauges() {
	total, _ := strconv.ParseFloat(utils.Uint256ToString(t.TotalSupply()), 64)
	monitoring.SetTotalSupply(total)
	monitoring.SetStorageUsedBytes(t.provider.UsedBytes())
	if accounts, err := t.accounts.GetAll(); err == nil {
		monitoring.SetRegisteredAccounts(len(accounts))
	}
}
