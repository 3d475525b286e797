package events

import (
	"time"

	"github.com/holiman/uint256"
)

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventAccountClosed EventType = "AccountClosed"
	EventTokensBurned  EventType = "TokensBurned"
)

// LedgerEvent represents an observational event fired strictly after an
// irreversible mutation has committed. Subscribers can never abort the verb
// that produced the event.
type LedgerEvent interface {
	Type() EventType
	Timestamp() time.Time
	Account() string
}

// AccountClosed event when a zero-balance account is unregistered
type AccountClosed struct {
	account      string
	finalBalance *uint256.Int
	timestamp    time.Time
}

func NewAccountClosed(account string, finalBalance *uint256.Int) *AccountClosed {
	return &AccountClosed{
		account:      account,
		finalBalance: new(uint256.Int).Set(finalBalance),
		timestamp:    time.Now(),
	}
}

func (e *AccountClosed) Type() EventType {
	return EventAccountClosed
}

func (e *AccountClosed) Timestamp() time.Time {
	return e.timestamp
}

func (e *AccountClosed) Account() string {
	return e.account
}

func (e *AccountClosed) FinalBalance() *uint256.Int {
	return new(uint256.Int).Set(e.finalBalance)
}

// TokensBurned event when tokens are removed from the total supply
type TokensBurned struct {
	account   string
	amount    *uint256.Int
	timestamp time.Time
}

func NewTokensBurned(account string, amount *uint256.Int) *TokensBurned {
	return &TokensBurned{
		account:   account,
		amount:    new(uint256.Int).Set(amount),
		timestamp: time.Now(),
	}
}

func (e *TokensBurned) Type() EventType {
	return EventTokensBurned
}

func (e *TokensBurned) Timestamp() time.Time {
	return e.timestamp
}

func (e *TokensBurned) Account() string {
	return e.account
}

func (e *TokensBurned) Amount() *uint256.Int {
	return new(uint256.Int).Set(e.amount)
}
