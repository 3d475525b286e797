package interfaces

import (
	"github.com/holiman/uint256"

	"ftn/token"
	"ftn/types"
)

// TokenLedger defines the verb surface the RPC layer exposes. Implemented by
// token.Token.
type TokenLedger interface {
	// Mutating verbs
	Mint(ctx token.CallContext, account string, amount *uint256.Int) (*uint256.Int, error)
	Burn(ctx token.CallContext, account string, amount *uint256.Int) error
	Transfer(ctx token.CallContext, to string, amount *uint256.Int) error
	Register(ctx token.CallContext, account string) error
	Unregister(ctx token.CallContext) error
	SetOwner(ctx token.CallContext, newOwner string) (string, error)
	SetMaxSupply(ctx token.CallContext, newCap *uint256.Int) error

	// Read-only verbs
	BalanceOf(account string) *uint256.Int
	TotalSupply() *uint256.Int
	MaxSupply() *uint256.Int
	Owner() (string, error)
	Metadata() *types.Metadata
	StorageUsage() uint64
	VerifySupply() error
}
