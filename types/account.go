package types

import (
	"github.com/holiman/uint256"
)

// Account is a registered ledger entry. A balance entry exists only for a
// registered account; unregistered accounts read as zero balance.
type Account struct {
	Address string       `json:"address"`
	Balance *uint256.Int `json:"balance"`
}

// LedgerState is the persistent singleton state of the token ledger.
type LedgerState struct {
	Owner       string       `json:"owner"`
	TotalSupply *uint256.Int `json:"total_supply"`
	MaxSupply   *uint256.Int `json:"max_supply"`
}
