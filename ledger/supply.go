package ledger

import (
	"fmt"

	"github.com/holiman/uint256"

	"ftn/errors"
	"ftn/logx"
	"ftn/types"
	"ftn/utils"
)

// Supply is the total-supply counter and its administrator-set cap. It does
// pure counter arithmetic and never touches account balances; the token
// engine composes it with the account store and persists the result.
type Supply struct {
	total *uint256.Int
	cap   *uint256.Int
}

// NewSupply clones both counters so a discarded verb leaves the committed
// state untouched.
func NewSupply(total, cap *uint256.Int) *Supply {
	return &Supply{
		total: new(uint256.Int).Set(total),
		cap:   new(uint256.Int).Set(cap),
	}
}

// Total returns the current total supply
func (s *Supply) Total() *uint256.Int {
	return new(uint256.Int).Set(s.total)
}

// Cap returns the current supply cap
func (s *Supply) Cap() *uint256.Int {
	return new(uint256.Int).Set(s.cap)
}

// Mint adds amount to the total supply and returns the new total. It fails
// with an overflow error when the sum exceeds the cap or the u128 range.
func (s *Supply) Mint(amount *uint256.Int) (*uint256.Int, error) {
	next, ok := types.AddU128(s.total, amount)
	if !ok {
		return nil, errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow)
	}
	if next.Cmp(s.cap) > 0 {
		return nil, errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow)
	}

	s.total = next
	return s.Total(), nil
}

// Burn subtracts amount from the total supply. An underflow here means the
// engine withdrew more than was ever minted; it is an internal consistency
// violation, not a caller error.
func (s *Supply) Burn(amount *uint256.Int) error {
	if amount.Cmp(s.total) > 0 {
		logx.Error("SUPPLY", fmt.Sprintf("burn of %s exceeds total supply %s, ledger inconsistent",
			utils.Uint256ToString(amount), utils.Uint256ToString(s.total)))
		return errors.NewError(errors.ErrCodeUnderflow, errors.ErrMsgUnderflow)
	}

	s.total = new(uint256.Int).Sub(s.total, amount)
	return nil
}

// SetCap replaces the cap unconditionally. A cap below the current total is
// allowed and stands as a latent non-mintable state, matching the absence of
// a guard in the verb contract.
func (s *Supply) SetCap(newCap *uint256.Int) {
	if newCap.Cmp(s.total) < 0 {
		logx.Warn("SUPPLY", fmt.Sprintf("new cap %s is below current total supply %s, minting is disabled until the cap is raised",
			utils.Uint256ToString(newCap), utils.Uint256ToString(s.total)))
	}
	s.cap = new(uint256.Int).Set(newCap)
}
