package token

import (
	"fmt"

	"github.com/holiman/uint256"

	"ftn/errors"
	"ftn/utils"
)

// DefaultStoragePricePerByte mirrors the commonly deployed storage byte cost
// of the hosting environment. Deployments override it in the runtime config.
const DefaultStoragePricePerByte = 10_000

// settleStorage reconciles the byte delta a staged batch will cause against
// the payment attached to the call. It runs before anything is committed, so
// an underpaid verb aborts with no state change at all.
//
// Growth must be covered by the attached payment; the excess is refunded.
// Shrink refunds the released bytes plus the full attached payment, since no
// growth occurred. The refund is owed to the caller in both cases: unused
// attached payment is never retained.
func settleStorage(delta int64, attached, pricePerByte *uint256.Int) (cost, refund *uint256.Int, err error) {
	if attached == nil {
		attached = uint256.NewInt(0)
	}

	if delta <= 0 {
		released := new(uint256.Int).Mul(uint256.NewInt(uint64(-delta)), pricePerByte)
		return uint256.NewInt(0), released.Add(released, attached), nil
	}

	cost, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(uint64(delta)), pricePerByte)
	if overflow {
		return nil, nil, errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow)
	}

	if attached.Cmp(cost) < 0 {
		return nil, nil, errors.NewError(
			errors.ErrCodeStorageDepositInsufficient,
			fmt.Sprintf(errors.ErrMsgStorageDepositInsufficient,
				utils.Uint256ToString(cost), utils.Uint256ToString(attached)),
		)
	}

	return cost, new(uint256.Int).Sub(attached, cost), nil
}
