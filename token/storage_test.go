package token

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftn/errors"
)

func TestSettleStorageGrowth(t *testing.T) {
	price := uint256.NewInt(10)

	// Exact coverage leaves no refund.
	cost, refund, err := settleStorage(100, uint256.NewInt(1000), price)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1000), cost)
	assert.True(t, refund.IsZero())

	// Excess comes back.
	cost, refund, err = settleStorage(100, uint256.NewInt(1050), price)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1000), cost)
	assert.Equal(t, uint256.NewInt(50), refund)
}

func TestSettleStorageUnderpaid(t *testing.T) {
	price := uint256.NewInt(10)

	_, _, err := settleStorage(100, uint256.NewInt(999), price)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStorageDepositInsufficient))

	_, _, err = settleStorage(1, nil, price)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStorageDepositInsufficient))
}

func TestSettleStorageShrinkRefundsReleasedBytes(t *testing.T) {
	price := uint256.NewInt(10)

	// Shrink refunds the released bytes plus the whole attachment.
	cost, refund, err := settleStorage(-40, uint256.NewInt(7), price)
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
	assert.Equal(t, uint256.NewInt(407), refund)
}

func TestSettleStorageZeroDeltaRefundsAttachment(t *testing.T) {
	price := uint256.NewInt(10)

	cost, refund, err := settleStorage(0, uint256.NewInt(123), price)
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
	assert.Equal(t, uint256.NewInt(123), refund)
}

func TestRequireConfirmUnit(t *testing.T) {
	assert.NoError(t, requireConfirmUnit(NewCallContext("caller", uint256.NewInt(1))))

	for _, attached := range []uint64{0, 2, 1000} {
		err := requireConfirmUnit(NewCallContext("caller", uint256.NewInt(attached)))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidAttachedDeposit))
	}

	err := requireConfirmUnit(NewCallContext("caller", nil))
	require.Error(t, err)
}
