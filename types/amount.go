package types

import (
	"github.com/holiman/uint256"
)

// Balances and supply figures are u128 values carried in uint256.Int, the
// amount representation used across the node. Results above 2^128-1 are
// treated as overflow even though the container could hold them.

// MaxU128 returns 2^128 - 1, the largest representable balance.
func MaxU128() *uint256.Int {
	max := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	return max.Sub(max, uint256.NewInt(1))
}

// FitsU128 reports whether v is within the u128 balance range.
func FitsU128(v *uint256.Int) bool {
	return v != nil && v.BitLen() <= 128
}

// AddU128 returns a+b, with ok=false when the sum leaves the u128 range.
func AddU128(a, b *uint256.Int) (*uint256.Int, bool) {
	sum, carry := new(uint256.Int).AddOverflow(a, b)
	if carry || !FitsU128(sum) {
		return nil, false
	}
	return sum, true
}
