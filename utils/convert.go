package utils

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Persisted amounts use a fixed-width hex encoding so that balance changes
// never alter an entry's byte footprint. Storage accounting depends on this:
// only registration and unregistration may change the backing store size.

// Uint256ToHex64 encodes v as 64 lowercase hex characters (32 bytes,
// big-endian, zero-padded).
func Uint256ToHex64(v *uint256.Int) string {
	if v == nil {
		v = uint256.NewInt(0)
	}
	b := v.Bytes32()
	return hex.EncodeToString(b[:])
}

// Uint256FromHex64 decodes a fixed-width hex amount written by
// Uint256ToHex64.
func Uint256FromHex64(s string) (*uint256.Int, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid fixed-width amount %q: %w", s, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid fixed-width amount length %d, want 32 bytes", len(raw))
	}
	return new(uint256.Int).SetBytes(raw), nil
}

// Uint256ToString renders v as a base-10 string for client-facing surfaces.
func Uint256ToString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

// Uint256FromString parses a base-10 amount. Underscores are accepted as
// digit separators ("1_000_000").
func Uint256FromString(s string) (*uint256.Int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if cleaned == "" {
		return uint256.NewInt(0), nil
	}
	v, err := uint256.FromDecimal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("could not parse amount %q: %w", s, err)
	}
	return v, nil
}
