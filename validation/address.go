package validation

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"ftn/common"
	"ftn/errors"
)

const (
	// AddressPayloadSize is the decoded size of a valid account identifier,
	// matching an ed25519 public key.
	AddressPayloadSize = 32

	MinAddressLength = 32
	MaxAddressLength = 44
)

// ValidateAddress checks that addr is a well-formed account identifier before
// it reaches the ledger core: NFC-normalized, length-bounded and base58
// decodable into a 32-byte payload.
func ValidateAddress(addr string) error {
	normalized := norm.NFC.String(addr)
	if normalized != addr {
		return errors.NewError(errors.ErrCodeInvalidAddress, errors.ErrMsgInvalidAddress)
	}

	if len(addr) < MinAddressLength || len(addr) > MaxAddressLength {
		return errors.NewError(errors.ErrCodeInvalidAddress, errors.ErrMsgInvalidAddress)
	}

	payload, err := common.DecodeBase58ToBytes(addr)
	if err != nil || len(payload) != AddressPayloadSize {
		return errors.NewError(errors.ErrCodeInvalidAddress, errors.ErrMsgInvalidAddress)
	}

	return nil
}

// MustValidAddress panics on an invalid identifier. Used for static
// addresses in config and tests where malformed input is a programming error.
func MustValidAddress(addr string) string {
	if err := ValidateAddress(addr); err != nil {
		panic(fmt.Sprintf("invalid address %q: %v", addr, err))
	}
	return addr
}
