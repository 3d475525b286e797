package validation

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftn/common"
	"ftn/errors"
)

func TestValidateAddressAcceptsEd25519Keys(t *testing.T) {
	for i := 0; i < 10; i++ {
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		addr := common.EncodeBytesToBase58(pub)
		assert.NoError(t, ValidateAddress(addr), "address %s", addr)
	}
}

func TestValidateAddressRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":              "",
		"too short":          "abc",
		"too long":           strings.Repeat("1", 45),
		"forbidden alphabet": strings.Repeat("0", 44),
		"lookalike chars":    strings.Repeat("O", 40),
		"wrong payload size": strings.Repeat("1", 40),
	}

	for name, addr := range cases {
		err := ValidateAddress(addr)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidAddress), name)
	}
}

func TestValidateAddressRejectsNonNFCInput(t *testing.T) {
	// A decomposed sequence re-normalizes to a different string.
	addr := "e\u0301" + strings.Repeat("1", 40)
	err := ValidateAddress(addr)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAddress))
}

func TestMustValidAddressPanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustValidAddress("bogus") })

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	addr := common.EncodeBytesToBase58(pub)
	assert.Equal(t, addr, MustValidAddress(addr))
}
