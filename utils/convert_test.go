package utils

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex64RoundTrip(t *testing.T) {
	values := []*uint256.Int{
		uint256.NewInt(0),
		uint256.NewInt(1),
		uint256.NewInt(1_000_000_000),
		new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1)),
	}

	for _, v := range values {
		enc := Uint256ToHex64(v)
		assert.Len(t, enc, 64)

		dec, err := Uint256FromHex64(enc)
		require.NoError(t, err)
		assert.Equal(t, v, dec)
	}
}

func TestHex64EncodingIsFixedWidth(t *testing.T) {
	small := Uint256ToHex64(uint256.NewInt(1))
	large := Uint256ToHex64(new(uint256.Int).Lsh(uint256.NewInt(1), 127))
	assert.Equal(t, len(small), len(large))
	assert.Len(t, Uint256ToHex64(nil), 64)
}

func TestHex64RejectsMalformedInput(t *testing.T) {
	_, err := Uint256FromHex64("zz")
	require.Error(t, err)

	_, err = Uint256FromHex64("abcd")
	require.Error(t, err)

	_, err = Uint256FromHex64(strings.Repeat("0", 66))
	require.Error(t, err)
}

func TestDecimalParsing(t *testing.T) {
	v, err := Uint256FromString("1_000_000")
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1_000_000), v)

	v, err = Uint256FromString("  42 ")
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(42), v)

	v, err = Uint256FromString("")
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	_, err = Uint256FromString("12x4")
	require.Error(t, err)
}

func TestDecimalRendering(t *testing.T) {
	assert.Equal(t, "0", Uint256ToString(nil))
	assert.Equal(t, "0", Uint256ToString(uint256.NewInt(0)))
	assert.Equal(t, "123456789", Uint256ToString(uint256.NewInt(123456789)))
}
