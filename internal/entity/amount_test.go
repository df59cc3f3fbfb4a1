package entity

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/big"
	"testing"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.01", "10000000000000000"},
		{"2", "2000000000000000000"},
		{"0", "0"},
		{"0.000000000000000001", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			wei, err := ParseEther(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, wei.String())
		})
	}
}

func TestParseEtherRejectsInvalidInput(t *testing.T) {
	for _, in := range []string{"abc", "-1", "0.0000000000000000001"} {
		_, err := ParseEther(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestFormatEther(t *testing.T) {
	wei, _ := new(big.Int).SetString("2500000000000000000", 10)
	assert.Equal(t, "2.5", FormatEther(wei))
	assert.Equal(t, "0", FormatEther(nil))
}

func TestAmountBounds(t *testing.T) {
	assert.NoError(t, ValidateAmount(math.MaxBig256))
	assert.ErrorIs(t, ValidateAmount(new(big.Int).Add(math.MaxBig256, big.NewInt(1))), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateAmount(big.NewInt(-1)), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateAmount(nil), ErrInvalidAmount)

	_, err := AddAmounts(math.MaxBig256, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseWei("115792089237316195423570985008687907853269984665640564039457584007913129639936")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestTokenUri(t *testing.T) {
	assert.Equal(t, "ipfs://base/7.json", TokenUri("ipfs://base/", 7))
}
