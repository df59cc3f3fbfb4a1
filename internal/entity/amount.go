package entity

import (
	"fmt"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
	"math/big"
)

const EtherDecimals = 18

// ValidateAmount checks that a fits an unsigned 256 bit integer.
func ValidateAmount(a *big.Int) error {
	if a == nil || a.Sign() < 0 || a.Cmp(math.MaxBig256) > 0 {
		return ErrInvalidAmount
	}
	return nil
}

func AddAmounts(a, b *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(a, b)
	if err := ValidateAmount(sum); err != nil {
		return nil, fmt.Errorf("%w: overflow", err)
	}
	return sum, nil
}

func ParseWei(s string) (*big.Int, error) {
	a, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := ValidateAmount(a); err != nil {
		return nil, fmt.Errorf("%w: %q", err, s)
	}
	return a, nil
}

// ParseEther converts an ether denominated decimal ("0.01") into wei.
func ParseEther(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	wei := d.Shift(EtherDecimals)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, EtherDecimals)
	}

	a := wei.BigInt()
	if err := ValidateAmount(a); err != nil {
		return nil, fmt.Errorf("%w: %q", err, s)
	}
	return a, nil
}

func FormatEther(a *big.Int) string {
	if a == nil {
		return "0"
	}
	return decimal.NewFromBigInt(a, -EtherDecimals).String()
}

func AmountToBytes(a *big.Int) []byte {
	if a == nil {
		return nil
	}
	return a.Bytes()
}

func BytesToAmount(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
