package utils

import (
	"math/big"

	"github.com/pkg/errors"
)

// BigToUint64 converts an on-chain integer, failing instead of truncating
func BigToUint64(v *big.Int) (uint64, error) {
	if v == nil {
		return 0, nil
	}
	if v.Sign() < 0 {
		return 0, errors.Wrapf(ErrNegativeValue, "%s", v)
	}
	if !v.IsUint64() {
		return 0, errors.Wrapf(ErrIntegerOverflow, "%s does not fit in 64 bits", v)
	}

	return v.Uint64(), nil
}

// StringToUint64 parses a decimal event value with the same checks as BigToUint64
func StringToUint64(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}

	v, ok := big.NewInt(0).SetString(s, 10)
	if !ok {
		return 0, errors.Errorf("invalid integer %q", s)
	}

	return BigToUint64(v)
}
