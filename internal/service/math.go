package service

import (
	"errors"
	"math"
)

var ErrAmountOverflow = errors.New("amount arithmetic overflow")

const bpsDenominator = 10000

func checkedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt64/b {
		return 0, ErrAmountOverflow
	}

	return a * b, nil
}

// mulDiv computes a*b/c, multiplying before dividing so truncation happens
// exactly once, at the end.
func mulDiv(a, b, c int64) (int64, error) {
	product, err := checkedMul(a, b)
	if err != nil {
		return 0, err
	}

	return product / c, nil
}

// applyBps takes a basis-point cut of amount, truncating toward zero.
func applyBps(amount, bps int64) (int64, error) {
	return mulDiv(amount, bps, bpsDenominator)
}
