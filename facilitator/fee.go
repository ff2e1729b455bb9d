package facilitator

import (
	"math"
	"math/big"
)

// FeeSplit divides a payment between the publisher and the facilitator.
// Amounts are smallest-unit big integers; Publisher + Fee always equals the
// original value.
type FeeSplit struct {
	Publisher *big.Int
	Fee       *big.Int
}

// SplitFee computes the fee split for value at feePercent. The percentage is
// converted to basis points first so fractional percentages like 2.5 stay
// exact; the fee truncates toward zero and the publisher keeps the remainder.
func SplitFee(value *big.Int, feePercent float64) FeeSplit {
	feeBps := int64(math.Round(feePercent * 100))

	fee := new(big.Int).Mul(value, big.NewInt(feeBps))
	fee.Quo(fee, big.NewInt(10000))

	publisher := new(big.Int).Sub(value, fee)
	return FeeSplit{Publisher: publisher, Fee: fee}
}
