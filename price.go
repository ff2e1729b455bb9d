package paygate

import (
	"fmt"
	"math/big"
	"strings"
)

// TokenDecimals is the smallest-unit exponent of the supported stablecoin.
const TokenDecimals = 6

// smallestUnitScale is 10^TokenDecimals.
var smallestUnitScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(TokenDecimals), nil)

// maxUint256 bounds Value fields: amounts must fit an unsigned 256-bit integer.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ParsePrice converts a human-readable price such as "$0.01" or "0.01" to a
// decimal string in smallest units. A leading currency symbol is stripped.
// The value is multiplied by 10^6 and rounded to the nearest integer.
// Negative and malformed values are rejected.
func ParsePrice(price string) (string, error) {
	s := strings.TrimSpace(price)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return "", fmt.Errorf("%w: empty price", ErrInvalidAmount)
	}

	value, ok := new(big.Float).SetPrec(128).SetString(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAmount, price)
	}
	if value.Sign() < 0 {
		return "", fmt.Errorf("%w: negative price %q", ErrInvalidAmount, price)
	}

	scale := new(big.Float).SetInt(smallestUnitScale)
	value.Mul(value, scale)

	// Round half up to the nearest smallest unit.
	value.Add(value, big.NewFloat(0.5))
	result, _ := value.Int(nil)
	if result.Cmp(maxUint256) > 0 {
		return "", fmt.Errorf("%w: price exceeds uint256", ErrInvalidAmount)
	}
	return result.String(), nil
}

// ParsePriceFloat converts a numeric price to a smallest-unit decimal string.
// NaN, infinities and negative values are rejected.
func ParsePriceFloat(price float64) (string, error) {
	if price != price {
		return "", fmt.Errorf("%w: NaN", ErrInvalidAmount)
	}
	f := big.NewFloat(price)
	if f.IsInf() {
		return "", fmt.Errorf("%w: infinite price", ErrInvalidAmount)
	}
	return ParsePrice(f.Text('f', -1))
}

// FormatOptions controls FormatPrice output.
type FormatOptions struct {
	// Symbol prepends a "$" when true.
	Symbol bool

	// Decimals is the fractional width, default 2, capped at 6.
	Decimals int
}

// FormatPrice converts a smallest-unit decimal string back to a
// human-readable price. The inverse of ParsePrice up to the configured width.
func FormatPrice(smallest string, opts FormatOptions) (string, error) {
	amount, err := ParseSmallestUnit(smallest)
	if err != nil {
		return "", err
	}

	decimals := opts.Decimals
	if decimals <= 0 {
		decimals = 2
	}
	if decimals > TokenDecimals {
		decimals = TokenDecimals
	}

	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(amount, smallestUnitScale, frac)

	// Truncate the 6-digit fraction to the requested width.
	fracStr := fmt.Sprintf("%06d", frac)
	fracStr = fracStr[:decimals]

	out := whole.String() + "." + fracStr
	if opts.Symbol {
		out = "$" + out
	}
	return out, nil
}

// ValidatePrice parses a human-readable price and additionally enforces the
// protocol floor of 0.001 currency units (1000 smallest units).
func ValidatePrice(price string) (string, error) {
	smallest, err := ParsePrice(price)
	if err != nil {
		return "", err
	}
	amount, _ := new(big.Int).SetString(smallest, 10)
	if amount.Cmp(big.NewInt(1000)) < 0 {
		return "", fmt.Errorf("%w: price below minimum 0.001", ErrInvalidAmount)
	}
	return smallest, nil
}

// ParseSmallestUnit parses a smallest-unit decimal string into a big.Int,
// rejecting malformed, negative, and over-wide values.
func ParseSmallestUnit(amount string) (*big.Int, error) {
	if amount == "" {
		return nil, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	v, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount %q", ErrInvalidAmount, amount)
	}
	if v.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("%w: amount exceeds uint256", ErrInvalidAmount)
	}
	return v, nil
}

// CompareAmounts compares two smallest-unit decimal strings, returning
// -1, 0 or 1 in big.Int convention.
func CompareAmounts(a, b string) (int, error) {
	av, err := ParseSmallestUnit(a)
	if err != nil {
		return 0, err
	}
	bv, err := ParseSmallestUnit(b)
	if err != nil {
		return 0, err
	}
	return av.Cmp(bv), nil
}

// AddAmounts sums two smallest-unit decimal strings.
func AddAmounts(a, b string) (string, error) {
	av, err := ParseSmallestUnit(a)
	if err != nil {
		return "", err
	}
	bv, err := ParseSmallestUnit(b)
	if err != nil {
		return "", err
	}
	return new(big.Int).Add(av, bv).String(), nil
}
