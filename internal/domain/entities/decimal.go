package entities

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// divisionPrecision is the number of fraction digits kept by every division.
const divisionPrecision = 18

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrTooManyDecimals = errors.New("amount has more fraction digits than the token")
	ErrInvalidSlippage = errors.New("invalid slippage")
)

var fixed18 = decimal.New(1, 18)

// ParseDecimal parses a human readable decimal string.
func ParseDecimal(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	return d, nil
}

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := ParseDecimal(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// IsZero reports whether value parses to zero. Invalid input counts as zero.
func IsZero(value string) bool {
	return SafeParse(value).IsZero()
}

// IsNegative reports whether value parses to a negative number.
func IsNegative(value string) bool {
	return SafeParse(value).IsNegative()
}

// DivOrZero divides a by b with 18 fraction digits. A zero divisor yields zero.
func DivOrZero(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, divisionPrecision)
}

func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// ScaleAmount converts a human readable amount to its raw integer form.
// An empty amount scales to zero. An amount with more fraction digits than
// decimals is rejected.
func ScaleAmount(amount string, decimals uint8) (*big.Int, error) {
	if strings.TrimSpace(amount) == "" {
		return big.NewInt(0), nil
	}
	d, err := ParseDecimal(amount)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrNegativeAmount, amount)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %s with %d decimals", ErrTooManyDecimals, amount, decimals)
	}
	return scaled.BigInt(), nil
}

// FormatUnits converts a raw integer amount to a human readable decimal string.
func FormatUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}

// FromFixed18 converts an 18 decimal fixed point integer (rates, wei) to a decimal.
func FromFixed18(raw *big.Int) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -18)
}

// Slippage is a tolerance stored as an 18 decimal fixed point fraction (1% = 0.01e18).
type Slippage struct {
	value *big.Int
}

// SlippageFromPercentage builds a Slippage from a percentage string such as "0.5".
func SlippageFromPercentage(percent string) (Slippage, error) {
	d, err := ParseDecimal(percent)
	if err != nil {
		return Slippage{}, fmt.Errorf("%w: %w", ErrInvalidSlippage, err)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return Slippage{}, fmt.Errorf("%w: must be between 0 and 100, got %s", ErrInvalidSlippage, percent)
	}
	// percent / 100 * 1e18
	return Slippage{value: d.Shift(16).Truncate(0).BigInt()}, nil
}

// Percentage returns the slippage as a percentage decimal.
func (s Slippage) Percentage() decimal.Decimal {
	if s.value == nil {
		return decimal.Zero
	}
	return FromFixed18(s.value).Mul(decimal.NewFromInt(100))
}

// ApplyTo moves amount by the slippage. direction -1 gives a minimum, +1 a maximum.
func (s Slippage) ApplyTo(amount *big.Int, direction int) *big.Int {
	one := fixed18.BigInt()
	factor := new(big.Int).Set(one)
	if s.value != nil {
		if direction < 0 {
			factor.Sub(factor, s.value)
		} else {
			factor.Add(factor, s.value)
		}
	}
	out := new(big.Int).Mul(amount, factor)
	return out.Quo(out, one)
}
