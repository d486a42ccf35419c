package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type PriceImpactLevel string

const (
	PriceImpactLow     PriceImpactLevel = "low"
	PriceImpactMedium  PriceImpactLevel = "medium"
	PriceImpactHigh    PriceImpactLevel = "high"
	PriceImpactMax     PriceImpactLevel = "max"
	PriceImpactUnknown PriceImpactLevel = "unknown"
)

var (
	priceImpactMediumThreshold = decimal.RequireFromString("0.01")
	priceImpactHighThreshold   = decimal.RequireFromString("0.05")
	priceImpactMaxThreshold    = decimal.RequireFromString("0.10")
)

// PriceImpact is derived from USD values; Ratio is nil when unknown
type PriceImpact struct {
	Ratio *decimal.Decimal `json:"ratio"`
	Level PriceImpactLevel `json:"level"`
}

// CalcPriceImpactRatio returns the loss usdIn/usdOut - 1 clamped to [0, 1].
// A trade whose output is worth at least its input has no impact. The
// ratio is 0 when either value is zero.
func CalcPriceImpactRatio(usdIn, usdOut decimal.Decimal) decimal.Decimal {
	if usdIn.IsZero() || usdOut.IsZero() {
		return decimal.Zero
	}
	ratio := usdIn.DivRound(usdOut, divisionPrecision).Sub(decimal.NewFromInt(1))
	return MinDecimal(MaxDecimal(ratio, decimal.Zero), decimal.NewFromInt(1))
}

// PriceImpactLevelFor classifies a ratio using strict upper bounds
func PriceImpactLevelFor(ratio *decimal.Decimal) PriceImpactLevel {
	if ratio == nil {
		return PriceImpactUnknown
	}
	switch {
	case ratio.LessThan(priceImpactMediumThreshold):
		return PriceImpactLow
	case ratio.LessThan(priceImpactHighThreshold):
		return PriceImpactMedium
	case ratio.LessThan(priceImpactMaxThreshold):
		return PriceImpactHigh
	default:
		return PriceImpactMax
	}
}

// NewPriceImpact builds a PriceImpact from a ratio, nil meaning unknown
func NewPriceImpact(ratio *decimal.Decimal) PriceImpact {
	return PriceImpact{Ratio: ratio, Level: PriceImpactLevelFor(ratio)}
}

// RequiresAcknowledgement reports whether the confirm action must show a warning
func RequiresAcknowledgement(level PriceImpactLevel) bool {
	switch level {
	case PriceImpactUnknown, PriceImpactHigh, PriceImpactMax:
		return true
	}
	return false
}

// ExceedsLabel is the threshold a level exceeds
func ExceedsLabel(level PriceImpactLevel) string {
	switch level {
	case PriceImpactMedium:
		return "1.00%"
	case PriceImpactHigh:
		return "5.00%"
	case PriceImpactMax:
		return "10.00%"
	default:
		return ""
	}
}

// PriceImpactLabel formats a ratio as " (-1.23%)", " (0.00%)" for zero and "" when unknown
func PriceImpactLabel(ratio *decimal.Decimal) string {
	if ratio == nil {
		return ""
	}
	if ratio.IsZero() {
		return " (0.00%)"
	}
	return fmt.Sprintf(" (-%s)", formatPercent(*ratio))
}

// MaxSlippageLabel formats the worst case currency loss for a slippage percentage
func MaxSlippageLabel(slippagePercent, currencyMaxSlippage string) string {
	if slippagePercent == "" {
		return "-"
	}
	s := SafeParse(slippagePercent)
	if s.IsZero() || s.IsNegative() {
		return currencyMaxSlippage + " (0.00%)"
	}
	return fmt.Sprintf("-%s (-%s%%)", currencyMaxSlippage, s.StringFixed(2))
}

func formatPercent(ratio decimal.Decimal) string {
	return ratio.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
