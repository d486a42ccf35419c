package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

type SupportedCurrency string

const (
	CurrencyUSD SupportedCurrency = "USD"
	CurrencyEUR SupportedCurrency = "EUR"
	CurrencyGBP SupportedCurrency = "GBP"
	CurrencyJPY SupportedCurrency = "JPY"
	CurrencyCNY SupportedCurrency = "CNY"
	CurrencyBTC SupportedCurrency = "BTC"
	CurrencyETH SupportedCurrency = "ETH"
)

var SupportedCurrencies = []SupportedCurrency{
	CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyJPY, CurrencyCNY, CurrencyBTC, CurrencyETH,
}

// ParseCurrency returns the supported currency for code, case-insensitively
func ParseCurrency(code string) (SupportedCurrency, bool) {
	c := SupportedCurrency(strings.ToUpper(strings.TrimSpace(code)))
	for _, s := range SupportedCurrencies {
		if s == c {
			return c, true
		}
	}
	return "", false
}

// Symbol returns the display symbol, "$" for anything unknown
func (c SupportedCurrency) Symbol() string {
	switch c {
	case CurrencyEUR:
		return "€"
	case CurrencyGBP:
		return "£"
	case CurrencyJPY, CurrencyCNY:
		return "¥"
	case CurrencyBTC:
		return "₿"
	case CurrencyETH:
		return "Ξ"
	default:
		return "$"
	}
}

// FxRate is one currency rate relative to USD
type FxRate struct {
	Code  string          `json:"code"`
	Value decimal.Decimal `json:"value"`
}

// FxRates maps currency codes to rates
type FxRates map[string]FxRate

// Rate returns the rate for currency, 1 when missing or zero
func (r FxRates) Rate(currency SupportedCurrency) decimal.Decimal {
	rate, ok := r[string(currency)]
	if !ok || rate.Value.IsZero() {
		return decimal.NewFromInt(1)
	}
	return rate.Value
}
