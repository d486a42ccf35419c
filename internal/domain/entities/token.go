package entities

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type Token struct {
	Address  common.Address `json:"address"`
	Chain    Chain          `json:"chain"`
	ChainID  uint64         `json:"chainId"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Decimals uint8          `json:"decimals"`
	LogoURI  string         `json:"logoURI,omitempty"`
}

// TokenPrice is a USD price for a token on a chain
type TokenPrice struct {
	Address common.Address  `json:"address"`
	Chain   Chain           `json:"chain"`
	Price   decimal.Decimal `json:"price"`
}

// NativeAssetAddress is the placeholder address used for the native asset on every chain
var NativeAssetAddress = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// USDTMainnet is Tether USD on Ethereum mainnet. Its approve does not return a bool.
var USDTMainnet = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")

// IsSameAddress compares two hex addresses ignoring case
func IsSameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// SameAddresses reports whether both lists hold the same set of addresses
func SameAddresses(a, b []common.Address) bool {
	setA := lo.Uniq(a)
	setB := lo.Uniq(b)
	if len(setA) != len(setB) {
		return false
	}
	return lo.Every(setA, setB)
}

// FindToken returns the token with the given address on chain
func FindToken(tokens []Token, address common.Address, chain Chain) (Token, bool) {
	return lo.Find(tokens, func(t Token) bool {
		return t.Address == address && t.Chain == chain
	})
}

// TokensByChain filters tokens down to one chain
func TokensByChain(tokens []Token, chain Chain) []Token {
	return lo.Filter(tokens, func(t Token, _ int) bool {
		return t.Chain == chain
	})
}

// PriceForToken returns the USD price of token, zero when no price is known
func PriceForToken(token Token, prices []TokenPrice) decimal.Decimal {
	price, ok := lo.Find(prices, func(p TokenPrice) bool {
		return p.Address == token.Address
	})
	if !ok {
		return decimal.Zero
	}
	return price.Price
}

// UsdValueForToken returns amount * price as a decimal string. A nil token or empty amount is "0".
func UsdValueForToken(token *Token, amount string, prices []TokenPrice) string {
	if token == nil || amount == "" {
		return "0"
	}
	return SafeParse(amount).Mul(PriceForToken(*token, prices)).String()
}
