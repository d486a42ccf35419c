package entities

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// TokenConfig represents token configuration from JSON
type TokenConfig struct {
	Address  string `json:"address"`
	Chain    string `json:"chain"`
	ChainID  uint64 `json:"chainId"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	LogoURI  string `json:"logoURI"`
}

// TokensConfig represents the tokens.json structure
type TokensConfig struct {
	Tokens []TokenConfig `json:"tokens"`
}

type tokenKey struct {
	chain   Chain
	address common.Address
}

// TokenList holds tokens of every chain indexed by chain and address
type TokenList struct {
	byAddress map[tokenKey]Token
	bySymbol  map[Chain]map[string]Token
	all       []Token
}

func NewTokenList() *TokenList {
	return &TokenList{
		byAddress: make(map[tokenKey]Token),
		bySymbol:  make(map[Chain]map[string]Token),
	}
}

// LoadFromFile loads tokens from a JSON config file
func (l *TokenList) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read token config: %w", err)
	}

	var config TokensConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse token config: %w", err)
	}

	for _, tc := range config.Tokens {
		if !common.IsHexAddress(tc.Address) {
			return fmt.Errorf("invalid token address %q", tc.Address)
		}
		l.Register(Token{
			Address:  common.HexToAddress(tc.Address),
			Chain:    Chain(strings.ToUpper(tc.Chain)),
			ChainID:  tc.ChainID,
			Symbol:   tc.Symbol,
			Name:     tc.Name,
			Decimals: tc.Decimals,
			LogoURI:  tc.LogoURI,
		})
	}

	return nil
}

// Register adds or replaces a token
func (l *TokenList) Register(token Token) {
	key := tokenKey{chain: token.Chain, address: token.Address}
	if _, exists := l.byAddress[key]; !exists {
		l.all = append(l.all, token)
	} else {
		for i := range l.all {
			if l.all[i].Chain == token.Chain && l.all[i].Address == token.Address {
				l.all[i] = token
			}
		}
	}
	l.byAddress[key] = token
	if l.bySymbol[token.Chain] == nil {
		l.bySymbol[token.Chain] = make(map[string]Token)
	}
	l.bySymbol[token.Chain][strings.ToUpper(token.Symbol)] = token
}

func (l *TokenList) GetByAddress(chain Chain, addr common.Address) (Token, bool) {
	token, ok := l.byAddress[tokenKey{chain: chain, address: addr}]
	return token, ok
}

// GetBySymbol looks a token up by symbol, ignoring case
func (l *TokenList) GetBySymbol(chain Chain, symbol string) (Token, bool) {
	token, ok := l.bySymbol[chain][strings.ToUpper(symbol)]
	return token, ok
}

func (l *TokenList) GetAll() []Token {
	return l.all
}

func (l *TokenList) ByChain(chain Chain) []Token {
	return TokensByChain(l.all, chain)
}

func (l *TokenList) Count() int {
	return len(l.all)
}
