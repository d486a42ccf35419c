package contracts

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ContractCaller executes read-only calls against a chain
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

// CallerProvider returns the read-only caller of a chain id
type CallerProvider interface {
	Caller(ctx context.Context, chainID uint64) (ContractCaller, error)
}

const erc20ABIJSON = `[
	{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// USDT mainnet does not return a value from approve
const usdtABIJSON = `[
	{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

const wethABIJSON = `[
	{"inputs":[],"name":"deposit","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"name":"wad","type":"uint256"}],"name":"withdraw","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

const wstETHABIJSON = `[
	{"inputs":[{"name":"_stETHAmount","type":"uint256"}],"name":"wrap","outputs":[{"name":"","type":"uint256"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"_wstETHAmount","type":"uint256"}],"name":"unwrap","outputs":[{"name":"","type":"uint256"}],"stateMutability":"nonpayable","type":"function"}
]`

const rateProviderABIJSON = `[
	{"inputs":[],"name":"getRate","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

var (
	erc20ABI        = mustParseABI(erc20ABIJSON)
	usdtABI         = mustParseABI(usdtABIJSON)
	wethABI         = mustParseABI(wethABIJSON)
	wstETHABI       = mustParseABI(wstETHABIJSON)
	rateProviderABI = mustParseABI(rateProviderABIJSON)
)

// MustParseABI parses a JSON ABI, panicking on malformed input. Only used for package level ABIs.
func MustParseABI(def string) abi.ABI {
	return mustParseABI(def)
}

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("contracts: invalid abi: " + err.Error())
	}
	return parsed
}
