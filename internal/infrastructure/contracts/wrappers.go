package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// EncodeDeposit packs WETH deposit(), the amount travels as value
func EncodeDeposit() ([]byte, error) {
	return wethABI.Pack("deposit")
}

// EncodeWithdraw packs WETH withdraw(wad)
func EncodeWithdraw(amount *big.Int) ([]byte, error) {
	return wethABI.Pack("withdraw", amount)
}

// EncodeWstETHWrap packs wstETH wrap(_stETHAmount)
func EncodeWstETHWrap(amount *big.Int) ([]byte, error) {
	return wstETHABI.Pack("wrap", amount)
}

// EncodeWstETHUnwrap packs wstETH unwrap(_wstETHAmount)
func EncodeWstETHUnwrap(amount *big.Int) ([]byte, error) {
	return wstETHABI.Pack("unwrap", amount)
}

// RateReader reads getRate() from rate provider contracts
type RateReader struct {
	callers CallerProvider
}

func NewRateReader(callers CallerProvider) *RateReader {
	return &RateReader{callers: callers}
}

// GetRate returns the 18 decimal fixed point rate reported by provider on chainID
func (r *RateReader) GetRate(ctx context.Context, chainID uint64, provider common.Address) (*big.Int, error) {
	caller, err := r.callers.Caller(ctx, chainID)
	if err != nil {
		return nil, err
	}
	data, err := rateProviderABI.Pack("getRate")
	if err != nil {
		return nil, err
	}
	result, err := caller.CallContract(ctx, ethereum.CallMsg{To: &provider, Data: data})
	if err != nil {
		return nil, fmt.Errorf("getRate call failed: %w", err)
	}
	out, err := rateProviderABI.Unpack("getRate", result)
	if err != nil {
		return nil, fmt.Errorf("decode getRate: %w", err)
	}
	return out[0].(*big.Int), nil
}
