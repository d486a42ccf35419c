package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

// MaxUint256 is the unlimited allowance amount
var MaxUint256 = new(uint256.Int).SetAllOne().ToBig()

// IsNoReturnApproveToken reports whether the token's approve has no return value
func IsNoReturnApproveToken(token common.Address) bool {
	return token == entities.USDTMainnet
}

// EncodeApprove packs approve(spender, amount) for token
func EncodeApprove(token, spender common.Address, amount *big.Int) ([]byte, error) {
	if IsNoReturnApproveToken(token) {
		return usdtABI.Pack("approve", spender, amount)
	}
	return erc20ABI.Pack("approve", spender, amount)
}

// DecodeApproveResult checks the eth_call result of approve. Tokens without a
// return value succeed whenever the call did not revert.
func DecodeApproveResult(token common.Address, data []byte) error {
	if IsNoReturnApproveToken(token) {
		return nil
	}
	out, err := erc20ABI.Unpack("approve", data)
	if err != nil {
		return fmt.Errorf("decode approve result: %w", err)
	}
	ok, _ := out[0].(bool)
	if !ok {
		return fmt.Errorf("approve returned false")
	}
	return nil
}

func EncodeAllowance(owner, spender common.Address) ([]byte, error) {
	return erc20ABI.Pack("allowance", owner, spender)
}

// Allowance reads the ERC-20 allowance of owner for spender
func Allowance(ctx context.Context, caller ContractCaller, token, owner, spender common.Address) (*big.Int, error) {
	data, err := EncodeAllowance(owner, spender)
	if err != nil {
		return nil, err
	}
	result, err := caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data})
	if err != nil {
		return nil, fmt.Errorf("allowance call failed: %w", err)
	}
	out, err := erc20ABI.Unpack("allowance", result)
	if err != nil {
		return nil, fmt.Errorf("decode allowance: %w", err)
	}
	return out[0].(*big.Int), nil
}
