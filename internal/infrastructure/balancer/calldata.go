package balancer

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

// DefaultDeadline is 2^53 - 1, the largest deadline every client can represent
var DefaultDeadline = big.NewInt(9007199254740991)

var errEmptyPlan = errors.New("swap plan has no paths")

// SwapCall describes one Balancer swap transaction
type SwapCall struct {
	Kind    entities.SwapKind
	Paths   []entities.Path
	Account common.Address
	// PathLimits holds per path minimum out (GivenIn) or maximum in (GivenOut), v3 only
	PathLimits []*big.Int
	// LimitIn and LimitOut bound the total amounts, v2 only
	LimitIn       *big.Int
	LimitOut      *big.Int
	WethIsEth     bool
	WrappedNative common.Address
	Deadline      *big.Int
	Permit2       *entities.Permit2
}

func (c SwapCall) deadline() *big.Int {
	if c.Deadline == nil {
		return DefaultDeadline
	}
	return c.Deadline
}

// EncodeBatchRouterSwap packs a v3 BatchRouter swapExactIn/swapExactOut call,
// wrapped in permitBatchAndCall when a permit2 signature is attached.
func EncodeBatchRouterSwap(call SwapCall) ([]byte, error) {
	if len(call.Paths) == 0 {
		return nil, errEmptyPlan
	}
	if len(call.PathLimits) != len(call.Paths) {
		return nil, fmt.Errorf("expected %d path limits, got %d", len(call.Paths), len(call.PathLimits))
	}
	for _, p := range call.Paths {
		if err := validatePath(p); err != nil {
			return nil, err
		}
	}

	var (
		data []byte
		err  error
	)
	if call.Kind == entities.SwapKindGivenOut {
		paths := make([]SwapPathExactAmountOut, len(call.Paths))
		for i, p := range call.Paths {
			paths[i] = SwapPathExactAmountOut{
				TokenIn:        p.Tokens[0].Address,
				Steps:          pathSteps(p),
				MaxAmountIn:    call.PathLimits[i],
				ExactAmountOut: p.OutputAmountRaw,
			}
		}
		data, err = batchRouterABI.Pack("swapExactOut", paths, call.deadline(), call.WethIsEth, []byte{})
	} else {
		paths := make([]SwapPathExactAmountIn, len(call.Paths))
		for i, p := range call.Paths {
			paths[i] = SwapPathExactAmountIn{
				TokenIn:       p.Tokens[0].Address,
				Steps:         pathSteps(p),
				ExactAmountIn: p.InputAmountRaw,
				MinAmountOut:  call.PathLimits[i],
			}
		}
		data, err = batchRouterABI.Pack("swapExactIn", paths, call.deadline(), call.WethIsEth, []byte{})
	}
	if err != nil {
		return nil, fmt.Errorf("pack batch router swap: %w", err)
	}

	if call.Permit2 == nil {
		return data, nil
	}
	return encodePermitBatchAndCall(call.Permit2, data)
}

func encodePermitBatchAndCall(permit *entities.Permit2, swapData []byte) ([]byte, error) {
	details := make([]PermitDetails, len(permit.Details))
	for i, d := range permit.Details {
		details[i] = PermitDetails{
			Token:      d.Token,
			Amount:     orZero(d.Amount),
			Expiration: orZero(d.Expiration),
			Nonce:      orZero(d.Nonce),
		}
	}
	batch := PermitBatch{
		Details:     details,
		Spender:     permit.Spender,
		SigDeadline: orZero(permit.SigDeadline),
	}
	data, err := batchRouterABI.Pack("permitBatchAndCall",
		[]PermitApproval{},
		[][]byte{},
		batch,
		[]byte(permit.Signature),
		[][]byte{swapData},
	)
	if err != nil {
		return nil, fmt.Errorf("pack permitBatchAndCall: %w", err)
	}
	return data, nil
}

// EncodeVaultBatchSwap packs a v2 Vault batchSwap call. The account is both
// sender and recipient.
func EncodeVaultBatchSwap(call SwapCall) ([]byte, error) {
	if len(call.Paths) == 0 {
		return nil, errEmptyPlan
	}
	if call.LimitIn == nil || call.LimitOut == nil {
		return nil, errors.New("batchSwap requires in and out limits")
	}

	swaps, assets, err := batchSwapSteps(call.Paths, call.Kind)
	if err != nil {
		return nil, err
	}
	tokenIn := call.Paths[0].Tokens[0].Address
	last := call.Paths[0].Tokens
	tokenOut := last[len(last)-1].Address

	limits := make([]*big.Int, len(assets))
	for i, asset := range assets {
		switch asset {
		case tokenIn:
			limits[i] = new(big.Int).Set(call.LimitIn)
		case tokenOut:
			limits[i] = new(big.Int).Neg(call.LimitOut)
		default:
			limits[i] = new(big.Int)
		}
	}
	if call.WethIsEth {
		assets = replaceAsset(assets, call.WrappedNative, common.Address{})
	}

	funds := FundManagement{
		Sender:    call.Account,
		Recipient: call.Account,
	}
	data, err := vaultV2ABI.Pack("batchSwap", uint8(call.Kind), swaps, assets, funds, limits, call.deadline())
	if err != nil {
		return nil, fmt.Errorf("pack batchSwap: %w", err)
	}
	return data, nil
}

// batchSwapSteps flattens paths into vault swap steps over a shared asset list.
// GivenOut paths are walked backwards so the first step of each path carries the exact amount.
func batchSwapSteps(paths []entities.Path, kind entities.SwapKind) ([]BatchSwapStep, []common.Address, error) {
	var assets []common.Address
	index := make(map[common.Address]int)
	indexOf := func(a common.Address) *big.Int {
		i, ok := index[a]
		if !ok {
			i = len(assets)
			index[a] = i
			assets = append(assets, a)
		}
		return big.NewInt(int64(i))
	}

	var swaps []BatchSwapStep
	for _, p := range paths {
		if err := validatePath(p); err != nil {
			return nil, nil, err
		}
		for _, t := range p.Tokens {
			indexOf(t.Address)
		}

		hops := len(p.Pools)
		for n := 0; n < hops; n++ {
			i := n
			amount := new(big.Int)
			if kind == entities.SwapKindGivenOut {
				i = hops - 1 - n
				if n == 0 {
					amount.Set(orZero(p.OutputAmountRaw))
				}
			} else if n == 0 {
				amount.Set(orZero(p.InputAmountRaw))
			}
			swaps = append(swaps, BatchSwapStep{
				PoolId:        common.HexToHash(p.Pools[i]),
				AssetInIndex:  indexOf(p.Tokens[i].Address),
				AssetOutIndex: indexOf(p.Tokens[i+1].Address),
				Amount:        amount,
				UserData:      []byte{},
			})
		}
	}
	return swaps, assets, nil
}

func validatePath(p entities.Path) error {
	if len(p.Pools) == 0 || len(p.Tokens) != len(p.Pools)+1 {
		return fmt.Errorf("path has %d pools and %d tokens", len(p.Pools), len(p.Tokens))
	}
	return nil
}

func pathSteps(p entities.Path) []SwapPathStep {
	steps := make([]SwapPathStep, len(p.Pools))
	for i, pool := range p.Pools {
		steps[i] = SwapPathStep{
			Pool:     common.HexToAddress(pool),
			TokenOut: p.Tokens[i+1].Address,
			IsBuffer: i < len(p.IsBuffer) && p.IsBuffer[i],
		}
	}
	return steps
}

func replaceAsset(assets []common.Address, from, to common.Address) []common.Address {
	out := make([]common.Address, len(assets))
	for i, a := range assets {
		if a == from {
			out[i] = to
		} else {
			out[i] = a
		}
	}
	return out
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
