package balancer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/infrastructure/contracts"
)

// OnchainQuerier runs the read-only Balancer swap queries that produce the
// authoritative expected amount of a swap plan.
type OnchainQuerier struct {
	callers contracts.CallerProvider
}

func NewOnchainQuerier(callers contracts.CallerProvider) *OnchainQuerier {
	return &OnchainQuerier{callers: callers}
}

// Query runs queryBatchSwap on the v2 vault or querySwapExactIn/Out on the v3 batch router
func (q *OnchainQuerier) Query(ctx context.Context, cfg entities.NetworkConfig, plan entities.SwapPlan) (entities.OnchainQueryOutput, error) {
	if len(plan.Paths) == 0 {
		return entities.OnchainQueryOutput{}, errEmptyPlan
	}
	caller, err := q.callers.Caller(ctx, cfg.ChainID)
	if err != nil {
		return entities.OnchainQueryOutput{}, err
	}
	if plan.ProtocolVersion == entities.ProtocolV3 {
		return q.queryV3(ctx, caller, cfg.Contracts.Balancer.BatchRouter, plan)
	}
	return q.queryV2(ctx, caller, cfg.Contracts.Balancer.VaultV2, plan)
}

func (q *OnchainQuerier) queryV2(ctx context.Context, caller contracts.ContractCaller, vault common.Address, plan entities.SwapPlan) (entities.OnchainQueryOutput, error) {
	if vault == (common.Address{}) {
		return entities.OnchainQueryOutput{}, errors.New("no v2 vault configured")
	}
	swaps, assets, err := batchSwapSteps(plan.Paths, plan.Kind)
	if err != nil {
		return entities.OnchainQueryOutput{}, err
	}
	data, err := vaultV2ABI.Pack("queryBatchSwap", uint8(plan.Kind), swaps, assets, FundManagement{})
	if err != nil {
		return entities.OnchainQueryOutput{}, fmt.Errorf("pack queryBatchSwap: %w", err)
	}

	result, err := caller.CallContract(ctx, ethereum.CallMsg{To: &vault, Data: data})
	if err != nil {
		return entities.OnchainQueryOutput{}, fmt.Errorf("queryBatchSwap call failed: %w", err)
	}
	out, err := vaultV2ABI.Unpack("queryBatchSwap", result)
	if err != nil {
		return entities.OnchainQueryOutput{}, fmt.Errorf("decode queryBatchSwap: %w", err)
	}
	deltas, ok := out[0].([]*big.Int)
	if !ok {
		return entities.OnchainQueryOutput{}, errors.New("unexpected queryBatchSwap output")
	}

	output := entities.OnchainQueryOutput{Kind: plan.Kind, To: vault}
	tokenIn, tokenOut := plan.TokenIn(), plan.TokenOut()
	for i, asset := range assets {
		if i >= len(deltas) {
			break
		}
		switch {
		// the vault reports outgoing amounts as negative deltas
		case plan.Kind == entities.SwapKindGivenIn && asset == tokenOut.Address:
			output.ExpectedAmount = new(big.Int).Neg(deltas[i])
			output.ExpectedToken = tokenOut
		case plan.Kind == entities.SwapKindGivenOut && asset == tokenIn.Address:
			output.ExpectedAmount = new(big.Int).Set(deltas[i])
			output.ExpectedToken = tokenIn
		}
	}
	if output.ExpectedAmount == nil {
		return entities.OnchainQueryOutput{}, errors.New("queryBatchSwap returned no delta for the expected token")
	}
	return output, nil
}

func (q *OnchainQuerier) queryV3(ctx context.Context, caller contracts.ContractCaller, router common.Address, plan entities.SwapPlan) (entities.OnchainQueryOutput, error) {
	if router == (common.Address{}) {
		return entities.OnchainQueryOutput{}, errors.New("no v3 batch router configured")
	}
	for _, p := range plan.Paths {
		if err := validatePath(p); err != nil {
			return entities.OnchainQueryOutput{}, err
		}
	}

	method := "querySwapExactIn"
	var data []byte
	var err error
	if plan.Kind == entities.SwapKindGivenOut {
		method = "querySwapExactOut"
		paths := make([]SwapPathExactAmountOut, len(plan.Paths))
		for i, p := range plan.Paths {
			paths[i] = SwapPathExactAmountOut{
				TokenIn:        p.Tokens[0].Address,
				Steps:          pathSteps(p),
				MaxAmountIn:    contracts.MaxUint256,
				ExactAmountOut: orZero(p.OutputAmountRaw),
			}
		}
		data, err = batchRouterABI.Pack(method, paths, common.Address{}, []byte{})
	} else {
		paths := make([]SwapPathExactAmountIn, len(plan.Paths))
		for i, p := range plan.Paths {
			paths[i] = SwapPathExactAmountIn{
				TokenIn:       p.Tokens[0].Address,
				Steps:         pathSteps(p),
				ExactAmountIn: orZero(p.InputAmountRaw),
				MinAmountOut:  new(big.Int),
			}
		}
		data, err = batchRouterABI.Pack(method, paths, common.Address{}, []byte{})
	}
	if err != nil {
		return entities.OnchainQueryOutput{}, fmt.Errorf("pack %s: %w", method, err)
	}

	result, err := caller.CallContract(ctx, ethereum.CallMsg{To: &router, Data: data})
	if err != nil {
		return entities.OnchainQueryOutput{}, fmt.Errorf("%s call failed: %w", method, err)
	}
	out, err := batchRouterABI.Unpack(method, result)
	if err != nil {
		return entities.OnchainQueryOutput{}, fmt.Errorf("decode %s: %w", method, err)
	}
	pathAmounts, _ := out[0].([]*big.Int)
	amounts, _ := out[2].([]*big.Int)
	if len(amounts) == 0 {
		return entities.OnchainQueryOutput{}, fmt.Errorf("%s returned no amounts", method)
	}

	output := entities.OnchainQueryOutput{
		Kind:           plan.Kind,
		ExpectedAmount: new(big.Int).Set(amounts[0]),
		PathAmounts:    pathAmounts,
		To:             router,
	}
	if plan.Kind == entities.SwapKindGivenOut {
		output.ExpectedToken = plan.TokenIn()
	} else {
		output.ExpectedToken = plan.TokenOut()
	}
	return output, nil
}
