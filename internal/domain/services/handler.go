package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

// SwapHandler simulates and builds one execution strategy
type SwapHandler interface {
	Kind() entities.StrategyKind
	Simulate(ctx context.Context, cfg entities.NetworkConfig, req entities.SwapRequest) (entities.SimulationResult, error)
	Build(cfg entities.NetworkConfig, in entities.BuildInput) (entities.TransactionPayload, error)
	// Spender returns the address tokenIn must be approved for. ok is false
	// when the strategy needs no approval.
	Spender(cfg entities.NetworkConfig, in entities.BuildInput) (spender common.Address, ok bool)
}

func wrapTypeOf(cfg entities.NetworkConfig, tokenIn, tokenOut common.Address) (entities.WrapType, error) {
	wt, ok := cfg.WrapTypeFor(tokenIn, tokenOut)
	if !ok {
		return "", entities.NewSwapError(entities.KindUnsupportedWrapConfig,
			"token pair "+tokenIn.Hex()+" / "+tokenOut.Hex()+" is not a supported wrap", nil)
	}
	return wt, nil
}

func wrapQuoteBase(swapType entities.SwapType, amount string) entities.QuoteBase {
	return entities.QuoteBase{
		SwapType:               swapType,
		EffectivePrice:         "1",
		EffectivePriceReversed: "1",
		ReturnAmount:           amount,
	}
}
